package save

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zip2addr/zip2addr/pkg/errors"
)

// BackupOption configures BackupIfExists.
type BackupOption func(*backupOptions)

type backupOptions struct {
	suffix string
	now    func() time.Time
}

// WithSuffix uses suffix instead of the timestamp. An empty suffix keeps
// the timestamp.
func WithSuffix(suffix string) BackupOption {
	return func(o *backupOptions) {
		o.suffix = suffix
	}
}

// WithClock sets the time source for the default suffix.
func WithClock(now func() time.Time) BackupOption {
	return func(o *backupOptions) {
		o.now = now
	}
}

// BackupIfExists renames an existing file at path to path.<suffix> and
// returns the new name. The default suffix is the current unix time in
// seconds with its fractional part, '.' replaced by '_' (1700000000_123456).
// When nothing exists at path it returns "" and a nil error.
func BackupIfExists(path string, opts ...BackupOption) (string, error) {
	o := &backupOptions{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	if _, err := os.Lstat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", errors.WrapIO("stat", path, err)
	}

	suffix := o.suffix
	if suffix == "" {
		suffix = TimestampSuffix(o.now())
	}

	backup := path + "." + suffix
	if err := os.Rename(path, backup); err != nil {
		return "", errors.WrapIO("rename", path, err)
	}
	return backup, nil
}

// TimestampSuffix formats t as unix seconds and fraction joined by '_'.
// The fraction keeps at least one digit, so whole seconds end in "_0".
func TimestampSuffix(t time.Time) string {
	frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond()), "0")
	if frac == "" {
		frac = "0"
	}
	return strconv.FormatInt(t.Unix(), 10) + "_" + frac
}
