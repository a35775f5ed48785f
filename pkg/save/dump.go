package save

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
	"github.com/zip2addr/zip2addr/pkg/postal"
)

// Dump writes records to path as a list of field mappings.
//
// An empty records slice is logged as an error and nothing is written; the
// call still returns nil so pipelines can finish. Otherwise the directory
// is created, an existing file is backed up, and the content is written to
// a temporary file that is renamed into place.
func Dump(records []postal.Record, path string, opts ...Option) error {
	options := Defaults().Apply(opts...)
	logger := options.Logger()

	if len(records) == 0 {
		logger.Error().Str("path", path).Msg("No records to dump")
		return nil
	}

	data, err := encode(records, options.resolveFormat(path))
	if err != nil {
		return err
	}

	if w := options.Writer(); w != nil {
		if _, err := w.Write(data); err != nil {
			return errors.WrapIO("write", path, err)
		}
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	if !options.noBackup {
		backup, err := BackupIfExists(path, WithSuffix(options.backupSuffix))
		if err != nil {
			return err
		}
		if backup != "" {
			logger.Info().Str("path", path).Str("backup", backup).Msg("Backed up existing dump")
		}
	}

	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	logger.Info().
		Str("path", path).
		Int("records", len(records)).
		Msg("Dumped records")
	return nil
}

// Load reads records written by Dump.
func Load(path string, opts ...Option) ([]postal.Record, error) {
	options := Defaults().Apply(opts...)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Decode(data, options.resolveFormat(path), path)
}

// Decode parses dump content in the given format. name is used in errors.
func Decode(data []byte, format Format, name string) ([]postal.Record, error) {
	var records []postal.Record
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, errors.WrapParse("yaml", name, err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, errors.WrapParse("json", name, err)
		}
	}
	return records, nil
}

func encode(records []postal.Record, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, errors.WrapParse("yaml", "", err)
		}
		return data, nil
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return nil, errors.WrapParse("json", "", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.NewValidationError("format", format, "unsupported dump format "+format.String())
	}
}

// writeFileAtomic writes data to a temporary sibling of path and renames
// it over path.
func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, bytes.NewReader(data)); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", tmp.Name(), err)
	}
	if err = tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("chmod", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return errors.WrapIO("close", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("rename", tmp.Name(), err)
	}
	return nil
}
