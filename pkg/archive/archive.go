// Package archive pulls individual members out of the Japan Post zip
// archives into a working directory.
package archive

import (
	"archive/zip"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/zip2addr/zip2addr/pkg/constants"
	"github.com/zip2addr/zip2addr/pkg/errors"
)

// Extract writes the member named memberName from the zip archive at
// archivePath into outputDir, preserving the member's relative path.
// outputDir and any missing parents are created. No other member is touched.
//
// The returned error wraps errors.ErrArchiveNotFound, errors.ErrMemberNotFound
// or errors.ErrCorruptArchive for the respective failures.
func Extract(archivePath, outputDir, memberName string) error {
	_, err := ExtractFile(archivePath, outputDir, memberName)
	return err
}

// ExtractFile is Extract returning the path of the written file.
func ExtractFile(archivePath, outputDir, memberName string) (string, error) {
	if _, err := os.Stat(archivePath); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", errors.NewArchiveError(errors.ErrArchiveNotFound, archivePath, memberName, nil)
		}
		return "", errors.WrapIO("stat", archivePath, err)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", errors.NewArchiveError(errors.ErrCorruptArchive, archivePath, memberName, err)
	}
	defer func() { _ = zr.Close() }()

	member := findMember(&zr.Reader, memberName)
	if member == nil {
		return "", errors.NewArchiveError(errors.ErrMemberNotFound, archivePath, memberName, nil)
	}

	target, err := targetPath(outputDir, member.Name)
	if err != nil {
		return "", errors.NewArchiveError(errors.ErrCorruptArchive, archivePath, memberName, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", filepath.Dir(target), err)
	}

	if err := copyMember(archivePath, member, target); err != nil {
		return "", err
	}
	return target, nil
}

// ExtractAll extracts memberNames[i] from archivePaths[i] into outputDir,
// stopping at the first failure.
func ExtractAll(archivePaths []string, outputDir string, memberNames []string) ([]string, error) {
	if len(archivePaths) != len(memberNames) {
		return nil, errors.NewValidationError("memberNames", len(memberNames),
			fmt.Sprintf("got %d archives but %d member names", len(archivePaths), len(memberNames)))
	}

	written := make([]string, 0, len(archivePaths))
	for i, archivePath := range archivePaths {
		target, err := ExtractFile(archivePath, outputDir, memberNames[i])
		if err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// findMember looks up a regular file member by exact name.
func findMember(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name && !f.FileInfo().IsDir() {
			return f
		}
	}
	return nil
}

// targetPath resolves a member name below outputDir, refusing names that
// would escape it.
func targetPath(outputDir, name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("member path %q escapes the output directory", name)
	}
	return filepath.Join(outputDir, filepath.FromSlash(clean)), nil
}

// copyMember streams member into target. A partially written target is
// removed when the copy fails. Failures reading the member are reported as a
// corrupt archive; failures on the target side are plain IO errors.
func copyMember(archivePath string, member *zip.File, target string) (err error) {
	rc, err := member.Open()
	if err != nil {
		return errors.NewArchiveError(errors.ErrCorruptArchive, archivePath, member.Name, err)
	}
	defer func() { _ = rc.Close() }()

	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", target, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.WrapIO("close", target, cerr)
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	src := &memberReader{r: rc}
	if _, err = io.Copy(f, src); err != nil {
		if src.err != nil {
			return errors.NewArchiveError(errors.ErrCorruptArchive, archivePath, member.Name, src.err)
		}
		return errors.WrapIO("write", target, err)
	}
	return nil
}

// memberReader remembers the first read error so copy failures can be
// attributed to the archive or the target.
type memberReader struct {
	r   io.Reader
	err error
}

func (m *memberReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	if err != nil && err != io.EOF && m.err == nil {
		m.err = err
	}
	return n, err
}
