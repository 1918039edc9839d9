package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type PhotoStaging interface {
	Stage(src, rel string) (StagedFile, error)
}

type StagedFile struct {
	Path     string
	Size     int64
	Checksum string
}

// LocalStaging copies files into a directory tree that mirrors their
// destination keys.
type LocalStaging struct {
	Directory string
}

// Stage copies src to Directory/rel, keeping the original in place along
// with its mode and modification time. An earlier copy at the same path is
// replaced, even when it is read-only.
func (s *LocalStaging) Stage(src, rel string) (StagedFile, error) {
	dst := filepath.Join(s.Directory, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return StagedFile{}, err
	}

	in, err := os.Open(src)
	if err != nil {
		return StagedFile{}, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return StagedFile{}, err
	}

	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return StagedFile{}, err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return StagedFile{}, err
	}

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(out, h), in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return StagedFile{}, fmt.Errorf("copy to staging: %w", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return StagedFile{}, err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return StagedFile{}, err
	}

	return StagedFile{
		Path:     dst,
		Size:     n,
		Checksum: strconv.FormatUint(h.Sum64(), 16),
	}, nil
}
