package store

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/nalin/ethereum-pubsub/internal/pkg/apperr"
	"github.com/nalin/ethereum-pubsub/internal/pkg/applog"
)

const watermarkFileMode fs.FileMode = 0o644

// FileWatermarkStore keeps the watermark in a text file. Writes go to a temp
// file in the same directory which is synced and renamed over the target, so
// readers see either the old or the new height.
//
// A single writer is assumed; there is no file locking.
type FileWatermarkStore struct {
	log  applog.AppLogger
	fs   afero.Fs
	path string
}

func NewFileWatermarkStore(log applog.AppLogger, fsys afero.Fs, cfg FileConfig, v *validator.Validate) (*FileWatermarkStore, error) {
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewConfigErr("invalid watermark file config", err)
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileWatermarkStore{log: log, fs: fsys, path: cfg.Path}, nil
}

func (s *FileWatermarkStore) Read(context.Context) (uint64, bool, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperr.NewWatermarkStoreErr("failed to read watermark file", err)
	}

	h, err := parseHeight(string(data))
	if err != nil {
		return 0, false, apperr.NewWatermarkStoreErr("corrupt watermark file "+s.path, err)
	}
	return h, true, nil
}

func (s *FileWatermarkStore) Write(_ context.Context, height uint64) error {
	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+base+".tmp-*")
	if err != nil {
		return apperr.NewWatermarkStoreErr("failed to create temp watermark file", err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, formatHeight(height)); err != nil {
		_ = s.fs.Remove(tmpName)
		return apperr.NewWatermarkStoreErr("failed to write temp watermark file", err)
	}
	// TempFile creates 0600; keep the watermark readable like a plain write would.
	if err := s.fs.Chmod(tmpName, watermarkFileMode); err != nil {
		_ = s.fs.Remove(tmpName)
		return apperr.NewWatermarkStoreErr("failed to set watermark file mode", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		_ = s.fs.Remove(tmpName)
		return apperr.NewWatermarkStoreErr("failed to replace watermark file", err)
	}

	s.log.Trace("Watermark persisted", "path", s.path, "height", height)
	return nil
}

func writeAndSync(f afero.File, content string) error {
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
