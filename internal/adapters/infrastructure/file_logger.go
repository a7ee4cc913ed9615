package infrastructure

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"todayweather.app/pkg/errors"
)

// FileLoggerAdapter writes JSON log lines to a file, optionally mirrored to another writer
type FileLoggerAdapter struct {
	*SlogLoggerAdapter
	file *os.File
	once sync.Once
}

// NewFileLoggerAdapter opens logPath for appending. When mirror is non-nil every
// line is also written there.
func NewFileLoggerAdapter(logPath, level string, mirror io.Writer) (*FileLoggerAdapter, error) {
	if logPath == "" {
		return nil, errors.NewConfigurationError("log file path cannot be empty", nil)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, errors.NewConfigurationError("failed to create log directory", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.NewConfigurationError("failed to open log file", err)
	}

	var w io.Writer = file
	if mirror != nil {
		w = io.MultiWriter(file, mirror)
	}

	return &FileLoggerAdapter{
		SlogLoggerAdapter: NewSlogLoggerAdapter(w, level, "json"),
		file:              file,
	}, nil
}

// Close closes the underlying file; later calls are no-ops.
func (f *FileLoggerAdapter) Close() error {
	var err error
	f.once.Do(func() {
		err = f.file.Close()
	})
	return err
}
