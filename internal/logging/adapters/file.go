package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"linkjd/internal/logging/types"
)

// FileAdapter writes JSON log lines to a size-rotated file
type FileAdapter struct {
	name   string
	config FileConfig
	writer *lumberjack.Logger
	log    *logrus.Logger
	mu     sync.Mutex
}

// FileConfig represents configuration for the file adapter
type FileConfig struct {
	FilePath   string `yaml:"file_path"`   // path to log file
	Format     string `yaml:"format"`      // json or text
	MaxSizeMB  int    `yaml:"max_size_mb"` // megabytes before rotation
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"` // max number of backup files to keep
	Compress   bool   `yaml:"compress"`    // gzip rotated files
	CreateDirs bool   `yaml:"create_dirs"` // create parent directories if they don't exist
}

// NewFileAdapter creates a new file adapter
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file_path is required for file adapter")
	}
	if config.MaxSizeMB <= 0 {
		config.MaxSizeMB = 50
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 10
	}
	if config.Format == "" {
		config.Format = "json"
	}

	if config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directories: %w", err)
		}
	}

	writer := &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSizeMB,
		MaxAge:     config.MaxAgeDays,
		MaxBackups: config.MaxBackups,
		Compress:   config.Compress,
	}

	return &FileAdapter{
		name:   name,
		config: config,
		writer: writer,
		log:    newLogrus(writer, config.Format, false),
	}, nil
}

// Write writes a log entry to the file
func (a *FileAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return writeEntry(a.log, entry)
}

// Close closes the current log file
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writer.Close()
}

// Name returns the name of the adapter
func (a *FileAdapter) Name() string {
	return a.name
}
