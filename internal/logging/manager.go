package logging

import (
	"fmt"

	"linkjd/internal/config"
	"linkjd/internal/logging/adapters"
)

// Manager manages the logging system initialization and configuration
type Manager struct {
	factory *AdapterFactory
	logger  *MultiLogger
}

// NewManager creates a new logging manager
func NewManager() *Manager {
	return &Manager{
		factory: NewAdapterFactory(),
		logger:  NewMultiLogger(),
	}
}

// Initialize initializes the logging system from configuration
func (m *Manager) Initialize(cfg *config.Config) error {
	m.logger.SetLevel(ParseLogLevel(cfg.Logging.Level))

	if len(cfg.Logging.Adapters) > 0 {
		return m.initializeFromAdapters(cfg)
	}

	return m.initializeDefaults(cfg)
}

// initializeFromAdapters builds every enabled adapter listed in the config file
func (m *Manager) initializeFromAdapters(cfg *config.Config) error {
	for _, adapterConfig := range cfg.Logging.Adapters {
		if !adapterConfig.Enabled {
			continue
		}

		adapter, err := m.factory.CreateAdapter(AdapterConfig{
			Name:    adapterConfig.Name,
			Type:    adapterConfig.Type,
			Enabled: adapterConfig.Enabled,
			Options: adapterConfig.Options,
		})
		if err != nil {
			return fmt.Errorf("failed to create adapter %s: %w", adapterConfig.Name, err)
		}

		if err := m.logger.AddAdapter(adapter); err != nil {
			return fmt.Errorf("failed to add adapter %s: %w", adapterConfig.Name, err)
		}
	}

	return nil
}

// initializeDefaults wires a console adapter plus an optional log file from the
// flat logging settings
func (m *Manager) initializeDefaults(cfg *config.Config) error {
	console := adapters.NewStdoutAdapter("console", adapters.StdoutConfig{
		Format: cfg.Logging.Format,
	})
	if err := m.logger.AddAdapter(console); err != nil {
		return fmt.Errorf("failed to add console adapter: %w", err)
	}

	if cfg.Logging.File == "" {
		return nil
	}

	file, err := adapters.NewFileAdapter("file", adapters.FileConfig{
		FilePath:   cfg.Logging.File,
		CreateDirs: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create file adapter: %w", err)
	}
	if err := m.logger.AddAdapter(file); err != nil {
		return fmt.Errorf("failed to add file adapter: %w", err)
	}

	return nil
}

// GetLogger returns the initialized logger
func (m *Manager) GetLogger() Logger {
	return m.logger
}

// Close closes the logging system
func (m *Manager) Close() error {
	if m.logger != nil {
		return m.logger.Close()
	}
	return nil
}

var globalManager *Manager

// InitializeLogging initializes the global logging system
func InitializeLogging(cfg *config.Config) error {
	manager := NewManager()
	if err := manager.Initialize(cfg); err != nil {
		return err
	}
	globalManager = manager
	return nil
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() Logger {
	if globalManager == nil {
		// Fallback to a console logger if not initialized
		manager := NewManager()
		adapter := adapters.NewStdoutAdapter("fallback_console", adapters.StdoutConfig{Format: "text"})
		_ = manager.logger.AddAdapter(adapter)
		globalManager = manager
	}
	return globalManager.GetLogger()
}

// CloseLogging closes the global logging system
func CloseLogging() error {
	if globalManager != nil {
		return globalManager.Close()
	}
	return nil
}

// NewNopLogger returns a logger with no adapters; used where output is unwanted
func NewNopLogger() Logger {
	return NewMultiLogger()
}
