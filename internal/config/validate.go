package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBuild(); err != nil {
		return err
	}
	if err := c.validateLoaders(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBuild() error {
	switch c.Build.Strategy {
	case StrategyPool, StrategySection:
	default:
		return fmt.Errorf("build.strategy: unsupported value %q (want %q or %q)", c.Build.Strategy, StrategyPool, StrategySection)
	}
	if c.Build.Workers < 0 {
		return errors.New("build.workers must be 0 (one per CPU) or positive")
	}
	if c.Build.QueueDepth < 1 {
		return errors.New("build.queue_depth must be positive")
	}
	return nil
}

func (c *Config) validateLoaders() error {
	if c.Loaders.FontSize <= 0 {
		return errors.New("loaders.font_size must be positive")
	}
	if c.Loaders.FontDPI <= 0 {
		return errors.New("loaders.font_dpi must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be 0 (keep forever) or positive")
	}
	return nil
}
