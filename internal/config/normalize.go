package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBuild()
	c.normalizeLoaders()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBuild() {
	c.Build.Strategy = strings.ToLower(strings.TrimSpace(c.Build.Strategy))
	if c.Build.Strategy == "" {
		c.Build.Strategy = defaultStrategy
	}
	if c.Build.QueueDepth == 0 {
		c.Build.QueueDepth = defaultQueueDepth
	}
	patterns := c.Build.Ignore[:0]
	for _, p := range c.Build.Ignore {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	c.Build.Ignore = patterns
}

func (c *Config) normalizeLoaders() {
	if c.Loaders.FontSize == 0 {
		c.Loaders.FontSize = defaultFontSize
	}
	if c.Loaders.FontDPI == 0 {
		c.Loaders.FontDPI = defaultFontDPI
	}
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv(logLevelEnv); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
