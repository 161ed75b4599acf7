package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/config"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

// ensureConfig loads the config from --config, then the default path, and
// falls back to built-in defaults when neither exists.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, err := loadConfig(strings.TrimSpace(*c.configFlag))
		if err != nil {
			c.configErr = fmt.Errorf("config: %w", err)
			return
		}
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			cfg.LogLevel = level
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = fmt.Errorf("config validation: %w", err)
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// configPathOrDefault names the config file for messages.
func (c *commandContext) configPathOrDefault() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, defaultPath, nil
	}

	return config.Default(), "", nil
}

// setupLogging installs a text slog handler on the command's stderr.
func (c *commandContext) setupLogging(cmd *cobra.Command, level string) {
	if flag := strings.TrimSpace(*c.logLevelFlag); flag != "" {
		level = flag
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: config.ParseLogLevel(level),
	})
	slog.SetDefault(slog.New(handler))
	if c.configPath != "" {
		slog.Debug("config loaded", "path", c.configPath)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
