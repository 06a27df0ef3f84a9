package main

import (
	"log/slog"
	"strings"
	"sync"

	"ocwrap/internal/config"
	"ocwrap/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Resolved
	configErr  error
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

// ensureConfig resolves configuration once per invocation and builds the
// logger from the resolved logging settings.
func (c *commandContext) ensureConfig() (*config.Resolved, error) {
	c.configOnce.Do(func() {
		var userPath string
		if c.configFlag != nil {
			userPath = strings.TrimSpace(*c.configFlag)
		}

		// Unknown-key warnings during the load itself go through a
		// bootstrap logger with default settings.
		bootstrap, err := logging.New(logging.Options{})
		if err != nil {
			c.configErr = err
			return
		}

		cfg, err := config.Load(config.Options{UserPath: userPath, Logger: bootstrap})
		if err != nil {
			c.configErr = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.configErr = err
			return
		}

		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return logging.NewNop()
}

func (c *commandContext) userConfigPath() (string, error) {
	if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
		return config.ExpandPath(strings.TrimSpace(*c.configFlag))
	}
	return config.UserConfigPath()
}
