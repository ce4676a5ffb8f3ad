package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"audiogram/internal/config"
	"audiogram/internal/logging"
	"audiogram/internal/workflow"
)

type commandContext struct {
	configFlag *string
	overrides  config.Overrides

	// managerOptions are appended when building a workflow.Manager.
	managerOptions []workflow.ManagerOption

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, opts ...workflow.ManagerOption) *commandContext {
	return &commandContext{
		configFlag:     configFlag,
		managerOptions: opts,
	}
}

// ensureConfig loads .env, the config file, and the CLI overrides once.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = err
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Apply(c.overrides); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config) (*slog.Logger, error) {
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) manager(cfg *config.Config, logger *slog.Logger, extra ...workflow.ManagerOption) *workflow.Manager {
	opts := append(append([]workflow.ManagerOption{}, extra...), c.managerOptions...)
	return workflow.NewManager(cfg, logger, opts...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
