package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"coopscout/internal/config"
	"coopscout/internal/logging"
	"coopscout/internal/pipeline"
	"coopscout/internal/registry"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withStore loads config, acquires the registry, and runs fn. The store lock
// is always released, so one invocation never blocks the next.
func (c *commandContext) withStore(fn func(*config.Config, *registry.Store, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	store, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		if registry.IsCorruption(err) {
			return fmt.Errorf("registry snapshot is damaged and needs manual repair: %w", err)
		}
		return err
	}
	defer store.Close()

	return fn(cfg, store, logger)
}

// withRunner layers a pipeline runner on top of withStore.
func (c *commandContext) withRunner(fn func(*config.Config, *registry.Store, *pipeline.Runner, *slog.Logger) error) error {
	return c.withStore(func(cfg *config.Config, store *registry.Store, logger *slog.Logger) error {
		runner, err := pipeline.New(cfg, store, logger)
		if err != nil {
			return err
		}
		defer runner.Close()
		return fn(cfg, store, runner, logger)
	})
}
