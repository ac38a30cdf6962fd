package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidconv/internal/config"
	"vidconv/internal/convert"
	"vidconv/internal/deps"
	"vidconv/internal/export"
	"vidconv/internal/history"
	"vidconv/internal/logging"
	"vidconv/internal/media/asset"
)

// commandHooks replaces external tool invocations. Zero values use the real tools.
type commandHooks struct {
	probe   asset.ProbeFunc
	export  export.CommandRunner
	verify  export.Verifier
	version deps.VersionRunner
}

type commandContext struct {
	configFlag *string
	hooks      commandHooks

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, hooks commandHooks) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		hooks:      hooks,
	}
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
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) newLoader(cfg *config.Config, logger *slog.Logger) *asset.Loader {
	return asset.NewLoader(cfg.FFmpeg.FFprobeBinary, logger).WithProbe(c.hooks.probe)
}

// conversionServices bundles a converter with the resources it holds open.
type conversionServices struct {
	converter *convert.Converter
	history   *history.Store
}

func (s *conversionServices) Close() error {
	if s == nil || s.history == nil {
		return nil
	}
	return s.history.Close()
}

func (c *commandContext) newConverter(opts convert.Options) (*conversionServices, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	exporter := export.NewExporter(cfg.FFmpeg.FFmpegBinary, logger).
		WithCommandRunner(c.hooks.export).
		WithVerifier(c.hooks.verify).
		WithTimeout(cfg.ExportTimeout())
	converter := convert.New(c.newLoader(cfg, logger), exporter, opts, logger)

	services := &conversionServices{converter: converter}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		services.history = store
		converter.WithRecorder(store)
	}
	return services, nil
}

func (c *commandContext) conversionOptions() convert.Options {
	cfg := c.config
	if cfg == nil {
		return convert.Options{}
	}
	return convert.Options{
		OutputDir:              cfg.Paths.OutputDir,
		AutoGenerateIdentifier: cfg.Conversion.AutoGenerateIdentifier,
		IgnoreAudioTrack:       cfg.Conversion.IgnoreAudioTrack,
	}
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("conversion history is disabled; set enabled = true under [history]")
	}
	return history.Open(cfg.History.Path)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
