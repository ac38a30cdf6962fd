package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateConversion() error {
	switch c.Conversion.Format {
	case "mp4":
	default:
		return fmt.Errorf("conversion.format: unsupported value %q (supported: mp4)", c.Conversion.Format)
	}
	if c.Conversion.ExportTimeoutSeconds < 0 {
		return errors.New("conversion.export_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.FFmpegBinary == "" {
		return errors.New("ffmpeg.ffmpeg_binary must be set")
	}
	if c.FFmpeg.FFprobeBinary == "" {
		return errors.New("ffmpeg.ffprobe_binary must be set")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history.enabled is true")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if err := c.ValidateInbox(); err != nil {
		return err
	}
	if len(c.Watch.Extensions) == 0 {
		return errors.New("watch.extensions must include at least one extension")
	}
	return ensurePositiveMap(map[string]int{
		"watch.settle_millis": c.Watch.SettleMillis,
	})
}

// ValidateInbox rejects an inbox that is, or lies inside, the output
// directory. Finished exports land in the output directory and would be
// picked up by the watcher again.
func (c *Config) ValidateInbox() error {
	inbox := strings.TrimSpace(c.Paths.InboxDir)
	if inbox == "" {
		return nil
	}
	output := strings.TrimSpace(c.Paths.OutputDir)
	if output == "" {
		return nil
	}
	if isWithin(resolveLinks(output), resolveLinks(inbox)) {
		return fmt.Errorf("paths.inbox_dir %q must not be inside paths.output_dir %q", inbox, output)
	}
	return nil
}

func resolveLinks(path string) string {
	path = filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func isWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
