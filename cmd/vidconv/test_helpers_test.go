package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidconv/internal/config"
	"vidconv/internal/media/ffprobe"
	"vidconv/internal/testsupport"
)

const sourceProbeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "start_time": "0.000000", "duration": "10.000000", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "start_time": "0.000000", "duration": "9.980000"}
  ],
  "format": {"filename": "clip.mov", "nb_streams": 2, "duration": "10.000000", "size": "25165824", "bit_rate": "12500000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

const audioOnlyProbeJSON = `{
  "streams": [
    {"index": 0, "codec_name": "aac", "codec_type": "audio", "duration": "4.000000"}
  ],
  "format": {"filename": "voice.m4a", "nb_streams": 1, "duration": "4.000000", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	source     string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	opts = append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("VIDCONV_OUTPUT_DIR", "")
	t.Setenv("VIDCONV_LOG_LEVEL", "")

	configPath := filepath.Join(base, "vidconv.toml")
	writeTestConfig(t, configPath, cfg)

	source := filepath.Join(base, "src", "clip.mov")
	testsupport.WriteClip(t, source, 4096)

	return &cliTestEnv{cfg: cfg, configPath: configPath, source: source}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, hooks commandHooks, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommandWithHooks(hooks)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// fakeTools probes every source as probeJSON and "exports" by writing the
// ffmpeg output argument.
func fakeTools(t *testing.T, probeJSON string, exportErr error) commandHooks {
	t.Helper()
	result, err := ffprobe.Parse([]byte(probeJSON))
	if err != nil {
		t.Fatalf("parse probe fixture: %v", err)
	}
	return commandHooks{
		probe: func(context.Context, string, string) (ffprobe.Result, error) {
			return result, nil
		},
		export: func(_ context.Context, _ string, args ...string) error {
			if exportErr != nil {
				return exportErr
			}
			return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
		},
		verify: func(string, ...string) error { return nil },
		version: func(_ context.Context, binary string) ([]byte, error) {
			return []byte(filepath.Base(binary) + " version 7.1 Copyright (c) 2000-2024\n"), nil
		},
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
