package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"vidconv/internal/convert"
	"vidconv/internal/testsupport"
)

func TestConvertPrintsOutputPath(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory())

	out, _, err := runCLI(t, fakeTools(t, sourceProbeJSON, nil), env.configPath, "convert", env.source)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != env.cfg.Paths.OutputDir {
		t.Fatalf("expected output under %s, got %q", env.cfg.Paths.OutputDir, path)
	}
	if filepath.Ext(path) != ".mp4" {
		t.Fatalf("expected .mp4 output, got %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	out, _, err = runCLI(t, commandHooks{}, env.configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "Completed")
	requireContains(t, out, filepath.Base(path))
}

func TestConvertTimestampName(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, fakeTools(t, sourceProbeJSON, nil), env.configPath, "convert", "--timestamp-name", env.source)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	name := filepath.Base(strings.TrimSpace(out))
	if !regexp.MustCompile(`^\d+\.\d{9}\.mp4$`).MatchString(name) {
		t.Fatalf("expected timestamp file name, got %q", name)
	}
}

func TestConvertReportsExportFailure(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, fakeTools(t, sourceProbeJSON, errors.New("ffmpeg exited 1")), env.configPath, "convert", env.source)
	if !errors.Is(err, convert.ErrExport) {
		t.Fatalf("expected ErrExport, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output path, got %q", out)
	}
	entries, err := os.ReadDir(env.cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir, found %d entries", len(entries))
	}
}

func TestConvertRejectsSourceWithoutVideo(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, fakeTools(t, audioOnlyProbeJSON, nil), env.configPath, "convert", env.source)
	if !errors.Is(err, convert.ErrVideoTrackNotAvailable) {
		t.Fatalf("expected ErrVideoTrackNotAvailable, got %v", err)
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, fakeTools(t, sourceProbeJSON, nil), env.configPath, "convert", "--format", "avi", env.source)
	if !errors.Is(err, convert.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProbeRendersTracks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, fakeTools(t, sourceProbeJSON, nil), env.configPath, "probe", env.source)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "Duration: 0:00:10.000")
	requireContains(t, out, "Size:     24 MiB")
	requireContains(t, out, "Bitrate:  12.5 Mbit/s")
	requireContains(t, out, "Streams:  1 video, 1 audio")
	requireContains(t, out, "Video")
	requireContains(t, out, "h264")
	requireContains(t, out, "Audio")
	requireContains(t, out, "0:00:09.980")
}

func TestHistoryRequiresEnabledLedger(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, commandHooks{}, env.configPath, "history", "list")
	if err == nil || !strings.Contains(err.Error(), "history is disabled") {
		t.Fatalf("expected disabled history error, got %v", err)
	}
}

func TestHistoryClear(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory())
	hooks := fakeTools(t, sourceProbeJSON, nil)

	if _, _, err := runCLI(t, hooks, env.configPath, "convert", env.source); err != nil {
		t.Fatalf("convert: %v", err)
	}
	out, _, err := runCLI(t, hooks, env.configPath, "history", "clear")
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 conversion(s)")

	out, _, err = runCLI(t, hooks, env.configPath, "history", "list")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	requireContains(t, out, "No conversions recorded")
}

func TestDoctorReportsToolVersions(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, _ := runCLI(t, fakeTools(t, sourceProbeJSON, nil), env.configPath, "doctor")
	requireContains(t, out, "== Environment ==")
	requireContains(t, out, "Output directory:")
	requireContains(t, out, "[INFO] 7.1")
}

func TestDoctorListsMissingDependencies(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.FFmpeg.FFprobeBinary = "vidconv-absent-ffprobe"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, fakeTools(t, sourceProbeJSON, nil), env.configPath, "doctor")
	if err == nil || !strings.Contains(err.Error(), "problem(s)") {
		t.Fatalf("expected doctor to report problems, got %v", err)
	}
	requireContains(t, out, "Missing dependencies:")
	requireContains(t, out, "[ERROR] FFprobe (vidconv-absent-ffprobe)")
	if strings.Contains(out, "All checks passed") {
		t.Fatalf("unexpected success summary in %q", out)
	}
}

func TestWatchRequiresInbox(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, commandHooks{}, env.configPath, "watch")
	if err == nil || !strings.Contains(err.Error(), "no inbox directory") {
		t.Fatalf("expected missing inbox error, got %v", err)
	}
}

func TestWatchRejectsInboxInsideOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, dir := range []string{env.cfg.Paths.OutputDir, filepath.Join(env.cfg.Paths.OutputDir, "drop")} {
		_, _, err := runCLI(t, commandHooks{}, env.configPath, "watch", "--dir", dir)
		if err == nil || !strings.Contains(err.Error(), "must not be inside paths.output_dir") {
			t.Fatalf("watch --dir %s: expected inbox/output overlap error, got %v", dir, err)
		}
	}
}

func TestInboxHandlerWaitsForExport(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistory())
	hooks := fakeTools(t, sourceProbeJSON, nil)
	write := hooks.export
	hooks.export = func(ctx context.Context, name string, args ...string) error {
		time.Sleep(50 * time.Millisecond)
		return write(ctx, name, args...)
	}

	configPath := env.configPath
	cmdCtx := newCommandContext(&configPath, hooks)
	if _, err := cmdCtx.ensureConfig(); err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}
	services, err := cmdCtx.newConverter(cmdCtx.conversionOptions())
	if err != nil {
		t.Fatalf("newConverter: %v", err)
	}

	if err := inboxHandler(services.converter, convert.FormatMP4)(context.Background(), env.source); err != nil {
		t.Fatalf("handler: %v", err)
	}
	entries, err := os.ReadDir(env.cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".mp4" {
		t.Fatalf("expected the export to be finished when the handler returns, got %v", entries)
	}

	// Closing right after the handler must not drop the final status.
	if err := services.Close(); err != nil {
		t.Fatalf("close services: %v", err)
	}
	store := testsupport.MustOpenHistory(t, env.cfg)
	recorded, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(recorded) != 1 || recorded[0].Status != "completed" {
		t.Fatalf("expected one completed entry, got %#v", recorded)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, commandHooks{}, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.cfg.Paths.OutputDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, commandHooks{}, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, commandHooks{}, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestMimeTypeForPath(t *testing.T) {
	cases := map[string]string{
		"/a/clip.MOV":   "video/quicktime",
		"clip.mp4":      "video/mp4",
		"file:///x.m4v": "video/x-m4v",
		"notes.txt":     "",
	}
	for in, want := range cases {
		if got := mimeTypeForPath(in); got != want {
			t.Errorf("mimeTypeForPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := formatClock(3723456789000); got != "1:02:03.457" {
		t.Fatalf("unexpected clock %q", got)
	}
}

func TestRenderStatusLine(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "binary not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] binary not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
	colored := renderStatusLine("FFmpeg", statusOK, "", true)
	if !strings.HasPrefix(colored, ansiGreen) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected green status line, got %q", colored)
	}
}

func TestDisplayLabel(t *testing.T) {
	cases := map[string]string{"video": "Video", "completed": "Completed", "": "-", "not_found": "Not Found"}
	for in, want := range cases {
		if got := displayLabel(in); got != want {
			t.Errorf("displayLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}
