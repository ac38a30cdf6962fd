package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: " ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for unset command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestFFmpegRequirements(t *testing.T) {
	reqs := FFmpegRequirements("/opt/ffmpeg", "ffprobe")
	if len(reqs) != 2 || reqs[0].Command != "/opt/ffmpeg" || reqs[1].Command != "ffprobe" {
		t.Fatalf("unexpected requirements: %#v", reqs)
	}
	for _, req := range reqs {
		if req.Optional {
			t.Fatalf("%s must be required", req.Name)
		}
	}
}

func TestProbeVersion(t *testing.T) {
	run := func(_ context.Context, binary string) ([]byte, error) {
		return []byte(binary + " version 7.1.1-static https://johnvansickle.com/ffmpeg/ Copyright (c) 2000-2025\nbuilt with gcc 8\n"), nil
	}
	version, err := ProbeVersion(context.Background(), "ffprobe", run)
	if err != nil {
		t.Fatalf("ProbeVersion returned error: %v", err)
	}
	if version != "7.1.1-static" {
		t.Fatalf("unexpected version %q", version)
	}

	garbage := func(context.Context, string) ([]byte, error) { return []byte("hello"), nil }
	if _, err := ProbeVersion(context.Background(), "ffmpeg", garbage); err == nil {
		t.Fatal("expected error for unrecognized output")
	}

	failing := func(context.Context, string) ([]byte, error) { return nil, errors.New("exec: not found") }
	if _, err := ProbeVersion(context.Background(), "ffmpeg", failing); err == nil {
		t.Fatal("expected error when the binary cannot run")
	}
}
