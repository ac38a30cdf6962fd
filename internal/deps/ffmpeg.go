package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// FFmpegRequirements lists the media tools conversions shell out to.
func FFmpegRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Required for passthrough export",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBinary,
			Description: "Required for source inspection",
		},
	}
}

// VersionRunner executes `<binary> -version` and returns its output.
type VersionRunner func(ctx context.Context, binary string) ([]byte, error)

// ProbeVersion returns the version token reported by an ffmpeg-family tool,
// e.g. "7.1" from "ffmpeg version 7.1 Copyright ...".
func ProbeVersion(ctx context.Context, binary string, run VersionRunner) (string, error) {
	if run == nil {
		run = defaultVersionRunner
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := run(ctx, binary)
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	firstLine, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	fields := strings.Fields(firstLine)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "version" {
			return fields[i+1], nil
		}
	}
	return "", fmt.Errorf("%s -version: unrecognized output %q", binary, firstLine)
}

func defaultVersionRunner(ctx context.Context, binary string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, "-version").Output()
}
