package config

const (
	defaultConfigPath             = "~/.config/vidconv/config.toml"
	defaultOutputDir              = "~/Documents"
	defaultLogDir                 = "~/.local/share/vidconv/logs"
	defaultHistoryPath            = "~/.local/share/vidconv/history.db"
	defaultFormat                 = "mp4"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultWatchSettleMillis      = 2000
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultAutoGenerateIdentifier = true
)

var defaultWatchExtensions = []string{".mov", ".mp4", ".m4v"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Conversion: Conversion{
			Format:                 defaultFormat,
			AutoGenerateIdentifier: defaultAutoGenerateIdentifier,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		History: History{
			Path: defaultHistoryPath,
		},
		Watch: Watch{
			Extensions:   append([]string(nil), defaultWatchExtensions...),
			SettleMillis: defaultWatchSettleMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
