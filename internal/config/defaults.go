package config

import "syncorbit/internal/anchors"

const (
	defaultMediaRoot        = "~/media"
	defaultDataRoot         = "~/.local/share/syncorbit"
	defaultLogDir           = "~/.local/share/syncorbit/logs"
	defaultAPIBind          = "127.0.0.1:7959"
	defaultAlignerBinary    = "align"
	defaultAlignerTimeout   = 900
	defaultCurveDensity     = anchors.DefaultCurveDensity
	defaultScanWorkers      = 4
	defaultTranscriberURL   = "http://127.0.0.1:8000"
	defaultTranscriberLang  = "en"
	defaultResyncBinary     = "ffs"
	defaultResyncTimeout    = 1200
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// defaultTargetLanguages are the subtitle name suffixes treated as the
// monitored target track.
func defaultTargetLanguages() []string {
	return []string{"fi", "fin"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaRoot: defaultMediaRoot,
			DataRoot:  defaultDataRoot,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Analysis: Analysis{
			AlignerBinary:   defaultAlignerBinary,
			TimeoutSeconds:  defaultAlignerTimeout,
			CurveDensity:    defaultCurveDensity,
			TargetLanguages: defaultTargetLanguages(),
			Thresholds:      anchors.DefaultThresholds(),
		},
		Workflow: Workflow{
			ScanWorkers: defaultScanWorkers,
		},
		Transcriber: Transcriber{
			URL:      defaultTranscriberURL,
			Language: defaultTranscriberLang,
		},
		Resync: Resync{
			Binary:         defaultResyncBinary,
			TimeoutSeconds: defaultResyncTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
