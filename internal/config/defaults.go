package config

const (
	defaultLibraryDir     = "~/music"
	defaultDataDir        = "~/.local/share/cratescan"
	defaultLogDir         = "~/.local/share/cratescan/logs"
	defaultDeezerBaseURL  = "https://api.deezer.com"
	defaultRequestTimeout = 10
	defaultRetryAttempts  = 2
	defaultRetryDelayMS   = 500
	defaultScanWorkers    = 4
	defaultArtworkName    = "folder.jpg"
	defaultArtworkTimeout = 30
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Deezer: Deezer{
			BaseURL:        defaultDeezerBaseURL,
			RequestTimeout: defaultRequestTimeout,
			RetryAttempts:  defaultRetryAttempts,
			RetryDelayMS:   defaultRetryDelayMS,
		},
		Scan: Scan{
			Workers:     defaultScanWorkers,
			RecordTypes: []string{"album"},
			ExcludeDirs: []string{"@eaDir", ".stfolder", ".stversions", "lost+found"},
		},
		Artwork: Artwork{
			Enabled:  true,
			Filename: defaultArtworkName,
			Timeout:  defaultArtworkTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
