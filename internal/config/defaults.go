package config

const (
	defaultLogDir               = "~/.local/share/scribe/logs"
	defaultWorkDir              = "~/.cache/scribe"
	defaultAPIBind              = "127.0.0.1:7620"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultSourceHost           = "youtube-mp3-api.p.rapidapi.com"
	defaultSourceTimeout        = 30
	defaultStoreBucket          = "scribe-audio"
	defaultStoreTimeout         = 120
	defaultEngineTimeout        = 300
	defaultEngineALanguage      = "uz-UZ"
	defaultEngineAModel         = "long"
	defaultEngineBLanguage      = "uzb"
	defaultEngineBModel         = "scribe_v1"
	defaultEditorBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultEditorModel          = "google/gemini-3-flash-preview"
	defaultEditorTimeoutSeconds = 120
	defaultSegmentSeconds       = 150
	defaultMaxAttempts          = 4
	defaultMaxConcurrentJobs    = 2
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:  defaultLogDir,
			WorkDir: defaultWorkDir,
			APIBind: defaultAPIBind,
		},
		Source: Source{
			APIHost:        defaultSourceHost,
			RequestTimeout: defaultSourceTimeout,
		},
		Store: BlobStore{
			Bucket:         defaultStoreBucket,
			RequestTimeout: defaultStoreTimeout,
		},
		EngineA: Engine{
			Language:       defaultEngineALanguage,
			Model:          defaultEngineAModel,
			RequestTimeout: defaultEngineTimeout,
		},
		EngineB: Engine{
			Language:       defaultEngineBLanguage,
			Model:          defaultEngineBModel,
			RequestTimeout: defaultEngineTimeout,
		},
		Editor: Editor{
			BaseURL:        defaultEditorBaseURL,
			Model:          defaultEditorModel,
			TimeoutSeconds: defaultEditorTimeoutSeconds,
		},
		Pipeline: Pipeline{
			SegmentSeconds:    defaultSegmentSeconds,
			MaxAttempts:       defaultMaxAttempts,
			MaxConcurrentJobs: defaultMaxConcurrentJobs,
			FFmpegBinary:      "ffmpeg",
			FFprobeBinary:     "ffprobe",
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
