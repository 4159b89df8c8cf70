package config

const (
	defaultDataDir         = "~/.local/share/coopscout"
	defaultLogDir          = "~/.local/share/coopscout/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultEmbedProvider   = "local"
	defaultEmbedModel      = "text-embedding-3-small"
	defaultEmbedDimensions = 256
	defaultEmbedTimeout    = 30
	defaultFetchTimeout    = 15
	defaultFetchWorkers    = 4
	defaultMaxContentChars = 10000
	defaultUserAgent       = "coopscout/dev"
	defaultRankThreshold   = 0.5
	defaultRankWorkers     = 4
	defaultReviewMaxItems  = 0
	defaultBrowserCommand  = "xdg-open"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Embeddings: Embeddings{
			Provider:       defaultEmbedProvider,
			Model:          defaultEmbedModel,
			Dimensions:     defaultEmbedDimensions,
			TimeoutSeconds: defaultEmbedTimeout,
			CacheEnabled:   true,
		},
		Fetch: Fetch{
			TimeoutSeconds:  defaultFetchTimeout,
			Concurrency:     defaultFetchWorkers,
			MaxContentChars: defaultMaxContentChars,
			UserAgent:       defaultUserAgent,
		},
		Ranking: Ranking{
			Threshold: defaultRankThreshold,
			Workers:   defaultRankWorkers,
		},
		Review: Review{
			MaxItems:       defaultReviewMaxItems,
			BrowserCommand: defaultBrowserCommand,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
