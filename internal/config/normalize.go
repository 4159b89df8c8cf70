package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFeeds(); err != nil {
		return err
	}
	c.normalizeEmbeddings()
	c.normalizeFetch()
	c.normalizeRanking()
	c.normalizeReview()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeeds() error {
	for i := range c.Feeds {
		feed := &c.Feeds[i]
		feed.ID = strings.TrimSpace(feed.ID)
		feed.Kind = strings.ToLower(strings.TrimSpace(feed.Kind))
		feed.Format = strings.ToLower(strings.TrimSpace(feed.Format))
		if feed.Path != "" {
			expanded, err := expandPath(feed.Path)
			if err != nil {
				return fmt.Errorf("feeds[%d].path: %w", i, err)
			}
			feed.Path = expanded
		}
	}
	return nil
}

func (c *Config) normalizeEmbeddings() {
	c.Embeddings.Provider = strings.ToLower(strings.TrimSpace(c.Embeddings.Provider))
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = defaultEmbedProvider
	}
	c.Embeddings.Model = strings.TrimSpace(c.Embeddings.Model)
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = defaultEmbedModel
	}
	c.Embeddings.BaseURL = strings.TrimSpace(c.Embeddings.BaseURL)
	c.Embeddings.APIKey = strings.TrimSpace(c.Embeddings.APIKey)
	if c.Embeddings.APIKey == "" {
		if value, ok := os.LookupEnv("COOPSCOUT_EMBED_API_KEY"); ok {
			c.Embeddings.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Embeddings.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Embeddings.Dimensions <= 0 {
		c.Embeddings.Dimensions = defaultEmbedDimensions
	}
	if c.Embeddings.TimeoutSeconds <= 0 {
		c.Embeddings.TimeoutSeconds = defaultEmbedTimeout
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	if c.Fetch.Concurrency <= 0 {
		c.Fetch.Concurrency = defaultFetchWorkers
	}
	if c.Fetch.MaxContentChars <= 0 {
		c.Fetch.MaxContentChars = defaultMaxContentChars
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeRanking() {
	if c.Ranking.Threshold == 0 {
		c.Ranking.Threshold = defaultRankThreshold
	}
	if c.Ranking.Workers <= 0 {
		c.Ranking.Workers = defaultRankWorkers
	}
}

func (c *Config) normalizeReview() {
	if c.Review.MaxItems < 0 {
		c.Review.MaxItems = 0
	}
	c.Review.BrowserCommand = strings.TrimSpace(c.Review.BrowserCommand)
	if c.Review.BrowserCommand == "" {
		c.Review.BrowserCommand = defaultBrowserCommand
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
