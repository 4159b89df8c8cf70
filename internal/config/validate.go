package config

import (
	"errors"
	"fmt"
	"strings"

	"coopscout/internal/sources"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFeeds(); err != nil {
		return err
	}
	if err := c.validateEmbeddings(); err != nil {
		return err
	}
	if err := c.validateRanking(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFeeds() error {
	seen := make(map[string]struct{}, len(c.Feeds))
	for i, feed := range c.Feeds {
		if feed.ID == "" {
			return fmt.Errorf("feeds[%d].id must be set", i)
		}
		if _, dup := seen[feed.ID]; dup {
			return fmt.Errorf("feeds[%d].id %q is duplicated", i, feed.ID)
		}
		seen[feed.ID] = struct{}{}

		if _, ok := sources.ParseKind(feed.Kind); !ok {
			kinds := make([]string, 0, len(sources.AllKinds()))
			for _, k := range sources.AllKinds() {
				kinds = append(kinds, string(k))
			}
			return fmt.Errorf("feeds[%d].kind %q is unknown (expected one of %s)", i, feed.Kind, strings.Join(kinds, ", "))
		}
		if feed.Path == "" {
			return fmt.Errorf("feeds[%d].path must be set", i)
		}
		switch feed.Format {
		case "csv", "json":
		default:
			return fmt.Errorf("feeds[%d].format %q is unknown (expected csv or json)", i, feed.Format)
		}
		if feed.Fields.Name == "" {
			return fmt.Errorf("feeds[%d].fields.name must be set", i)
		}
	}
	return nil
}

func (c *Config) validateEmbeddings() error {
	switch c.Embeddings.Provider {
	case "local":
	case "openai", "http":
		if c.Embeddings.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/coopscout/config.toml"
			}
			return fmt.Errorf("embeddings.api_key is required for provider %q. Set COOPSCOUT_EMBED_API_KEY env var or edit %s (create with 'coopscout config init')", c.Embeddings.Provider, defaultPath)
		}
	default:
		return fmt.Errorf("embeddings.provider %q is unknown (expected local, openai, or http)", c.Embeddings.Provider)
	}
	return nil
}

func (c *Config) validateRanking() error {
	if c.Ranking.Threshold < -1 || c.Ranking.Threshold > 1 {
		return errors.New("ranking.threshold must be between -1 and 1")
	}
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.MinScore < -1 || c.Review.MinScore > 1 {
		return errors.New("review.min_score must be between -1 and 1")
	}
	return nil
}
