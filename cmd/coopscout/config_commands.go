package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the [[feeds]] entries to point at your exported feed files.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data_dir:  %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir:   %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "registry:  %s\n", cfg.RegistryPath())

			fmt.Fprintf(out, "\nembeddings: provider=%s model=%s dimensions=%d cache=%t\n",
				cfg.Embeddings.Provider, cfg.Embeddings.Model, cfg.Embeddings.Dimensions, cfg.Embeddings.CacheEnabled)
			fmt.Fprintf(out, "fetch:      timeout=%ds concurrency=%d max_chars=%d\n",
				cfg.Fetch.TimeoutSeconds, cfg.Fetch.Concurrency, cfg.Fetch.MaxContentChars)
			fmt.Fprintf(out, "ranking:    threshold=%.2f workers=%d\n",
				cfg.Ranking.Threshold, cfg.Ranking.Workers)
			fmt.Fprintf(out, "logging:    format=%s level=%s\n",
				cfg.Logging.Format, cfg.Logging.Level)

			if len(cfg.Feeds) == 0 {
				fmt.Fprintln(out, "\nNo feeds configured (add [[feeds]] blocks; see 'coopscout config init').")
				return nil
			}
			fmt.Fprintf(out, "\nfeeds (%d):\n", len(cfg.Feeds))
			for _, feed := range cfg.Feeds {
				fmt.Fprintf(out, "  %-20s %-22s %s (%s)\n", feed.ID, feed.Kind, feed.Path, feed.Format)
			}
			return nil
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Feeds configured: %d\n", len(cfg.Feeds))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
