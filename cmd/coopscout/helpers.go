package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"coopscout/internal/pipeline"
	"coopscout/internal/registry"
	"coopscout/internal/similarity"
)

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// newProgress returns a pipeline progress callback backed by a terminal
// progress bar, or nil when stdout is not a terminal.
func newProgress() pipeline.Progress {
	if !stdoutIsTerminal() {
		return nil
	}

	var bar *progressbar.ProgressBar
	var current string
	return func(stage string, done, total int) {
		if stage != current {
			if bar != nil {
				_ = bar.Finish()
			}
			current = stage
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(stage),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSetWidth(30),
			)
		}
		if bar != nil {
			_ = bar.Set(done)
		}
	}
}

func formatScore(item similarity.Ranked) string {
	if !item.Scored {
		return "-"
	}
	return strconv.FormatFloat(item.Score, 'f', 3, 64)
}

func entityScore(entity registry.Entity) string {
	if entity.Score == nil {
		return "-"
	}
	return strconv.FormatFloat(*entity.Score, 'f', 3, 64)
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value*100)
}
