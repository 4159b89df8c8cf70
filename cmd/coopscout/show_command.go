package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
	"coopscout/internal/registry"
	"coopscout/internal/webfetch"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one registry entity in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *registry.Store, logger *slog.Logger) error {
				entity, state, ok := lookup(store.Registry(), args[0])
				if !ok {
					return fmt.Errorf("no entity matches %q", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n", entity.Name)
				fmt.Fprintf(out, "  id:         %s\n", entity.ID)
				fmt.Fprintf(out, "  state:      %s\n", state)
				fmt.Fprintf(out, "  category:   %s\n", entity.Category)
				if entity.Location != "" {
					fmt.Fprintf(out, "  location:   %s\n", entity.Location)
				}
				if entity.Website != "" {
					fmt.Fprintf(out, "  website:    %s\n", entity.Website)
				}
				fmt.Fprintf(out, "  sources:    %s\n", strings.Join(entity.Sources, ", "))
				fmt.Fprintf(out, "  provenance: %s\n", entity.Provenance)
				if entity.Score != nil {
					fmt.Fprintf(out, "  score:      %.3f\n", *entity.Score)
				}
				if entity.ContentUnavailable {
					fmt.Fprintln(out, "  content:    unavailable")
				}
				if entity.RejectReason != "" {
					fmt.Fprintf(out, "  reason:     %s\n", entity.RejectReason)
				}
				fmt.Fprintf(out, "  created:    %s\n", entity.CreatedAt.Format(time.RFC3339))
				if entity.DecidedAt != nil {
					fmt.Fprintf(out, "  decided:    %s\n", entity.DecidedAt.Format(time.RFC3339))
				}
				if entity.Snippet != "" {
					fmt.Fprintf(out, "\n%s\n", webfetch.Truncate(entity.Snippet, 500))
				}
				return nil
			})
		},
	}
}

// lookup resolves an exact ID first, then a unique ID prefix, so list's
// shortened IDs work as show arguments.
func lookup(reg *registry.Registry, key string) (registry.Entity, registry.State, bool) {
	if entity, state, ok := reg.Get(key); ok {
		return entity, state, true
	}

	var found registry.Entity
	var foundState registry.State
	matches := 0
	for _, entity := range append(append(reg.Pending(), reg.Verified()...), reg.Rejected()...) {
		if strings.HasPrefix(entity.ID, key) {
			found = entity
			_, foundState, _ = reg.Get(entity.ID)
			matches++
		}
	}
	if matches == 1 {
		return found, foundState, true
	}
	return registry.Entity{}, "", false
}
