package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"coopscout/internal/config"
	"coopscout/internal/registry"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var stateFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, ok := registry.ParseState(stateFlag)
			if !ok {
				states := make([]string, 0, len(registry.AllStates()))
				for _, s := range registry.AllStates() {
					states = append(states, string(s))
				}
				return fmt.Errorf("unknown state %q (expected one of %s)", stateFlag, strings.Join(states, ", "))
			}

			return ctx.withStore(func(cfg *config.Config, store *registry.Store, logger *slog.Logger) error {
				var entities []registry.Entity
				switch state {
				case registry.StateVerified:
					entities = store.Registry().Verified()
				case registry.StateRejected:
					entities = store.Registry().Rejected()
				default:
					entities = store.Registry().Pending()
				}

				out := cmd.OutOrStdout()
				if len(entities) == 0 {
					fmt.Fprintf(out, "No %s entities.\n", state)
					return nil
				}

				rows := make([][]string, 0, len(entities))
				for _, entity := range entities {
					rows = append(rows, []string{
						shortID(entity.ID),
						entity.Name,
						string(entity.Category),
						entity.Location,
						entity.Website,
						entityScore(entity),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Category", "Location", "Website", "Score"},
					rows,
					5,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&stateFlag, "state", "pending", "Which state to list: pending, verified, or rejected")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
