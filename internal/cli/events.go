package cli

import (
	"fmt"
	"time"

	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/models"
	"github.com/spf13/cobra"
)

var (
	eventsType  string
	eventsSince time.Duration
	eventsLimit int
)

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringVar(&eventsType, "type", "", "filter by type (theme.selected, theme.randomized, user.deleted)")
	eventsCmd.Flags().DurationVar(&eventsSince, "since", 0, "only events newer than this, e.g. 24h")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "maximum events to show")
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent theme and user changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		q := db.EventQuery{Limit: eventsLimit}
		if eventsType != "" {
			kind := models.EventType(eventsType)
			q.Type = &kind
		}
		if eventsSince > 0 {
			since := time.Now().Add(-eventsSince)
			q.Since = &since
		}

		recent, err := db.NewEventRepository(database).Recent(ctx, q)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(out, recent)
		}
		if len(recent) == 0 {
			fmt.Fprintln(out, "No events recorded.")
			return nil
		}

		rows := make([][]string, 0, len(recent))
		for _, e := range recent {
			rows = append(rows, []string{
				e.Timestamp.Local().Format(time.DateTime),
				string(e.Type),
				string(e.EntityType) + "/" + e.EntityID,
				string(e.Payload),
			})
		}
		return writeTable(out, []string{"TIME", "TYPE", "ENTITY", "PAYLOAD"}, rows)
	},
}
