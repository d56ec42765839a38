package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/identiq/identiq/internal/db"
	"github.com/identiq/identiq/internal/events"
	"github.com/identiq/identiq/internal/logging"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCountCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersDistributionCmd)
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage dashboard users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		users, err := db.NewUserRepository(database).List(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(out, users)
		}
		if len(users) == 0 {
			fmt.Fprintln(out, "No users found.")
			return nil
		}

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.ID, u.Name, u.ThemeName, swatch(u.ThemeColor)})
		}
		return writeTable(out, []string{"ID", "NAME", "THEME", "COLOR"}, rows)
	},
}

var usersCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the user count shown on the dashboard",
	Long: `Print the user count the dashboard displays. Reads dashboard.user_count_url
when configured, otherwise counts local users; falls back to
dashboard.fallback_user_count when the count is unavailable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		count := newUserCountFetcher(GetConfig(), db.NewUserRepository(database)).Fetch(ctx)
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), map[string]int{"count": count})
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.Itoa(count))
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		user, err := db.NewUserRepository(database).Delete(ctx, args[0])
		if err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				return &PreflightError{
					Message:  fmt.Sprintf("user %q not found", args[0]),
					NextStep: "identiq users list",
				}
			}
			return err
		}

		if err := events.LogUserDeleted(ctx, db.NewEventRepository(database), user.ID, user.Name); err != nil {
			logging.Component("users").Warn().Err(err).Str("user_id", user.ID).Msg("failed to record user deletion")
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), user)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s (%s)\n", user.Name, user.ID)
		return nil
	},
}

var usersDistributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Show how many users use each theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		shares, err := db.NewUserRepository(database).ThemeDistribution(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(out, shares)
		}
		if len(shares) == 0 {
			fmt.Fprintln(out, "No users found.")
			return nil
		}

		total := 0
		for _, s := range shares {
			total += s.Value
		}
		rows := make([][]string, 0, len(shares))
		for _, s := range shares {
			rows = append(rows, []string{
				s.Name,
				swatch(s.Color),
				strconv.Itoa(s.Value),
				formatPercent(float64(s.Value) / float64(total)),
			})
		}
		return writeTable(out, []string{"THEME", "COLOR", "USERS", "SHARE"}, rows)
	},
}
