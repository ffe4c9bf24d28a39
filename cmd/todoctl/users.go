package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todo-1m/webclient/internal/app/account"
	"github.com/todo-1m/webclient/internal/remote"
)

func newUsersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			users, err := opts.client().ListUsers(ctx)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				email := u.Email
				if email == "" {
					email = "-"
				}
				rows = append(rows, []string{u.ID.String(), account.DisplayName(u), email})
			}
			return writeTable(cmd.OutOrStdout(), []string{"ID", "NAME", "EMAIL"}, rows)
		},
	}
}

func newWeatherCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "weather <location>",
		Short: "Show the current temperature for a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := strings.Join(args, " ")
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			temp, err := opts.client().Temperature(ctx, location)
			if err != nil {
				return fmt.Errorf("weather for %s: %w", location, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", location, remote.FormatCelsius(temp))
			return err
		},
	}
}
