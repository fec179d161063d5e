package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/app"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/store"
)

func newWatchlistCommand(resolve configResolver) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist <username>",
		Short: "Print a user's watchlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolve(cmd)
			if err != nil {
				return err
			}

			db, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			return printWatchlist(cmd.Context(), cmd.OutOrStdout(), db, args[0])
		},
	}
}

func printWatchlist(ctx context.Context, out io.Writer, db store.Store, username string) error {
	user, err := db.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no user named %q", username)
		}
		return err
	}

	entries, err := db.Watchlist().ListWatchlist(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(out, "%s has nothing on their watchlist\n", user.Username)
		return err
	}

	_, err = fmt.Fprintln(out, renderWatchlist(entries))
	return err
}

func renderWatchlist(entries []domain.WatchlistEntry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Type", "Released", "Rating", "Added"})

	for i, e := range entries {
		tw.AppendRow(table.Row{
			i + 1,
			e.Movie.Title,
			string(e.Movie.MediaType),
			e.Movie.ReleaseDate,
			strconv.FormatFloat(e.Movie.VoteAverage, 'f', 1, 64),
			e.AddedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}
