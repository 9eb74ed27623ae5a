// cmd/beatmarket/beats_command.go
package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/javajoker/beatmarket/internal/models"
	"github.com/javajoker/beatmarket/internal/services"
)

func newBeatsCommand(ctx *commandContext) *cobra.Command {
	var filter services.BeatFilter

	cmd := &cobra.Command{
		Use:   "beats",
		Short: "List beats in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			market, err := ctx.openMarket(cmd.Context())
			if err != nil {
				return err
			}

			market.Lock()
			beats := market.Catalog.ListBeats(filter)
			rows := make([][]string, 0, len(beats))
			for i := range beats {
				rows = append(rows, beatRow(cmd.Context(), market, &beats[i]))
			}
			market.Unlock()

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No beats found")
				return nil
			}

			headers := []string{"ID", "Title", "Seller", "Genre", "BPM", "Key", "RUB", "USD", "Rating", "Plays", "Sales", "Audio", "Added"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "Match title, seller or tags")
	cmd.Flags().StringVarP(&filter.Genre, "genre", "g", "", "Only beats of this genre")
	cmd.Flags().StringVar(&filter.SellerID, "seller", "", "Only beats of this seller id")
	cmd.Flags().StringVar(&filter.Sort, "sort", services.SortNewest, "newest|oldest|price-low|price-high|rating|popular")
	return cmd
}

func beatRow(ctx context.Context, market *services.Marketplace, beat *models.Beat) []string {
	return []string{
		beat.ID,
		beat.Title,
		beat.SellerName,
		beat.Genre,
		strconv.Itoa(beat.BPM),
		beat.Key,
		beat.PriceRub.StringFixed(0),
		beat.PriceUsd.StringFixed(2),
		fmt.Sprintf("%.1f (%d)", beat.Rating, beat.RatingCount),
		humanize.Comma(int64(beat.Plays)),
		humanize.Comma(int64(beat.SalesCount)),
		audioSize(ctx, market, beat.ID),
		humanize.Time(beat.CreatedAt),
	}
}

// audioSize reports the stored payload size, or "remote" for URL-backed audio.
func audioSize(ctx context.Context, market *services.Marketplace, beatID string) string {
	obj, err := market.Catalog.OpenAudio(ctx, beatID, false)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "remote"
	case err != nil:
		return "error"
	default:
		return humanize.Bytes(uint64(obj.Size()))
	}
}
