// cmd/beatmarket/users_command.go
package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts with their wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			market, err := ctx.openMarket(cmd.Context())
			if err != nil {
				return err
			}

			market.Lock()
			users := market.Identity.SearchUsers(search, "")
			rows := make([][]string, 0, len(users))
			for _, user := range users {
				rows = append(rows, []string{
					user.ID,
					user.Email,
					user.Name,
					string(user.Role),
					user.WalletRub.StringFixed(2),
					user.WalletUsd.StringFixed(2),
					strconv.Itoa(len(market.Catalog.SellerBeats(user.ID))),
					strconv.Itoa(len(market.Cart.BuyerPurchases(user.ID))),
					humanize.Time(user.CreatedAt),
				})
			}
			current := market.Identity.CurrentUser()
			market.Unlock()

			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found")
				return nil
			}

			headers := []string{"ID", "Email", "Name", "Role", "RUB", "USD", "Beats", "Purchases", "Joined"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))

			if current != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Active session: %s (%s)\n", current.Name, current.Email)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Active session: none")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Match name or email")
	return cmd
}
