package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/shopping-list/internal/client"
	"github.com/sakif/shopping-list/internal/view"
)

// listsCommand loads the overview through the client sync layer and prints
// it, optionally with the items of every list under a filter.
func listsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lists",
		Short: "Shows the shopping lists as the client sees them",
		RunE: func(cmd *cobra.Command, args []string) error {
			useMock, _ := cmd.Flags().GetBool("mock")
			user, _ := cmd.Flags().GetString("user")
			filterName, _ := cmd.Flags().GetString("filter")
			showItems, _ := cmd.Flags().GetBool("items")

			filter, err := view.ParseFilter(filterName)
			if err != nil {
				return err
			}
			if user == "" {
				user = a.cfg.Client.User
			}

			cfg := *a.cfg
			cfg.Client.UseMock = cfg.Client.UseMock || useMock
			store := client.New(&cfg)

			overview := view.NewOverview(store, user)
			if err := overview.Load(cmd.Context()); err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(out, "ID\tNAME\tOWNER\tMEMBERS\tITEMS\tDELETABLE")
			for _, l := range overview.Lists() {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d\t%t\n",
					l.ID, l.Name, l.Owner, strings.Join(l.Members, ","), len(l.Items), overview.CanDelete(l))
				if !showItems {
					continue
				}
				for _, it := range view.FilterItems(l.Items, filter) {
					mark := " "
					if it.Done {
						mark = "x"
					}
					fmt.Fprintf(out, "\t  [%s] %s\t\t\t\t\n", mark, it.Name)
				}
			}
			return out.Flush()
		},
	}

	cmd.Flags().Bool("mock", false, "Use the in-memory client store instead of the mock server")
	cmd.Flags().String("user", "", "Current user (default: CLIENT_USER)")
	cmd.Flags().String("filter", string(view.FilterAll), "Item filter: all, done or undone")
	cmd.Flags().Bool("items", false, "Also print each list's items")

	return cmd
}
