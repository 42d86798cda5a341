package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/backend"
	"github.com/ByLCY/cardstudio/normalize"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search backend content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			coll, err := backend.ParseCollection(collection)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			records, err := svc.backend.Search(cmd.Context(), query, coll)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No results for %q\n", query)
				return nil
			}
			norm := normalize.New(svc.log)
			rows := make([][]string, 0, len(records))
			for _, raw := range records {
				rec, err := norm.Normalize(raw)
				if err != nil {
					svc.log.WithError(err).Debug("skipping search result")
					continue
				}
				rows = append(rows, []string{rec.ID, string(rec.Kind), rec.Title, rec.Category})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Kind", "Title", "Category"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "all", "Collection to search (recipes, posts, ingredients, all)")
	return cmd
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a backend token",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(username) == "" {
				return fmt.Errorf("--username is required")
			}
			fmt.Fprint(out, "Password: ")
			password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && password == "" {
				return fmt.Errorf("read password: %w", err)
			}
			session, err := svc.backend.Login(cmd.Context(), username, strings.TrimRight(password, "\r\n"))
			if err != nil {
				return err
			}
			ok, err := svc.backend.WithToken(session.Token).Authorize(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLogged in as %s (studio access: %s)\n", session.DisplayName, yesNo(ok))
			fmt.Fprintf(out, "export CARDSTUDIO_BACKEND_TOKEN=%s\n", session.Token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account email or username")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
