package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bnema/farmhand/internal/application"
	"github.com/bnema/farmhand/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
		newAccountEnabledCmd(app, "enable", true),
		newAccountEnabledCmd(app, "disable", false),
		newAccountDeleteCmd(app),
		newAccountSetInitDataCmd(app),
	)

	return cmd
}

func newAccountAddCmd(app *app) *cobra.Command {
	var name string
	var phone string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account (the session name is auto-assigned when omitted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := resolveAccountID(cmd.Context(), app, name)
			if err != nil {
				return err
			}

			account, err := app.service.AddAccount(cmd.Context(), application.AddAccountCommand{Name: string(id), Phone: phone})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added account %s (%s)\nnext: fh account set-init-data %s --url URL\n", account.ID, account.Phone, account.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Session name (letters, digits, underscores)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number of the account")
	_ = cmd.MarkFlagRequired("phone")

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := app.service.GetStatusAll(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tPHONE\tSTATE\tINIT DATA")
			for _, status := range statuses {
				state := "enabled"
				if !status.Account.Enabled {
					state = "disabled"
				}
				initData := "missing"
				if status.HasInitData {
					initData = "stored"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", status.Account.ID, status.Account.Phone, state, initData)
			}

			return w.Flush()
		},
	}
}

func newAccountEnabledCmd(app *app, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: fmt.Sprintf("%s an account for farming", capitalize(use)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.AccountID(args[0])
			if err := app.service.SetEnabled(cmd.Context(), application.SetEnabledCommand{ID: id, Enabled: enabled}); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%sd account %s\n", use, id)
			return err
		},
	}
}

func newAccountDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an account with its init data and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.AccountID(args[0])
			if err := app.service.DeleteAccount(cmd.Context(), id); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted account %s\n", id)
			return err
		},
	}
}

func newAccountSetInitDataCmd(app *app) *cobra.Command {
	var data string
	var webAppURL string

	cmd := &cobra.Command{
		Use:   "set-init-data NAME",
		Short: "Store the web app init data (tgWebAppData) used to log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := data
			if webAppURL != "" {
				raw = webAppURL
			}

			id := domain.AccountID(args[0])
			if err := app.service.SetInitData(cmd.Context(), application.SetInitDataCommand{ID: id, Raw: raw}); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stored init data for %s\n", id)
			return err
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "Raw init data (query_id=...&user=...&hash=...)")
	cmd.Flags().StringVar(&webAppURL, "url", "", "Web app URL carrying tgWebAppData")
	cmd.MarkFlagsMutuallyExclusive("data", "url")
	cmd.MarkFlagsOneRequired("data", "url")

	return cmd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
