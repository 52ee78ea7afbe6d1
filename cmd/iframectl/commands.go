package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Muneebkh2/shopify-iframe-app/internal/api/middleware"
	"github.com/Muneebkh2/shopify-iframe-app/internal/service"
)

func metafieldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metafield",
		Short: "Manage the custom.iframe_url product metafield",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the metafield definition if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			msg, err := a.metafields.Init(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "exists",
		Short: "Report whether the metafield definition exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			exists, err := a.metafields.DefinitionExists(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]bool{"exists": exists})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <product-id> <iframe-url>",
		Short: "Set the iframe URL of one product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			metafields, err := a.metafields.Set(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"success": true, "metafields": metafields})
		},
	})

	return cmd
}

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect products",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every product with its iframe URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			products, err := a.products.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), service.ProductList{Products: products})
		},
	})

	return cmd
}

func themeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Patch or restore the main theme",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "inject",
		Short: "Back up and patch the product snippets and install the stylesheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.theme.Inject(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revert",
		Short: "Restore the snippets from their latest backups and remove the stylesheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.theme.Revert(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	})

	return cmd
}

func backupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Inspect theme snippet backups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List backups of the main theme, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			themeID, records, err := a.theme.Backups(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"themeId": themeID, "backups": records})
		},
	})

	var metaOnly bool
	latest := &cobra.Command{
		Use:   "latest <asset-key>",
		Short: "Print the newest backup of one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			rec, content, err := a.theme.LatestBackup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if metaOnly {
				return printJSON(cmd.OutOrStdout(), rec)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}
	latest.Flags().BoolVar(&metaOnly, "meta", false, "print the backup record instead of the content")
	cmd.AddCommand(latest)

	return cmd
}

func adminKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin-key",
		Short: "Work with the /api admin key",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "hash [key]",
		Short: "Print the bcrypt hash to put in ADMIN_API_KEY_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("ADMIN_API_KEY")
			if len(args) == 1 {
				key = args[0]
			}
			if key == "" {
				return errors.New("pass the key as an argument or set ADMIN_API_KEY")
			}
			hash, err := middleware.HashAPIKey(key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	})

	return cmd
}

func checkAccessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-access",
		Short: "Compare the token's granted scopes with SCOPES",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.access.Check(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("missing scopes: %s", strings.Join(report.Missing, ", "))
			}
			return nil
		},
	}
}
