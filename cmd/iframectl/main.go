package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "iframectl",
		Short:         "Manage the product iframe metafield and theme patches from the shell",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&useDB, "db", false, "read the offline session from Postgres instead of using PRIVATE_APP_TOKEN only")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(metafieldCmd())
	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(themeCmd())
	rootCmd.AddCommand(backupsCmd())
	rootCmd.AddCommand(adminKeyCmd())
	rootCmd.AddCommand(checkAccessCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
