// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var registryPath string

	cmd := &cobra.Command{
		Use:   "registry-updater",
		Short: "Manage the trusted marketplace registry",
		Long: `registry-updater edits the JSON registry of marketplaces whose listings
earn the trusted score bonus and the verified badge.

Keywords are matched case-insensitively against a listing's source name.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if !cmd.Flags().Changed("path") {
				if env := os.Getenv("TRUST_REGISTRY_PATH"); env != "" {
					registryPath = env
				}
			}
		},
	}
	cmd.PersistentFlags().StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	cmd.AddCommand(newAddCmd(&registryPath))
	cmd.AddCommand(newRemoveCmd(&registryPath))
	cmd.AddCommand(newListCmd(&registryPath))
	cmd.AddCommand(newValidateCmd(&registryPath))

	return cmd
}

func newAddCmd(path *string) *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:     "add <keyword>",
		Short:   "Add a trusted marketplace keyword",
		Example: `  registry-updater add nykaa --display-name "Nykaa Fashion"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := addMarketplace(*path, args[0], displayName); err != nil {
				return fmt.Errorf("error adding marketplace: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added marketplace: %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (e.g., Nykaa Fashion)")
	return cmd
}

func newRemoveCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <keyword>",
		Short:   "Remove a trusted marketplace keyword",
		Example: `  registry-updater remove tata`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := removeMarketplace(*path, args[0]); err != nil {
				return fmt.Errorf("error removing marketplace: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed marketplace: %s\n", args[0])
			return nil
		},
	}
}

func newListCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trusted marketplaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listMarketplaces(cmd.OutOrStdout(), *path)
		},
	}
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := validateRegistry(*path)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d marketplaces.\n", n)
			return nil
		},
	}
}
