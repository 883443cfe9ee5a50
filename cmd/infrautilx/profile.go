package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"infrautilx/internal/config"
	"infrautilx/internal/outputter"
	"infrautilx/internal/profile"
)

func newProfileCmd(ctx context.Context, configPath *string) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage AWS credential profiles",
	}

	newCatalog := func() (*profile.Catalog, error) {
		settings, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		return profile.NewCatalog(settings), nil
	}

	var allAccounts bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all AWS profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := newCatalog()
			if err != nil {
				return err
			}
			profiles := catalog.List(ctx, allAccounts)
			fmt.Print(outputter.RenderProfiles(profiles, catalog.Current()))
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&allAccounts, "all-accounts", "a", false, "Fetch account IDs for all profiles (can be slow)")

	currentCmd := &cobra.Command{
		Use:   "current",
		Short: "Show the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := newCatalog()
			if err != nil {
				return err
			}
			if current := catalog.Current(); current != "" {
				fmt.Printf("Current AWS profile: %s\n", current)
			} else {
				fmt.Println("No AWS profile explicitly set (using default)")
			}
			return nil
		},
	}

	switchCmd := &cobra.Command{
		Use:   "switch <profile>",
		Short: "Switch to the specified profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := newCatalog()
			if err != nil {
				return err
			}
			if !catalog.Switch(ctx, args[0]) {
				return fmt.Errorf("profile '%s' not found", args[0])
			}
			fmt.Printf("Switched to profile: %s\n", args[0])
			fmt.Println("\nTo use this profile in your shell, run:")
			fmt.Printf("  export AWS_PROFILE=%s\n", args[0])
			return nil
		},
	}

	var validateProfile string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate profile credentials",
		// The ❌ line is the user-facing cause; keep cobra from repeating it.
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := newCatalog()
			if err != nil {
				return err
			}
			ok, message := catalog.Validate(ctx, validateProfile)
			if !ok {
				fmt.Printf("❌ %s\n", message)
				return errors.New(message)
			}
			fmt.Printf("✅ %s\n", message)
			return nil
		},
	}
	validateCmd.Flags().StringVar(&validateProfile, "profile", "", "Profile to validate (defaults to the current one)")

	refreshSSOCmd := &cobra.Command{
		Use:           "refresh-sso <profile>",
		Short:         "Refresh SSO credentials for the specified profile",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := newCatalog()
			if err != nil {
				return err
			}
			ok, message := catalog.RefreshSSO(ctx, args[0])
			if !ok {
				fmt.Printf("❌ %s\n", message)
				return errors.New(message)
			}
			fmt.Printf("✅ %s\n", message)
			return nil
		},
	}

	shellHelpersCmd := &cobra.Command{
		Use:   "shell-helpers",
		Short: "Print shell helper functions for profile management",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(outputter.ShellHelpers())
		},
	}

	profileCmd.AddCommand(listCmd, currentCmd, switchCmd, validateCmd, refreshSSOCmd, shellHelpersCmd)
	return profileCmd
}
