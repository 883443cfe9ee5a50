package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"infrautilx/internal/access"
	"infrautilx/internal/config"
	"infrautilx/internal/outputter"
	"infrautilx/internal/stack"
)

func newAccessCmd(ctx context.Context, configPath *string) *cobra.Command {
	accessCmd := &cobra.Command{
		Use:   "access",
		Short: "Manage IP access to deployed stacks",
	}

	var listProject string
	var listJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			catalog := stack.NewCatalog(projectFilter(listProject, settings))
			out, err := outputter.RenderStacks(catalog.List(ctx), listJSON)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	listCmd.Flags().StringVar(&listProject, "project", "", "Filter stacks by project name prefix")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")

	var checkStack, checkProject string
	var checkJSON bool
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check if the current IP has access to stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			reconciler := access.NewReconciler(settings)
			statuses, err := reconciler.Check(ctx, checkStack, projectFilter(checkProject, settings))
			if err != nil {
				return err
			}

			currentCIDR := ""
			if len(statuses) > 0 {
				currentCIDR = statuses[0].CurrentCIDR
			}
			out, err := outputter.RenderAccessStatuses(statuses, currentCIDR, checkJSON)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
	checkCmd.Flags().StringVar(&checkStack, "stack", "", "Check a specific stack")
	checkCmd.Flags().StringVar(&checkProject, "project", "", "Filter stacks by project name prefix")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")

	updateCmd := &cobra.Command{
		Use:   "update <stack>",
		Short: "Update the stack's security group to allow access from the current IP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			reconciler := access.NewReconciler(settings)
			if err := reconciler.Update(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to update security group in stack %s: %w", args[0], err)
			}
			fmt.Printf("Successfully updated security group in stack %s to allow access from your current IP.\n", args[0])
			return nil
		},
	}

	accessCmd.AddCommand(listCmd, checkCmd, updateCmd)
	return accessCmd
}

// projectFilter prefers the explicit flag over the configured default.
func projectFilter(flag string, settings *config.Settings) string {
	if flag != "" {
		return flag
	}
	return settings.DefaultProjectFilter
}
