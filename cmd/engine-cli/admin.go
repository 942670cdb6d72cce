// cmd/engine-cli/admin.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"volunteer-engine/pkg/registry"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the engine tables if they do not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.openRuntime(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer rt.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newCacheCmd(flags *globalFlags) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the ministry cache",
	}

	var tenantID string
	invalidate := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop a tenant's cached ministry list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.openRuntime(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.Cache == nil {
				return fmt.Errorf("ministry cache is not configured (database.redis.address is empty)")
			}
			if err := rt.Cache.Invalidate(cmd.Context(), tenantID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ministry cache cleared for %s\n", tenantID)
			return nil
		},
	}
	invalidate.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant (church) ID (required)")
	_ = invalidate.MarkFlagRequired("tenant")

	cacheCmd.AddCommand(invalidate)
	return cacheCmd
}

func newPolicyCmd(flags *globalFlags) *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the scoring policy",
	}
	policyCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective policy after defaults and overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := flags.policy()
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), p)
		},
	})
	return policyCmd
}

func newRegistryCmd(flags *globalFlags) *cobra.Command {
	var path string
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
	}

	load := func() (*registry.ActivityRegistry, error) {
		if path == "" {
			return registry.Default()
		}
		return registry.LoadRegistry(path)
	}

	registryCmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Check the registry and compile every schema",
			RunE: func(cmd *cobra.Command, _ []string) error {
				reg, err := load()
				if err != nil {
					return err
				}
				if err := reg.Validate(); err != nil {
					return fmt.Errorf("registry validation failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registry valid: %d activities\n", len(reg.Activities))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List registered activities",
			RunE: func(cmd *cobra.Command, _ []string) error {
				reg, err := load()
				if err != nil {
					return err
				}
				type row struct {
					TaskType string `json:"taskType"`
					Status   string `json:"status"`
					Timeout  string `json:"timeout"`
					Retries  int    `json:"retries"`
				}
				rows := make([]row, 0, len(reg.Activities))
				for _, a := range reg.Activities {
					rows = append(rows, row{a.TaskType, a.ImplementationStatus, a.Timeout, a.Retries})
				}
				return flags.print(cmd.OutOrStdout(), rows)
			},
		},
	)
	registryCmd.PersistentFlags().StringVar(&path, "file", "", "Registry JSON file (defaults to the built-in registry)")
	return registryCmd
}
