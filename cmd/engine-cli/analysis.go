// cmd/engine-cli/analysis.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"volunteer-engine/internal/engine/pipeline"
)

const defaultRunTimeout = 5 * time.Minute

func newRecruitmentCmd(flags *globalFlags) *cobra.Command {
	var (
		filter   pipeline.RecruitmentFilter
		minScore int
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "recruitment",
		Short: "Score members and list qualified recruitment candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("min-score") {
				filter.MinScore = &minScore
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rt, err := flags.openRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Engine.RunRecruitmentAnalysis(ctx, filter)
			if err != nil {
				return fmt.Errorf("recruitment analysis failed: %w", err)
			}
			return flags.print(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&filter.TenantID, "tenant", "t", "", "Tenant (church) ID (required)")
	f.StringVar(&filter.TargetMemberID, "member", "", "Analyze only this member")
	f.BoolVar(&filter.IncludeActiveVolunteers, "include-volunteers", false, "Also score members who already volunteer")
	f.IntVar(&minScore, "min-score", pipeline.DefaultMinScore, "Minimum recruitment score to qualify")
	f.DurationVar(&timeout, "timeout", defaultRunTimeout, "Run timeout")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func newWorkloadCmd(flags *globalFlags) *cobra.Command {
	var (
		scope   pipeline.WorkloadScope
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "workload",
		Short: "Analyze volunteer workload and burnout risk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rt, err := flags.openRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Engine.RunWorkloadAnalysis(ctx, scope)
			if err != nil {
				return fmt.Errorf("workload analysis failed: %w", err)
			}
			return flags.print(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&scope.TenantID, "tenant", "t", "", "Tenant (church) ID (required)")
	f.BoolVar(&scope.IncludeInactive, "include-inactive", false, "Include inactive volunteers")
	f.StringVar(&scope.MemberID, "member", "", "Compare this member against the rest")
	f.DurationVar(&timeout, "timeout", defaultRunTimeout, "Run timeout")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func newMetricsCmd(flags *globalFlags) *cobra.Command {
	var tenantID string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show volunteer pipeline conversion metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := flags.openRuntime(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer rt.Close()

			m, err := rt.Engine.PipelineMetrics(cmd.Context(), tenantID)
			if err != nil {
				return err
			}
			return flags.print(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().StringVarP(&tenantID, "tenant", "t", "", "Tenant (church) ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
