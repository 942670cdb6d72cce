// cmd/engine-cli/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	policyPath string
	output     string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "engine-cli",
		Short:         "Run volunteer lifecycle analyses by hand",
		Long:          "engine-cli triggers recruitment and workload runs against the congregation database without going through Zeebe, and inspects the policy and activity registry.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := newRenderer(flags.output); err != nil {
				return err
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a config YAML file (defaults to configs/config.yaml)")
	pf.StringVar(&flags.policyPath, "policy", "", "Path to a policy YAML file overriding the configured policy")
	pf.StringVarP(&flags.output, "output", "o", "json", "Output format: json or yaml")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(
		newRecruitmentCmd(flags),
		newWorkloadCmd(flags),
		newMetricsCmd(flags),
		newMigrateCmd(flags),
		newCacheCmd(flags),
		newPolicyCmd(flags),
		newRegistryCmd(flags),
	)
	return root
}
