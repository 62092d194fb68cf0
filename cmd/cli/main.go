package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/ynabsync/pkg/config"
	"github.com/yurifrl/ynabsync/pkg/executors"
	"github.com/yurifrl/ynabsync/pkg/models"
	"github.com/yurifrl/ynabsync/pkg/parser"
	"github.com/yurifrl/ynabsync/pkg/plan"
	"github.com/yurifrl/ynabsync/pkg/service"
	"github.com/yurifrl/ynabsync/pkg/ynab"
)

var (
	cfgFile  string
	planOut  string
	planFile string
)

var rootCmd = &cobra.Command{
	Use:   "ynabsync",
	Short: "Reconcile a ledger export with a YNAB account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
	SilenceUsage: true,
}

var planCmd = &cobra.Command{
	Use:   "plan <ledger|directory>",
	Short: "Preview the corrections needed to bring the account in line with the ledger",
	Long: `Preview the corrections needed to bring the account in line with the ledger.

When given a directory, every ledger in it is planned and a <name>-plan.yaml
is written to the output directory for each one.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		client, err := connect(cfg)
		if err != nil {
			return err
		}

		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			written, err := service.NewProcessor(cfg, logger, client).ProcessDirectory(args[0])
			for _, f := range written {
				fmt.Println(f)
			}
			return err
		}

		run, err := planLedger(cfg, logger, client, args[0])
		if err != nil {
			return err
		}

		executors.Report(os.Stdout, run)
		if planOut != "" {
			if err := run.Plan.Save(planOut); err != nil {
				return err
			}
			logger.Info("saved plan", "file", planOut, "operations", len(run.Plan.Operations))
		}
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply [ledger]",
	Short: "Apply the corrections for a ledger, or replay a saved plan",
	Args: func(cmd *cobra.Command, args []string) error {
		if planFile == "" {
			return cobra.ExactArgs(1)(cmd, args)
		}
		return cobra.NoArgs(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		var client *ynab.YNABClient
		if cfg.Backend == config.BackendAPI || planFile == "" {
			if client, err = connect(cfg); err != nil {
				return err
			}
		}

		exec := executors.New(logger, cfg, client)
		var p *plan.Plan
		if planFile != "" {
			if p, err = plan.Load(planFile); err != nil {
				return err
			}
			p.Print(os.Stdout)
		} else {
			run, err := planLedger(cfg, logger, client, args[0])
			if err != nil {
				return err
			}
			executors.Report(os.Stdout, run)
			p = run.Plan
		}

		outcome, err := exec.Apply(context.Background(), p, exec.Applier(client, p))
		if err != nil {
			return err
		}
		fmt.Printf("\nApplied: %d date correction(s), %d created, %d skipped\n", outcome.Updated, outcome.Created, outcome.Skipped)
		return nil
	},
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the open accounts of the configured budget",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		if cfg.YNAB.BudgetID == "" {
			return fmt.Errorf("ynab.budget_id is required")
		}
		client, err := connect(cfg)
		if err != nil {
			return err
		}

		accounts, err := client.Accounts(cfg.YNAB.BudgetID)
		if err != nil {
			return err
		}
		for _, a := range accounts {
			if a.Closed {
				continue
			}
			fmt.Printf("%s\t%s\n", a.ID, a.Name)
		}
		return nil
	},
}

func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "ynabsync",
		Level:           level,
	})
	return cfg, logger, nil
}

func connect(cfg *config.Config) (*ynab.YNABClient, error) {
	token, err := cfg.Token()
	if err != nil {
		return nil, err
	}
	return ynab.New(token), nil
}

func planLedger(cfg *config.Config, logger *log.Logger, client *ynab.YNABClient, path string) (*executors.Run, error) {
	ledger := &models.Ledger{FilePath: path}
	records, err := ledger.Records(parser.New(logger))
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded ledger", "file", path, "records", len(records))
	return executors.New(logger, cfg, client).Plan(records)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	flags.String("budget", "", "YNAB budget id")
	flags.String("account", "", "Destination account name")
	flags.String("token-env", "YNAB_TOKEN", "Environment variable holding the YNAB token")
	flags.StringSlice("years", nil, "Year prefixes to reconcile (default current and previous year)")
	flags.String("from", "", "Only reconcile records on or after this date (YYYY-MM-DD)")
	flags.String("to", "", "Only reconcile records on or before this date (YYYY-MM-DD)")
	flags.String("backend", config.BackendAPI, "Replay backend: api or csv")
	flags.StringP("output", "o", ".", "Output directory for the csv backend")
	flags.String("debug-file", "", "Write a YAML dump of the reconciliation to this file")
	flags.Bool("strict", false, "Fail when a fingerprint is carried by several transactions")
	flags.BoolP("verbose", "v", false, "Debug logging and operation dump")
	flags.String("log-level", "info", "Log level")

	planCmd.Flags().StringVar(&planOut, "save", "", "Save the plan as YAML for a later apply --plan")
	applyCmd.Flags().StringVar(&planFile, "plan", "", "Replay a saved plan instead of planning a ledger")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(accountsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
