package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/swpatch/swpatch/internal/config"
	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/task"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	verbose    bool
	quiet      bool

	cfg = &config.Config{}
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "swpatch",
	Short: "swpatch - SoulWorker translation patcher and client updater",
	Long:  "swpatch writes translated string tables into the game archives and brings the client up to the server version.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if !cmd.Flags().Changed("verbose") && cfg.Verbose {
			verbose = true
		}
		if quiet {
			verbose = false
		}
		logger.SimpleSetup(verbose, quiet)
		return nil
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Show detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Minimal output (overrides verbose)")
}

// run executes fn as a single background run. Ctrl+C cancels it.
func run(name string, fn task.Func) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	done, err := task.NewRunner(name).Start(ctx, fn)
	if err != nil {
		return err
	}

	out := <-done
	switch out.Status {
	case task.Cancelled:
		if !quiet {
			fmt.Println(yellow(name + " cancelled"))
		}
		return nil
	case task.Failed:
		return out.Err
	}
	return nil
}

// pick returns the flag value unless it was left unset and the config file
// has one
func pick(cmd *cobra.Command, flag, value, fromConfig string) string {
	if !cmd.Flags().Changed(flag) && fromConfig != "" {
		return fromConfig
	}
	return value
}
