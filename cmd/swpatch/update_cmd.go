// cmd/swpatch/update_cmd.go

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/swpatch/swpatch/internal/logger"
	"github.com/swpatch/swpatch/internal/rtpatch"
	"github.com/swpatch/swpatch/pkg/swpatch"
	"github.com/swpatch/swpatch/pkg/update"
)

func init() {
	rootCmd.AddCommand(updateCmd())
}

func updateCmd() *cobra.Command {
	var gamePath, server, repoPath, logDir, engine string
	var rateLimit int64
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Download and apply the patches up to the server version",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := update.DefaultOptions()
			opts.GamePath = pick(cmd, "game", gamePath, cfg.GamePath)
			opts.ServerInfo = pick(cmd, "server", server, cfg.Update.Server)
			opts.RepositoryPath = pick(cmd, "repo-path", repoPath, cfg.Update.RepositoryPath)
			opts.LogDir = pick(cmd, "log-dir", logDir, cfg.Update.LogDir)
			opts.RateLimit = rateLimit
			if !cmd.Flags().Changed("rate-limit") && cfg.Update.RateLimit > 0 {
				opts.RateLimit = cfg.Update.RateLimit
			}
			opts.DryRun = dryRun
			opts.Verbose = verbose
			opts.Quiet = quiet
			opts.ProgressWriter = os.Stdout

			e, err := newEngine(pick(cmd, "engine", engine, cfg.Update.Engine))
			if err != nil {
				return err
			}
			opts.Engine = e

			if err := opts.Validate(); err != nil {
				return err
			}

			log := func(format string, args ...interface{}) {
				if !quiet {
					fmt.Printf(format+"\n", args...)
				}
			}

			log("Starting update...")
			log("  Game:        %s", opts.GamePath)
			log("  Server:      %s", opts.ServerInfo)
			if opts.RateLimit > 0 {
				log("  Rate limit:  %s/s", swpatch.FormatSize(uint64(opts.RateLimit)))
			}
			log("")

			var progressCb update.ProgressCallback
			var progress *mpb.Progress
			if !quiet && !verbose && !dryRun {
				progressCb, progress = update.ProgressBarCallback()
			}

			var result *update.Result
			err = run("update", func(ctx context.Context) error {
				var err error
				result, err = update.Update(ctx, opts, progressCb)
				return err
			})

			if progress != nil {
				progress.Wait()
			}
			if err != nil {
				if re, ok := rtpatch.AsResultError(err); ok && re.Kind == rtpatch.KindGeneric {
					fmt.Fprintf(os.Stderr, "Patch log: %s\n", re.LogPath)
				}
				return err
			}

			if result != nil {
				fmt.Println()
				fmt.Print(update.FormatSummary(result))
				if result.UpToDate() && !dryRun {
					log("%s", green(fmt.Sprintf("Client is at version %s", result.Current)))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&gamePath, "game", "g", "", "Game installation directory")
	cmd.Flags().StringVarP(&server, "server", "s", "", "Server version descriptor (URL or file)")
	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Path appended to the download address")
	cmd.Flags().StringVar(&logDir, "log-dir", update.DefaultLogDir, "Directory receiving the patch logs")
	cmd.Flags().StringVar(&engine, "engine", "native", "Patch engine: native or diff")
	cmd.Flags().Int64Var(&rateLimit, "rate-limit", 0, "Download rate limit in bytes per second (0 = unlimited)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the patch chain without downloading")

	return cmd
}

func newEngine(name string) (rtpatch.Engine, error) {
	switch strings.ToLower(name) {
	case "", "native":
		dll, proc := rtpatch.DefaultDLL()
		engine, err := rtpatch.NewNativeEngine(dll, proc)
		if errors.Is(err, rtpatch.ErrNativeUnsupported) {
			logger.Noticef("Native patch engine unavailable, using diff engine")
			return rtpatch.DiffEngine{}, nil
		}
		if err != nil {
			return nil, err
		}
		return engine, nil
	case "diff":
		return rtpatch.DiffEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (native or diff)", name)
	}
}
