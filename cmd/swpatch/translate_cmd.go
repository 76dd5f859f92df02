// cmd/swpatch/translate_cmd.go

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/swpatch/swpatch/pkg/translate"
)

func init() {
	rootCmd.AddCommand(translateCmd())
}

func translateCmd() *cobra.Command {
	var gamePath, outputPath, dataPath, manifestPath, passwords string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Patch translated files into the game archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := translate.DefaultOptions()
			opts.GamePath = pick(cmd, "game", gamePath, cfg.GamePath)
			opts.OutputPath = pick(cmd, "output", outputPath, cfg.Translate.OutputPath)
			opts.DataPath = pick(cmd, "data", dataPath, cfg.Translate.DataPath)
			opts.ManifestPath = pick(cmd, "manifest", manifestPath, cfg.Translate.Manifest)
			opts.PasswordsSource = pick(cmd, "passwords", passwords, cfg.Translate.Passwords)
			opts.Verbose = verbose
			opts.Quiet = quiet
			opts.ProgressWriter = os.Stdout

			if err := opts.Validate(); err != nil {
				return err
			}

			log := func(format string, args ...interface{}) {
				if !quiet {
					fmt.Printf(format+"\n", args...)
				}
			}

			log("Starting translation...")
			log("  Game:        %s", opts.GamePath)
			log("  Output:      %s", opts.OutputPath)
			log("  Manifest:    %s", opts.ManifestPath)
			log("")

			var progressCb translate.ProgressCallback
			var progress *mpb.Progress
			if !quiet && !verbose {
				progressCb, progress = translate.ProgressBarCallback()
			}

			var result *translate.Result
			err := run("translate", func(ctx context.Context) error {
				var err error
				result, err = translate.Translate(ctx, opts, progressCb)
				return err
			})

			if progress != nil {
				progress.Wait()
			}
			if err != nil {
				return err
			}

			if result != nil && result.Success() {
				fmt.Println()
				fmt.Print(translate.FormatSummary(result))
				log("%s", green("Translation applied"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&gamePath, "game", "g", "", "Game installation directory")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Directory receiving the patched archives")
	cmd.Flags().StringVarP(&dataPath, "data", "d", ".", "Directory holding the translation sources")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "INI manifest of the governed files")
	cmd.Flags().StringVar(&passwords, "passwords", "", "Archive password list (URL or file)")

	return cmd
}
