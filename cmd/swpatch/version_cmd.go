// cmd/swpatch/version_cmd.go

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	clientversion "github.com/swpatch/swpatch/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd())
}

func versionCmd() *cobra.Command {
	var gamePath string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the tool version and the installed client version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("swpatch %s (commit %s, built %s)\n", version, commit, date)

			game := pick(cmd, "game", gamePath, cfg.GamePath)
			if game == "" {
				return
			}
			v, err := clientversion.ReadClient(game)
			if err != nil {
				fmt.Printf("client: %s\n", yellow(err))
				return
			}
			fmt.Printf("client: %s\n", v)
		},
	}

	cmd.Flags().StringVarP(&gamePath, "game", "g", "", "Game installation directory")

	return cmd
}
