package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/agentwizard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of agentwizard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("agentwizard version %s\n", strings.TrimSpace(agentwizard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
