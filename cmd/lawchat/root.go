package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:   "lawchat",
		Short: "Legal case search and question answering",
		Long:  "lawchat retrieves court case passages for a question, deduplicates them by case,\nattaches the matching case documents and writes an answer.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default ./config.yaml, then ~/.config/lawchat/config.yaml)")
	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newHTTPCmd(&cfgPath))
	root.AddCommand(newAskCmd(&cfgPath))
	root.AddCommand(newTUICmd(&cfgPath))
	root.Version = version
	return root
}
