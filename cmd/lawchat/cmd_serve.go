package main

import (
	"github.com/spf13/cobra"

	mcpserver "lawchat/internal/mcp"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP server over stdin/stdout exposing the case_search and
legal_chat tools. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			return mcpserver.NewServer(a.svc, version, a.log).Run(cmd.Context())
		},
	}
}
