package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(cfgPath *string) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question and print the response as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.close()
			limit := a.svc.DefaultLimit()
			if cmd.Flags().Changed("n") {
				limit = n
			}
			resp := a.svc.RetrieveAndAnswer(cmd.Context(), strings.Join(args, " "), limit)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(resp)
		},
	}
	cmd.Flags().IntVar(&n, "n", 0, "number of distinct cases to return (default retrieval.limit)")
	return cmd
}
