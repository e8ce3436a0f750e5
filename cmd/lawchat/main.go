// lawchat answers legal questions from a corpus of indexed court cases.
//
// Usage:
//
//	lawchat serve                 MCP server over stdio
//	lawchat http                  JSON API over HTTP
//	lawchat ask [--n=3] <question>
//	lawchat tui
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
