// Command paideia runs the tutoring backend: an HTTP API over the
// agent registry, a Markdown indexer for the textbook content, and an
// MCP stdio server for editor clients.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.2.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "serve":
		err = runServe(ctx, args[1:])
	case "index":
		err = runIndex(ctx, args[1:])
	case "mcp":
		err = runMCP(ctx, args[1:])
	case "version":
		fmt.Println("paideia", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`Usage: paideia <command> [flags]

Commands:
  serve    start the HTTP API server
  index    chunk, embed, and upsert Markdown content into Qdrant
  mcp      serve registered skills as MCP tools on stdio
  version  print the version
  help     show this message

Run "paideia <command> -h" for command flags.`)
}
