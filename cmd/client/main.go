package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/atinyakov/NoteNest/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and runs the interactive shell.
func main() {
	var (
		baseURL string
		showVer bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("NoteNest Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client.NewShell(client.NewAPI(baseURL), os.Stdin, os.Stdout).Run(ctx)
}
