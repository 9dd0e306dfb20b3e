package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/messagely/internal/client/cli"
	"github.com/iudanet/messagely/internal/client/iocli"
	"github.com/iudanet/messagely/internal/client/storage/boltdb"
	"github.com/iudanet/messagely/pkg/client"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "messagely-client.db", "Path to local session database")
	passwordFile := flag.String("password-file", "", "Path to file containing the password")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	stdio := iocli.NewStdio()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		os.Exit(1)
	}

	if err := run(*serverURL, *dbPath, *passwordFile, stdio, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(serverURL, dbPath, passwordFile string, stdio iocli.IO, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем BoltDB storage
	sessions, err := boltdb.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %v\n", err)
		}
	}()

	c := cli.New(client.NewClient(serverURL), sessions, stdio, serverURL, cli.Passwords{FromFile: passwordFile})
	return c.Run(ctx, args[0], args[1:])
}

func printVersion() {
	fmt.Printf("Messagely Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
