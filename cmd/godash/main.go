// Command godash is a terminal client for the Task API dashboard.
//
// Usage:
//
//	godash [-config godash.toml] [-env .env] [-metrics] <command> [args]
//
// Commands:
//
//	login [-demo] [-email e] [-password p]   sign in and persist the session
//	logout                                   end the session
//	whoami                                   print the signed-in user
//	view <path>                              render a view, e.g. /dashboard/team
//	metrics [-listen addr]                   serve Prometheus metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "godash: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("godash", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a TOML config file (default godash.toml if present)")
	envFile := flags.String("env", ".env", "dotenv file loaded before reading GODASH_* variables; empty to skip")
	showMetrics := flags.Bool("metrics", false, "print Prometheus metrics after the command")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return errors.New("missing command")
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", *envFile, err)
		}
	}

	cfg, err := loadAppConfig(*configPath, getenv)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel, stderr)

	a, err := newApp(cfg, logger, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	cmd, rest := flags.Arg(0), flags.Args()[1:]
	switch cmd {
	case "login":
		err = a.login(ctx, rest, getenv)
	case "logout":
		err = a.logout(ctx)
	case "whoami":
		err = a.whoami()
	case "view":
		if len(rest) != 1 {
			return errors.New("usage: godash view <path>")
		}
		err = a.view(ctx, rest[0])
	case "metrics":
		err = a.serveMetrics(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	if *showMetrics {
		fmt.Fprint(stdout, a.exporter.Render())
	}
	return nil
}
