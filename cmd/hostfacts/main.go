// Package main implements the hostfacts CLI.
//
// Usage:
//
//	hostfacts instance-id
//	hostfacts region
//	hostfacts secret -folder=app -name=creds [-key=user]
//	hostfacts identity
//	hostfacts serve [-addr=:8080]
//	hostfacts version
//
// Configuration is read from the environment (and ./.env); see
// internal/config. Logs go to stderr, results to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"hostfacts/internal/config"
	"hostfacts/internal/facts"
	"hostfacts/internal/metadata"
)

const usage = `hostfacts - EC2 instance facts and environment-scoped secrets

Usage:
  hostfacts <command> [flags]

Commands:
  instance-id   print the EC2 instance ID (empty off EC2)
  region        print the instance region
  secret        print a secret as JSON, or one key with -key
  identity      print the AWS account and caller ARN
  serve         serve instance facts over HTTP
  version       print build information
`

// Exit codes.
const (
	exitOK          = 0
	exitUnavailable = 1
	exitUsage       = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, stderr)

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "hostfacts %s (commit %s, built %s)\n",
			cfg.Build.Version, cfg.Build.Commit, cfg.Build.BuildTime)
		return exitOK
	case "instance-id", "region", "secret", "serve", "identity":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	components, err := facts.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("initialization failed", slog.String("error", err.Error()))
		return exitUnavailable
	}
	helper := components.Helper

	switch cmd {
	case "instance-id":
		id := helper.EC2.GetInstanceID(ctx)
		fmt.Fprintln(stdout, id.Value)
		if id.State == metadata.StateUnknown {
			return exitUnavailable
		}
		return exitOK

	case "region":
		region, ok := helper.EC2.GetInstanceRegion(ctx)
		if !ok {
			return exitUnavailable
		}
		fmt.Fprintln(stdout, region.Name)
		return exitOK

	case "secret":
		return runSecret(ctx, helper, rest, stdout, stderr)

	case "identity":
		return runIdentity(ctx, components, stdout, logger)

	default: // serve
		fs := flag.NewFlagSet("serve", flag.ContinueOnError)
		fs.SetOutput(stderr)
		addr := fs.String("addr", cfg.Server.Addr, "listen address")
		if err := fs.Parse(rest); err != nil {
			return exitUsage
		}
		if err := runHTTPServer(ctx, components, *addr, logger); err != nil {
			logger.Error("server failed", slog.String("error", err.Error()))
			return exitUnavailable
		}
		return exitOK
	}
}

func runSecret(ctx context.Context, helper *facts.Helper, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("secret", flag.ContinueOnError)
	fs.SetOutput(stderr)
	folder := fs.String("folder", "", "secret folder (required)")
	name := fs.String("name", "", "secret name (required)")
	key := fs.String("key", "", "print only this key")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *folder == "" || *name == "" {
		fmt.Fprintln(stderr, "error: -folder and -name are required")
		fs.Usage()
		return exitUsage
	}

	if *key != "" {
		value, ok := helper.Secrets.GetSecretByKey(ctx, *folder, *name, *key)
		if !ok {
			return exitUnavailable
		}
		fmt.Fprintln(stdout, value)
		return exitOK
	}

	m := helper.Secrets.GetSecretAsMap(ctx, *folder, *name)
	if m == nil {
		return exitUnavailable
	}
	if err := writeJSON(stdout, m); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUnavailable
	}
	return exitOK
}

func writeJSON(w io.Writer, m map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// newLogger creates a structured slog.Logger for the given level and format.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
