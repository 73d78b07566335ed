package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/commands"
	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	appCtx := &commands.AppContext{}

	flags := pflag.NewFlagSet("fbx", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.StringVarP(&appCtx.ConfigPath, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	flags.BoolVarP(&appCtx.Verbose, "verbose", "v", false, "Enable debug logging")
	quiet := flags.BoolP("quiet", "q", false, "Disable logging")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Freebox local API client\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [command options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  discover                Locate the box and print its description\n")
		fmt.Fprintf(os.Stderr, "  register                Request an app token (confirm on the box front panel)\n")
		fmt.Fprintf(os.Stderr, "  status                  Log in and print the session and box state\n")
		fmt.Fprintf(os.Stderr, "  downloads               List or add downloads\n")
		fmt.Fprintf(os.Stderr, "  logout                  Open and close a session with the stored token\n")
		fmt.Fprintf(os.Stderr, "  forget                  Remove the stored app token\n")
		fmt.Fprintf(os.Stderr, "  serve                   Run the local REST gateway\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if appCtx.Verbose {
		log.SetVerbose(true)
	}
	if *quiet {
		log.DisableLogs()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx.Context = ctx
	appCtx.Out = os.Stdout

	cmds := []commands.Runner{
		commands.CreateDiscoverCommand(),
		commands.CreateRegisterCommand(),
		commands.CreateStatusCommand(),
		commands.CreateDownloadsCommand(),
		commands.CreateLogoutCommand(),
		commands.CreateForgetCommand(),
		commands.CreateServeCommand(),
	}

	args := flags.Args()
	if len(args) < 1 {
		flags.Usage()
		os.Exit(1)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], appCtx); err != nil {
				if errors.Is(err, pflag.ErrHelp) {
					os.Exit(0)
				}
				log.Fatalf("Failed to initialize command: %v", err)
			}

			if err := cmd.Run(); err != nil {
				log.Fatalf("Failed to run command: %v", err)
			}

			os.Exit(0)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}
