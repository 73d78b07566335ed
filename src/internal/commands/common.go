package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/freebox"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	Verbose    bool
	// Context is cancelled on SIGINT/SIGTERM.
	Context context.Context
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// HTTPClient replaces the client built from the configuration.
	HTTPClient transport.HTTPClient
}

func (c *AppContext) ctx() context.Context {
	if c.Context == nil {
		return context.Background()
	}
	return c.Context
}

func (c *AppContext) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// loadAndValidateConfigOrFail loads configuration from file and validates it.
func loadAndValidateConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// newClient builds a box client for cfg.
func newClient(cfg *config.Config, ctx *AppContext) (*freebox.Client, error) {
	return freebox.New(cfg, freebox.Options{HTTPClient: ctx.HTTPClient})
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
