package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

func CreateStatusCommand() *StatusCommand {
	c := &StatusCommand{
		fs: pflag.NewFlagSet("status", pflag.ContinueOnError),
	}
	c.fs.BoolVar(&c.jsonOutput, "json", false, "print the status as JSON")
	return c
}

type StatusCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config

	jsonOutput bool
}

type statusOutput struct {
	AppID       string         `json:"app_id"`
	BaseURL     string         `json:"base_url"`
	Permissions []string       `json:"permissions"`
	System      map[string]any `json:"system"`
}

func (c *StatusCommand) Name() string {
	return c.fs.Name()
}

func (c *StatusCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	if c.jsonOutput {
		log.SetForceStdErr(true)
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *StatusCommand) Run() error {
	ctx := c.ctx.ctx()
	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	sys, err := client.System.Config(ctx)
	if err != nil {
		return err
	}

	status := statusOutput{
		AppID:       c.cfg.App.AppID,
		BaseURL:     client.BaseURL(),
		Permissions: client.Access().Permissions().Granted(),
	}
	if sys != nil {
		status.System = sys.Raw
	}
	if c.jsonOutput {
		return printJSON(c.ctx.out(), status)
	}

	out := c.ctx.out()
	fmt.Fprintf(out, "Logged in as %s at %s\n", status.AppID, status.BaseURL)
	fmt.Fprintf(out, "  Permissions:  %s\n", strings.Join(status.Permissions, ", "))
	if sys != nil {
		fmt.Fprintf(out, "  Firmware:     %s\n", sys.FirmwareVersion)
		fmt.Fprintf(out, "  Serial:       %s\n", sys.Serial)
		fmt.Fprintf(out, "  Uptime:       %s\n", sys.Uptime)
	}
	return nil
}
