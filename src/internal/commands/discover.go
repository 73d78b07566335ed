package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/discovery"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

func CreateDiscoverCommand() *DiscoverCommand {
	c := &DiscoverCommand{
		fs: pflag.NewFlagSet("discover", pflag.ContinueOnError),
	}
	c.fs.StringVar(&c.host, "host", "", "probe this host instead of box.host")
	c.fs.BoolVar(&c.mdnsOnly, "mdns", false, "only browse mDNS")
	c.fs.BoolVar(&c.jsonOutput, "json", false, "print the box description as JSON")
	return c
}

type DiscoverCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config

	host       string
	mdnsOnly   bool
	jsonOutput bool
}

func (c *DiscoverCommand) Name() string {
	return c.fs.Name()
}

func (c *DiscoverCommand) Init(args []string, ctx *AppContext) error {
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

func (c *DiscoverCommand) Run() error {
	ctx := c.ctx.ctx()
	out := c.ctx.out()

	if c.mdnsOnly {
		mctx, cancel := context.WithTimeout(ctx, c.cfg.Box.DiscoverTimeout())
		defer cancel()
		boxes, err := discovery.Browse(mctx, discovery.MDNSAddr)
		if err != nil {
			return err
		}
		if c.jsonOutput {
			return printJSON(out, boxes)
		}
		if len(boxes) == 0 {
			fmt.Fprintln(out, "No box answered over mDNS")
		}
		for _, box := range boxes {
			printBoxInfo(c.ctx, box)
		}
		return nil
	}

	if c.host != "" {
		c.cfg.Box.Host = c.host
	}
	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}

	info := client.Info()
	if c.jsonOutput {
		return printJSON(out, info)
	}
	printBoxInfo(c.ctx, info)
	fmt.Fprintf(out, "  API base URL: %s\n", client.BaseURL())
	return nil
}

func printBoxInfo(ctx *AppContext, info *discovery.BoxInfo) {
	out := ctx.out()
	fmt.Fprintf(out, "%s (%s)\n", info.DeviceName, info.DeviceType)
	fmt.Fprintf(out, "  Address:      %s\n", info.Host)
	fmt.Fprintf(out, "  UID:          %s\n", info.UID)
	fmt.Fprintf(out, "  API version:  %s\n", info.APIVersion)
	if info.HTTPSAvailable {
		fmt.Fprintf(out, "  HTTPS:        %s:%d\n", info.APIDomain, info.HTTPSPort)
	} else {
		fmt.Fprintf(out, "  HTTPS:        unavailable\n")
	}
}
