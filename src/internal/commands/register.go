package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

func CreateRegisterCommand() *RegisterCommand {
	c := &RegisterCommand{
		fs: pflag.NewFlagSet("register", pflag.ContinueOnError),
	}
	c.fs.BoolVar(&c.force, "force", false, "register again even if an app token is stored")
	return c
}

type RegisterCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config

	force bool
}

func (c *RegisterCommand) Name() string {
	return c.fs.Name()
}

func (c *RegisterCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *RegisterCommand) Run() error {
	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}

	if client.Registered() && !c.force {
		log.Infof("An app token for %s is already stored in %s, use --force to register again",
			c.cfg.App.AppID, c.cfg.GetAbsTokenFile())
		return nil
	}

	fmt.Fprintf(c.ctx.out(), "Waiting for approval on the box front panel (up to %s)...\n", c.cfg.Auth.RegisterTimeout())
	reg, err := client.Authorize(c.ctx.ctx())
	if err != nil {
		return err
	}

	fmt.Fprintf(c.ctx.out(), "Registered %s (track_id %d)\n", c.cfg.App.AppID, reg.TrackID)
	return nil
}
