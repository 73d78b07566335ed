package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/config"
)

func CreateForgetCommand() *ForgetCommand {
	return &ForgetCommand{
		fs: pflag.NewFlagSet("forget", pflag.ContinueOnError),
	}
}

// ForgetCommand deletes the stored app token. The app stays listed on the
// box until it is revoked there.
type ForgetCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (c *ForgetCommand) Name() string {
	return c.fs.Name()
}

func (c *ForgetCommand) Init(args []string, ctx *AppContext) error {
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

func (c *ForgetCommand) Run() error {
	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}
	if err := client.Forget(); err != nil {
		return err
	}
	fmt.Fprintf(c.ctx.out(), "Removed %s\n", c.cfg.GetAbsTokenFile())
	return nil
}
