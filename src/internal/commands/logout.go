package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/config"
)

func CreateLogoutCommand() *LogoutCommand {
	return &LogoutCommand{
		fs: pflag.NewFlagSet("logout", pflag.ContinueOnError),
	}
}

// LogoutCommand checks that the stored token still opens a session and
// closes it right away.
type LogoutCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (c *LogoutCommand) Name() string {
	return c.fs.Name()
}

func (c *LogoutCommand) Init(args []string, ctx *AppContext) error {
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

func (c *LogoutCommand) Run() error {
	ctx := c.ctx.ctx()
	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	if err := client.Close(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.ctx.out(), "Logged out")
	return nil
}
