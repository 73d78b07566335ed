package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/maksimkurb/fbx-go/src/internal/api"
	"github.com/maksimkurb/fbx-go/src/internal/config"
	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

func CreateServeCommand() *ServeCommand {
	c := &ServeCommand{
		fs: pflag.NewFlagSet("serve", pflag.ContinueOnError),
	}
	c.fs.StringVar(&c.bindAddr, "listen", "", "gateway listen address (default: server.listen_addr)")
	return c
}

// ServeCommand runs the local REST gateway until interrupted.
type ServeCommand struct {
	fs  *pflag.FlagSet
	ctx *AppContext
	cfg *config.Config

	bindAddr string
}

func (c *ServeCommand) Name() string {
	return c.fs.Name()
}

func (c *ServeCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx
	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.bindAddr == "" {
		c.bindAddr = cfg.Server.ListenAddr
	}
	return nil
}

func (c *ServeCommand) Run() error {
	ctx := c.ctx.ctx()
	trusted, err := api.ParseNetworks(c.cfg.Server.TrustedProxies)
	if err != nil {
		return fbxerrors.NewConfigError("invalid server.trusted_proxies", err)
	}

	client, err := newClient(c.cfg, c.ctx)
	if err != nil {
		return err
	}

	// A missing token is reported by the gateway per request.
	if err := client.Open(ctx); err != nil {
		if !errors.Is(err, fbxerrors.ErrAuthRequired) {
			return err
		}
		log.Warnf("No app token stored, run \"fbx register\" first")
	}

	handler := api.NewHandler(client.Access(), client.Download, client.System)
	router := api.NewRouter(handler, api.RouterOptions{
		TrustedProxies: trusted,
		AllowedOrigins: c.cfg.Server.AllowedOrigins,
	})
	server := api.NewServer(c.bindAddr, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Warnf("Gateway shutdown: %v", err)
	}
	if err := client.Close(shutdownCtx); err != nil {
		log.Warnf("Logout failed: %v", err)
	}
	return <-errCh
}
