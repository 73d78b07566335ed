package freebox

import (
	"context"
	"sync"

	"github.com/maksimkurb/fbx-go/src/internal/access"
	"github.com/maksimkurb/fbx-go/src/internal/auth"
	"github.com/maksimkurb/fbx-go/src/internal/config"
	"github.com/maksimkurb/fbx-go/src/internal/credentials"
	"github.com/maksimkurb/fbx-go/src/internal/discovery"
	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/resources"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

// Options replaces collaborators normally built from the configuration.
type Options struct {
	// HTTPClient is used for discovery and API calls.
	HTTPClient transport.HTTPClient
	// Store replaces the token file store.
	Store credentials.Store
	// BaseURL skips discovery.
	BaseURL string
	// NoFallback disables mDNS and default gateway discovery.
	NoFallback bool
}

// Client is a connected box client. Modules are nil until Connect or
// Open succeeds.
type Client struct {
	cfg  *config.Config
	opts Options

	httpClient transport.HTTPClient
	store      credentials.Store

	mu        sync.Mutex
	info      *discovery.BoxInfo
	transport *transport.Transport
	manager   *auth.Manager
	access    *access.Access

	Download *resources.Download
	System   *resources.System
	DHCP     *resources.DHCP
	Call     *resources.Call
	Home     *resources.Home
}

// New validates cfg and prepares a Client. No request is sent.
func New(cfg *config.Config, opts Options) (*Client, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		tlsOpts, err := TLSOptionsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		c, err := transport.NewHTTPClient(cfg.HTTP.Timeout(), tlsOpts)
		if err != nil {
			return nil, err
		}
		httpClient = c
	}

	store := opts.Store
	if store == nil {
		store = credentials.NewFileStore(cfg.GetAbsTokenFile())
	}

	return &Client{
		cfg:        cfg,
		opts:       opts,
		httpClient: httpClient,
		store:      store,
	}, nil
}

// TLSOptionsFromConfig maps the [box] certificate settings. The vendor
// roots are always trusted; ca_file adds to them.
func TLSOptionsFromConfig(cfg *config.Config) (transport.TLSOptions, error) {
	opts := transport.TLSOptions{
		CAPEM:              transport.VendorRoots(),
		CAFile:             cfg.GetAbsCAFile(),
		InsecureSkipVerify: cfg.Box.InsecureSkipVerify,
	}
	if cfg.Box.CertFingerprint != "" {
		fp, err := config.ParseFingerprint(cfg.Box.CertFingerprint)
		if err != nil {
			return opts, fbxerrors.NewConfigError("invalid box.cert_fingerprint", err)
		}
		opts.Fingerprint = fp
	}
	return opts, nil
}

// Connect locates the box and builds the dispatcher. It does not log in.
// Calling it again is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.access != nil {
		return nil
	}

	baseURL := c.opts.BaseURL
	if baseURL == "" {
		info, err := c.discover(ctx)
		if err != nil {
			return err
		}
		baseURL, err = info.BaseURL(discovery.URLOptions{
			HTTPS:      c.cfg.Box.HTTPS,
			APIDomain:  c.cfg.Box.APIDomain,
			APIVersion: c.cfg.Box.APIVersion,
		})
		if err != nil {
			return err
		}
		c.info = info
	}

	tr, err := transport.New(transport.Options{
		BaseURL:    baseURL,
		UserAgent:  c.cfg.HTTP.UserAgent,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return err
	}
	log.Debugf("[freebox] API base URL is %s", tr.BaseURL())

	c.transport = tr
	c.manager = auth.NewManager(tr, c.store, auth.OptionsFromConfig(c.cfg.Auth))
	c.access = access.New(tr, c.manager, c.cfg.App.AppID)

	c.Download = resources.NewDownload(c.access)
	c.System = resources.NewSystem(c.access)
	c.DHCP = resources.NewDHCP(c.access)
	c.Call = resources.NewCall(c.access)
	c.Home = resources.NewHome(c.access)
	return nil
}

func (c *Client) discover(ctx context.Context) (*discovery.BoxInfo, error) {
	box := c.cfg.Box
	opts := discovery.Options{
		Host:    box.Host,
		Port:    box.Port,
		HTTPS:   box.HTTPS,
		Timeout: box.DiscoverTimeout(),
		Client:  c.httpClient,
	}
	if !c.opts.NoFallback {
		opts.MDNSAddr = discovery.MDNSAddr
		opts.Gateway = discovery.DefaultGatewayHost
	}
	info, err := discovery.Discover(ctx, opts)
	if err != nil {
		return nil, err
	}
	log.Infof("Found %s (%s) at %s, API %s", info.DeviceName, info.DeviceType, info.Host, info.APIVersion)
	return info, nil
}

// Open connects and logs in with the stored app token. Without a stored
// token it fails with ErrAuthRequired and sends no login request.
func (c *Client) Open(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.access.Open(ctx)
}

// Identity returns the application identity from the configuration.
func (c *Client) Identity() credentials.Identity {
	app := c.cfg.App
	return credentials.Identity{
		AppID:      app.AppID,
		AppName:    app.AppName,
		AppVersion: app.AppVersion,
		DeviceName: app.RenderedDeviceName(),
	}
}

// Registered reports whether a token for the configured app is stored.
func (c *Client) Registered() bool {
	rec, ok := c.store.Load()
	return ok && rec.Matches(c.Identity())
}

// Authorize registers the application and waits until the request is
// answered on the box front panel.
func (c *Client) Authorize(ctx context.Context) (auth.Registration, error) {
	if err := c.Connect(ctx); err != nil {
		return auth.Registration{}, err
	}
	id := c.Identity()
	log.Infof("Requesting access for %s on %s, confirm on the box front panel", id.AppName, id.DeviceName)
	return c.manager.Authorize(ctx, id)
}

// Close logs out. The Client can be opened again.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	acc := c.access
	c.mu.Unlock()
	if acc == nil {
		return nil
	}
	return acc.Close(ctx)
}

// Forget removes the stored app token.
func (c *Client) Forget() error {
	return c.store.Clear()
}

// Info returns the discovered box description, or nil when discovery was
// skipped.
func (c *Client) Info() *discovery.BoxInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

// BaseURL returns the API root in use, or "" before Connect.
func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport == nil {
		return ""
	}
	return c.transport.BaseURL()
}

// Access returns the authenticated dispatcher, or nil before Connect.
func (c *Client) Access() *access.Access {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

// Auth returns the authentication manager, or nil before Connect.
func (c *Client) Auth() *auth.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager
}

// Config returns the configuration the Client was built from.
func (c *Client) Config() *config.Config {
	return c.cfg
}
