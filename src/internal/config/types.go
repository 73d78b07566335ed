package config

import (
	"path/filepath"
	"time"

	"github.com/maksimkurb/fbx-go/src/internal/utils"
)

type Config struct {
	// Box describes how to reach the box.
	Box *BoxConfig `toml:"box" json:"box"`
	// App is the application identity sent at registration.
	App *AppConfig `toml:"app" json:"app"`
	// Auth holds app token persistence and registration settings.
	Auth *AuthConfig `toml:"auth" json:"auth"`
	// HTTP holds transport settings.
	HTTP *HTTPConfig `toml:"http" json:"http"`
	// Server holds settings for the local gateway started by "fbx serve".
	Server *ServerConfig `toml:"server" json:"server"`

	_absConfigFilePath string
}

type BoxConfig struct {
	// Host is the box address. Leave empty to discover it on the local network.
	Host string `toml:"host" json:"host" validate:"omitempty,box_host"`
	// Port is the port used to query api_version (default: 443 with https, 80 otherwise).
	Port uint16 `toml:"port" json:"port"`
	// HTTPS enables TLS for API calls (default: true).
	HTTPS bool `toml:"https" json:"https"`
	// APIDomain overrides the domain announced by the box in api_version.
	APIDomain string `toml:"api_domain,omitempty" json:"api_domain,omitempty" validate:"omitempty,box_host"`
	// APIVersion forces an API version such as "v8" instead of the announced one.
	APIVersion string `toml:"api_version,omitempty" json:"api_version,omitempty" validate:"omitempty,api_version"`
	// CAFile is a PEM bundle trusted in addition to the built-in vendor roots.
	CAFile string `toml:"ca_file,omitempty" json:"ca_file,omitempty"`
	// CertFingerprint pins the box leaf certificate by its SHA-256 fingerprint (hex, colons allowed).
	CertFingerprint string `toml:"cert_fingerprint,omitempty" json:"cert_fingerprint,omitempty" validate:"omitempty,sha256_fingerprint"`
	// InsecureSkipVerify disables certificate verification. Only for debugging.
	InsecureSkipVerify bool `toml:"insecure_skip_verify" json:"insecure_skip_verify"`
	// DiscoverTimeoutSeconds bounds mDNS and gateway discovery (default: 3).
	DiscoverTimeoutSeconds int `toml:"discover_timeout_seconds" json:"discover_timeout_seconds" validate:"gte=0"`
}

type AppConfig struct {
	// AppID is a unique reverse-DNS style identifier of the application.
	AppID string `toml:"app_id" json:"app_id" validate:"required,app_id"`
	// AppName is the name displayed on the box front panel.
	AppName string `toml:"app_name" json:"app_name" validate:"required,max=64"`
	// AppVersion is the application version.
	AppVersion string `toml:"app_version" json:"app_version" validate:"required,max=32"`
	// DeviceName is the name of this machine. Supports {{hostname}} and {{user}}.
	DeviceName string `toml:"device_name" json:"device_name" validate:"required,max=64"`
}

type AuthConfig struct {
	// TokenFile is where the app token is persisted.
	TokenFile string `toml:"token_file" json:"token_file" validate:"required"`
	// RegisterTimeoutSeconds bounds the wait for approval on the front panel (default: 120).
	RegisterTimeoutSeconds int `toml:"register_timeout_seconds" json:"register_timeout_seconds" validate:"gte=1"`
	// PollIntervalSeconds is the first delay between registration status checks (default: 1).
	PollIntervalSeconds int `toml:"poll_interval_seconds" json:"poll_interval_seconds" validate:"gte=1"`
	// PollMaxIntervalSeconds caps the registration poll backoff (default: 5).
	PollMaxIntervalSeconds int `toml:"poll_max_interval_seconds" json:"poll_max_interval_seconds" validate:"gtefield=PollIntervalSeconds"`
	// LoginTimeoutSeconds bounds a single challenge-response login (default: 10).
	LoginTimeoutSeconds int `toml:"login_timeout_seconds" json:"login_timeout_seconds" validate:"gte=1"`
}

type HTTPConfig struct {
	// TimeoutSeconds applies to every request, connect and read included (default: 10).
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" validate:"gte=1"`
	// UserAgent sent with every request.
	UserAgent string `toml:"user_agent" json:"user_agent"`
}

type ServerConfig struct {
	// ListenAddr is the local gateway listen address (default: 127.0.0.1:7780).
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"hostport_or_empty"`
	// TrustedProxies lists the addresses or CIDR blocks of reverse proxies
	// whose X-Forwarded-For header is believed. Empty trusts nobody.
	TrustedProxies []string `toml:"trusted_proxies" json:"trusted_proxies" validate:"dive,cidr|ip"`
	// AllowedOrigins lists the browser origins allowed to call the gateway.
	// Empty refuses every cross-origin request.
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins" validate:"dive,url"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsTokenFile resolves the token file path, relative paths being
// relative to the configuration file directory.
func (c *Config) GetAbsTokenFile() string {
	return utils.GetAbsolutePath(utils.ExpandHome(c.Auth.TokenFile), c.GetConfigDir())
}

// GetAbsCAFile resolves the CA bundle path, or returns "" when unset.
func (c *Config) GetAbsCAFile() string {
	if c.Box.CAFile == "" {
		return ""
	}
	return utils.GetAbsolutePath(utils.ExpandHome(c.Box.CAFile), c.GetConfigDir())
}

func (a *AuthConfig) RegisterTimeout() time.Duration {
	return time.Duration(a.RegisterTimeoutSeconds) * time.Second
}

func (a *AuthConfig) PollInterval() time.Duration {
	return time.Duration(a.PollIntervalSeconds) * time.Second
}

func (a *AuthConfig) PollMaxInterval() time.Duration {
	return time.Duration(a.PollMaxIntervalSeconds) * time.Second
}

func (a *AuthConfig) LoginTimeout() time.Duration {
	return time.Duration(a.LoginTimeoutSeconds) * time.Second
}

func (h *HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

func (b *BoxConfig) DiscoverTimeout() time.Duration {
	return time.Duration(b.DiscoverTimeoutSeconds) * time.Second
}
