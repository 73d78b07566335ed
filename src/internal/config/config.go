package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/utils"
)

const (
	DefaultConfigPath = "~/.config/fbx/config.toml"

	defaultHost            = "mafreebox.freebox.fr"
	defaultAppID           = "fr.maksimkurb.fbx"
	defaultAppName         = "fbx"
	defaultAppVersion      = "0.1.0"
	defaultDeviceName      = "{{hostname}}"
	defaultTokenFile       = "~/.local/share/fbx/app_auth"
	defaultUserAgent       = "fbx-go/0.1"
	defaultListenAddr      = "127.0.0.1:7780"
	defaultRegisterTimeout = 120
	defaultPollInterval    = 1
	defaultPollMaxInterval = 5
	defaultLoginTimeout    = 10
	defaultHTTPTimeout     = 10
	defaultDiscoverTimeout = 3
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Box: &BoxConfig{
			Host:                   defaultHost,
			HTTPS:                  true,
			DiscoverTimeoutSeconds: defaultDiscoverTimeout,
		},
		App: &AppConfig{
			AppID:      defaultAppID,
			AppName:    defaultAppName,
			AppVersion: defaultAppVersion,
			DeviceName: defaultDeviceName,
		},
		Auth: &AuthConfig{
			TokenFile:              defaultTokenFile,
			RegisterTimeoutSeconds: defaultRegisterTimeout,
			PollIntervalSeconds:    defaultPollInterval,
			PollMaxIntervalSeconds: defaultPollMaxInterval,
			LoginTimeoutSeconds:    defaultLoginTimeout,
		},
		HTTP: &HTTPConfig{
			TimeoutSeconds: defaultHTTPTimeout,
			UserAgent:      defaultUserAgent,
		},
		Server: &ServerConfig{
			ListenAddr: defaultListenAddr,
		},
	}
}

// LoadConfig reads the configuration at configPath on top of the defaults.
// A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	configFile := filepath.Clean(utils.ExpandHome(configPath))

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	config := Default()
	config._absConfigFilePath = configFile

	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("Configuration file %s not found, using defaults", configFile)
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	if err := toml.Unmarshal(content, config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf(derr.String())
			row, col := derr.Position()
			log.Errorf("Error at line %d, column %d", row, col)
			return nil, fmt.Errorf("failed to parse config file: line %d, column %d", row, col)
		}
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}
	config.fillMissingSections()

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Token file: %s", config.GetAbsTokenFile())

	return config, nil
}

// fillMissingSections restores sections explicitly emptied by the file.
func (c *Config) fillMissingSections() {
	def := Default()
	if c.Box == nil {
		c.Box = def.Box
	}
	if c.App == nil {
		c.App = def.App
	}
	if c.Auth == nil {
		c.Auth = def.Auth
	}
	if c.HTTP == nil {
		c.HTTP = def.HTTP
	}
	if c.Server == nil {
		c.Server = def.Server
	}
}

func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}

// WriteConfig writes the configuration back to the file it was loaded from.
func (c *Config) WriteConfig() error {
	config, err := c.SerializeConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.GetConfigDir(), 0755); err != nil {
		return err
	}
	return utils.WriteFileAtomic(c._absConfigFilePath, config.Bytes(), 0644)
}

// SetPath changes the file the configuration is written to.
func (c *Config) SetPath(path string) {
	c._absConfigFilePath = path
}

// EffectivePort returns the configured port or the scheme default.
func (b *BoxConfig) EffectivePort() uint16 {
	if b.Port != 0 {
		return b.Port
	}
	if b.HTTPS {
		return 443
	}
	return 80
}
