// Package config handles configuration file parsing and validation for fbx.
//
// The configuration is a TOML file describing how to reach the box, the
// application identity presented at registration, where the app token is
// persisted and the timeouts applied to network calls. A missing file is
// not an error: defaults are used so that a fresh install can discover the
// box and register without any setup.
//
// # Configuration Structure
//
//	[box]
//	host = "mafreebox.freebox.fr"
//	port = 443
//	https = true
//	cert_fingerprint = ""        # optional SHA-256 pin of the box certificate
//
//	[app]
//	app_id = "fr.example.fbx"
//	app_name = "fbx"
//	app_version = "0.1.0"
//	device_name = "{{hostname}}" # {{hostname}} and {{user}} are expanded
//
//	[auth]
//	token_file = "~/.local/share/fbx/app_auth"
//	register_timeout_seconds = 120
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("~/.config/fbx/config.toml")
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
package config
