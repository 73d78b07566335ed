package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return configFile
}

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Box.Host != defaultHost {
		t.Errorf("Box.Host = %q, want %q", cfg.Box.Host, defaultHost)
	}
	if !cfg.Box.HTTPS {
		t.Errorf("Box.HTTPS = false, want true")
	}
	if cfg.App.AppID != defaultAppID {
		t.Errorf("App.AppID = %q, want %q", cfg.App.AppID, defaultAppID)
	}
	if cfg.GetConfigDir() != dir {
		t.Errorf("GetConfigDir() = %q, want %q", cfg.GetConfigDir(), dir)
	}
	if err := cfg.ValidateConfig(); err != nil {
		t.Errorf("defaults must validate, got: %v", err)
	}
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	configFile := writeConfig(t, `[box
host = "192.168.1.254"`)

	_, err := LoadConfig(configFile)
	if err == nil {
		t.Fatal("Expected error for invalid TOML")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("error = %q, want it to mention parsing", err.Error())
	}
}

func TestLoadConfig_OverridesKeepOtherDefaults(t *testing.T) {
	configFile := writeConfig(t, `
[box]
host = "192.168.1.254"
https = false

[app]
app_id = "fr.example.test"

[auth]
token_file = "state/app_auth"
register_timeout_seconds = 30
`)

	cfg, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Box.Host != "192.168.1.254" {
		t.Errorf("Box.Host = %q", cfg.Box.Host)
	}
	if cfg.Box.HTTPS {
		t.Errorf("Box.HTTPS = true, want false")
	}
	if cfg.Box.EffectivePort() != 80 {
		t.Errorf("EffectivePort() = %d, want 80", cfg.Box.EffectivePort())
	}
	if cfg.App.AppID != "fr.example.test" {
		t.Errorf("App.AppID = %q", cfg.App.AppID)
	}
	if cfg.App.AppName != defaultAppName {
		t.Errorf("App.AppName = %q, want default %q", cfg.App.AppName, defaultAppName)
	}
	if cfg.Auth.RegisterTimeoutSeconds != 30 {
		t.Errorf("RegisterTimeoutSeconds = %d, want 30", cfg.Auth.RegisterTimeoutSeconds)
	}
	if cfg.Auth.PollIntervalSeconds != defaultPollInterval {
		t.Errorf("PollIntervalSeconds = %d, want default", cfg.Auth.PollIntervalSeconds)
	}
	if cfg.HTTP.TimeoutSeconds != defaultHTTPTimeout {
		t.Errorf("HTTP.TimeoutSeconds = %d, want default", cfg.HTTP.TimeoutSeconds)
	}

	want := filepath.Join(filepath.Dir(configFile), "state", "app_auth")
	if got := cfg.GetAbsTokenFile(); got != want {
		t.Errorf("GetAbsTokenFile() = %q, want %q", got, want)
	}
}

func TestLoadConfig_ExpandsHomeInTokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "fbx", "app_auth")
	if got := cfg.GetAbsTokenFile(); got != want {
		t.Errorf("GetAbsTokenFile() = %q, want %q", got, want)
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.SetPath(configFile)
	cfg.Box.Host = "10.0.0.1"
	cfg.Box.CertFingerprint = strings.Repeat("ab", 32)

	if err := cfg.WriteConfig(); err != nil {
		t.Fatalf("WriteConfig returned error: %v", err)
	}

	loaded, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if loaded.Box.Host != "10.0.0.1" {
		t.Errorf("Box.Host = %q, want 10.0.0.1", loaded.Box.Host)
	}
	if loaded.Box.CertFingerprint != cfg.Box.CertFingerprint {
		t.Errorf("CertFingerprint = %q, want %q", loaded.Box.CertFingerprint, cfg.Box.CertFingerprint)
	}
}

func TestValidateConfig_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.App.AppID = "bad id!"
	cfg.App.AppName = ""
	cfg.Box.APIVersion = "8"
	cfg.Box.CertFingerprint = "zz"
	cfg.Auth.PollIntervalSeconds = 10
	cfg.Auth.PollMaxIntervalSeconds = 2
	cfg.Server.ListenAddr = "no-port"

	err := cfg.ValidateConfig()
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationErrors, got %T", err)
	}

	paths := make(map[string]bool)
	for _, e := range ve {
		paths[e.FieldPath] = true
	}
	for _, want := range []string{
		"app.app_id",
		"app.app_name",
		"box.api_version",
		"box.cert_fingerprint",
		"auth.poll_max_interval_seconds",
		"server.listen_addr",
	} {
		if !paths[want] {
			t.Errorf("missing validation error for %s, got %v", want, ve)
		}
	}
}

func TestValidateConfig_InsecureWithPinRejected(t *testing.T) {
	cfg := Default()
	cfg.Box.InsecureSkipVerify = true
	cfg.Box.CertFingerprint = strings.Repeat("0", 64)

	err := cfg.ValidateConfig()
	if err == nil || !strings.Contains(err.Error(), "box.insecure_skip_verify") {
		t.Fatalf("Expected insecure_skip_verify error, got %v", err)
	}
}

func TestValidateConfig_MissingSection(t *testing.T) {
	cfg := Default()
	cfg.Auth = nil

	err := cfg.ValidateConfig()
	if err == nil || !strings.Contains(err.Error(), "'auth' section") {
		t.Fatalf("Expected missing section error, got %v", err)
	}
}

func TestParseFingerprint(t *testing.T) {
	colons := strings.TrimSuffix(strings.Repeat("AB:", 32), ":")

	raw, err := ParseFingerprint(colons)
	if err != nil {
		t.Fatalf("ParseFingerprint returned error: %v", err)
	}
	if len(raw) != 32 || raw[0] != 0xab {
		t.Errorf("unexpected fingerprint bytes %x", raw)
	}

	if _, err := ParseFingerprint("abcd"); err == nil {
		t.Error("Expected error for short fingerprint")
	}
}

func TestRenderTemplate(t *testing.T) {
	vars := map[string]string{"hostname": "nas", "user": "alice"}

	tests := []struct {
		in   string
		want string
	}{
		{"{{hostname}}", "nas"},
		{"{{user}}@{{hostname}}", "alice@nas"},
		{"static", "static"},
		{"{{unknown}}-x", "{{unknown}}-x"},
	}
	for _, tt := range tests {
		if got := RenderTemplate(tt.in, vars); got != tt.want {
			t.Errorf("RenderTemplate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateValue(t *testing.T) {
	err := ValidateValue(&AppConfig{AppID: "x", AppName: "n", AppVersion: "1"}, "app")
	if err == nil || !strings.Contains(err.Error(), "app.device_name") {
		t.Fatalf("Expected device_name error, got %v", err)
	}
}

func TestValidateConfig_ServerAccessLists(t *testing.T) {
	cfg := Default()
	cfg.Server.TrustedProxies = []string{"10.0.0.2", "192.168.50.0/24", "::1"}
	cfg.Server.AllowedOrigins = []string{"http://nas.lan:8080"}
	if err := cfg.ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() error = %v", err)
	}

	cfg.Server.TrustedProxies = []string{"10.0.0.2", "proxy.lan"}
	cfg.Server.AllowedOrigins = []string{"not an origin"}
	err := cfg.ValidateConfig()

	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationErrors, got %v", err)
	}
	paths := make(map[string]bool)
	for _, e := range ve {
		paths[e.FieldPath] = true
	}
	for _, want := range []string{"server.trusted_proxies[1]", "server.allowed_origins[0]"} {
		if !paths[want] {
			t.Errorf("missing error for %s, got %v", want, ve)
		}
	}
}
