package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maksimkurb/fbx-go/src/internal/credentials"
	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/mocks"
)

const testAppID = "fr.example.fbx"

type testEnv struct {
	box       *mocks.FakeBox
	dir       string
	out       *bytes.Buffer
	appCtx    *AppContext
	tokenFile string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	box := mocks.NewFakeBox()
	t.Cleanup(box.Close)

	u, err := url.Parse(box.Server.URL)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}

	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`
[box]
host = "%s"
port = %s
https = false

[app]
app_id = "%s"
app_name = "fbx tests"
app_version = "1.0"
device_name = "ci"

[auth]
token_file = "app_auth"
`, u.Hostname(), u.Port(), testAppID)
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	out := &bytes.Buffer{}
	return &testEnv{
		box: box,
		dir: dir,
		out: out,
		appCtx: &AppContext{
			ConfigPath: configFile,
			Context:    context.Background(),
			Out:        out,
			HTTPClient: box.Server.Client(),
		},
		tokenFile: filepath.Join(dir, "app_auth"),
	}
}

// register stores a token the fake box accepts.
func (e *testEnv) register(t *testing.T) {
	t.Helper()
	e.box.SetAppToken(testAppID, "secret")
	store := credentials.NewFileStore(e.tokenFile)
	err := store.Save(credentials.Record{
		AppToken: "secret",
		TrackID:  1,
		AppDesc:  credentials.Identity{AppID: testAppID, AppName: "fbx tests", AppVersion: "1.0", DeviceName: "ci"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func run(t *testing.T, cmd Runner, env *testEnv, args ...string) error {
	t.Helper()
	if err := cmd.Init(args, env.appCtx); err != nil {
		t.Fatalf("%s Init() error = %v", cmd.Name(), err)
	}
	return cmd.Run()
}

func TestCommandNames(t *testing.T) {
	want := []string{"discover", "register", "status", "downloads", "logout", "forget", "serve"}
	cmds := []Runner{
		CreateDiscoverCommand(),
		CreateRegisterCommand(),
		CreateStatusCommand(),
		CreateDownloadsCommand(),
		CreateLogoutCommand(),
		CreateForgetCommand(),
		CreateServeCommand(),
	}
	for i, cmd := range cmds {
		if cmd.Name() != want[i] {
			t.Errorf("Name() = %q, want %q", cmd.Name(), want[i])
		}
	}
}

func TestDiscover(t *testing.T) {
	env := newTestEnv(t)
	if err := run(t, CreateDiscoverCommand(), env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "Freebox Server") || !strings.Contains(out, "/api/v8/") {
		t.Errorf("output = %q", out)
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	if err := run(t, CreateRegisterCommand(), env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(env.out.String(), "Registered "+testAppID) {
		t.Errorf("output = %q", env.out.String())
	}
	if _, err := os.Stat(env.tokenFile); err != nil {
		t.Fatalf("token file not written: %v", err)
	}

	// Already registered: nothing is sent.
	before := env.box.Authorizations()
	if err := run(t, CreateRegisterCommand(), env); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if env.box.Authorizations() != before {
		t.Errorf("Authorizations() = %d, want %d", env.box.Authorizations(), before)
	}
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	env.box.Result(http.MethodGet, "/system/", map[string]any{"firmware_version": "4.8.1", "serial": "123"})

	if err := run(t, CreateStatusCommand(), env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "4.8.1") || !strings.Contains(out, "downloader") {
		t.Errorf("output = %q", out)
	}
	if env.box.OpenSessions() != 0 {
		t.Errorf("session left open")
	}
}

func TestStatus_JSONKeepsStdoutClean(t *testing.T) {
	var logOut, logErr bytes.Buffer
	log.SetOutput(&logOut, &logErr)
	log.SetVerbose(true)
	t.Cleanup(func() {
		log.SetOutput(os.Stdout, os.Stderr)
		log.SetVerbose(false)
		log.SetForceStdErr(false)
	})

	env := newTestEnv(t)
	env.register(t)
	env.box.Result(http.MethodGet, "/system/", map[string]any{"firmware_version": "4.8.1"})

	if err := run(t, CreateStatusCommand(), env, "--json"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var status map[string]any
	if err := json.Unmarshal(env.out.Bytes(), &status); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, env.out.String())
	}
	if logOut.Len() != 0 {
		t.Errorf("logs written to stdout: %q", logOut.String())
	}
	if logErr.Len() == 0 {
		t.Error("expected debug logs on stderr")
	}
}

func TestStatus_NotRegistered(t *testing.T) {
	env := newTestEnv(t)
	err := run(t, CreateStatusCommand(), env)
	if !errors.Is(err, fbxerrors.ErrAuthRequired) {
		t.Fatalf("Run() error = %v, want AUTH_REQUIRED", err)
	}
}

func TestDownloads(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	env.box.Result(http.MethodGet, "/downloads/", []map[string]any{
		{"id": 1, "name": "debian.iso", "status": "downloading", "rx_pct": 4250},
		{"id": 2, "name": "arch.iso", "status": "done", "rx_pct": 10000},
	})

	if err := run(t, CreateDownloadsCommand(), env, "--status", "downloading"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "debian.iso") || !strings.Contains(out, "42.50%") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "arch.iso") {
		t.Errorf("filtered task listed: %q", out)
	}
}

func TestDownloads_Add(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)
	env.box.Result(http.MethodPost, "/downloads/add/", map[string]any{"id": 9})

	if err := run(t, CreateDownloadsCommand(), env, "--add", "http://example.com/a.iso"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(env.out.String(), "Queued download 9") {
		t.Errorf("output = %q", env.out.String())
	}
}

func TestForget(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	if err := run(t, CreateForgetCommand(), env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(env.tokenFile); !os.IsNotExist(err) {
		t.Errorf("token file still exists: %v", err)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	if err := run(t, CreateLogoutCommand(), env); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if env.box.Logins() != 1 || env.box.OpenSessions() != 0 {
		t.Errorf("Logins() = %d, OpenSessions() = %d", env.box.Logins(), env.box.OpenSessions())
	}
}

func TestInit_BadFlag(t *testing.T) {
	env := newTestEnv(t)
	if err := CreateStatusCommand().Init([]string{"--nope"}, env.appCtx); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}
