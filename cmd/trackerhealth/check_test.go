package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonwraymond/trackerhealth/auth"
	"github.com/jonwraymond/trackerhealth/config"
)

const testHash = "c12fe1c06bba254a9dc9f519b335aa7c1367a88a"

const testFixture = `trackers:
  udp://a.example:80:
    complete: 12
    incomplete: 3
  udp://b.example:80:
    complete: 7
    incomplete: 4
  udp://dead.example:80:
    error: connection refused
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckCommandJSON(t *testing.T) {
	fixtures := writeFile(t, "fixtures.yaml", testFixture)

	out, err := runCLI(t, "--log-level", "error", "check", "--json", "--fixtures", fixtures,
		"-t", "udp://a.example:80", "-t", "udp://b.example:80", "-t", "udp://dead.example:80",
		testHash)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	var entries []jsonEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Seeds != 10 || e.Peers != 4 {
		t.Errorf("seeds/peers = %d/%d, want 10/4", e.Seeds, e.Peers)
	}
	if len(e.Extra) != 3 {
		t.Errorf("len(extra) = %d, want 3", len(e.Extra))
	}
}

func TestCheckCommandBlacklist(t *testing.T) {
	fixtures := writeFile(t, "fixtures.yaml", testFixture)

	out, err := runCLI(t, "--log-level", "error", "check", "--json", "--fixtures", fixtures,
		"-t", "udp://a.example:80", "-t", "udp://b.example:80", "-b", `b\.example`,
		testHash)
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	var entries []jsonEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(entries[0].Extra) != 1 || entries[0].Seeds != 12 {
		t.Errorf("entry = %+v, want only udp://a.example:80", entries[0])
	}
}

func TestCheckCommandFatal(t *testing.T) {
	out, err := runCLI(t, "--log-level", "error", "check", "--no-color", testHash, "not-a-source")
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("err = %v, want %v", err, errChecksFailed)
	}
	if strings.Count(out, "FAIL") != 2 {
		t.Errorf("output = %q, want two failures", out)
	}
	if !strings.Contains(out, "no trackers") {
		t.Errorf("output = %q, want the no-trackers error", out)
	}
}

func TestCheckCommandTorrentFile(t *testing.T) {
	fixtures := writeFile(t, "fixtures.yaml", testFixture)
	torrent := writeFile(t, "test.torrent", "d8:announce18:udp://a.example:804:infod4:name4:testee")

	out, err := runCLI(t, "--log-level", "error", "check", "--no-color", "--fixtures", fixtures, torrent)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "seeds 12  peers 3") {
		t.Errorf("output = %q, want seeds 12 peers 3", out)
	}
}

func TestCheckCommandFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no sources", []string{"check"}},
		{"zero concurrency", []string{"check", "--concurrency", "0", testHash}},
		{"negative timeout", []string{"check", "--timeout", "-1s", testHash}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReadSource(t *testing.T) {
	path := writeFile(t, "x.torrent", "d4:infodee")

	got, err := readSource(path)
	if err != nil || got != "d4:infodee" {
		t.Errorf("readSource(file) = %q, %v; want file content", got, err)
	}

	got, err = readSource(testHash)
	if err != nil || got != testHash {
		t.Errorf("readSource(hash) = %q, %v; want it unchanged", got, err)
	}

	dir := t.TempDir()
	if got, _ := readSource(dir); got != dir {
		t.Errorf("readSource(dir) = %q, want it unchanged", got)
	}
}

func TestNewScraper(t *testing.T) {
	cfg := config.Default()
	reg, err := newScraper(cfg)
	if err != nil {
		t.Fatalf("newScraper: %v", err)
	}
	if n := len(reg.Schemes()); n != 0 {
		t.Errorf("schemes without fixtures = %d, want 0", n)
	}

	cfg.Fixtures = writeFile(t, "fixtures.yaml", testFixture+"  http://c.example/announce:\n    complete: 1\n")
	reg, err = newScraper(cfg)
	if err != nil {
		t.Fatalf("newScraper: %v", err)
	}
	if got := strings.Join(reg.Schemes(), ","); got != "http,udp" {
		t.Errorf("schemes = %q, want http,udp", got)
	}

	cfg.Fixtures = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := newScraper(cfg); err == nil {
		t.Error("expected an error for a missing fixture file")
	}
}

func TestNewExecutor(t *testing.T) {
	cfg := config.Default().Server
	exec := newExecutor(cfg)
	if exec.RateLimiter() == nil || exec.Bulkhead() == nil {
		t.Fatal("default executor should rate limit and bound concurrency")
	}

	cfg.RateLimit, cfg.MaxConcurrent = 0, 0
	exec = newExecutor(cfg)
	if exec.RateLimiter() != nil || exec.Bulkhead() != nil {
		t.Error("disabled limits should not be installed")
	}

	err := exec.Execute(context.Background(), "c", 10*time.Millisecond, func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no request budget")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() = %v", err)
	}
}

func TestNewAuthenticator(t *testing.T) {
	a := newAuthenticator(config.AuthConfig{
		Enabled: true,
		APIKeys: []config.APIKey{{Name: "ci", Key: "k-123", Roles: []string{"checker"}}},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(auth.DefaultAPIKeyHeader, "k-123")
	res, err := a.Authenticate(context.Background(), auth.NewAuthRequest(req))
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !res.Authenticated || res.Identity.Principal != "ci" {
		t.Errorf("result = %+v, want principal ci", res)
	}
}
