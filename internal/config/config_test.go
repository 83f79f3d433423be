package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if len(cfg.Stations) != 13 {
		t.Errorf("stations = %d, want 13", len(cfg.Stations))
	}
	if w := cfg.Weights; w.Query != 3 || w.Login != 1 || w.Booking != 2 {
		t.Errorf("weights = %+v, want 3/1/2", w)
	}
	if len(cfg.Users) == 0 || cfg.Users[0].Username != "fdse_microservices" {
		t.Errorf("users = %+v, want the seeded default account", cfg.Users)
	}
	if cfg.Admin.Username != "admin" {
		t.Errorf("admin = %+v", cfg.Admin)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
baseUrl: http://backend:32677
timeout: 10s
weights:
  query: 1
  login: 1
  booking: 8
users:
  - username: alice
    password: secret
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "http://backend:32677" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Weights.Booking != 8 {
		t.Errorf("Weights = %+v", cfg.Weights)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Username != "alice" {
		t.Errorf("Users = %+v, want the override only", cfg.Users)
	}
	// Untouched sections keep their defaults.
	if len(cfg.Stations) != 13 {
		t.Errorf("stations = %d, want the default 13", len(cfg.Stations))
	}
}

func TestLoadConfig_LoadProfile(t *testing.T) {
	path := writeConfig(t, `
loadProfile:
  phases:
    - name: ramp-up
      duration: 30s
      startActors: 1
      endActors: 10
    - name: steady
      duration: 1m
      actors: 10
      rps: 50
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LoadProfile == nil || len(cfg.LoadProfile.Phases) != 2 {
		t.Fatalf("LoadProfile = %+v", cfg.LoadProfile)
	}
	if got := cfg.LoadProfile.TotalDuration(); got != 90*time.Second {
		t.Errorf("TotalDuration = %v, want 90s", got)
	}
	if cfg.LoadProfile.Phases[1].RPS != 50 {
		t.Errorf("phase = %+v", cfg.LoadProfile.Phases[1])
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestValidate_UnknownStationInRoutes(t *testing.T) {
	cfg := Defaults()
	cfg.HighSpeedRoutes["shanghai"] = append(cfg.HighSpeedRoutes["shanghai"], "atlantis")

	if err := cfg.Validate(); err == nil {
		t.Error("expected a validation error for an unknown route station")
	}
}

func TestValidate_EmptyTravelDates(t *testing.T) {
	cfg := Defaults()
	cfg.TravelDates = nil

	if err := cfg.Validate(); err == nil {
		t.Error("expected a validation error for an empty travel date list")
	}
}

func TestValidate_EmptyBaseURL(t *testing.T) {
	cfg := Defaults()
	cfg.BaseURL = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected a validation error for an empty baseUrl")
	}
}

func TestDestinationsFrom(t *testing.T) {
	cfg := &Config{
		Stations:        []string{"a", "b", "c"},
		HighSpeedRoutes: map[string][]string{"a": {"b", "c"}},
		NormalRoutes:    map[string][]string{"a": {"b"}},
	}

	dests := cfg.DestinationsFrom("a")
	if len(dests) != 2 {
		t.Errorf("dests = %v, want b and c deduplicated", dests)
	}
	if got := cfg.DestinationsFrom("c"); len(got) != 0 {
		t.Errorf("dests from c = %v, want none", got)
	}
}

func TestRouteExists(t *testing.T) {
	cfg := Defaults()
	if !cfg.RouteExists("shanghai", "suzhou") {
		t.Error("shanghai -> suzhou should exist")
	}
	if cfg.RouteExists("suzhou", "taiyuan") {
		t.Error("suzhou -> taiyuan should not exist")
	}
}
