// Package config handles YAML configuration parsing and the built-in test data.
package config

import (
	"fmt"
	"os"
	"time"

	"ticketstorm/internal/collector"

	"gopkg.in/yaml.v3"
)

// Credential is one username/password pair from the credential pool.
type Credential struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Weights controls how often each flow is picked per iteration.
type Weights struct {
	Query   int `yaml:"query"`
	Login   int `yaml:"login"`
	Booking int `yaml:"booking"`
}

// ExecutionConfig controls iteration-level execution behavior.
type ExecutionConfig struct {
	MaxIterations    int `yaml:"max_iterations"`
	WarmupIterations int `yaml:"warmup_iterations"`
}

// LoadProfile defines the load pattern for a test.
type LoadProfile struct {
	Phases []Phase `yaml:"phases"`
}

// TotalDuration returns the sum of all phase durations.
func (lp *LoadProfile) TotalDuration() time.Duration {
	var total time.Duration
	for _, p := range lp.Phases {
		total += p.Duration
	}
	return total
}

// Phase represents a single phase in the load profile.
type Phase struct {
	Name        string        `yaml:"name"`
	Duration    time.Duration `yaml:"duration"`
	Actors      int           `yaml:"actors"`
	StartActors int           `yaml:"startActors"`
	EndActors   int           `yaml:"endActors"`
	RPS         int           `yaml:"rps"`
}

// Config is the root configuration structure.
type Config struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`

	Stations        []string            `yaml:"stations"`
	HighSpeedRoutes map[string][]string `yaml:"highSpeedRoutes"`
	NormalRoutes    map[string][]string `yaml:"normalRoutes"`
	TravelDates     []string            `yaml:"travelDates"`

	Users     []Credential `yaml:"users"`
	UsersFile string       `yaml:"usersFile"` // optional CSV/JSON credential pool
	UsersMode string       `yaml:"usersMode"` // "sequential" or "random"
	Admin     Credential   `yaml:"admin"`

	Weights     Weights               `yaml:"weights"`
	LoadProfile *LoadProfile          `yaml:"loadProfile,omitempty"`
	Thresholds  *collector.Thresholds `yaml:"thresholds,omitempty"`
	Execution   ExecutionConfig       `yaml:"execution,omitempty"`
}

// Defaults returns the built-in configuration: the station list, the
// per-station route tables, the travel date pool and the seeded credentials
// of the target system.
func Defaults() *Config {
	return &Config{
		BaseURL: "http://localhost:32677",
		Timeout: 30 * time.Second,
		Stations: []string{
			"shijiazhuang", "jiaxingnan", "hangzhou", "nanjing", "taiyuan",
			"wuxi", "jinan", "shanghaihongqiao", "shanghai", "beijing",
			"xuzhou", "zhenjiang", "suzhou",
		},
		HighSpeedRoutes: map[string][]string{
			"shanghai":         {"suzhou", "nanjing"},
			"suzhou":           {"shanghai"},
			"nanjing":          {"shanghai", "zhenjiang"},
			"zhenjiang":        {"shanghai"},
			"shanghaihongqiao": {"jiaxingnan", "hangzhou"},
			"jiaxingnan":       {"hangzhou"},
			"beijing":          {"shijiazhuang", "shanghai"},
		},
		NormalRoutes: map[string][]string{
			"shanghai": {"nanjing", "taiyuan"},
			"nanjing":  {"shanghai", "xuzhou"},
			"taiyuan":  {"shijiazhuang", "shanghai"},
			"xuzhou":   {"jinan"},
			"jinan":    {"beijing"},
			"beijing":  {"taiyuan"},
		},
		TravelDates: []string{"2024-12-25", "2024-12-26", "2024-12-27"},
		Users: []Credential{
			{Username: "fdse_microservices", Password: "111111"},
		},
		Admin:   Credential{Username: "admin", Password: "222222"},
		Weights: Weights{Query: 3, Login: 1, Booking: 2},
	}
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("baseUrl is required")
	}
	if len(c.Stations) == 0 {
		return fmt.Errorf("station list is empty")
	}
	if len(c.TravelDates) == 0 {
		return fmt.Errorf("travel date list is empty")
	}
	known := make(map[string]bool, len(c.Stations))
	for _, s := range c.Stations {
		known[s] = true
	}
	for _, table := range []map[string][]string{c.HighSpeedRoutes, c.NormalRoutes} {
		for start, ends := range table {
			if !known[start] {
				return fmt.Errorf("route table references unknown station %q", start)
			}
			for _, end := range ends {
				if !known[end] {
					return fmt.Errorf("route %s -> %s references unknown station", start, end)
				}
			}
		}
	}
	return nil
}

// DestinationsFrom returns the stations reachable from start via either route
// table, deduplicated. An empty result means no service leaves the station.
func (c *Config) DestinationsFrom(start string) []string {
	seen := make(map[string]bool)
	var dests []string
	for _, table := range []map[string][]string{c.HighSpeedRoutes, c.NormalRoutes} {
		for _, end := range table[start] {
			if !seen[end] {
				seen[end] = true
				dests = append(dests, end)
			}
		}
	}
	return dests
}

// RouteExists reports whether (start, end) appears in either route table.
func (c *Config) RouteExists(start, end string) bool {
	for _, table := range []map[string][]string{c.HighSpeedRoutes, c.NormalRoutes} {
		for _, e := range table[start] {
			if e == end {
				return true
			}
		}
	}
	return false
}
