// Command ticketstorm drives load against a train-ticket backend: a weighted
// mix of trip queries, logins and full booking journeys, with text or JSON
// reporting and optional threshold checks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ticketstorm/internal/actions"
	"ticketstorm/internal/client"
	"ticketstorm/internal/collector"
	"ticketstorm/internal/config"
	"ticketstorm/internal/coordinator"
	"ticketstorm/internal/core"
	"ticketstorm/internal/data"
	"ticketstorm/internal/flow"
	"ticketstorm/internal/progress"
	"ticketstorm/internal/ratelimit"
)

const (
	ExitSuccess         = 0
	ExitThresholdFailed = 1
	ExitError           = 2
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional, built-in defaults otherwise)")
	baseURL := flag.String("base-url", "", "backend base URL (overrides config)")
	actors := flag.Int("actors", 5, "number of initial actors to spawn")
	duration := flag.Duration("duration", 10*time.Second, "test duration")
	output := flag.String("output", "text", "output format: text, json")
	quiet := flag.Bool("quiet", false, "suppress progress output during test")
	verbose := flag.Bool("verbose", false, "enable debug output (request/response logging)")
	seed := flag.Int64("seed", 0, "random seed for reproducible runs (0 = random)")
	maxIterations := flag.Int("max-iterations", 0, "max iterations per actor (0 = unlimited)")
	warmup := flag.Int("warmup", 0, "warmup iterations before collecting metrics (per-actor)")
	flag.Parse()

	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "error: --output must be 'text' or 'json', got %q\n", *output)
		os.Exit(ExitError)
	}

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	decider := flow.NewDecider()
	if *seed != 0 {
		decider = flow.NewSeeded(*seed)
	}

	coll := collector.NewCollector()
	coord := coordinator.NewCoordinator(coll)

	journey, err := buildJourney(cfg, coll, decider, *configPath, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	go func() {
		<-sigCh
		interrupted = true
		if !*quiet {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		}
		cancel()
	}()

	prog := progress.NewProgress(coll, *quiet)

	// CLI flags override config file values.
	runnerConfig := core.RunnerConfig{
		MaxIterations: cfg.Execution.MaxIterations,
		WarmupIters:   cfg.Execution.WarmupIterations,
	}
	if *maxIterations > 0 {
		runnerConfig.MaxIterations = *maxIterations
	}
	if *warmup > 0 {
		runnerConfig.WarmupIters = *warmup
	}

	if cfg.LoadProfile != nil && len(cfg.LoadProfile.Phases) > 0 {
		runWithProfile(ctx, cfg, coord, journey, coll, prog, runnerConfig)
	} else {
		runClassic(ctx, cfg, coord, journey, coll, prog, *actors, *duration, runnerConfig)
	}

	prog.Stop()

	metrics := coll.Compute()

	var thresholdResults *collector.ThresholdResults
	if cfg.Thresholds != nil {
		thresholdResults = cfg.Thresholds.Check(metrics)
	}

	if *output == "json" {
		coll.PrintJSON(os.Stdout, metrics, thresholdResults)
	} else {
		coll.PrintText(os.Stdout, metrics, thresholdResults)
	}

	if interrupted {
		os.Exit(ExitSuccess)
	}

	if thresholdResults != nil && !thresholdResults.Passed {
		if *output == "text" {
			fmt.Fprintln(os.Stderr, "\nThreshold check failed!")
		}
		os.Exit(ExitThresholdFailed)
	}

	os.Exit(ExitSuccess)
}

// buildJourney wires the transport chain and the three flows into the
// weighted workflow every actor runs.
func buildJourney(cfg *config.Config, coll *collector.Collector, decider flow.Decider, configPath string, verbose bool) (*flow.Journey, error) {
	var transport client.Transport = client.NewResty(cfg.BaseURL, cfg.Timeout)
	if verbose {
		transport = client.NewDebugging(transport, client.NewDebugLogger(os.Stderr))
	}
	transport = client.NewReporting(transport, coll)

	creds, err := credentialSource(cfg, decider, configPath)
	if err != nil {
		return nil, err
	}

	auth := actions.NewAuth(transport)
	travel := actions.NewTravel(transport)
	contacts := actions.NewContacts(transport)

	return &flow.Journey{
		Booking: &flow.Booking{
			Auth:     auth,
			Travel:   travel,
			Contacts: contacts,
			Config:   cfg,
			Creds:    creds,
			Decide:   decider,
		},
		Query:   &flow.Query{Travel: travel, Config: cfg, Decide: decider},
		Login:   &flow.Login{Auth: auth, Creds: creds, Decide: decider},
		Weights: cfg.Weights,
		Decide:  decider,
		Clock:   core.RealClock{},
	}, nil
}

// credentialSource prefers an external credential file when configured,
// falling back to the in-config pool.
func credentialSource(cfg *config.Config, decider flow.Decider, configPath string) (flow.CredentialSource, error) {
	if cfg.UsersFile == "" {
		return &flow.PoolCredentials{Users: cfg.Users, Decide: decider}, nil
	}
	mode := data.Mode(cfg.UsersMode)
	source, err := data.LoadFile("users", cfg.UsersFile, mode, filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("loading credential file: %w", err)
	}
	return source, nil
}

func runClassic(ctx context.Context, cfg *config.Config, coord *coordinator.Coordinator, workflow core.Workflow, coll *collector.Collector, prog *progress.Progress, actors int, duration time.Duration, runnerConfig core.RunnerConfig) {
	if actors < 1 {
		fmt.Fprintln(os.Stderr, "error: --actors must be >= 1")
		os.Exit(ExitError)
	}

	prog.Printf("ticketstorm starting: %d actors, duration %v, target %s",
		actors, duration, cfg.BaseURL)

	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	prog.Start()
	if runnerConfig.MaxIterations > 0 || runnerConfig.WarmupIters > 0 {
		coord.SpawnWithConfig(ctx, actors, workflow, runnerConfig)
	} else {
		coord.Spawn(ctx, actors, workflow)
	}
	coord.Wait()
	coll.Close()
}

func runWithProfile(ctx context.Context, cfg *config.Config, coord *coordinator.Coordinator, journey *flow.Journey, coll *collector.Collector, prog *progress.Progress, runnerConfig core.RunnerConfig) {
	profile := cfg.LoadProfile

	prog.Printf("ticketstorm starting with load profile, target %s", cfg.BaseURL)

	// First non-zero RPS initializes the rate limiter.
	var rateLimiter *ratelimit.RateLimiter
	for _, phase := range profile.Phases {
		if phase.RPS > 0 {
			rateLimiter = ratelimit.NewRateLimiter(phase.RPS)
			break
		}
	}
	journey.Limiter = rateLimiter

	totalDuration := profile.TotalDuration() + 5*time.Second
	ctx, cancel := context.WithTimeout(ctx, totalDuration)
	defer cancel()

	prog.Start()
	coord.RunWithProfile(ctx, profile, journey, rateLimiter, prog, runnerConfig)
	coord.Wait()
	coll.Close()
}
