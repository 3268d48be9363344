package di

import (
	"context"
	"fmt"

	"hrm-e2e/internal/application/port/input"
	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/infrastructure/browser/rod"
	"hrm-e2e/internal/infrastructure/env"
	"hrm-e2e/internal/infrastructure/fixtures"
	"hrm-e2e/internal/infrastructure/logger"
	"hrm-e2e/internal/infrastructure/storage/fs"
	"hrm-e2e/internal/infrastructure/userinteraction"
	"hrm-e2e/internal/usecase/prune"
	"hrm-e2e/internal/usecase/scenario"
	"hrm-e2e/internal/usecase/verifier"
)

type Container struct {
	Config   env.Config
	Fixtures entity.Fixtures
	Browser  output.BrowserPort
	Logger   output.LoggerPort
	Store    output.ArtifactStore
	Reporter output.ReporterPort
	Registry *scenario.Registry
	Suite    input.SuiteRunner
}

// NewLogger opens the run log described by cfg.Log.
func NewLogger(cfg env.Config, name string) (*logger.LoggerAdapter, error) {
	logCfg := logger.DefaultConfig(name)
	logCfg.Dir = cfg.Log.Dir
	logCfg.Level = cfg.Log.Level
	logCfg.Console = cfg.Log.Console

	log, err := logger.NewLoggerAdapter(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}

// NewContainer wires the suite: fixtures, browser, screenshot verification,
// the scenario registry and the runner. The caller owns Close.
func NewContainer(ctx context.Context, cfg env.Config) (*Container, error) {
	log, err := NewLogger(cfg, "suite")
	if err != nil {
		return nil, err
	}

	fx, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	filter, err := scenario.NewFilter(cfg.Suite.Grep)
	if err != nil {
		log.Close()
		return nil, err
	}

	browser, err := rod.NewBrowserAdapter(ctx, browserConfig(cfg, fx))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	store := fs.NewFileStore(".")
	reporter := userinteraction.NewConsoleReporter()

	shots := verifier.NewScreenshotter(store, log, screenshotConfig(cfg), reporter.ShowRetry)

	registry := scenario.NewSuiteRegistry()
	runner := scenario.NewRunner(registry, browser, shots, store, reporter, log, runnerConfig(cfg, fx, filter))

	return &Container{
		Config:   cfg,
		Fixtures: fx,
		Browser:  browser,
		Logger:   log,
		Store:    store,
		Reporter: reporter,
		Registry: registry,
		Suite:    runner,
	}, nil
}

// NewPruner builds the artifact pruner from cfg.Prune.
func NewPruner(cfg env.Config, log output.LoggerPort, dryRun bool) *prune.Pruner {
	pc := prune.DefaultConfig()
	pc.Root = cfg.Prune.Root
	pc.Retention = cfg.Retention()
	pc.DryRun = dryRun
	if len(cfg.Prune.Patterns) > 0 {
		pc.Patterns = cfg.Prune.Patterns
	}
	return prune.New(pc, log)
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}

func browserConfig(cfg env.Config, fx entity.Fixtures) rod.BrowserConfig {
	bc := rod.DefaultConfig()
	bc.Headless = cfg.Browser.Headless
	bc.SlowMotion = cfg.Browser.SlowMotion
	bc.Timeout = cfg.Browser.ActionTimeout
	bc.Bin = cfg.Browser.Bin
	bc.DevTools = cfg.Browser.DevTools
	bc.Trace = cfg.Browser.Trace
	bc.Viewport = rod.Viewport{Width: cfg.Browser.ViewportWidth, Height: cfg.Browser.ViewportHeight}
	bc.Video = rod.Viewport{Width: cfg.Browser.VideoWidth, Height: cfg.Browser.VideoHeight}
	bc.Mask = fx.Selectors.ScreenshotMask
	return bc
}

func screenshotConfig(cfg env.Config) verifier.ScreenshotConfig {
	sc := verifier.DefaultScreenshotConfig()
	sc.Dir = cfg.Screenshot.Dir
	sc.Policy = cfg.ScreenshotPolicy()
	sc.Check = verifier.ContentCheck{
		SampleSize: cfg.Screenshot.SampleSize,
		Low:        cfg.Screenshot.Low,
		High:       cfg.Screenshot.High,
		MinRatio:   cfg.Screenshot.MinRatio,
	}
	return sc
}

func runnerConfig(cfg env.Config, fx entity.Fixtures, filter *scenario.Filter) scenario.RunnerConfig {
	timing := scenario.DefaultTiming()
	timing.Ready = cfg.Navigation.ReadyTimeout
	timing.Navigation = cfg.NavigationPolicy()

	rc := scenario.DefaultRunnerConfig()
	rc.BaseURL = cfg.BaseURL
	rc.Credentials = entity.Credentials{Username: cfg.Username, Password: cfg.Password}
	rc.Fixtures = fx
	rc.Timing = timing
	rc.Workers = cfg.Suite.Workers
	rc.Retries = cfg.Suite.Retries
	rc.ScenarioTimeout = cfg.Suite.ScenarioTimeout
	rc.Timeout = cfg.Suite.Timeout
	rc.ResultsDir = cfg.Suite.ResultsDir
	rc.Video = cfg.Suite.Video
	rc.Filter = filter
	return rc
}
