package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"
	"unicode"

	"hrm-e2e/internal/application/port/input"
	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/usecase/verifier"

	"golang.org/x/sync/errgroup"
)

var _ input.SuiteRunner = (*Runner)(nil)

// evidenceTimeout bounds evidence collection after an attempt, which runs
// even when the attempt ran out of time.
const evidenceTimeout = 30 * time.Second

// Per-attempt artifact names inside the attempt's results directory.
const (
	videoFile    = "video.mjpeg"
	domFile      = "dom.html"
	finishedShot = "test-finished"
	failedShot   = "test-failed"
)

type RunnerConfig struct {
	BaseURL     string
	Credentials entity.Credentials
	Fixtures    entity.Fixtures
	Timing      Timing

	Workers int
	// Retries is how many times a failed scenario is run again.
	Retries         int
	ScenarioTimeout time.Duration
	Timeout         time.Duration
	ResultsDir      string
	// Video records every attempt's page.
	Video  bool
	Filter *Filter
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Timing:          DefaultTiming(),
		Workers:         4,
		ScenarioTimeout: 15 * time.Minute,
		Timeout:         2 * time.Hour,
		ResultsDir:      "test-results",
		Video:           true,
	}
}

type Runner struct {
	registry *Registry
	browser  output.BrowserPort
	shots    *verifier.Screenshotter
	store    output.ArtifactStore
	reporter output.ReporterPort
	logger   output.LoggerPort
	cfg      RunnerConfig
	now      func() time.Time
}

func NewRunner(
	registry *Registry,
	browser output.BrowserPort,
	shots *verifier.Screenshotter,
	store output.ArtifactStore,
	reporter output.ReporterPort,
	logger output.LoggerPort,
	cfg RunnerConfig,
) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Runner{
		registry: registry,
		browser:  browser,
		shots:    shots,
		store:    store,
		reporter: reporter,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run executes every registered scenario the filter selects.
func (r *Runner) Run(ctx context.Context) (entity.SuiteResult, error) {
	groups := r.registry.Select(r.cfg.Filter)
	r.logger.Info("suite starting",
		"scenarios", countScenarios(groups),
		"filter", r.cfg.Filter.String(),
		"workers", r.cfg.Workers,
		"retries", r.cfg.Retries,
	)
	return r.RunGroups(ctx, groups)
}

type job struct {
	scenario Scenario
	setupErr error
}

// RunGroups runs each group's BeforeAll once, then all scenarios with at
// most Workers in flight. Scenario failures are reported in the result; the
// error is reserved for an interrupted suite.
func (r *Runner) RunGroups(ctx context.Context, groups []Group) (entity.SuiteResult, error) {
	started := r.now()
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var jobs []job
	for _, g := range groups {
		var setupErr error
		if g.BeforeAll != nil && hasRunnable(g) {
			setupErr = r.setup(ctx, g)
		}
		for _, s := range g.Scenarios {
			jobs = append(jobs, job{scenario: s, setupErr: setupErr})
		}
	}

	results := make([]entity.ScenarioResult, len(jobs))
	var eg errgroup.Group
	eg.SetLimit(r.cfg.Workers)
	for i, j := range jobs {
		eg.Go(func() error {
			results[i] = r.runScenario(ctx, j.scenario, j.setupErr)
			return nil
		})
	}
	_ = eg.Wait()

	suite := entity.SuiteResult{
		Started:  started,
		Duration: r.now().Sub(started),
		Results:  results,
	}
	r.reporter.ShowSummary(ctx, suite)
	r.logger.Info("suite finished",
		"passed", suite.Count(entity.ScenarioPassed),
		"failed", suite.Count(entity.ScenarioFailed),
		"skipped", suite.Count(entity.ScenarioSkipped),
		"duration", suite.Duration,
	)

	if ctx.Err() != nil {
		return suite, fmt.Errorf("suite interrupted: %w", context.Cause(ctx))
	}
	return suite, nil
}

func (r *Runner) setup(ctx context.Context, g Group) error {
	log := r.logger.WithField("group", g.Name)
	log.Info("running before all")

	page, err := r.browser.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("before all %s: open page: %w", g.Name, err)
	}
	defer closePage(page, log)

	if err := safeRun(ctx, g.BeforeAll, r.newEnv(page, log)); err != nil {
		log.Error("before all failed", "error", err)
		return fmt.Errorf("before all %s: %w", g.Name, err)
	}
	return nil
}

func (r *Runner) runScenario(ctx context.Context, s Scenario, setupErr error) entity.ScenarioResult {
	result := entity.ScenarioResult{
		Name:   s.Name,
		Group:  s.Group,
		Tags:   s.Tags,
		Status: entity.ScenarioFailed,
	}

	if s.Skip != "" {
		result.Status = entity.ScenarioSkipped
		result.Error = s.Skip
		r.reporter.ShowScenarioResult(ctx, result)
		return result
	}

	log := r.logger.WithField("scenario", s.ID())
	r.reporter.ShowScenarioStart(ctx, s.ID())
	started := r.now()

	if setupErr != nil {
		result.Error = setupErr.Error()
	} else {
		for attempt := 1; attempt <= r.cfg.Retries+1; attempt++ {
			result.Attempts = attempt
			artifacts, err := r.attempt(ctx, s, attempt, log)
			result.Artifacts = append(result.Artifacts, artifacts...)
			if err == nil {
				result.Status = entity.ScenarioPassed
				result.Error = ""
				break
			}

			result.Error = err.Error()
			log.Error("scenario failed", "attempt", attempt, "error", err)
			if ctx.Err() != nil || attempt > r.cfg.Retries {
				break
			}
			r.reporter.ShowRetry(ctx, s.ID(), attempt, err, 0)
		}
	}

	result.Duration = r.now().Sub(started)
	r.reporter.ShowScenarioResult(ctx, result)
	return result
}

// attempt runs s once on a fresh page and returns the artifacts it produced.
// Every attempt leaves a final screenshot and its recording under
// attemptDir; a failed one also leaves a DOM snapshot.
func (r *Runner) attempt(ctx context.Context, s Scenario, attempt int, log output.LoggerPort) ([]string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = r.cfg.ScenarioTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	page, err := r.browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer closePage(page, log)

	recording := false
	if r.cfg.Video {
		if err := page.StartRecording(ctx); err != nil {
			log.Warn("recording not started", "error", err)
		} else {
			recording = true
		}
	}

	env := r.newEnv(page, log)
	err = safeRun(ctx, s.Run, env)
	r.collectEvidence(ctx, r.attemptDir(s, attempt), env, recording, err)
	return env.Artifacts(), err
}

func (r *Runner) collectEvidence(ctx context.Context, dir string, env *Env, recording bool, runErr error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), evidenceTimeout)
	defer cancel()

	name := finishedShot
	if runErr != nil {
		name = failedShot
	}
	if path, err := r.shots.In(dir).CaptureVerifiedScreenshot(ctx, env.Page, name, 0); err != nil {
		env.Logger.Warn("final screenshot not captured", "error", err)
	} else {
		env.addArtifact(path)
	}

	if runErr != nil {
		r.saveSnapshot(ctx, dir, env)
	}
	if recording {
		r.saveRecording(ctx, dir, env)
	}
}

func (r *Runner) saveSnapshot(ctx context.Context, dir string, env *Env) {
	html, err := env.Page.HTML(ctx)
	if err != nil {
		env.Logger.Warn("failure snapshot not captured", "error", err)
		return
	}
	path := filepath.Join(dir, domFile)
	if err := r.store.Save(ctx, path, []byte(html)); err != nil {
		env.Logger.Warn("failure snapshot not saved", "path", path, "error", err)
		return
	}
	env.addArtifact(path)
}

func (r *Runner) saveRecording(ctx context.Context, dir string, env *Env) {
	rec, err := env.Page.StopRecording(ctx)
	if err != nil {
		env.Logger.Warn("recording not stopped cleanly", "error", err)
	}
	if rec == nil || rec.Frames == 0 {
		return
	}
	path := filepath.Join(dir, videoFile)
	if err := r.store.Save(ctx, path, rec.Data); err != nil {
		env.Logger.Warn("recording not saved", "path", path, "error", err)
		return
	}
	env.Logger.Debug("recording saved", "path", path, "frames", rec.Frames)
	env.addArtifact(path)
}

// attemptDir is <ResultsDir>/<scenario slug>, suffixed -retryN for reruns.
func (r *Runner) attemptDir(s Scenario, attempt int) string {
	name := slug(s.ID())
	if attempt > 1 {
		name = fmt.Sprintf("%s-retry%d", name, attempt-1)
	}
	return filepath.Join(r.cfg.ResultsDir, name)
}

func (r *Runner) newEnv(page output.PagePort, log output.LoggerPort) *Env {
	return &Env{
		BaseURL:     r.cfg.BaseURL,
		Fixtures:    r.cfg.Fixtures,
		Credentials: r.cfg.Credentials,
		Timing:      r.cfg.Timing,
		Browser:     r.browser,
		Page:        page,
		Shots:       r.shots,
		Logger:      log,
		Hooks:       []verifier.RetryHook{r.reporter.ShowRetry},
	}
}

func safeRun(ctx context.Context, run RunFunc, env *Env) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scenario panicked: %v\n%s", p, debug.Stack())
		}
	}()
	return run(ctx, env)
}

func closePage(page output.PagePort, log output.LoggerPort) {
	if err := page.Close(); err != nil {
		log.Warn("close page failed", "error", err)
	}
}

func hasRunnable(g Group) bool {
	for _, s := range g.Scenarios {
		if s.Skip == "" {
			return true
		}
	}
	return false
}

func countScenarios(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Scenarios)
	}
	return n
}

// slug turns a scenario ID into a file name fragment.
func slug(id string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(id) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
