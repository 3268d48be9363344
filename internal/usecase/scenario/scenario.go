// Package scenario holds the end-to-end scenarios for the HR application and
// the runner that executes them against a browser.
package scenario

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/usecase/verifier"
)

var ErrSiteUnreachable = errors.New("demo site is not reachable")

type RunFunc func(ctx context.Context, env *Env) error

type Scenario struct {
	Name  string
	Group string
	Tags  []string
	// Skip marks a scenario that is listed but never run, with the reason.
	Skip string
	// Timeout overrides the runner's per-scenario timeout when positive.
	Timeout time.Duration
	Run     RunFunc
}

// ID is the scenario name qualified by its group.
func (s Scenario) ID() string {
	if s.Group == "" {
		return s.Name
	}
	return s.Group + "/" + s.Name
}

// Title is what the tag filter matches against.
func (s Scenario) Title() string {
	if len(s.Tags) == 0 {
		return s.ID()
	}
	return strings.Join(s.Tags, " ") + " " + s.ID()
}

func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Group bundles scenarios with a setup that runs once before any of them.
type Group struct {
	Name      string
	BeforeAll RunFunc
	Scenarios []Scenario
}

type Timing struct {
	// Action bounds one element or URL wait.
	Action time.Duration
	// Ready bounds the wait for page readiness after a navigation.
	Ready        time.Duration
	Navigation   entity.VerificationPolicy
	Reachability time.Duration
	// Idle is how long the inactivity scenario stays idle.
	Idle time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Action: 20 * time.Second,
		Ready:  20 * time.Second,
		Navigation: entity.VerificationPolicy{
			MaxRetries:     3,
			AttemptTimeout: 60 * time.Second,
			Delay:          5 * time.Second,
		},
		Reachability: 30 * time.Second,
		Idle:         5 * time.Minute,
	}
}

// Env is everything a scenario can touch. A fresh Env with its own page is
// built for every scenario attempt.
type Env struct {
	BaseURL     string
	Fixtures    entity.Fixtures
	Credentials entity.Credentials
	Timing      Timing

	Browser output.BrowserPort
	Page    output.PagePort
	Shots   *verifier.Screenshotter
	Logger  output.LoggerPort
	Hooks   []verifier.RetryHook

	mu        sync.Mutex
	artifacts []string
}

func (e *Env) addArtifact(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.artifacts = append(e.artifacts, path)
}

// Artifacts lists the files written during the scenario so far.
func (e *Env) Artifacts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.artifacts...)
}

// Session returns helpers bound to the scenario's own page.
func (e *Env) Session() *Session {
	return &Session{env: e, page: e.Page}
}

// NewSession opens an extra isolated page. The caller closes it.
func (e *Env) NewSession(ctx context.Context) (*Session, error) {
	page, err := e.Browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{env: e, page: page}, nil
}

func (e *Env) URL(route string) string {
	return strings.TrimRight(e.BaseURL, "/") + "/" + strings.TrimLeft(route, "/")
}

// options labels a verification. Reported verifications also log soft
// failures and notify the retry hooks; element polling stays quiet.
func (e *Env) options(label string, reported bool) []verifier.Option {
	opts := []verifier.Option{verifier.WithLabel(label)}
	if !reported {
		return opts
	}
	opts = append(opts, verifier.WithLogger(e.Logger))
	for _, hook := range e.Hooks {
		opts = append(opts, verifier.WithRetryHook(hook))
	}
	return opts
}
