package scenario

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/usecase/verifier"
)

const pollInterval = 250 * time.Millisecond

// Session drives one page. Every wait is bounded by Timing.Action.
type Session struct {
	env  *Env
	page output.PagePort
}

func (s *Session) Page() output.PagePort { return s.page }

func (s *Session) Close() error { return s.page.Close() }

func (s *Session) selectors() entity.Selectors { return s.env.Fixtures.Selectors }

func (s *Session) routes() entity.Routes { return s.env.Fixtures.Routes }

func (s *Session) Goto(ctx context.Context, route string) error {
	return s.page.Navigate(ctx, s.env.URL(route))
}

// OpenLogin loads the login page, retrying the navigation until the form is
// usable.
func (s *Session) OpenLogin(ctx context.Context) error {
	login := s.selectors().Login
	url := s.env.URL(s.routes().Login)

	err := verifier.NavigateWithRetry(ctx, s.page, url,
		[]entity.Locator{login.Username, login.Password, login.Submit},
		s.env.Timing.Ready, s.env.Timing.Navigation, s.env.options("open login page", true)...)
	if err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	return nil
}

// SubmitLogin fills the login form with creds and presses the submit button.
func (s *Session) SubmitLogin(ctx context.Context, creds entity.Credentials) error {
	login := s.selectors().Login
	if err := s.Fill(ctx, login.Username, creds.Username); err != nil {
		return err
	}
	if err := s.Fill(ctx, login.Password, creds.Password); err != nil {
		return err
	}
	return s.Click(ctx, login.Submit)
}

// Login signs in with the configured account and waits for the dashboard.
func (s *Session) Login(ctx context.Context) error {
	if err := s.OpenLogin(ctx); err != nil {
		return err
	}
	if err := s.SubmitLogin(ctx, s.env.Credentials); err != nil {
		return err
	}
	if _, err := s.ExpectURL(ctx, s.routes().Dashboard); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	user := s.selectors().User
	if err := s.Click(ctx, user.Dropdown); err != nil {
		return err
	}
	if err := s.Click(ctx, user.Logout); err != nil {
		return err
	}
	if _, err := s.ExpectURL(ctx, s.routes().Login); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, loc entity.Locator, text string) error {
	if err := s.ExpectVisible(ctx, loc); err != nil {
		return err
	}
	if err := s.page.Locate(loc).Fill(ctx, text); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

func (s *Session) Click(ctx context.Context, loc entity.Locator) error {
	if err := s.ExpectVisible(ctx, loc); err != nil {
		return err
	}
	if err := s.page.Locate(loc).Click(ctx); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (s *Session) ExpectVisible(ctx context.Context, loc entity.Locator) error {
	err := verifier.WaitVisibleFor(ctx, s.page.Locate(loc), s.env.Timing.Action,
		verifier.WithLabel("wait visible "+loc.String()))
	if err != nil {
		return fmt.Errorf("%s not visible: %w", loc, err)
	}
	return nil
}

// IsVisible checks once, without waiting.
func (s *Session) IsVisible(ctx context.Context, loc entity.Locator) bool {
	visible, err := s.page.Locate(loc).Visible(ctx)
	return err == nil && visible
}

// ExpectText waits until the element's text contains want.
func (s *Session) ExpectText(ctx context.Context, loc entity.Locator, want string) error {
	var last string
	accept := func(text string) bool {
		last = text
		return strings.Contains(text, want)
	}

	_, err := verifier.Verify(ctx, s.page.Locate(loc).Text, accept, s.pollPolicy(),
		verifier.WithLabel("wait text "+loc.String()))
	if err != nil {
		return fmt.Errorf("%s: want text containing %q, last saw %q: %w", loc, want, last, err)
	}
	return nil
}

// ExpectCount waits until exactly n elements match loc.
func (s *Session) ExpectCount(ctx context.Context, loc entity.Locator, n int) error {
	last := -1
	accept := func(count int) bool {
		last = count
		return count == n
	}

	_, err := verifier.Verify(ctx, s.page.Locate(loc).Count, accept, s.pollPolicy(),
		verifier.WithLabel("wait count "+loc.String()))
	if err != nil {
		return fmt.Errorf("%s: want %d matches, last saw %d: %w", loc, n, last, err)
	}
	return nil
}

// ExpectURL waits until the page URL contains route.
func (s *Session) ExpectURL(ctx context.Context, route string) (string, error) {
	pattern := regexp.MustCompile(regexp.QuoteMeta(route))
	url, err := verifier.WaitForURL(ctx, s.page, pattern, s.env.Timing.Action)
	if err != nil {
		current, _ := s.page.URL(ctx)
		return "", fmt.Errorf("url %q does not contain %s: %w", current, route, err)
	}
	return url, nil
}

// Screenshot captures a verified screenshot and records it as an artifact.
func (s *Session) Screenshot(ctx context.Context, name string) (string, error) {
	path, err := s.env.Shots.CaptureVerifiedScreenshot(ctx, s.page, name, 0)
	if err != nil {
		return "", err
	}
	s.env.addArtifact(path)
	return path, nil
}

func (s *Session) pollPolicy() entity.VerificationPolicy {
	return entity.VerificationPolicy{
		MaxRetries: verifier.PollsFor(s.env.Timing.Action, pollInterval),
		Delay:      pollInterval,
	}
}
