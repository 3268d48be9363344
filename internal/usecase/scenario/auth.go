package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const invalidCredentialsText = "Invalid credentials"

func authGroup() Group {
	return Group{
		Name:      "auth",
		BeforeAll: checkReachable,
		Scenarios: []Scenario{
			{Name: "successful login with valid credentials", Run: onLoginPage(validLogin)},
			{Name: "failed login with invalid credentials", Run: onLoginPage(invalidLogin)},
			{Name: "navigation to admin module", Run: onLoginPage(adminNavigation)},
			{Name: "successful logout", Run: onLoginPage(logout)},
			{Name: "session validation after logout", Run: onLoginPage(sessionAfterLogout)},
			{Name: "empty credentials validation", Tags: []string{"@boundary"}, Run: onLoginPage(emptyCredentials)},
			{Name: "case sensitive password validation", Tags: []string{"@security"}, Run: onLoginPage(caseSensitivePassword)},
			{Name: "long input handling", Tags: []string{"@boundary"}, Run: onLoginPage(longInput)},
			{
				Name: "session timeout after inactivity",
				Tags: []string{"@security"},
				Skip: "needs five minutes of inactivity",
				// idle time plus room for login and the redirect checks
				Timeout: 6*time.Minute + 40*time.Second,
				Run:     inactivityTimeout,
			},
			{Name: "concurrent login", Tags: []string{"@security"}, Timeout: time.Minute, Run: concurrentLogin},
		},
	}
}

// checkReachable fails the whole group early when the site cannot be loaded.
func checkReachable(ctx context.Context, env *Env) error {
	ctx, cancel := context.WithTimeout(ctx, env.Timing.Reachability)
	defer cancel()

	if err := env.Page.Navigate(ctx, env.URL(env.Fixtures.Routes.Root)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSiteUnreachable, env.BaseURL, err)
	}
	return nil
}

func onLoginPage(run RunFunc) RunFunc {
	return func(ctx context.Context, env *Env) error {
		if err := env.Session().OpenLogin(ctx); err != nil {
			return err
		}
		return run(ctx, env)
	}
}

func validLogin(ctx context.Context, env *Env) error {
	s := env.Session()
	sel := env.Fixtures.Selectors

	err := func() error {
		if err := s.ExpectVisible(ctx, sel.Login.Username); err != nil {
			return err
		}
		if err := s.ExpectVisible(ctx, sel.Login.Password); err != nil {
			return err
		}
		if _, err := s.Screenshot(ctx, "login-page-initial"); err != nil {
			return err
		}

		if err := s.Fill(ctx, sel.Login.Username, env.Credentials.Username); err != nil {
			return err
		}
		if err := s.Fill(ctx, sel.Login.Password, env.Credentials.Password); err != nil {
			return err
		}
		if _, err := s.Screenshot(ctx, "login-form-filled"); err != nil {
			return err
		}

		if err := s.Click(ctx, sel.Login.Submit); err != nil {
			return err
		}
		if _, err := s.ExpectURL(ctx, env.Fixtures.Routes.Dashboard); err != nil {
			return err
		}
		if err := s.ExpectText(ctx, sel.Dashboard.Header, "Dashboard"); err != nil {
			return err
		}
		_, err := s.Screenshot(ctx, "dashboard-loaded")
		return err
	}()
	if err != nil {
		env.Logger.Error("login test failed", "error", err)
		if _, shotErr := s.Screenshot(ctx, "login-error"); shotErr != nil {
			env.Logger.Warn("error screenshot failed", "error", shotErr)
		}
		return err
	}
	return nil
}

func invalidLogin(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.SubmitLogin(ctx, env.Fixtures.Data.Credentials.Invalid); err != nil {
		return err
	}
	if err := s.ExpectText(ctx, env.Fixtures.Selectors.Login.ErrorAlert, invalidCredentialsText); err != nil {
		return err
	}
	_, err := s.ExpectURL(ctx, env.Fixtures.Routes.Login)
	return err
}

func adminNavigation(ctx context.Context, env *Env) error {
	s := env.Session()
	admin := env.Fixtures.Selectors.Admin

	if err := s.SubmitLogin(ctx, env.Credentials); err != nil {
		return err
	}
	if err := s.Click(ctx, admin.Menu); err != nil {
		return err
	}
	if _, err := s.ExpectURL(ctx, env.Fixtures.Routes.Admin); err != nil {
		return err
	}
	return s.ExpectVisible(ctx, admin.Header)
}

func logout(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.SubmitLogin(ctx, env.Credentials); err != nil {
		return err
	}
	if err := s.Logout(ctx); err != nil {
		return err
	}
	return s.ExpectVisible(ctx, env.Fixtures.Selectors.Login.Username)
}

func sessionAfterLogout(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.SubmitLogin(ctx, env.Credentials); err != nil {
		return err
	}
	if err := s.Logout(ctx); err != nil {
		return err
	}
	if err := s.Goto(ctx, env.Fixtures.Routes.Dashboard); err != nil {
		return err
	}
	_, err := s.ExpectURL(ctx, env.Fixtures.Routes.Login)
	return err
}

func emptyCredentials(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.SubmitLogin(ctx, env.Fixtures.Data.Credentials.Empty); err != nil {
		return err
	}
	// one message under each field
	if err := s.ExpectCount(ctx, env.Fixtures.Selectors.Login.RequiredField, 2); err != nil {
		return err
	}
	_, err := s.ExpectURL(ctx, env.Fixtures.Routes.Login)
	return err
}

func caseSensitivePassword(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.SubmitLogin(ctx, env.Fixtures.Data.Credentials.CaseSensitive); err != nil {
		return err
	}
	return s.ExpectText(ctx, env.Fixtures.Selectors.Login.ErrorAlert, invalidCredentialsText)
}

func longInput(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.SubmitLogin(ctx, env.Fixtures.Data.Credentials.LongInput); err != nil {
		return err
	}
	return s.ExpectText(ctx, env.Fixtures.Selectors.Login.ErrorAlert, invalidCredentialsText)
}

func inactivityTimeout(ctx context.Context, env *Env) error {
	s := env.Session()
	if err := s.Login(ctx); err != nil {
		return err
	}

	env.Logger.Info("staying idle", "duration", env.Timing.Idle)
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-time.After(env.Timing.Idle):
	}

	return expectRedirectToLogin(ctx, s, 10*time.Second)
}

// expectRedirectToLogin opens a protected page and expects to land on the
// login form. A failed navigation falls back to loading the login page.
func expectRedirectToLogin(ctx context.Context, s *Session, navTimeout time.Duration) error {
	routes := s.env.Fixtures.Routes

	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	err := s.Goto(navCtx, routes.Dashboard)
	cancel()
	if err != nil {
		s.env.Logger.Warn("protected page did not load, opening login page", "error", err)
		if err := s.Goto(ctx, routes.Login); err != nil {
			return err
		}
	}

	if _, err := s.ExpectURL(ctx, routes.Login); err != nil {
		return err
	}
	return s.ExpectVisible(ctx, s.env.Fixtures.Selectors.Login.Username)
}

// concurrentLogin signs in from two isolated sessions at once; both must
// reach the dashboard.
func concurrentLogin(ctx context.Context, env *Env) error {
	first, err := env.NewSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(env, first)

	second, err := env.NewSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession(env, second)

	sessions := []*Session{first, second}
	sel := env.Fixtures.Selectors

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sessions {
		name := fmt.Sprintf("concurrent-session%d", i+1)
		g.Go(func() error {
			if err := s.OpenLogin(gctx); err != nil {
				return err
			}
			if err := s.Fill(gctx, sel.Login.Username, env.Credentials.Username); err != nil {
				return err
			}
			if err := s.Fill(gctx, sel.Login.Password, env.Credentials.Password); err != nil {
				return err
			}
			if _, err := s.Screenshot(gctx, name+"-filled"); err != nil {
				return err
			}
			if err := s.Click(gctx, sel.Login.Submit); err != nil {
				return err
			}
			if _, err := s.ExpectURL(gctx, env.Fixtures.Routes.Dashboard); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			env.Logger.Info("session login complete", "session", name)
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		for i, s := range sessions {
			if err = s.ExpectText(ctx, sel.Dashboard.Header, "Dashboard"); err != nil {
				break
			}
			if _, err = s.Screenshot(ctx, fmt.Sprintf("concurrent-session%d-dashboard", i+1)); err != nil {
				break
			}
		}
	}

	if err != nil {
		var errs []error
		for i, s := range sessions {
			if _, shotErr := s.Screenshot(ctx, fmt.Sprintf("concurrent-session%d-error", i+1)); shotErr != nil {
				errs = append(errs, shotErr)
			}
		}
		if len(errs) > 0 {
			env.Logger.Warn("error screenshots failed", "error", errors.Join(errs...))
		}
		return err
	}
	return nil
}

func closeSession(env *Env, s *Session) {
	if err := s.Close(); err != nil {
		env.Logger.Warn("close session failed", "error", err)
	}
}
