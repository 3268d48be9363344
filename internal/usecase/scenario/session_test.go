package scenario

import (
	"context"
	"strings"
	"testing"

	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/usecase/verifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Login(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	loginApp(page, env.Fixtures)

	err := env.Session().Login(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"http://hrm.test/auth/login"}, page.navigated)
	assert.Equal(t, "Admin", page.el(env.Fixtures.Selectors.Login.Username).value)
	assert.Equal(t, "http://hrm.test/dashboard/index", page.url)
}

func TestSession_LoginRejected(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	env.Credentials = entity.Credentials{Username: "Admin", Password: "nope"}
	loginApp(page, env.Fixtures)

	err := env.Session().Login(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "login: url \"http://hrm.test/auth/login\" does not contain /dashboard/index")
}

func TestSession_OpenLoginRetriesNavigation(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())

	err := env.Session().OpenLogin(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open login page")
	var exhausted *verifier.VerificationExhausted
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
	assert.Len(t, page.navigated, 2)
}

func TestSession_Logout(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	loginApp(page, env.Fixtures)
	s := env.Session()
	ctx := context.Background()

	require.NoError(t, s.Login(ctx))
	require.NoError(t, s.Logout(ctx))
	assert.Equal(t, "http://hrm.test/auth/login", page.url)
}

func TestSession_ExpectText(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	loc := entity.Locator{CSS: ".alert"}
	page.show(loc, "Something else")

	err := env.Session().ExpectText(context.Background(), loc, "Invalid credentials")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `want text containing "Invalid credentials", last saw "Something else"`)
	var exhausted *verifier.VerificationExhausted
	assert.ErrorAs(t, err, &exhausted)

	page.show(loc, "Invalid credentials")
	assert.NoError(t, env.Session().ExpectText(context.Background(), loc, "Invalid"))
}

func TestSession_ExpectCount(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	loc := entity.Locator{CSS: ".field-error", Text: "Required"}
	page.el(loc).count = 2

	assert.NoError(t, env.Session().ExpectCount(context.Background(), loc, 2))

	err := env.Session().ExpectCount(context.Background(), loc, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want 3 matches, last saw 2")
}

func TestSession_ExpectVisibleAndIsVisible(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	s := env.Session()
	loc := entity.Locator{CSS: ".grid"}

	assert.False(t, s.IsVisible(context.Background(), loc))
	err := s.ExpectVisible(context.Background(), loc)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), ".grid not visible"))

	page.show(loc, "")
	assert.True(t, s.IsVisible(context.Background(), loc))
	assert.NoError(t, s.ExpectVisible(context.Background(), loc))
}

func TestSession_ScreenshotRecordsArtifact(t *testing.T) {
	page := newFakePage()
	store := newMemoryStore()
	env := newTestEnv(page, &fakeBrowser{}, store)

	path, err := env.Session().Screenshot(context.Background(), "login-page-initial")

	require.NoError(t, err)
	assert.Equal(t, "screenshots/login-page-initial-2024-03-09T14-05-07-000Z.png", path)
	assert.Equal(t, []string{path}, env.Artifacts())
	assert.Equal(t, []byte("png"), store.files[path])
}

func TestEnv_URL(t *testing.T) {
	env := &Env{BaseURL: "https://example.test/"}
	assert.Equal(t, "https://example.test/web/index.php/auth/login", env.URL("/web/index.php/auth/login"))
	assert.Equal(t, "https://example.test/", env.URL("/"))
}

func TestScenarios_WithFakeApp(t *testing.T) {
	tests := []struct {
		name string
		run  RunFunc
	}{
		{"valid login", onLoginPage(validLogin)},
		{"invalid login", onLoginPage(invalidLogin)},
		{"logout", onLoginPage(logout)},
		{"case sensitive password", onLoginPage(caseSensitivePassword)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage()
			env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
			env.Fixtures.Data.Credentials.CaseSensitive = entity.Credentials{Username: "ADMIN", Password: "ADMIN123"}
			loginApp(page, env.Fixtures)

			assert.NoError(t, tt.run(context.Background(), env))
		})
	}
}

func TestValidLogin_Screenshots(t *testing.T) {
	page := newFakePage()
	store := newMemoryStore()
	env := newTestEnv(page, &fakeBrowser{}, store)
	loginApp(page, env.Fixtures)

	require.NoError(t, onLoginPage(validLogin)(context.Background(), env))

	artifacts := env.Artifacts()
	require.Len(t, artifacts, 3)
	assert.Contains(t, artifacts[0], "login-page-initial-")
	assert.Contains(t, artifacts[1], "login-form-filled-")
	assert.Contains(t, artifacts[2], "dashboard-loaded-")
}

func TestSimulatedSessionTimeout(t *testing.T) {
	page := newFakePage()
	env := newTestEnv(page, &fakeBrowser{}, newMemoryStore())
	loginApp(page, env.Fixtures)
	appNavigate := page.onNavigate
	page.onNavigate = func(url string) {
		page.mu.Lock()
		cleared := page.cleared
		page.mu.Unlock()
		if cleared && strings.Contains(url, env.Fixtures.Routes.Dashboard) {
			page.setURL(env.URL(env.Fixtures.Routes.Login))
			url = env.URL(env.Fixtures.Routes.Login)
		}
		appNavigate(url)
	}

	err := loggedIn(simulatedSessionTimeout)(context.Background(), env)

	require.NoError(t, err)
	assert.True(t, page.cleared)
	assert.Equal(t, "http://hrm.test/auth/login", page.url)
}

func TestConcurrentLogin_UsesTwoIsolatedPages(t *testing.T) {
	fx := testFixtures()
	browser := &fakeBrowser{newPage: func() *fakePage {
		p := newFakePage()
		loginApp(p, fx)
		return p
	}}
	main := newFakePage()
	env := newTestEnv(main, browser, newMemoryStore())

	err := concurrentLogin(context.Background(), env)

	require.NoError(t, err)
	pages := browser.opened()
	require.Len(t, pages, 2)
	for _, p := range pages {
		assert.True(t, p.closed)
		assert.Equal(t, "http://hrm.test/dashboard/index", p.url)
	}
	assert.Len(t, env.Artifacts(), 4)
}
