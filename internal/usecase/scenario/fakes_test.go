package scenario

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/infrastructure/logger"
	"hrm-e2e/internal/usecase/verifier"
)

// fakeElement is one node of a fakePage. Its state is read on every call, so
// tests can flip it while a scenario is polling.
type fakeElement struct {
	page    *fakePage
	visible bool
	text    string
	count   int
	value   string
	onClick func()
}

func (e *fakeElement) Visible(ctx context.Context) (bool, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.visible, nil
}

func (e *fakeElement) Fill(ctx context.Context, text string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.value = text
	return nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.page.mu.Lock()
	onClick := e.onClick
	e.page.clicks++
	e.page.mu.Unlock()
	if onClick != nil {
		onClick()
	}
	return nil
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.visible {
		return "", errors.New("element not found")
	}
	return e.text, nil
}

func (e *fakeElement) Count(ctx context.Context) (int, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	return e.count, nil
}

func (e *fakeElement) ScrollIntoView(ctx context.Context) error { return nil }

type fakePage struct {
	mu         sync.Mutex
	url        string
	elements   map[string]*fakeElement
	navigated  []string
	navErr     error
	onNavigate func(url string)
	clicks     int
	cleared    bool
	closed     bool
	frameErr   error
	recordErr  error
	recording  bool
	recordings int
}

func newFakePage() *fakePage {
	return &fakePage{url: "about:blank", elements: map[string]*fakeElement{}}
}

// el returns the element for loc, creating an invisible one on first use.
func (p *fakePage) el(loc entity.Locator) *fakeElement {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elLocked(loc)
}

func (p *fakePage) elLocked(loc entity.Locator) *fakeElement {
	key := loc.String()
	e, ok := p.elements[key]
	if !ok {
		e = &fakeElement{page: p}
		p.elements[key] = e
	}
	return e
}

func (p *fakePage) show(loc entity.Locator, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := p.elLocked(loc)
	e.visible = true
	e.text = text
	e.count = 1
}

func (p *fakePage) setURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	p.navigated = append(p.navigated, url)
	err := p.navErr
	onNavigate := p.onNavigate
	if err == nil {
		p.url = url
	}
	p.mu.Unlock()

	if err == nil && onNavigate != nil {
		onNavigate(url)
	}
	return err
}

func (p *fakePage) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *fakePage) Locate(loc entity.Locator) output.ElementPort {
	return p.el(loc)
}

func (p *fakePage) Settle(ctx context.Context) error { return ctx.Err() }

func (p *fakePage) CaptureFrame(ctx context.Context) (*entity.Frame, error) {
	if p.frameErr != nil {
		return nil, p.frameErr
	}
	luma := make([]byte, 200)
	for i := range luma {
		luma[i] = 128
	}
	return &entity.Frame{Data: []byte("png"), Luma: luma, Format: "png", Width: 20, Height: 10}, nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return "<html><body>fake</body></html>", nil
}

func (p *fakePage) ClearSession(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cleared = true
	return nil
}

func (p *fakePage) StartRecording(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.recordErr != nil {
		return p.recordErr
	}
	p.recording = true
	return nil
}

func (p *fakePage) StopRecording(ctx context.Context) (*entity.Recording, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.recording {
		return nil, errors.New("not recording")
	}
	p.recording = false
	p.recordings++
	return &entity.Recording{Data: []byte("jpegjpeg"), Frames: 2}, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type fakeBrowser struct {
	mu      sync.Mutex
	pages   []*fakePage
	newPage func() *fakePage
	err     error
}

func (b *fakeBrowser) NewPage(ctx context.Context) (output.PagePort, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	var p *fakePage
	if b.newPage != nil {
		p = b.newPage()
	} else {
		p = newFakePage()
	}
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *fakeBrowser) Close() {}

func (b *fakeBrowser) opened() []*fakePage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakePage(nil), b.pages...)
}

type memoryStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}}
}

func (s *memoryStore) Save(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	return nil
}

func (s *memoryStore) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []string
	for p := range s.files {
		result = append(result, p)
	}
	return result
}

type recordingReporter struct {
	mu      sync.Mutex
	started []string
	retries []string
	results []entity.ScenarioResult
	summary *entity.SuiteResult
}

func (r *recordingReporter) ShowScenarioStart(ctx context.Context, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, name)
}

func (r *recordingReporter) ShowRetry(ctx context.Context, label string, attempt int, err error, next time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries = append(r.retries, label)
}

func (r *recordingReporter) ShowScenarioResult(ctx context.Context, result entity.ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recordingReporter) ShowSummary(ctx context.Context, suite entity.SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = &suite
}

func fastTiming() Timing {
	return Timing{
		Action: 600 * time.Millisecond,
		Ready:  300 * time.Millisecond,
		Navigation: entity.VerificationPolicy{
			MaxRetries: 2,
			Delay:      10 * time.Millisecond,
		},
		Reachability: time.Second,
		Idle:         10 * time.Millisecond,
	}
}

func testShots(store output.ArtifactStore) *verifier.Screenshotter {
	cfg := verifier.DefaultScreenshotConfig()
	cfg.Policy.Delay = 10 * time.Millisecond
	cfg.Now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return verifier.NewScreenshotter(store, logger.NewNop(), cfg)
}

func testFixtures() entity.Fixtures {
	sel := entity.Selectors{}
	sel.Login = entity.LoginSelectors{
		Username:      entity.Locator{CSS: "#username"},
		Password:      entity.Locator{CSS: "#password"},
		Submit:        entity.Locator{CSS: "#submit"},
		ErrorAlert:    entity.Locator{CSS: ".alert"},
		RequiredField: entity.Locator{CSS: ".field-error", Text: "Required"},
	}
	sel.Dashboard = entity.DashboardSelectors{
		Header:      entity.Locator{CSS: ".breadcrumb"},
		Widgets:     entity.Locator{CSS: ".grid"},
		AnyWidget:   entity.Locator{CSS: ".widget"},
		WidgetTitle: ".widget-name",
		WidgetNames: []string{"Time at Work", "Quick Launch"},
	}
	sel.User = entity.UserSelectors{
		Dropdown: entity.Locator{CSS: ".user"},
		Logout:   entity.Locator{CSS: "a", Text: "Logout"},
	}

	return entity.Fixtures{
		Routes: entity.Routes{
			Root:      "/",
			Login:     "/auth/login",
			Dashboard: "/dashboard/index",
			Directory: "/directory/viewDirectory",
			Admin:     "/admin/viewSystemUsers",
		},
		Selectors: sel,
		Data: entity.TestData{Credentials: entity.CredentialSet{
			Valid:   entity.Credentials{Username: "Admin", Password: "admin123"},
			Invalid: entity.Credentials{Username: "wrong", Password: "wrong"},
		}},
	}
}

// newTestEnv returns an Env over page with fast timings.
func newTestEnv(page *fakePage, browser *fakeBrowser, store output.ArtifactStore) *Env {
	return &Env{
		BaseURL:     "http://hrm.test",
		Fixtures:    testFixtures(),
		Credentials: entity.Credentials{Username: "Admin", Password: "admin123"},
		Timing:      fastTiming(),
		Browser:     browser,
		Page:        page,
		Shots:       testShots(store),
		Logger:      logger.NewNop(),
	}
}

// loginApp wires page so that the login page shows the form and a valid
// submit lands on the dashboard.
func loginApp(page *fakePage, fx entity.Fixtures) {
	sel := fx.Selectors
	page.onNavigate = func(url string) {
		if strings.Contains(url, fx.Routes.Login) {
			page.show(sel.Login.Username, "")
			page.show(sel.Login.Password, "")
			page.show(sel.Login.Submit, "Login")
		}
	}
	page.el(sel.Login.Submit).onClick = func() {
		user := page.el(sel.Login.Username)
		pass := page.el(sel.Login.Password)
		page.mu.Lock()
		ok := user.value == "Admin" && pass.value == "admin123"
		page.mu.Unlock()
		if ok {
			page.setURL("http://hrm.test" + fx.Routes.Dashboard)
			page.show(sel.Dashboard.Header, "Dashboard")
			page.show(sel.User.Dropdown, "")
			return
		}
		page.show(sel.Login.ErrorAlert, "Invalid credentials")
	}
	page.el(sel.User.Dropdown).onClick = func() {
		page.show(sel.User.Logout, "Logout")
	}
	page.el(sel.User.Logout).onClick = func() {
		page.setURL("http://hrm.test" + fx.Routes.Login)
	}
}
