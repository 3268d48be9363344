package rod

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/infrastructure/browser/snapshot"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.PagePort = (*PageAdapter)(nil)

// requestIdle is how long the network must stay quiet before a page counts
// as settled.
const requestIdle = 500 * time.Millisecond

const clearStorageJS = `() => {
	try { window.localStorage.clear(); } catch (e) {}
	try { window.sessionStorage.clear(); } catch (e) {}
}`

type PageAdapter struct {
	page      *rod.Page
	incognito *rod.Browser
	timeout   time.Duration
	mask      []string
	video     Viewport

	mu     sync.Mutex
	closed bool
	rec    *recorder
}

func newPageAdapter(page *rod.Page, incognito *rod.Browser, timeout time.Duration, mask []string, video Viewport) *PageAdapter {
	return &PageAdapter{
		page:      page,
		incognito: incognito,
		timeout:   timeout,
		mask:      mask,
		video:     video,
	}
}

// bind returns the page bound to ctx, capped at the adapter timeout.
func (p *PageAdapter) bind(ctx context.Context) (*rod.Page, context.CancelFunc, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, nil, ErrPageClosed
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	return p.page.Context(ctx), cancel, nil
}

func (p *PageAdapter) Navigate(ctx context.Context, rawURL string) error {
	if err := validateURL(rawURL); err != nil {
		return err
	}

	page, cancel, err := p.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := page.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", rawURL, err)
	}
	return nil
}

func (p *PageAdapter) URL(ctx context.Context) (string, error) {
	page, cancel, err := p.bind(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (p *PageAdapter) Locate(loc entity.Locator) output.ElementPort {
	return &elementHandle{page: p, loc: loc}
}

// Settle waits for the load event, a quiet network and a visible body.
func (p *PageAdapter) Settle(ctx context.Context) error {
	page, cancel, err := p.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}

	page.WaitRequestIdle(requestIdle, nil, nil, nil)()
	if err := page.GetContext().Err(); err != nil {
		return fmt.Errorf("wait network idle: %w", err)
	}

	body, err := page.Element("body")
	if err != nil {
		return fmt.Errorf("body not found: %w", err)
	}
	if err := body.WaitVisible(); err != nil {
		return fmt.Errorf("body not visible: %w", err)
	}
	return nil
}

func (p *PageAdapter) CaptureFrame(ctx context.Context) (*entity.Frame, error) {
	page, cancel, err := p.bind(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	return captureFrame(page, p.mask)
}

// HTML returns a cleaned snapshot of the current DOM.
func (p *PageAdapter) HTML(ctx context.Context) (string, error) {
	page, cancel, err := p.bind(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	raw, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return snapshot.Clean(raw, snapshot.DefaultConfig()), nil
}

// ClearSession drops cookies and web storage so the next navigation starts
// logged out.
func (p *PageAdapter) ClearSession(ctx context.Context) error {
	page, cancel, err := p.bind(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	if err := (proto.NetworkClearBrowserCookies{}).Call(page); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	if _, err := page.Eval(clearStorageJS); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}

func (p *PageAdapter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.rec != nil {
		p.rec.halt()
		p.rec = nil
	}

	err := p.page.Close()
	if p.incognito != nil {
		if cerr := p.incognito.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func validateURL(rawURL string) error {
	if rawURL == "about:blank" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}
	return nil
}
