package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hrm-e2e/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout     = 15 * time.Second
	defaultSlowMotion  = 500 * time.Millisecond
	defaultWidth       = 1280
	defaultHeight      = 720
	defaultVideoWidth  = 640
	defaultVideoHeight = 360
)

var (
	ErrBrowserNotConnected = errors.New("browser is not connected")
	ErrPageClosed          = errors.New("page is closed")
	ErrInvalidURL          = errors.New("invalid url")
)

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout bounds every element lookup and page settle.
	Timeout   time.Duration
	NoSandbox bool
	DevTools  bool
	Trace     bool
	// Bin is an explicit browser binary; empty lets the launcher find or
	// download one.
	Bin      string
	Viewport Viewport
	// Video caps the size of recorded frames.
	Video Viewport
	// Mask lists selectors hidden while a frame is captured.
	Mask []string
}

type Viewport struct {
	Width  int
	Height int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
		NoSandbox:  true,
		Viewport:   Viewport{Width: defaultWidth, Height: defaultHeight},
		Video:      Viewport{Width: defaultVideoWidth, Height: defaultVideoHeight},
	}
}

type BrowserAdapter struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      BrowserConfig
	timeout  time.Duration
	closed   bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = Viewport{Width: defaultWidth, Height: defaultHeight}
	}
	if cfg.Video.Width <= 0 || cfg.Video.Height <= 0 {
		cfg.Video = Viewport{Width: defaultVideoWidth, Height: defaultVideoHeight}
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-dev-shm-usage")
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		Context(ctx).
		ControlURL(url).
		Trace(cfg.Trace).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		cfg:      cfg,
		timeout:  cfg.Timeout,
	}, nil
}

// NewPage opens a page in a fresh incognito context, so cookies and storage
// never leak between scenarios running on the same browser.
func (b *BrowserAdapter) NewPage(ctx context.Context) (output.PagePort, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrowserNotConnected
	}
	browser := b.browser
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.Viewport.Width,
		Height:            b.cfg.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		_ = incognito.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return newPageAdapter(page, incognito, b.timeout, b.cfg.Mask, b.cfg.Video), nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.browser != nil
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}
