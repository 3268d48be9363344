package output

import (
	"context"

	"hrm-e2e/internal/domain/entity"
)

type BrowserPort interface {
	NewPage(ctx context.Context) (PagePort, error)
	Close()
}

// FramePort is the part of a page the screenshot verifier needs.
type FramePort interface {
	Settle(ctx context.Context) error
	CaptureFrame(ctx context.Context) (*entity.Frame, error)
}

type URLReader interface {
	URL(ctx context.Context) (string, error)
}

type Navigator interface {
	URLReader
	Navigate(ctx context.Context, url string) error
	Locate(loc entity.Locator) ElementPort
}

type PagePort interface {
	Navigator
	FramePort

	HTML(ctx context.Context) (string, error)
	ClearSession(ctx context.Context) error

	// StartRecording begins a video of the page. StopRecording ends it and
	// returns the frames captured so far; Close stops a running recording.
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) (*entity.Recording, error)

	Close() error
}

// ElementPort is a lazy handle: every call resolves the locator again, so a
// handle stays valid across navigations.
type ElementPort interface {
	Visible(ctx context.Context) (bool, error)
	Fill(ctx context.Context, text string) error
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Count(ctx context.Context) (int, error)
	ScrollIntoView(ctx context.Context) error
}
