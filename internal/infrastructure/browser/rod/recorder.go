package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"hrm-e2e/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const videoQuality = 80

var (
	ErrAlreadyRecording = errors.New("page is already recording")
	ErrNotRecording     = errors.New("page is not recording")
)

// recorder collects screencast frames until stopped. The browser sends a
// frame only when the page repaints, and waits for an ack before the next.
type recorder struct {
	stop context.CancelFunc
	done chan struct{}

	mu     sync.Mutex
	buf    bytes.Buffer
	frames int
}

func startRecorder(page *rod.Page, size Viewport) (*recorder, error) {
	ctx, stop := context.WithCancel(context.Background())
	page = page.Context(ctx)

	rec := &recorder{stop: stop, done: make(chan struct{})}

	// subscribe before starting so the first frame is not missed
	wait := page.EachEvent(func(e *proto.PageScreencastFrame) {
		rec.add(e.Data)
		_ = proto.PageScreencastFrameAck{SessionID: e.SessionID}.Call(page)
	})
	go func() {
		defer close(rec.done)
		wait()
	}()

	err := proto.PageStartScreencast{
		Format:    proto.PageStartScreencastFormatJpeg,
		Quality:   gson.Int(videoQuality),
		MaxWidth:  gson.Int(size.Width),
		MaxHeight: gson.Int(size.Height),
	}.Call(page)
	if err != nil {
		rec.halt()
		return nil, fmt.Errorf("start screencast: %w", err)
	}
	return rec, nil
}

func (r *recorder) add(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf.Write(frame)
	r.frames++
}

// halt ends the event loop and waits for it.
func (r *recorder) halt() {
	r.stop()
	<-r.done
}

func (r *recorder) recording() *entity.Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &entity.Recording{
		Data:   bytes.Clone(r.buf.Bytes()),
		Frames: r.frames,
	}
}

func (p *PageAdapter) StartRecording(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPageClosed
	}
	if p.rec != nil {
		return ErrAlreadyRecording
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rec, err := startRecorder(p.page, p.video)
	if err != nil {
		return err
	}
	p.rec = rec
	return nil
}

// StopRecording stops the screencast and returns every frame received.
func (p *PageAdapter) StopRecording(ctx context.Context) (*entity.Recording, error) {
	p.mu.Lock()
	rec := p.rec
	p.rec = nil
	closed := p.closed
	p.mu.Unlock()
	if rec == nil {
		return nil, ErrNotRecording
	}

	var stopErr error
	if !closed {
		stopCtx, cancel := context.WithTimeout(ctx, p.timeout)
		stopErr = proto.PageStopScreencast{}.Call(p.page.Context(stopCtx))
		cancel()
	}
	rec.halt()

	if stopErr != nil {
		return rec.recording(), fmt.Errorf("stop screencast: %w", stopErr)
	}
	return rec.recording(), nil
}
