package rod

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"

	"hrm-e2e/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// maskJS hides (or restores) every element matching the given selectors.
// Hidden elements keep their layout box so the frame geometry is unchanged.
const maskJS = `(selectors, hide) => {
	let n = 0;
	for (const sel of selectors) {
		for (const el of document.querySelectorAll(sel)) {
			if (hide) {
				el.dataset.hrmMask = el.style.visibility || '';
				el.style.visibility = 'hidden';
			} else if ('hrmMask' in el.dataset) {
				el.style.visibility = el.dataset.hrmMask;
				delete el.dataset.hrmMask;
			}
			n++;
		}
	}
	return n;
}`

func captureFrame(page *rod.Page, mask []string) (*entity.Frame, error) {
	if len(mask) > 0 {
		if _, err := page.Eval(maskJS, mask, true); err != nil {
			return nil, fmt.Errorf("mask elements: %w", err)
		}
		defer func() { _, _ = page.Eval(maskJS, mask, false) }()
	}

	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	return decodeFrame(data)
}

// The luminance buffer is a blurred thumbnail of the whole frame, so a
// content check over its first samples sees every region of the page and a
// light page with content away from its top edge is not mistaken for a blank
// one.
const (
	thumbSize = 10
	thumbBlur = 2.0
)

// decodeFrame decodes a PNG capture and derives its thumbnail luminance.
func decodeFrame(data []byte) (*entity.Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	return &entity.Frame{
		Data:   data,
		Luma:   luma(img),
		Format: "png",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func luma(img image.Image) []byte {
	thumb := imaging.Resize(imaging.Grayscale(img), thumbSize, thumbSize, imaging.Box)
	gray := imaging.Blur(thumb, thumbBlur)
	out := make([]byte, 0, len(gray.Pix)/4)
	for i := 0; i < len(gray.Pix); i += 4 {
		out = append(out, gray.Pix[i])
	}
	return out
}
