package verifier

import "hrm-e2e/internal/domain/entity"

// ContentCheck rejects near-uniform captures (all white or all black) by
// sampling the head of the luminance buffer.
type ContentCheck struct {
	SampleSize int
	Low        byte
	High       byte
	MinRatio   float64
}

func DefaultContentCheck() ContentCheck {
	return ContentCheck{
		SampleSize: 100,
		Low:        10,
		High:       245,
		MinRatio:   0.5,
	}
}

// HasContent reports whether strictly more than MinRatio of the first
// SampleSize bytes lie strictly between Low and High. A buffer shorter than
// SampleSize never has content.
func (c ContentCheck) HasContent(buf []byte) bool {
	if c.SampleSize <= 0 || len(buf) < c.SampleSize {
		return false
	}

	inRange := 0
	for _, v := range buf[:c.SampleSize] {
		if v > c.Low && v < c.High {
			inRange++
		}
	}
	return float64(inRange) > float64(c.SampleSize)*c.MinRatio
}

func (c ContentCheck) AcceptFrame(frame *entity.Frame) bool {
	if frame == nil {
		return false
	}
	return c.HasContent(frame.Luma)
}
