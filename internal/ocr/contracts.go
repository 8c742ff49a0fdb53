package ocr

import (
	"context"
	"time"
)

// Input is one image to read: either raw bytes with a filename, or a
// publicly reachable URL. Exactly one of Data/URL should be set.
type Input struct {
	FileName string
	Data     []byte
	URL      string
}

// Result is the raw text read from a label image.
type Result struct {
	Text     string
	Duration time.Duration
	Warnings []string
}

// TextExtractor is Stage 1: image -> text.
type TextExtractor interface {
	Extract(ctx context.Context, in Input) (Result, error)
}
