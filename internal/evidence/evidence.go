// Package evidence is the boundary to the external evidence store. The core
// only ever holds references; media bytes never pass through it.
package evidence

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CaptureMetadata is what the evidence store may report about a capture.
type CaptureMetadata struct {
	CapturedAt  time.Time `json:"capturedAt"`
	GPSLat      *float64  `json:"gpsLat,omitempty"`
	GPSLng      *float64  `json:"gpsLng,omitempty"`
	Orientation *int      `json:"orientation,omitempty"`
}

// Ref is a durable pointer to captured media.
type Ref struct {
	Reference string           `json:"reference"`
	Metadata  *CaptureMetadata `json:"metadata,omitempty"`
}

// Blank reports whether the reference is missing.
func (r Ref) Blank() bool {
	return strings.TrimSpace(r.Reference) == ""
}

// Capturer uploads a local media handle and returns its durable reference.
// Implementations may block for the duration of the upload.
type Capturer interface {
	Capture(ctx context.Context, sourceHandle string) (Ref, error)
}

// MarshalMetadata renders metadata for verbatim persistence. Nil metadata
// yields an empty string.
func MarshalMetadata(m *CaptureMetadata) (string, error) {
	if m == nil {
		return "", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FakeCapturer is an in-memory Capturer for tests and local development.
// Handles listed in Fail return the mapped error.
type FakeCapturer struct {
	mu       sync.Mutex
	Fail     map[string]error
	Delay    time.Duration
	Now      func() time.Time
	captured []string
}

func (f *FakeCapturer) Capture(ctx context.Context, sourceHandle string) (Ref, error) {
	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return Ref{}, ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.Fail[sourceHandle]; ok {
		return Ref{}, err
	}
	f.captured = append(f.captured, sourceHandle)
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return Ref{
		Reference: "evidence://" + uuid.NewString(),
		Metadata:  &CaptureMetadata{CapturedAt: now().UTC()},
	}, nil
}

// Captured returns the handles successfully captured so far.
func (f *FakeCapturer) Captured() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.captured...)
}
