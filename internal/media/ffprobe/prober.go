package ffprobe

import (
	"context"
	"fmt"
)

// Probe is the summary the caption pipeline needs before rendering.
type Probe struct {
	TotalFrames     int64
	DurationSeconds float64
	FrameRate       float64
	Width           int
	Height          int
	HasAudio        bool
}

// Prober runs ffprobe with a fixed binary.
type Prober struct {
	Binary string
}

// NewProber returns a Prober for binary ("ffprobe" when empty).
func NewProber(binary string) *Prober {
	return &Prober{Binary: binary}
}

// Probe inspects path and summarizes its primary video stream.
func (p *Prober) Probe(ctx context.Context, path string) (Probe, error) {
	result, err := Inspect(ctx, p.Binary, path)
	if err != nil {
		return Probe{}, err
	}
	video, ok := result.first("video")
	if !ok {
		return Probe{}, fmt.Errorf("ffprobe: %s has no video stream", path)
	}
	return Probe{
		TotalFrames:     result.TotalFrames(),
		DurationSeconds: result.DurationSeconds(),
		FrameRate:       result.FrameRate(),
		Width:           video.Width,
		Height:          video.Height,
		HasAudio:        result.CountStreams("audio") > 0,
	}, nil
}
