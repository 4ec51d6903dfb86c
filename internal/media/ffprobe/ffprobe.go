package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// entries limits ffprobe output to the fields the pipeline reads.
const entries = "stream=index,codec_name,codec_type,width,height,duration,nb_frames,avg_frame_rate,r_frame_rate:format=duration,format_name"

// Result is the decoded ffprobe JSON document.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream holds the per-stream fields requested from ffprobe. Numeric values
// arrive as strings and are parsed on demand.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Duration     string `json:"duration"`
	NBFrames     string `json:"nb_frames"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
}

type Format struct {
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Inspect runs binary against path and decodes its JSON report.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	args := []string{"-v", "error", "-hide_banner", "-show_entries", entries, "-of", "json", "--", path}
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// first returns the first stream of codecType ("video", "audio", ...).
func (r Result) first(codecType string) (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, codecType) {
			return s, true
		}
	}
	return Stream{}, false
}

// CountStreams returns how many streams have codecType.
func (r Result) CountStreams(codecType string) int {
	n := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, codecType) {
			n++
		}
	}
	return n
}

// DurationSeconds is the container duration, or 0 when missing or invalid.
func (r Result) DurationSeconds() float64 {
	d, _ := positive(r.Format.Duration)
	return d
}

// FrameRate is the first video stream's rate, preferring avg_frame_rate.
func (r Result) FrameRate() float64 {
	video, ok := r.first("video")
	if !ok {
		return 0
	}
	if rate := rational(video.AvgFrameRate); rate > 0 {
		return rate
	}
	return rational(video.RFrameRate)
}

// TotalFrames is nb_frames of the first video stream. Containers that omit it
// get duration times frame rate, using the stream duration before the
// container's. Zero means the count is unknown.
func (r Result) TotalFrames() int64 {
	video, ok := r.first("video")
	if !ok {
		return 0
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(video.NBFrames), 10, 64); err == nil && n > 0 {
		return n
	}
	duration, ok := positive(video.Duration)
	if !ok {
		duration = r.DurationSeconds()
	}
	rate := r.FrameRate()
	if duration <= 0 || rate <= 0 {
		return 0
	}
	return int64(math.Round(duration * rate))
}

func positive(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// rational parses "30000/1001" or a plain number.
func rational(raw string) float64 {
	num, den, isFraction := strings.Cut(strings.TrimSpace(raw), "/")
	n, ok := positive(num)
	if !ok {
		return 0
	}
	if !isFraction {
		return n
	}
	d, ok := positive(den)
	if !ok {
		return 0
	}
	return n / d
}
