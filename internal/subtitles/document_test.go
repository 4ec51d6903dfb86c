package subtitles

import (
	"errors"
	"strings"
	"testing"
	"time"

	"captionforge/internal/captions"
)

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"WEBVTT\n\n00:01.000 --> 00:02.000\nhi":                       InputVTT,
		"[Script Info]\n[Events]\nDialogue: 0,0:00:01.00,0:00:02.00,": InputASS,
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,hi":        InputASS,
		"1\n00:00:01,000 --> 00:00:02,000\nhi":                        InputSRT,
	}
	for in, want := range cases {
		if got := DetectFormat(in); got != want {
			t.Fatalf("DetectFormat(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseRejectsEmptyAndInvertedTracks(t *testing.T) {
	if _, _, err := Parse("no cues here"); !errors.Is(err, ErrNoCues) {
		t.Fatalf("expected ErrNoCues, got %v", err)
	}
	if _, _, err := Parse("1\n00:00:03,000 --> 00:00:02,000\nbackwards\n"); err == nil {
		t.Fatal("expected error for cue ending before it starts")
	}
}

func TestPrepareSimpleDialectNormalizesVTT(t *testing.T) {
	spec := captions.Compile(captions.Options{}, captions.DialectVTT)
	prepared, err := Prepare("WEBVTT\n\n00:01.000 --> 00:02.000\nHello\n", spec)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if prepared.InputFormat != InputVTT {
		t.Fatalf("unexpected input format %s", prepared.InputFormat)
	}
	want := "1\n00:00:01,000 --> 00:00:02,000\nHello\n"
	if string(prepared.Content) != want {
		t.Fatalf("unexpected content:\n%s", prepared.Content)
	}
}

func TestPrepareConvertsASSInputToSimpleDialect(t *testing.T) {
	spec := captions.Compile(captions.Options{}, captions.DialectSRT)
	payload := "[Events]\n" +
		"Dialogue: 0,0:00:04.00,0:00:05.50,Default,,0,0,0,,Second\n" +
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,First\n"
	prepared, err := Prepare(payload, spec)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if prepared.InputFormat != InputASS {
		t.Fatalf("unexpected input format %s", prepared.InputFormat)
	}
	content := string(prepared.Content)
	if strings.Contains(content, "Dialogue:") || !strings.Contains(content, "00:00:04,000 --> 00:00:05,500") {
		t.Fatalf("expected SRT output, got:\n%s", content)
	}
	if prepared.Start != time.Second || prepared.End != 5500*time.Millisecond {
		t.Fatalf("unexpected bounds %s-%s", prepared.Start, prepared.End)
	}
}

func TestPrepareAdvancedDialectWithHighlight(t *testing.T) {
	opts := captions.Options{captions.KeyFontName: "Roboto", captions.KeyOneWordHighlight: true}
	spec := captions.Compile(opts, captions.DialectASS)
	prepared, err := Prepare("1\n00:00:01,000 --> 00:00:03,000\na b\n", spec)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	content := string(prepared.Content)
	if !strings.HasPrefix(content, "[Script Info]\n") {
		t.Fatalf("expected ASS header, got:\n%s", content)
	}
	if strings.Count(content, "Dialogue:") != 2 {
		t.Fatalf("expected 2 dialogue events, got:\n%s", content)
	}
	if !strings.Contains(content, `Dialogue: 0,0:00:02.00,0:00:03.00,Default,,0,0,0,,{\highlight}{\k100}b`) {
		t.Fatalf("missing expanded second word:\n%s", content)
	}
}

func TestPrepareFailsWhenEveryCueIsDropped(t *testing.T) {
	spec := captions.Compile(captions.Options{captions.KeyOneWordHighlight: true}, captions.DialectSRT)
	if _, err := Prepare("1\n00:00:01,000 --> 00:00:02,000\n\n", spec); !errors.Is(err, ErrNoCues) {
		t.Fatalf("expected ErrNoCues, got %v", err)
	}
}
