package subtitles

import (
	"testing"
	"time"
)

func TestExpandSplitsWordsEvenly(t *testing.T) {
	track, err := ParseSRT("1\n00:00:01,000 --> 00:00:03,000\na b\n")
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	out, stats := Expand(track, true)
	if len(out) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(out))
	}
	if out[0].Start != time.Second || out[0].End != 2*time.Second {
		t.Fatalf("unexpected first cue %+v", out[0])
	}
	if out[1].Start != 2*time.Second || out[1].End != 3*time.Second {
		t.Fatalf("unexpected second cue %+v", out[1])
	}
	if out[0].Text != `{\highlight}{\k100}a` || out[1].Text != `{\highlight}{\k100}b` {
		t.Fatalf("unexpected karaoke text %q %q", out[0].Text, out[1].Text)
	}
	if stats.InputCues != 1 || stats.OutputCues != 2 || stats.DroppedCues != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	want := "1\n00:00:01,000 --> 00:00:02,000\n{\\highlight}{\\k100}a\n\n2\n00:00:02,000 --> 00:00:03,000\n{\\highlight}{\\k100}b\n"
	if got := FormatSRT(out); got != want {
		t.Fatalf("unexpected serialization:\n%s", got)
	}
}

func TestExpandDisabledIsPassthrough(t *testing.T) {
	track := Track{{Start: 0, End: time.Second, Text: "one two three"}}
	out, stats := Expand(track, false)
	if len(out) != 1 || out[0] != track[0] {
		t.Fatalf("expected unchanged track, got %+v", out)
	}
	if stats.OutputCues != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestExpandDropsZeroWordCues(t *testing.T) {
	track := Track{
		{Start: 0, End: time.Second, Text: "   "},
		{Start: time.Second, End: 2 * time.Second, Text: "word"},
		{Start: 2 * time.Second, End: 3 * time.Second, Text: ""},
	}
	out, stats := Expand(track, true)
	if len(out) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(out))
	}
	if stats.DroppedCues != 2 {
		t.Fatalf("expected 2 dropped cues, got %+v", stats)
	}
}

func TestExpandUnevenDurationKeepsMillisecondPrecision(t *testing.T) {
	track := Track{{Start: 0, End: time.Second, Text: "x y z"}}
	out, _ := Expand(track, true)
	if len(out) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(out))
	}
	if got := formatSRTTimestamp(out[1].Start); got != "00:00:00,333" {
		t.Fatalf("unexpected second start %s", got)
	}
	if got := formatSRTTimestamp(out[2].End); got != "00:00:01,000" {
		t.Fatalf("last word should end at the cue end, got %s", got)
	}
	if out[0].Text != `{\highlight}{\k33}x` {
		t.Fatalf("unexpected karaoke parameter %q", out[0].Text)
	}
}
