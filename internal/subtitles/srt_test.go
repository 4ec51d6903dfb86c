package subtitles

import (
	"strings"
	"testing"
	"time"
)

func TestParseTimestampVariants(t *testing.T) {
	cases := map[string]time.Duration{
		"00:00:01,000":  time.Second,
		"00:01:02.345":  time.Minute + 2*time.Second + 345*time.Millisecond,
		"01:02.5":       time.Minute + 2*time.Second + 500*time.Millisecond,
		"1:00:00.25":    time.Hour + 250*time.Millisecond,
		"00:00:03":      3 * time.Second,
		"00:00:00,1234": 123 * time.Millisecond,
	}
	for in, want := range cases {
		got, err := parseTimestamp(in)
		if err != nil {
			t.Fatalf("parseTimestamp(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("parseTimestamp(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "abc", "00:00:01,", "1,2,3", "00:aa:01,000"} {
		if _, err := parseTimestamp(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFormatTimestamps(t *testing.T) {
	d := time.Hour + 2*time.Minute + 3*time.Second + 456*time.Millisecond
	if got := formatSRTTimestamp(d); got != "01:02:03,456" {
		t.Fatalf("unexpected srt timestamp %q", got)
	}
	if got := formatASSTimestamp(d); got != "1:02:03.46" {
		t.Fatalf("unexpected ass timestamp %q", got)
	}
	if got := formatSRTTimestamp(-time.Second); got != "00:00:00,000" {
		t.Fatalf("negative durations clamp to zero, got %q", got)
	}
}

func TestParseSRTRoundTrip(t *testing.T) {
	input := "\ufeff1\r\n00:00:01,000 --> 00:00:02,500\r\nHello there\r\nGeneral\r\n\r\n2\r\n00:00:03,250 --> 00:00:04,000\r\nBye\r\n"
	track, err := ParseSRT(input)
	if err != nil {
		t.Fatalf("ParseSRT returned error: %v", err)
	}
	if len(track) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(track))
	}
	if track[0].Text != "Hello there\nGeneral" {
		t.Fatalf("unexpected text %q", track[0].Text)
	}
	if track[1].Start != 3250*time.Millisecond {
		t.Fatalf("unexpected start %s", track[1].Start)
	}

	want := "1\n00:00:01,000 --> 00:00:02,500\nHello there\nGeneral\n\n2\n00:00:03,250 --> 00:00:04,000\nBye\n"
	if got := FormatSRT(track); got != want {
		t.Fatalf("unexpected serialization:\n%s", got)
	}
}

func TestParseSRTRejectsBadTiming(t *testing.T) {
	if _, err := ParseSRT("1\n00:00:01,000 --> nope\nText\n"); err == nil {
		t.Fatal("expected error for malformed end timestamp")
	}
}

func TestParseVTT(t *testing.T) {
	input := strings.Join([]string{
		"WEBVTT - demo",
		"",
		"NOTE this is ignored",
		"",
		"intro",
		"00:01.000 --> 00:02.000 align:start position:10%",
		"Hi",
		"",
		"00:00:02.000 --> 00:00:03.000",
		"There",
	}, "\n")
	track, err := ParseVTT(input)
	if err != nil {
		t.Fatalf("ParseVTT returned error: %v", err)
	}
	if len(track) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(track), track)
	}
	if track[0].Start != time.Second || track[0].End != 2*time.Second || track[0].Text != "Hi" {
		t.Fatalf("unexpected first cue %+v", track[0])
	}
}

func TestParseSRTTreatsWhitespaceLineAsSeparator(t *testing.T) {
	content := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n  \t\n2\n00:00:03,000 --> 00:00:04,000\nsecond   \n"
	track, err := ParseSRT(content)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(track) != 2 {
		t.Fatalf("expected 2 cues, got %d: %#v", len(track), track)
	}
	if track[1].Text != "second" {
		t.Fatalf("trailing whitespace not trimmed: %q", track[1].Text)
	}
}
