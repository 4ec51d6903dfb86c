package subtitles

import (
	"strings"
	"testing"
	"time"

	"captionforge/internal/captions"
)

func TestParseASSEvents(t *testing.T) {
	input := strings.Join([]string{
		"[Events]",
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text",
		"Dialogue: 0,0:00:01.00,0:00:02.50,Default,,0,0,0,,Hello, world\\Nsecond line",
		"Comment: 0,0:00:03.00,0:00:04.00,Default,,0,0,0,,ignored",
	}, "\n")
	track, err := ParseASSEvents(input)
	if err != nil {
		t.Fatalf("ParseASSEvents returned error: %v", err)
	}
	if len(track) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(track))
	}
	if track[0].End != 2500*time.Millisecond {
		t.Fatalf("unexpected end %s", track[0].End)
	}
	if track[0].Text != "Hello, world\nsecond line" {
		t.Fatalf("unexpected text %q", track[0].Text)
	}

	if _, err := ParseASSEvents("Dialogue: 0,0:00:01.00"); err == nil {
		t.Fatal("expected error for short dialogue line")
	}
}

func TestFormatASSDocument(t *testing.T) {
	spec := captions.Compile(captions.Options{captions.KeyFontName: "Roboto", captions.KeyFontSize: 30}, captions.DialectASS)
	track := Track{{Start: time.Second, End: 2 * time.Second, Text: "Line one\nLine two"}}
	doc := FormatASS(spec, track)

	for _, want := range []string{
		"[Script Info]\nTitle: Highlight Current Word\nScriptType: v4.00+\n",
		"[V4+ Styles]\n" + captions.StyleFormat + "\nStyle: Default,Roboto,30,",
		"[Events]\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n",
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,Line one\\NLine two\n",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document missing %q:\n%s", want, doc)
		}
	}

	reparsed, err := ParseASSEvents(doc)
	if err != nil {
		t.Fatalf("ParseASSEvents returned error: %v", err)
	}
	if len(reparsed) != 1 || reparsed[0] != track[0] {
		t.Fatalf("round trip mismatch: %+v", reparsed)
	}
}
