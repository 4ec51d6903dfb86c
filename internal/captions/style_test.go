package captions

import (
	"strings"
	"testing"
)

func TestCompileAdvancedDefaults(t *testing.T) {
	spec := Compile(Options{}, DialectASS)
	want := "Style: Default,Arial,24,&H00FFFFFF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,1,0,2,10,10,10,1,0"
	if got := spec.StyleLine(); got != want {
		t.Fatalf("unexpected style line:\n got %s\nwant %s", got, want)
	}
	if spec.String() != want {
		t.Fatal("String() should render the style line for the advanced dialect")
	}
}

func TestCompileAdvancedUsesOptions(t *testing.T) {
	opts := Options{
		KeyFontName:         "Roboto",
		KeyFontSize:         48,
		KeyPrimaryColor:     "&H0000FFFF",
		KeyBold:             true,
		KeyAlignment:        8,
		KeyMarginV:          40,
		KeyOneWordHighlight: true,
		KeySpacing:          9,
	}
	spec := Compile(opts, DialectASS)
	want := "Style: Default,Roboto,48,&H0000FFFF,&H00000000,&H00000000,1,0,0,0,100,100,0,0,1,1,0,8,10,10,40,1,1"
	if got := spec.StyleLine(); got != want {
		t.Fatalf("unexpected style line:\n got %s\nwant %s", got, want)
	}
	if !spec.Highlight {
		t.Fatal("expected highlight flag")
	}
}

func TestCompileSimpleOrderAndHighlight(t *testing.T) {
	opts := Options{
		KeyFontName:     "Roboto",
		KeyFontSize:     30,
		KeyPrimaryColor: "&H00FFFFFF",
		KeyBlur:         2,
		KeyUppercase:    1,
	}
	spec := Compile(opts, DialectSRT)
	want := "FontName=Roboto,FontSize=30,PrimaryColour=&H00FFFFFF,SecondaryColour=&H00000000," +
		"OutlineColour=&H00000000,BackColour=&H00000000,Bold=0,Italic=0,Underline=0,StrikeOut=0," +
		"Alignment=2,MarginV=10,MarginL=10,MarginR=10,Outline=1,Shadow=0,Blur=2,BorderStyle=1," +
		"Encoding=1,Spacing=0,Angle=0,UpperCase=1"
	if got := spec.ForceStyle(); got != want {
		t.Fatalf("unexpected force_style:\n got %s\nwant %s", got, want)
	}
	if strings.Contains(spec.ForceStyle(), "Highlight") {
		t.Fatal("Highlight key must be omitted when highlighting is off")
	}

	opts[KeyOneWordHighlight] = true
	highlighted := Compile(opts, DialectSRT).ForceStyle()
	if !strings.HasSuffix(highlighted, ",Highlight=1") {
		t.Fatalf("expected trailing Highlight key, got %s", highlighted)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	opts := Options{KeyFontName: "Roboto", KeyFontSize: 30, KeyPrimaryColor: "&H00FFFFFF", KeyShadow: 2}
	for _, dialect := range []Dialect{DialectSRT, DialectASS} {
		first := Compile(opts, dialect).String()
		for i := 0; i < 20; i++ {
			if again := Compile(opts.Clone(), dialect).String(); again != first {
				t.Fatalf("%s: compile output changed between runs:\n%s\n%s", dialect, first, again)
			}
		}
	}
}

func TestCompileOmittedAlignmentDefaultsToBottomCenter(t *testing.T) {
	spec := Compile(Options{KeyFontName: "Roboto"}, DialectSRT)
	for _, f := range spec.Fields {
		if f.Key == "Alignment" && f.Value != "2" {
			t.Fatalf("expected alignment 2, got %s", f.Value)
		}
	}
}

func TestFilterExpression(t *testing.T) {
	path := "/staging/job-1/job-1.ass"

	got, err := FilterExpression(Compile(Options{}, DialectASS), path)
	if err != nil {
		t.Fatalf("FilterExpression returned error: %v", err)
	}
	if got != "subtitles='/staging/job-1/job-1.ass'" {
		t.Fatalf("unexpected advanced filter: %s", got)
	}

	got, err = FilterExpression(Compile(Options{KeyOneWordHighlight: true}, DialectASS), path)
	if err != nil {
		t.Fatalf("FilterExpression returned error: %v", err)
	}
	want := "ass='/staging/job-1/job-1.ass',subtitles='/staging/job-1/job-1.ass':force_style='Highlight=1'"
	if got != want {
		t.Fatalf("unexpected highlighted advanced filter:\n got %s\nwant %s", got, want)
	}

	spec := Compile(Options{KeyFontName: "Roboto"}, DialectSRT)
	got, err = FilterExpression(spec, "/staging/job-1/job-1.srt")
	if err != nil {
		t.Fatalf("FilterExpression returned error: %v", err)
	}
	if !strings.HasPrefix(got, "subtitles='/staging/job-1/job-1.srt':force_style='FontName=Roboto,") || !strings.HasSuffix(got, "'") {
		t.Fatalf("unexpected simple filter: %s", got)
	}

	if _, err := FilterExpression(spec, "/tmp/it's.srt"); err == nil {
		t.Fatal("expected error for path containing a quote")
	}
}
