package captions

import (
	"strings"
)

// Defaults applied when an option is absent.
const (
	DefaultFontName       = "Arial"
	DefaultFontSize       = "24"
	DefaultPrimaryColor   = "&H00FFFFFF"
	DefaultSecondaryColor = "&H00000000"
	DefaultOutlineColor   = "&H00000000"
	DefaultBackColor      = "&H00000000"
	DefaultAlignment      = "2"
	DefaultMargin         = "10"
	DefaultEncoding       = "1"
	DefaultOutline        = "1"
	DefaultShadow         = "0"
	DefaultBorderStyle    = "1"
)

// StyleFormat is the [V4+ Styles] Format line matching StyleSpec.StyleLine.
const StyleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"

// StyleField is one compiled key/value pair.
type StyleField struct {
	Key   string
	Value string
}

// StyleSpec is the renderer-facing style derived from Options. It is a value
// type; compiling the same options twice yields identical output.
type StyleSpec struct {
	Dialect   Dialect
	Highlight bool
	Fields    []StyleField
}

// StyleLine renders the advanced-dialect "Style:" line.
func (s StyleSpec) StyleLine() string {
	values := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		values[i] = f.Value
	}
	return "Style: " + strings.Join(values, ",")
}

// ForceStyle renders the simple-dialect force_style list.
func (s StyleSpec) ForceStyle() string {
	pairs := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		pairs[i] = f.Key + "=" + f.Value
	}
	return strings.Join(pairs, ",")
}

// String returns the dialect-appropriate serialization.
func (s StyleSpec) String() string {
	if s.Dialect.Advanced() {
		return s.StyleLine()
	}
	return s.ForceStyle()
}

// Compile turns validated options into a StyleSpec for dialect. Absent options
// fall back to defaults silently; value checks happen in Validate.
func Compile(opts Options, dialect Dialect) StyleSpec {
	spec := StyleSpec{Dialect: dialect, Highlight: opts.Highlight()}
	if dialect.Advanced() {
		spec.Fields = advancedFields(opts)
	} else {
		spec.Fields = simpleFields(opts, spec.Highlight)
	}
	return spec
}

func advancedFields(opts Options) []StyleField {
	return []StyleField{
		{"Name", "Default"},
		{"Fontname", opts.text(KeyFontName, DefaultFontName)},
		{"Fontsize", opts.text(KeyFontSize, DefaultFontSize)},
		{"PrimaryColour", opts.text(KeyPrimaryColor, DefaultPrimaryColor)},
		{"OutlineColour", opts.text(KeyOutlineColor, DefaultOutlineColor)},
		{"BackColour", opts.text(KeyBackColor, DefaultBackColor)},
		{"Bold", opts.text(KeyBold, "0")},
		{"Italic", opts.text(KeyItalic, "0")},
		{"Underline", opts.text(KeyUnderline, "0")},
		{"StrikeOut", opts.text(KeyStrikeout, "0")},
		{"ScaleX", "100"},
		{"ScaleY", "100"},
		{"Spacing", "0"},
		{"Angle", "0"},
		{"BorderStyle", "1"},
		{"Outline", opts.text(KeyOutline, DefaultOutline)},
		{"Shadow", opts.text(KeyShadow, DefaultShadow)},
		{"Alignment", opts.text(KeyAlignment, DefaultAlignment)},
		{"MarginL", opts.text(KeyMarginL, DefaultMargin)},
		{"MarginR", opts.text(KeyMarginR, DefaultMargin)},
		{"MarginV", opts.text(KeyMarginV, DefaultMargin)},
		{"Encoding", opts.text(KeyEncoding, DefaultEncoding)},
		{"OneWordHighlight", FormatValue(opts.Highlight())},
	}
}

func simpleFields(opts Options, highlight bool) []StyleField {
	fields := []StyleField{
		{"FontName", opts.text(KeyFontName, DefaultFontName)},
		{"FontSize", opts.text(KeyFontSize, DefaultFontSize)},
		{"PrimaryColour", opts.text(KeyPrimaryColor, DefaultPrimaryColor)},
		{"SecondaryColour", opts.text(KeySecondaryColor, DefaultSecondaryColor)},
		{"OutlineColour", opts.text(KeyOutlineColor, DefaultOutlineColor)},
		{"BackColour", opts.text(KeyBackColor, DefaultBackColor)},
		{"Bold", opts.text(KeyBold, "0")},
		{"Italic", opts.text(KeyItalic, "0")},
		{"Underline", opts.text(KeyUnderline, "0")},
		{"StrikeOut", opts.text(KeyStrikeout, "0")},
		{"Alignment", opts.text(KeyAlignment, DefaultAlignment)},
		{"MarginV", opts.text(KeyMarginV, DefaultMargin)},
		{"MarginL", opts.text(KeyMarginL, DefaultMargin)},
		{"MarginR", opts.text(KeyMarginR, DefaultMargin)},
		{"Outline", opts.text(KeyOutline, DefaultOutline)},
		{"Shadow", opts.text(KeyShadow, DefaultShadow)},
		{"Blur", opts.text(KeyBlur, "0")},
		{"BorderStyle", opts.text(KeyBorderStyle, DefaultBorderStyle)},
		{"Encoding", opts.text(KeyEncoding, DefaultEncoding)},
		{"Spacing", opts.text(KeySpacing, "0")},
		{"Angle", opts.text(KeyAngle, "0")},
		{"UpperCase", opts.text(KeyUppercase, "0")},
	}
	if highlight {
		fields = append(fields, StyleField{"Highlight", "1"})
	}
	return fields
}
