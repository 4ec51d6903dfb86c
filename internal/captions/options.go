package captions

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Option keys recognized by the style compiler. Unknown keys are carried
// through untouched and still contribute to the job fingerprint.
const (
	KeyFontName         = "font_name"
	KeyFontSize         = "font_size"
	KeyPrimaryColor     = "primary_color"
	KeySecondaryColor   = "secondary_color"
	KeyOutlineColor     = "outline_color"
	KeyBackColor        = "back_color"
	KeyBold             = "bold"
	KeyItalic           = "italic"
	KeyUnderline        = "underline"
	KeyStrikeout        = "strikeout"
	KeyOutline          = "outline"
	KeyShadow           = "shadow"
	KeyAlignment        = "alignment"
	KeyMarginL          = "margin_l"
	KeyMarginR          = "margin_r"
	KeyMarginV          = "margin_v"
	KeyEncoding         = "encoding"
	KeyOneWordHighlight = "one_word_highlight"
	KeyBlur             = "blur"
	KeyBorderStyle      = "border_style"
	KeySpacing          = "spacing"
	KeyAngle            = "angle"
	KeyUppercase        = "uppercase"
)

// RequiredKeys must be present before a job does any work.
var RequiredKeys = []string{KeyFontName, KeyFontSize, KeyPrimaryColor}

// Option is one submitted {option, value} pair.
type Option struct {
	Name  string `json:"option" toml:"option"`
	Value any    `json:"value" toml:"value"`
}

// Options is the key-unique option mapping used by validation and compilation.
type Options map[string]any

// FromPairs converts submitted pairs into Options. Names are trimmed; when a
// name repeats, the last value wins.
func FromPairs(pairs []Option) Options {
	opts := make(Options, len(pairs))
	for _, pair := range pairs {
		name := strings.TrimSpace(pair.Name)
		if name == "" {
			continue
		}
		opts[name] = pair.Value
	}
	return opts
}

// Keys returns the option names in lexical order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for key := range o {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// With returns a copy with key set to value.
func (o Options) With(key string, value any) Options {
	out := o.Clone()
	out[key] = value
	return out
}

// Has reports whether key is present with a non-nil value.
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// FontName returns the requested font family or "".
func (o Options) FontName() string {
	if v, ok := o[KeyFontName].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Highlight reports whether one-word highlight mode is requested.
func (o Options) Highlight() bool {
	return truthy(o[KeyOneWordHighlight])
}

// text renders the option value for style output, or def when absent.
func (o Options) text(key string, def string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return def
	}
	return FormatValue(v)
}

// FormatValue renders a scalar option value the way it appears in style output.
// Booleans render as 1 or 0 and integral floats drop their fraction.
func FormatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "1"
		}
		return "0"
	case json.Number:
		return value.String()
	case float64:
		if value == math.Trunc(value) && !math.IsInf(value, 0) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return FormatValue(float64(value))
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	default:
		return fmt.Sprint(value)
	}
}

// integerValue returns v as an integer when it is an integral number.
func integerValue(v any) (int64, bool) {
	switch value := v.(type) {
	case int:
		return int64(value), true
	case int8:
		return int64(value), true
	case int16:
		return int64(value), true
	case int32:
		return int64(value), true
	case int64:
		return value, true
	case uint:
		return int64(value), true
	case uint8:
		return int64(value), true
	case uint16:
		return int64(value), true
	case uint32:
		return int64(value), true
	case uint64:
		if value > math.MaxInt64 {
			return 0, false
		}
		return int64(value), true
	case float64:
		if value != math.Trunc(value) || math.IsInf(value, 0) || math.IsNaN(value) {
			return 0, false
		}
		return int64(value), true
	case float32:
		return integerValue(float64(value))
	case json.Number:
		n, err := value.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		return err == nil && parsed
	default:
		if n, ok := integerValue(value); ok {
			return n != 0
		}
		return false
	}
}
