package captions

import (
	"fmt"
	"strings"

	"captionforge/internal/services"
)

// FontAllowList is the subset of the font catalog validation depends on.
type FontAllowList interface {
	Allowed(name string) bool
	Names() []string
}

const forbiddenValueChars = "',=\r\n"

// Validate checks that required options are present, the font is allowed, and
// the font size is a positive integer. Failures are tagged services.ErrValidation.
func Validate(opts Options, fonts FontAllowList) error {
	for _, key := range RequiredKeys {
		if !opts.Has(key) {
			return validationError(fmt.Sprintf("missing required option: %s", key))
		}
	}

	name := opts.FontName()
	if name == "" {
		return validationError("font_name must be a non-empty string")
	}
	if fonts == nil || !fonts.Allowed(name) {
		allowed := []string{}
		if fonts != nil {
			allowed = fonts.Names()
		}
		return validationError(fmt.Sprintf("invalid font name %q; acceptable fonts are: %s", name, strings.Join(allowed, ", ")))
	}

	size, ok := fontSize(opts[KeyFontSize])
	if !ok || size <= 0 {
		return validationError(fmt.Sprintf("font size must be a positive integer, got %v", opts[KeyFontSize]))
	}

	for _, key := range opts.Keys() {
		value := opts[key]
		if !isScalar(value) {
			return validationError(fmt.Sprintf("option %s must be a string, number, or boolean", key))
		}
		if s, ok := value.(string); ok && strings.ContainsAny(s, forbiddenValueChars) {
			return validationError(fmt.Sprintf("option %s contains characters not allowed in a style value", key))
		}
	}
	return nil
}

// fontSize accepts integer-typed values only; 24.0 decodes as a float in TOML
// and is rejected even though it is integral.
func fontSize(v any) (int64, bool) {
	switch v.(type) {
	case float32, float64:
		return 0, false
	}
	return integerValue(v)
}

func validationError(message string) error {
	return services.Wrap(services.ErrValidation, "validation", "options", message, nil)
}
