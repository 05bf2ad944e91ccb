package render

import (
	"fmt"
	"strconv"
	"strings"

	"baliance.com/gooxml/color"

	apperrors "slide-generator/internal/common/errors"
	"slide-generator/internal/models"
)

const (
	DefaultPrimaryColor   = "#2A5CAA"
	DefaultSecondaryColor = "#5A8F29"
	DefaultFont           = "Calibri"
)

type RGB struct {
	R, G, B uint8
}

func (c RGB) Color() color.Color {
	return color.RGB(c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ResolvedTheme is the fully defaulted color and font set for one render pass.
type ResolvedTheme struct {
	Primary   RGB
	Secondary RGB
	Font      string
}

// ParseHexColor reads "RRGGBB" with an optional leading '#'.
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, &apperrors.MalformedColorError{Value: s, Reason: "expected 6 hex digits"}
	}

	var ch [3]uint8
	for i := range ch {
		pair := hex[i*2 : i*2+2]
		if !isHexDigit(pair[0]) || !isHexDigit(pair[1]) {
			return RGB{}, &apperrors.MalformedColorError{Value: s, Reason: fmt.Sprintf("non-hex characters %q", pair)}
		}
		v, err := strconv.ParseUint(pair, 16, 8)
		if err != nil {
			return RGB{}, &apperrors.MalformedColorError{Value: s, Reason: err.Error()}
		}
		ch[i] = uint8(v)
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func isHexDigit(b byte) bool {
	return ('0' <= b && b <= '9') || ('a' <= b && b <= 'f') || ('A' <= b && b <= 'F')
}

// ResolveTheme fills every key missing from the overrides with its default.
// An empty string counts as missing.
func ResolveTheme(o models.ThemeOverrides) (ResolvedTheme, error) {
	primary, err := ParseHexColor(valueOr(o.PrimaryColor, DefaultPrimaryColor))
	if err != nil {
		return ResolvedTheme{}, err
	}
	secondary, err := ParseHexColor(valueOr(o.SecondaryColor, DefaultSecondaryColor))
	if err != nil {
		return ResolvedTheme{}, err
	}
	return ResolvedTheme{
		Primary:   primary,
		Secondary: secondary,
		Font:      valueOr(o.Font, DefaultFont),
	}, nil
}

func valueOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
