package gallery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexraskin/hovergallery/internal/models"
)

const (
	DefaultFontSize  = "inherit"
	DefaultTextColor = "#ffff"

	inherit = "inherit"
)

var (
	fontSizePattern = regexp.MustCompile(`^\d+(\.\d+)?(px|em|rem|%)$`)
	hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	rgbColorPattern = regexp.MustCompile(`^(?i:rgba?)\(\s*` +
		`\d{1,3}(\.\d+)?%?\s*,\s*\d{1,3}(\.\d+)?%?\s*,\s*\d{1,3}(\.\d+)?%?` +
		`(\s*,\s*(\d+(\.\d+)?|\.\d+)%?)?\s*\)$`)
)

// ValidFontSize reports whether s is a plain CSS length in px, em, rem or %,
// or the keyword inherit.
func ValidFontSize(s string) bool {
	return s == inherit || fontSizePattern.MatchString(s)
}

// ValidTextColor reports whether s is a hex color, an rgb()/rgba() function,
// a named CSS color, or inherit.
func ValidTextColor(s string) bool {
	if s == inherit || hexColorPattern.MatchString(s) || rgbColorPattern.MatchString(s) {
		return true
	}
	return namedColors[strings.ToLower(s)]
}

// ResolveFontSettings replaces each invalid field of f with its default.
// The fields are checked independently.
func ResolveFontSettings(f models.FontSettings) models.FontSettings {
	out := models.FontSettings{
		FontSize:  strings.TrimSpace(f.FontSize),
		TextColor: strings.TrimSpace(f.TextColor),
	}
	if !ValidFontSize(out.FontSize) {
		out.FontSize = DefaultFontSize
	}
	if !ValidTextColor(out.TextColor) {
		out.TextColor = DefaultTextColor
	}
	return out
}

func DefaultFontSettings() models.FontSettings {
	return models.FontSettings{FontSize: DefaultFontSize, TextColor: DefaultTextColor}
}

// SanitizeFontSettings builds FontSettings from a submitted record. Accepted
// inputs are FontSettings values and string-keyed maps using either the
// form keys (font_size, text_color) or the camel-case keys. Anything else
// resolves to the defaults.
func SanitizeFontSettings(raw any) models.FontSettings {
	var f models.FontSettings
	switch v := raw.(type) {
	case models.FontSettings:
		f = v
	case *models.FontSettings:
		if v != nil {
			f = *v
		}
	case map[string]string:
		f.FontSize = firstOf(v, "font_size", "fontSize")
		f.TextColor = firstOf(v, "text_color", "textColor")
	case map[string]any:
		f.FontSize = scalarString(firstOfAny(v, "font_size", "fontSize"))
		f.TextColor = scalarString(firstOfAny(v, "text_color", "textColor"))
	}
	return ResolveFontSettings(f)
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return ""
}

func firstOfAny(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

// scalarString renders strings and numbers; nil, maps and slices become "".
func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

var namedColors = map[string]bool{
	"aliceblue": true, "antiquewhite": true, "aqua": true, "aquamarine": true,
	"azure": true, "beige": true, "bisque": true, "black": true,
	"blanchedalmond": true, "blue": true, "blueviolet": true, "brown": true,
	"burlywood": true, "cadetblue": true, "chartreuse": true, "chocolate": true,
	"coral": true, "cornflowerblue": true, "cornsilk": true, "crimson": true,
	"cyan": true, "darkblue": true, "darkcyan": true, "darkgoldenrod": true,
	"darkgray": true, "darkgreen": true, "darkgrey": true, "darkkhaki": true,
	"darkmagenta": true, "darkolivegreen": true, "darkorange": true, "darkorchid": true,
	"darkred": true, "darksalmon": true, "darkseagreen": true, "darkslateblue": true,
	"darkslategray": true, "darkslategrey": true, "darkturquoise": true, "darkviolet": true,
	"deeppink": true, "deepskyblue": true, "dimgray": true, "dimgrey": true,
	"dodgerblue": true, "firebrick": true, "floralwhite": true, "forestgreen": true,
	"fuchsia": true, "gainsboro": true, "ghostwhite": true, "gold": true,
	"goldenrod": true, "gray": true, "green": true, "greenyellow": true,
	"grey": true, "honeydew": true, "hotpink": true, "indianred": true,
	"indigo": true, "ivory": true, "khaki": true, "lavender": true,
	"lavenderblush": true, "lawngreen": true, "lemonchiffon": true, "lightblue": true,
	"lightcoral": true, "lightcyan": true, "lightgoldenrodyellow": true, "lightgray": true,
	"lightgreen": true, "lightgrey": true, "lightpink": true, "lightsalmon": true,
	"lightseagreen": true, "lightskyblue": true, "lightslategray": true, "lightslategrey": true,
	"lightsteelblue": true, "lightyellow": true, "lime": true, "limegreen": true,
	"linen": true, "magenta": true, "maroon": true, "mediumaquamarine": true,
	"mediumblue": true, "mediumorchid": true, "mediumpurple": true, "mediumseagreen": true,
	"mediumslateblue": true, "mediumspringgreen": true, "mediumturquoise": true, "mediumvioletred": true,
	"midnightblue": true, "mintcream": true, "mistyrose": true, "moccasin": true,
	"navajowhite": true, "navy": true, "oldlace": true, "olive": true,
	"olivedrab": true, "orange": true, "orangered": true, "orchid": true,
	"palegoldenrod": true, "palegreen": true, "paleturquoise": true, "palevioletred": true,
	"papayawhip": true, "peachpuff": true, "peru": true, "pink": true,
	"plum": true, "powderblue": true, "purple": true, "rebeccapurple": true,
	"red": true, "rosybrown": true, "royalblue": true, "saddlebrown": true,
	"salmon": true, "sandybrown": true, "seagreen": true, "seashell": true,
	"sienna": true, "silver": true, "skyblue": true, "slateblue": true,
	"slategray": true, "slategrey": true, "snow": true, "springgreen": true,
	"steelblue": true, "tan": true, "teal": true, "thistle": true,
	"tomato": true, "transparent": true, "turquoise": true, "violet": true,
	"wheat": true, "white": true, "whitesmoke": true, "yellow": true,
	"yellowgreen": true,
}
