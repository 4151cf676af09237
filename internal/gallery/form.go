package gallery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Form field prefixes used by the admin editor. Row fields are named
// menu_items[<index>][image|title|link]; settings are
// font_settings[font_size|text_color].
const (
	ItemsField = "menu_items"
	FontsField = "font_settings"
)

var (
	itemFieldPattern = regexp.MustCompile(`^` + ItemsField + `\[([^\[\]]+)\]\[(image|title|link)\]$`)
	fontFieldPattern = regexp.MustCompile(`^` + FontsField + `\[(font_size|text_color)\]$`)
)

// Submission is a decoded admin form post.
type Submission struct {
	// Items holds one record per row, in the order rows first appear in the
	// request body.
	Items []map[string]string
	Fonts map[string]string
}

// ParseForm decodes an application/x-www-form-urlencoded body. Rows are
// ordered by first appearance of their index in the body rather than by the
// index value, so the visual order at submit time is what gets saved and
// placeholder indices on freshly added rows cannot collide with it.
func ParseForm(body string) (Submission, error) {
	sub := Submission{Items: []map[string]string{}, Fonts: map[string]string{}}
	rows := map[string]int{}

	for body != "" {
		var pair string
		pair, body, _ = strings.Cut(body, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Submission{}, fmt.Errorf("invalid form key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return Submission{}, fmt.Errorf("invalid value for %q: %w", key, err)
		}

		if m := itemFieldPattern.FindStringSubmatch(key); m != nil {
			pos, ok := rows[m[1]]
			if !ok {
				pos = len(sub.Items)
				rows[m[1]] = pos
				sub.Items = append(sub.Items, map[string]string{})
			}
			sub.Items[pos][m[2]] = value
			continue
		}
		if m := fontFieldPattern.FindStringSubmatch(key); m != nil {
			sub.Fonts[m[1]] = value
		}
	}
	return sub, nil
}
