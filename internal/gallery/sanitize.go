package gallery

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// allowedSchemes are the URL schemes kept by SanitizeURL.
var allowedSchemes = map[string]bool{
	"http": true, "https": true, "ftp": true, "ftps": true, "mailto": true,
	"news": true, "irc": true, "irc6": true, "ircs": true, "gopher": true,
	"nntp": true, "feed": true, "telnet": true, "mms": true, "rtsp": true,
	"sms": true, "svn": true, "tel": true, "fax": true, "xmpp": true,
	"webcal": true, "urn": true,
}

var (
	textPolicy = bluemonday.StrictPolicy()

	urlDisallowed = regexp.MustCompile(`[^a-zA-Z0-9~+_.?#=!&;,/:%@$|*'()\[\]\-\x{80}-\x{10FFFF}]`)
	urlEncodedCRLF = regexp.MustCompile(`(?i)%0[ad0]`)
	phpScript      = regexp.MustCompile(`(?i)^[a-z0-9-]+?\.php`)

	percentOctet   = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeURL returns raw as a storable URL, or "" when it is empty or uses
// a scheme outside the allowlist. Schemeless hosts get http:// prepended;
// relative references starting with /, # or ? are kept as-is.
func SanitizeURL(raw string) string {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, " ", "%20")
	s = urlDisallowed.ReplaceAllString(s, "")
	for urlEncodedCRLF.MatchString(s) {
		s = urlEncodedCRLF.ReplaceAllString(s, "")
	}
	if s == "" {
		return ""
	}

	if !strings.Contains(s, ":") && !strings.ContainsAny(s[:1], "/#?") && !phpScript.MatchString(s) {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme != "" && !allowedSchemes[strings.ToLower(u.Scheme)] {
		return ""
	}
	return s
}

// SanitizeText reduces raw to a single line of plain text: markup removed,
// entities decoded, invalid UTF-8 and percent-encoded octets dropped, and
// whitespace collapsed. Decoding can reveal markup that was entity-encoded,
// so passes repeat until the text is stable; cleaning a cleaned title
// returns it unchanged.
func SanitizeText(raw string) string {
	s := strings.ToValidUTF8(raw, "")
	for i := 0; i < maxTextPasses; i++ {
		next := sanitizeTextPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

const maxTextPasses = 8

func sanitizeTextPass(s string) string {
	s = html.UnescapeString(textPolicy.Sanitize(stripControl(s)))
	for percentOctet.MatchString(s) {
		s = percentOctet.ReplaceAllString(s, "")
	}
	s = whitespaceRuns.ReplaceAllString(stripControl(s), " ")
	return strings.TrimSpace(s)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
