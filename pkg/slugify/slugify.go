package slugify

import (
	"strings"
	"unicode"
)

// Option configures the token generation behavior.
type Option func(*config)

type config struct {
	maxLength     int
	separator     string
	customReplace map[string]string
}

func defaultConfig() *config {
	return &config{
		maxLength: 0, // no limit
		separator: "-",
	}
}

// MaxLength caps the token at n runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator sets the separator string placed between words.
// Default is "-".
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// CustomReplace applies string replacements before tokenization.
// For example: {"&": "and", "%": "percent"}
func CustomReplace(replacements map[string]string) Option {
	return func(c *config) {
		c.customReplace = replacements
	}
}

// Make converts free text into a lowercase URL-safe token. Runs of
// characters that are neither ASCII alphanumerics nor known diacritics
// collapse into a single separator; leading and trailing separators are
// trimmed. Blank input yields an empty token.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.customReplace != nil {
		for from, to := range cfg.customReplace {
			s = strings.ReplaceAll(s, from, to)
		}
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // suppresses a leading separator
	runeCount := 0

	for _, r := range s {
		if cfg.maxLength > 0 && runeCount >= cfg.maxLength {
			break
		}

		r = unicode.ToLower(r)

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			runeCount++
			continue
		}

		if ascii, ok := transliterate(r); ok {
			b.WriteRune(unicode.ToLower(ascii))
			lastWasSep = false
			runeCount++
			continue
		}

		if !lastWasSep {
			sepLen := len([]rune(cfg.separator))
			if cfg.maxLength > 0 && runeCount+sepLen > cfg.maxLength {
				break
			}
			b.WriteString(cfg.separator)
			lastWasSep = true
			runeCount += sepLen
		}
	}

	return strings.TrimSuffix(b.String(), cfg.separator)
}

// asciiMap maps common Latin diacritics to ASCII equivalents.
// Covers major European languages but not exhaustive for all Unicode ranges.
var asciiMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ă': 'a', 'ą': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'đ': 'd', 'ď': 'd',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ė': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o',
	'ř': 'r',
	'ś': 's', 'š': 's', 'ș': 's',
	'ť': 't', 'ț': 't',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ų': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
	'æ': 'a', 'œ': 'o', 'ß': 's',
}

// transliterate converts a Latin diacritic to its ASCII equivalent.
// The second return value reports whether a mapping exists.
func transliterate(r rune) (rune, bool) {
	if ascii, ok := asciiMap[r]; ok {
		return ascii, true
	}
	return r, false
}
