package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// DefaultMax is the keyword cap applied when a non-positive max is given.
const DefaultMax = 10

// Extractor picks the significant words of a text by dropping stopwords
// of the configured language. Words keep their original order and form.
type Extractor struct {
	lang    language.Tag
	lists   map[language.Tag]map[string]struct{}
	tags    []language.Tag
	matcher language.Matcher
}

// Option configures an Extractor.
type Option func(*Extractor)

// Language sets the language used to pick the stopword list.
// Default is English.
func Language(tag language.Tag) Option {
	return func(e *Extractor) {
		e.lang = tag
	}
}

// WithList registers a stopword list for the given language, replacing a
// built-in list of the same language.
func WithList(tag language.Tag, stopwords []string) Option {
	return func(e *Extractor) {
		set := make(map[string]struct{}, len(stopwords))
		for _, w := range stopwords {
			if w = normalizeWord(w); w != "" {
				set[w] = struct{}{}
			}
		}
		e.lists[tag] = set
	}
}

// WithLists registers several stopword lists at once, e.g. the result of
// LoadLists.
func WithLists(lists map[language.Tag][]string) Option {
	return func(e *Extractor) {
		for tag, list := range lists {
			WithList(tag, list)(e)
		}
	}
}

// New creates an Extractor. Without options it uses the built-in English
// stopword list; German is built in as well.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		lang:  language.English,
		lists: make(map[language.Tag]map[string]struct{}, len(builtinLists)),
	}
	for tag, list := range builtinLists {
		WithList(tag, list)(e)
	}
	for _, opt := range opts {
		opt(e)
	}

	e.tags = make([]language.Tag, 0, len(e.lists))
	for tag := range e.lists {
		e.tags = append(e.tags, tag)
	}
	e.matcher = language.NewMatcher(e.tags)

	return e
}

// Keywords returns up to max significant words of text in their original
// order. Stopword comparison ignores case and punctuation, so "It's"
// matches the stopword "its". A non-positive max falls back to DefaultMax.
func (e *Extractor) Keywords(text string, max int) []string {
	if max <= 0 {
		max = DefaultMax
	}

	stopwords := e.list()

	var keywords []string
	for _, word := range strings.Fields(text) {
		normalized := normalizeWord(word)
		if normalized == "" {
			continue
		}
		if _, skip := stopwords[normalized]; skip {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}

// list resolves the stopword list closest to the configured language,
// e.g. en-US falls back to the English list.
func (e *Extractor) list() map[string]struct{} {
	if set, ok := e.lists[e.lang]; ok {
		return set
	}
	_, i, conf := e.matcher.Match(e.lang)
	if conf == language.No {
		return nil
	}
	return e.lists[e.tags[i]]
}

// normalizeWord lowercases a token and strips everything that is neither
// letter nor digit, giving the form stopwords are compared in.
func normalizeWord(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
