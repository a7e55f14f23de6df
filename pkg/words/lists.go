package words

import (
	"errors"
	"io"
	"os"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidListFormat is returned when a stopword document cannot be parsed.
	ErrInvalidListFormat = errors.New("words: invalid stopword list format")
	// ErrUnknownLanguage is returned when a list is keyed by an unparsable language tag.
	ErrUnknownLanguage = errors.New("words: unknown language tag")
)

// builtinLists holds the bundled stopword lists. They are deliberately
// small: only words that carry no meaning in a permalink.
var builtinLists = map[language.Tag][]string{
	language.English: {
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "for",
		"if", "in", "into", "is", "it", "its", "no", "not", "of", "on",
		"or", "such", "that", "the", "their", "then", "there", "these",
		"they", "this", "to", "was", "will", "with",
	},
	language.German: {
		"aber", "als", "am", "an", "auch", "auf", "aus", "bei", "bin",
		"bis", "das", "dem", "den", "der", "des", "die", "ein", "eine",
		"einem", "einen", "einer", "eines", "es", "für", "im", "in",
		"ist", "mit", "nach", "nicht", "oder", "sind", "und", "um",
		"von", "vor", "wie", "zu", "zum", "zur",
	},
}

// LoadLists reads stopword lists from a YAML document keyed by BCP 47
// language tag:
//
//	en:
//	  - its
//	  - a
//	de:
//	  - der
//	  - die
//
// The result plugs into WithLists.
func LoadLists(r io.Reader) (map[language.Tag][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidListFormat, err)
	}

	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrInvalidListFormat, err)
	}

	lists := make(map[language.Tag][]string, len(doc))
	for code, list := range doc {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, errors.Join(ErrUnknownLanguage, err)
		}
		lists[tag] = list
	}
	return lists, nil
}

// LoadListsFile is a convenience wrapper around LoadLists for a file path.
func LoadListsFile(path string) (map[language.Tag][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return LoadLists(f)
}
