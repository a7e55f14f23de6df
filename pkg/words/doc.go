// Package words extracts the significant words of a text by removing
// stopwords for a configurable language.
//
// The extractor keeps the original order and spelling of the words it
// returns; only the comparison against the stopword list is normalized
// (lowercased, punctuation stripped). This makes it suitable for deriving
// terse permalinks from titles while leaving the source text untouched.
//
// # Usage
//
//	e := words.New()
//	e.Keywords("The Quick Brown Fox", 10)
//	// Result: ["Quick", "Brown", "Fox"]
//
// Language selection uses golang.org/x/text matching, so a regional
// variant like en-US resolves to the English list:
//
//	e := words.New(words.Language(language.AmericanEnglish))
//
// # Custom lists
//
// English and German lists are built in. Additional or replacement lists
// can be registered directly or loaded from YAML:
//
//	lists, err := words.LoadListsFile("stopwords.yml")
//	if err != nil {
//		// handle error
//	}
//	e := words.New(words.Language(language.French), words.WithLists(lists))
package words
