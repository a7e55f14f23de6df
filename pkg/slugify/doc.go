// Package slugify converts free text into lowercase URL-safe tokens.
//
// The transform is intentionally lossy: diacritics are transliterated to
// ASCII (é → e, ß → s), every run of other non-alphanumeric characters
// collapses into a single separator, and leading/trailing separators are
// trimmed. The result is suitable for permalink values, file names, and
// other identifiers derived from user input.
//
// # Usage
//
//	token := slugify.Make("Hey Joe!")
//	// Result: "hey-joe"
//
//	token := slugify.Make("Café & Restaurant")
//	// Result: "cafe-restaurant"
//
// # Configuration Options
//
// The package uses functional options:
//
//   - MaxLength: cap the token length (counts runes, not bytes)
//   - Separator: change the separator string (default: "-")
//   - CustomReplace: apply string replacements before tokenization
//
//	token := slugify.Make("Rock & Roll", slugify.CustomReplace(map[string]string{"&": "and"}))
//	// Result: "rock-and-roll"
//
// # Thread Safety
//
// All functions are pure and safe for concurrent use.
package slugify
