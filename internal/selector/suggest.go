package selector

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dpshade/quick-hb/internal/models"
)

// DefaultSuggestLimit caps the number of suggestions shown while typing
const DefaultSuggestLimit = 5

// Suggest returns records for the word being typed. Words shorter than two
// characters match nothing. A record matches when its title contains the word
// or its shortcut starts with it, ignoring case. Results keep collection order.
func Suggest(records models.Collection, word string, limit int) models.Collection {
	word = strings.TrimSpace(word)
	if utf8.RuneCountInString(word) < 2 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	term := strings.ToLower(word)
	var out models.Collection
	for _, rec := range records {
		titleMatch := strings.Contains(strings.ToLower(rec.Name), term)
		shortcutMatch := rec.Shortcut != "" && strings.HasPrefix(strings.ToLower(rec.Shortcut), term)
		if !titleMatch && !shortcutMatch {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out
}

// LastWord returns the word at the end of text, the way the editor reads the
// word under the cursor. Text ending in whitespace has no current word.
func LastWord(text string) string {
	last, _ := utf8.DecodeLastRuneInString(text)
	if text == "" || unicode.IsSpace(last) {
		return ""
	}
	fields := strings.FieldsFunc(text, unicode.IsSpace)
	return fields[len(fields)-1]
}
