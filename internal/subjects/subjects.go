// Package subjects maps free-text exam subject labels, as they come out of
// OCR, to short canonical subject codes matching the score table headers.
package subjects

import (
	"sort"
	"strings"
)

type alias struct {
	phrase string
	code   string
}

// Known label phrases in the order they are matched. Longer phrases are
// checked first so that e.g. "информатика кегэ" wins over "информатика".
var aliases = buildAliases(map[string]string{
	"математика профильная": "math",
	"математика профиль":    "math",
	"физика":                "phys",
	"русский язык":          "rus",
	"информатика":           "inf",
	"информатика кегэ":      "inf",
})

func buildAliases(m map[string]string) []alias {
	out := make([]alias, 0, len(m))
	for phrase, code := range m {
		out = append(out, alias{phrase: phrase, code: code})
	}

	// Longest phrase first; ties broken lexicographically to keep the
	// scan order deterministic.
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].phrase) != len(out[j].phrase) {
			return len(out[i].phrase) > len(out[j].phrase)
		}

		return out[i].phrase < out[j].phrase
	})

	return out
}

// Normalize returns the canonical code for a raw OCR subject label.
// Unknown labels come back cleaned but otherwise unchanged, so subjects
// missing from the alias table still produce a stable column key.
func Normalize(raw string) string {
	cleaned := clean(raw)
	for _, a := range aliases {
		if strings.Contains(cleaned, a.phrase) {
			return a.code
		}
	}

	return cleaned
}

func clean(raw string) string {
	s := strings.ToLower(raw)
	s = strings.NewReplacer("(", "", ")", "").Replace(s)

	return strings.TrimSpace(s)
}
