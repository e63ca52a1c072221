package subjects

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "exact match", raw: "физика", want: "phys"},
		{name: "uppercased", raw: "ФИЗИКА", want: "phys"},
		{name: "profile math", raw: "Математика профильная", want: "math"},
		{name: "short profile math", raw: "математика профиль", want: "math"},
		{name: "russian", raw: "Русский язык", want: "rus"},
		{name: "informatics", raw: "Информатика", want: "inf"},
		{name: "informatics kege", raw: "Информатика КЕГЭ", want: "inf"},
		{name: "parens stripped", raw: "Информатика (КЕГЭ)", want: "inf"},
		{name: "surrounding noise", raw: "  предмет физика балл ", want: "phys"},
		{name: "unknown stays cleaned", raw: " Химия ", want: "химия"},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_LongestMatchWins(t *testing.T) {
	// "информатика кегэ" contains "информатика"; the longer phrase must be
	// checked first even though both map to the same code today.
	require.Equal(t, "inf", Normalize("информатика кегэ"))

	// The alias table is sorted by descending phrase length.
	for i := 1; i < len(aliases); i++ {
		require.GreaterOrEqual(t, len(aliases[i-1].phrase), len(aliases[i].phrase))
	}
}
