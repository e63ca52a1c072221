package sheets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColumnLetters(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{703, "AAA"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, columnLetters(tt.col))
		})
	}
}

func TestMemory_FindAndAppend(t *testing.T) {
	ctx := context.Background()
	m := NewMemory([]string{"tg_id", "student_id", "math"})

	row, err := m.FindRow(ctx, "42")
	require.NoError(t, err)
	require.Zero(t, row)

	require.NoError(t, m.AppendRow(ctx, []string{"42", "S1", "80"}))

	row, err = m.FindRow(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, 2, row)

	values, err := m.ReadRow(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"42", "S1", "80"}, values)
}

func TestMemory_UpdateCellGrowsRow(t *testing.T) {
	ctx := context.Background()
	m := NewMemory([]string{"tg_id", "math"})

	require.NoError(t, m.AppendRow(ctx, []string{"42"}))
	require.NoError(t, m.UpdateCell(ctx, 2, 2, "95"))

	values, err := m.ReadRow(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"42", "95"}, values)
}
