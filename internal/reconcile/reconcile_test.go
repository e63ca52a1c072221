package reconcile

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/config"
	"github.com/Diwan1337/quantum-ocr-bot/internal/sheets"
)

var scoresHeader = []string{"tg_id", "student_id", "math", "rus"}

func newTestReconciler(policy string) (*Reconciler, *sheets.Memory, *sheets.Memory) {
	scores := sheets.NewMemory(scoresHeader)
	feedback := sheets.NewMemory(FeedbackHeader)
	logger := zerolog.Nop()

	return New(scores, feedback, policy, 1, &logger), scores, feedback
}

func TestUpsertScores_CreatesRow(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 80}, "S1"))

	rows := scores.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, []string{"42", "S1", "80", ""}, rows[1])
}

func TestUpsertScores_UpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 80}, "S1"))
	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 95}, ""))

	rows := scores.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, "95", rows[1][2])
	require.Equal(t, "S1", rows[1][1], "existing student id must survive")
}

func TestUpsertScores_Idempotent(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertScores(ctx, 7, map[string]int{"math": 90}, "S2"))
	require.NoError(t, r.UpsertScores(ctx, 7, map[string]int{"math": 90}, "S2"))

	rows := scores.Rows()
	require.Len(t, rows, 2, "repeated upsert must not duplicate the row")
	require.Equal(t, "90", rows[1][2])
}

func TestUpsertScores_NeverOverwritesStudentID(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 80}, "S1"))
	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"rus": 70}, "S9"))

	require.Equal(t, "S1", scores.Rows()[1][1])
}

func TestUpsertScores_BackfillsEmptyStudentID(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 80}, ""))
	require.Equal(t, "", scores.Rows()[1][1])

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 81}, "S1"))
	require.Equal(t, "S1", scores.Rows()[1][1])
}

func TestUpsertScores_UnknownSubjectIgnored(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"химия": 63, "math": 88}, "S1"))

	rows := scores.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, []string{"42", "S1", "88", ""}, rows[1])
}

func TestUpsertScores_TolerancePolicy(t *testing.T) {
	ctx := context.Background()
	r, scores, _ := newTestReconciler(config.PolicyTolerance)

	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 80}, "S1"))

	// Within tolerance: keep the stored value.
	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 81}, ""))
	require.Equal(t, "80", scores.Rows()[1][2])

	// Beyond tolerance: overwrite.
	require.NoError(t, r.UpsertScores(ctx, 42, map[string]int{"math": 85}, ""))
	require.Equal(t, "85", scores.Rows()[1][2])
}

func TestUpsertScores_MissingHeader(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	r := New(sheets.NewMemory(nil), sheets.NewMemory(FeedbackHeader), config.PolicyOverwrite, 1, &logger)

	err := r.UpsertScores(ctx, 42, map[string]int{"math": 80}, "S1")
	require.ErrorIs(t, err, sheets.ErrRecordStore)
}

func TestUpsertFeedback(t *testing.T) {
	ctx := context.Background()
	r, _, feedback := newTestReconciler(config.PolicyOverwrite)

	require.NoError(t, r.UpsertFeedback(ctx, 42, KindText, "отличная школа"))

	rows := feedback.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, []string{"42", KindText, "отличная школа"}, rows[1])

	// A later submission overwrites kind and content in place.
	require.NoError(t, r.UpsertFeedback(ctx, 42, KindVideo, "https://files.example/video"))

	rows = feedback.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, []string{"42", KindVideo, "https://files.example/video"}, rows[1])
}
