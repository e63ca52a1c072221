// Package reconcile merges freshly extracted scores and collected feedback
// into the per-user rows of the external tables.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/config"
	"github.com/Diwan1337/quantum-ocr-bot/internal/sheets"
)

// Feedback kinds stored in the feedback table. A later submission of any
// kind overwrites the previous one; no history is kept.
const (
	KindText               = "text"
	KindVideo              = "video"
	KindPlatformScreenshot = "platform_screenshot"
)

// Column names and positions the operator provisions in the scores sheet.
const (
	studentIDColumn = "student_id"
	keyColumn       = 1
)

// FeedbackHeader is the header row bootstrapped into a fresh feedback sheet.
var FeedbackHeader = []string{"tg_id", "feedback_type", "content"}

type Reconciler struct {
	scores    sheets.RowStore
	feedback  sheets.RowStore
	policy    string
	tolerance int
	logger    *zerolog.Logger
}

func New(scores, feedback sheets.RowStore, policy string, tolerance int, logger *zerolog.Logger) *Reconciler {
	return &Reconciler{
		scores:    scores,
		feedback:  feedback,
		policy:    policy,
		tolerance: tolerance,
		logger:    logger,
	}
}

// UpsertScores writes the extracted score mapping into the user's row,
// creating the row when absent. Only subjects with a matching header column
// are written; the header is re-read on every call because the sheet is
// edited live by a human operator.
func (r *Reconciler) UpsertScores(ctx context.Context, userID int64, scores map[string]int, studentID string) error {
	key := strconv.FormatInt(userID, 10)

	header, err := r.scores.Header(ctx)
	if err != nil {
		return fmt.Errorf("reading scores header: %w", err)
	}

	if len(header) == 0 {
		return fmt.Errorf("%w: scores sheet has no header row", sheets.ErrRecordStore)
	}

	row, err := r.scores.FindRow(ctx, key)
	if err != nil {
		return fmt.Errorf("finding scores row for %s: %w", key, err)
	}

	if row == 0 {
		return r.appendScoresRow(ctx, key, header, scores, studentID)
	}

	return r.updateScoresRow(ctx, key, row, header, scores, studentID)
}

func (r *Reconciler) appendScoresRow(ctx context.Context, key string, header []string, scores map[string]int, studentID string) error {
	values := make([]string, len(header))
	values[keyColumn-1] = key

	if col := columnIndex(header, studentIDColumn); col >= 0 {
		values[col] = studentID
	}

	for _, subject := range sortedSubjects(scores) {
		if col := columnIndex(header, subject); col >= 0 {
			values[col] = strconv.Itoa(scores[subject])
		}
	}

	if err := r.scores.AppendRow(ctx, values); err != nil {
		return fmt.Errorf("appending scores row for %s: %w", key, err)
	}

	r.logger.Info().Str("user", key).Int("subjects", len(scores)).Msg("scores row created")

	return nil
}

func (r *Reconciler) updateScoresRow(ctx context.Context, key string, row int, header []string, scores map[string]int, studentID string) error {
	existing, err := r.scores.ReadRow(ctx, row)
	if err != nil {
		return fmt.Errorf("reading scores row %d: %w", row, err)
	}

	// Backfill a missing student id once; never overwrite a bound one.
	if col := columnIndex(header, studentIDColumn); col >= 0 && studentID != "" && cellAt(existing, col) == "" {
		if err := r.scores.UpdateCell(ctx, row, col+1, studentID); err != nil {
			return fmt.Errorf("writing student id for %s: %w", key, err)
		}
	}

	for _, subject := range sortedSubjects(scores) {
		col := columnIndex(header, subject)
		if col < 0 {
			continue
		}

		value := scores[subject]
		if r.skipWrite(cellAt(existing, col), value) {
			continue
		}

		if err := r.scores.UpdateCell(ctx, row, col+1, strconv.Itoa(value)); err != nil {
			return fmt.Errorf("writing %s for %s: %w", subject, key, err)
		}
	}

	r.logger.Info().Str("user", key).Int("subjects", len(scores)).Msg("scores row updated")

	return nil
}

// skipWrite implements the tolerance policy: a stored score within the
// tolerance of the recognized one is kept as-is. The overwrite policy
// never skips.
func (r *Reconciler) skipWrite(existing string, value int) bool {
	if r.policy != config.PolicyTolerance {
		return false
	}

	old, err := strconv.Atoi(existing)
	if err != nil {
		return false
	}

	diff := value - old
	if diff < 0 {
		diff = -diff
	}

	return diff <= r.tolerance
}

// UpsertFeedback stores one feedback entry per user, overwriting kind and
// content in place on resubmission.
func (r *Reconciler) UpsertFeedback(ctx context.Context, userID int64, kind, content string) error {
	key := strconv.FormatInt(userID, 10)

	row, err := r.feedback.FindRow(ctx, key)
	if err != nil {
		return fmt.Errorf("finding feedback row for %s: %w", key, err)
	}

	if row == 0 {
		if err := r.feedback.AppendRow(ctx, []string{key, kind, content}); err != nil {
			return fmt.Errorf("appending feedback row for %s: %w", key, err)
		}

		return nil
	}

	if err := r.feedback.UpdateCell(ctx, row, 2, kind); err != nil {
		return fmt.Errorf("updating feedback kind for %s: %w", key, err)
	}

	if err := r.feedback.UpdateCell(ctx, row, 3, content); err != nil {
		return fmt.Errorf("updating feedback content for %s: %w", key, err)
	}

	return nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}

	return -1
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}

	return ""
}

func sortedSubjects(scores map[string]int) []string {
	subjects := make([]string, 0, len(scores))
	for s := range scores {
		subjects = append(subjects, s)
	}

	sort.Strings(subjects)

	return subjects
}
