package intake

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Diwan1337/quantum-ocr-bot/internal/ocr"
	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/observability"
	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/worker"
	"github.com/Diwan1337/quantum-ocr-bot/internal/sheets"
)

// Extractor turns a screenshot on disk into a subject-to-score mapping.
type Extractor interface {
	Extract(ctx context.Context, path string) (map[string]int, error)
}

// Upserter merges extracted scores into the user's row.
type Upserter interface {
	UpsertScores(ctx context.Context, userID int64, scores map[string]int, studentID string) error
}

// Notifier delivers worker-emitted follow-ups to the user.
type Notifier interface {
	SendText(ctx context.Context, userID int64, text string) error
	SendEditOptions(ctx context.Context, userID int64) error
}

// Sessions is the slice of conversation state the worker touches.
type Sessions interface {
	InstructionsSent(userID int64) bool
	MarkInstructionsSent(userID int64)
}

// Worker drains the intake queue: extract, reconcile, notify, clean up.
type Worker struct {
	queue     *Queue
	extractor Extractor
	upserter  Upserter
	notifier  Notifier
	sessions  Sessions
	logger    *zerolog.Logger
}

func NewWorker(queue *Queue, extractor Extractor, upserter Upserter, notifier Notifier, sessions Sessions, logger *zerolog.Logger) *Worker {
	return &Worker{
		queue:     queue,
		extractor: extractor,
		upserter:  upserter,
		notifier:  notifier,
		sessions:  sessions,
		logger:    logger,
	}
}

// Run processes tasks until ctx is canceled. Per-task failures are reported
// to the submitting user and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	return worker.Loop(ctx, worker.Config{
		Name:   "intake",
		Logger: w.logger,
		Process: func(ctx context.Context) error {
			task, err := w.queue.Dequeue(ctx)
			if err != nil {
				return err
			}

			w.process(ctx, task)

			return nil
		},
	})
}

// process handles one task. The temporary file is removed on every exit
// path, including panics.
func (w *Worker) process(ctx context.Context, task Task) {
	defer worker.RecoverPanic(w.logger, "intake task")
	defer w.removeFile(task.FilePath)

	start := time.Now()

	scores, err := w.extractor.Extract(ctx, task.FilePath)

	observability.OCRDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		w.reportExtractionError(ctx, task, err)

		return
	}

	if len(scores) == 0 {
		observability.TasksProcessed.WithLabelValues(observability.TaskStatusEmpty).Inc()
		w.notify(ctx, task.UserID, msgNothingRecognized)
	} else {
		w.notify(ctx, task.UserID, msgRecognized+formatScores(scores))
	}

	if err := w.upserter.UpsertScores(ctx, task.UserID, scores, task.StudentID); err != nil {
		w.logger.Error().Err(err).Int64("user_id", task.UserID).Msg("reconciliation failed")
		observability.TasksProcessed.WithLabelValues(observability.TaskStatusStoreFailed).Inc()
		w.notify(ctx, task.UserID, msgStoreError)

		return
	}

	observability.TasksProcessed.WithLabelValues(observability.TaskStatusOK).Inc()
	w.notify(ctx, task.UserID, msgScoresConfirmed)

	if err := w.notifier.SendEditOptions(ctx, task.UserID); err != nil {
		w.logger.Error().Err(err).Int64("user_id", task.UserID).Msg("sending edit options failed")
	}

	w.sendFollowUp(ctx, task.UserID)
}

// sendFollowUp delivers the external-review instructions exactly once per
// user, then arms the external screenshot stage.
func (w *Worker) sendFollowUp(ctx context.Context, userID int64) {
	if w.sessions.InstructionsSent(userID) {
		w.notify(ctx, userID, msgFeedbackAlreadySaved)

		return
	}

	w.notify(ctx, userID, msgReviewInstructions)
	w.notify(ctx, userID, msgThanksAwaitingReview)
	w.sessions.MarkInstructionsSent(userID)
}

func (w *Worker) reportExtractionError(ctx context.Context, task Task, err error) {
	w.logger.Error().Err(err).Int64("user_id", task.UserID).Str("file", task.FilePath).Msg("extraction failed")

	switch {
	case errors.Is(err, ocr.ErrImageLoad):
		observability.TasksProcessed.WithLabelValues(observability.TaskStatusLoadFailed).Inc()
		w.notify(ctx, task.UserID, msgImageUnreadable)
	case errors.Is(err, ocr.ErrRecognition):
		observability.TasksProcessed.WithLabelValues(observability.TaskStatusOCRFailed).Inc()
		w.notify(ctx, task.UserID, msgCheckFailed)
	case errors.Is(err, sheets.ErrRecordStore):
		observability.TasksProcessed.WithLabelValues(observability.TaskStatusStoreFailed).Inc()
		w.notify(ctx, task.UserID, msgStoreError)
	default:
		observability.TasksProcessed.WithLabelValues(observability.TaskStatusOCRFailed).Inc()
		w.notify(ctx, task.UserID, msgCheckFailed)
	}
}

func (w *Worker) notify(ctx context.Context, userID int64, text string) {
	if err := w.notifier.SendText(ctx, userID, text); err != nil {
		w.logger.Error().Err(err).Int64("user_id", userID).Msg("notification failed")
	}
}

func (w *Worker) removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Error().Err(err).Str("file", path).Msg("temp file cleanup failed")
	}
}

// formatScores renders a mapping as "math: 88, rus: 95" in stable order.
func formatScores(scores map[string]int) string {
	subjects := make([]string, 0, len(scores))
	for s := range scores {
		subjects = append(subjects, s)
	}

	sort.Strings(subjects)

	parts := make([]string, len(subjects))
	for i, s := range subjects {
		parts[i] = fmt.Sprintf("%s: %d", s, scores[s])
	}

	return strings.Join(parts, ", ")
}
