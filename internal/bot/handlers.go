package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Diwan1337/quantum-ocr-bot/internal/intake"
	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/observability"
	"github.com/Diwan1337/quantum-ocr-bot/internal/reconcile"
	"github.com/Diwan1337/quantum-ocr-bot/internal/state"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	sess := b.states.Get(userID)

	observability.UpdatesHandled.WithLabelValues(updateKind(msg)).Inc()
	b.logger.Debug().Int64(logFieldUserID, userID).Str(logFieldStage, sess.Stage.String()).Msg("handling message")

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.handleStart(ctx, userID, sess)
	case msg.Contact != nil:
		b.handleContact(ctx, msg, sess)
	default:
		b.handleStaged(ctx, msg, sess)
	}
}

func (b *Bot) handleStaged(ctx context.Context, msg *tgbotapi.Message, sess state.Session) {
	userID := msg.From.ID

	switch sess.Stage {
	case state.StageAwaitingStudentID:
		if msg.Text != "" {
			b.handleStudentID(ctx, userID, msg.Text)
		}
	case state.StageAwaitingEGEScreenshot:
		if fileID, ok := mediaFileID(msg); ok {
			b.handleScreenshot(ctx, userID, sess.StudentID, fileID)
		}
	case state.StageAwaitingExternalScreenshot:
		if fileID, ok := mediaFileID(msg); ok {
			b.handleExternalScreenshot(ctx, userID, fileID)

			return
		}

		// The instructions promise text and video keep working here, so a
		// user who declines the platform review is not stuck.
		b.handleIdle(ctx, msg)
	case state.StageVerifiedIdle:
		b.handleIdle(ctx, msg)
	case state.StageUnverified:
		// Not in any pending stage: silently ignored.
	}
}

// handleStart prompts for the contact share only before verification;
// afterwards it reminds the user where the conversation stands.
func (b *Bot) handleStart(ctx context.Context, userID int64, sess state.Session) {
	switch sess.Stage {
	case state.StageUnverified:
		if err := b.transport.SendContactRequest(ctx, userID, msgRequestContact); err != nil {
			b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("contact request failed")
		}
	case state.StageAwaitingStudentID:
		b.send(ctx, userID, msgFindStudentID)
	case state.StageAwaitingEGEScreenshot:
		b.send(ctx, userID, msgSendScreenshot)
	case state.StageAwaitingExternalScreenshot:
		b.send(ctx, userID, msgSendPlatformScreenshot)
	case state.StageVerifiedIdle:
		b.send(ctx, userID, msgAlreadyVerified)
	}
}

// handleContact verifies the shared contact belongs to the sender before
// moving on to student id lookup.
func (b *Bot) handleContact(ctx context.Context, msg *tgbotapi.Message, sess state.Session) {
	userID := msg.From.ID

	if sess.Stage != state.StageUnverified {
		return
	}

	if msg.Contact.UserID != userID {
		b.send(ctx, userID, msgContactMismatch)

		return
	}

	if len(b.cfg.InstructionImages) > 0 {
		if err := b.transport.SendMediaGroup(ctx, userID, b.cfg.InstructionImages); err != nil {
			b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("sending instruction images failed")
		}
	}

	b.send(ctx, userID, msgFindStudentID)
	b.states.SetStage(userID, state.StageAwaitingStudentID)
}

func (b *Bot) handleStudentID(ctx context.Context, userID int64, text string) {
	studentID := strings.TrimSpace(text)

	if !b.cfg.AllowedStudentID(studentID) {
		b.send(ctx, userID, msgUnknownStudentID)

		return
	}

	b.states.BindStudentID(userID, studentID)
	b.send(ctx, userID, msgSendScreenshot)
}

// handleScreenshot downloads the image and enqueues it; the slow OCR work
// happens on the worker so the acknowledgment goes out immediately.
func (b *Bot) handleScreenshot(ctx context.Context, userID int64, studentID, fileID string) {
	path, err := b.transport.DownloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("screenshot download failed")
		b.send(ctx, userID, msgDownloadFailed)

		return
	}

	b.queue.Enqueue(intake.Task{UserID: userID, StudentID: studentID, FilePath: path})
	b.states.SetStage(userID, state.StageVerifiedIdle)
	b.send(ctx, userID, msgScreenshotReceived)
}

func (b *Bot) handleExternalScreenshot(ctx context.Context, userID int64, fileID string) {
	url, err := b.transport.FileURL(ctx, fileID)
	if err != nil {
		b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("resolving screenshot url failed")
		b.send(ctx, userID, msgDownloadFailed)

		return
	}

	if err := b.feedback.UpsertFeedback(ctx, userID, reconcile.KindPlatformScreenshot, url); err != nil {
		b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("storing platform screenshot failed")
		b.send(ctx, userID, msgFeedbackSaveFailed)

		return
	}

	b.states.SetStage(userID, state.StageVerifiedIdle)
	b.send(ctx, userID, msgReviewSaved)
}

// handleIdle treats anything a verified user sends between screenshots as
// feedback: text stays as-is, video is stored by file URL.
func (b *Bot) handleIdle(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	switch {
	case msg.Text != "":
		b.saveFeedback(ctx, userID, reconcile.KindText, msg.Text)
	case msg.Video != nil:
		b.saveFeedbackFile(ctx, userID, reconcile.KindVideo, msg.Video.FileID)
	case msg.VideoNote != nil:
		b.saveFeedbackFile(ctx, userID, reconcile.KindVideo, msg.VideoNote.FileID)
	}
}

func (b *Bot) saveFeedback(ctx context.Context, userID int64, kind, content string) {
	if err := b.feedback.UpsertFeedback(ctx, userID, kind, content); err != nil {
		b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("storing feedback failed")
		b.send(ctx, userID, msgFeedbackSaveFailed)

		return
	}

	b.send(ctx, userID, msgFeedbackSaved)
}

func (b *Bot) saveFeedbackFile(ctx context.Context, userID int64, kind, fileID string) {
	url, err := b.transport.FileURL(ctx, fileID)
	if err != nil {
		b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("resolving feedback file url failed")
		b.send(ctx, userID, msgFeedbackSaveFailed)

		return
	}

	b.saveFeedback(ctx, userID, kind, url)
}

// handleCallback processes the edit-keyboard buttons, re-arming the
// matching intake stage.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if err := b.transport.AnswerCallback(ctx, query.ID); err != nil {
		b.logger.Error().Err(err).Msg("answering callback failed")
	}

	userID := query.From.ID
	sess := b.states.Get(userID)

	// Buttons only exist for users who got through verification.
	if sess.Stage == state.StageUnverified {
		return
	}

	switch query.Data {
	case CallbackEditScores:
		b.states.SetStage(userID, state.StageAwaitingEGEScreenshot)
		b.send(ctx, userID, msgSendScreenshot)
	case CallbackEditReview:
		b.states.SetStage(userID, state.StageAwaitingExternalScreenshot)
		b.send(ctx, userID, msgSendPlatformScreenshot)
	default:
		return
	}

	if query.Message != nil {
		if err := b.transport.ClearKeyboard(ctx, userID, query.Message.MessageID); err != nil {
			b.logger.Error().Err(err).Int64(logFieldUserID, userID).Msg("clearing keyboard failed")
		}
	}
}

// mediaFileID picks the richest photo rendition, falling back to an
// attached document.
func mediaFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}

	if msg.Document != nil {
		return msg.Document.FileID, true
	}

	return "", false
}
