// Package bot routes inbound Telegram events through the per-user
// conversation state machine: contact verification, student id binding,
// screenshot intake, and feedback collection.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/Diwan1337/quantum-ocr-bot/internal/intake"
	"github.com/Diwan1337/quantum-ocr-bot/internal/platform/config"
	"github.com/Diwan1337/quantum-ocr-bot/internal/state"
)

const updateTimeoutSeconds = 60

// Log field names.
const (
	logFieldUserID = "user_id"
	logFieldStage  = "stage"
)

// Callback data for the post-reconciliation edit keyboard.
const (
	CallbackEditScores = "edit_scores"
	CallbackEditReview = "edit_review"
)

// Transport is the messaging-platform boundary the handlers talk to.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendContactRequest(ctx context.Context, chatID int64, text string) error
	SendEditOptions(ctx context.Context, chatID int64) error
	SendMediaGroup(ctx context.Context, chatID int64, paths []string) error
	AnswerCallback(ctx context.Context, callbackID string) error
	ClearKeyboard(ctx context.Context, chatID int64, messageID int) error
	DownloadFile(ctx context.Context, fileID string) (string, error)
	FileURL(ctx context.Context, fileID string) (string, error)
}

// FeedbackStore persists user feedback rows.
type FeedbackStore interface {
	UpsertFeedback(ctx context.Context, userID int64, kind, content string) error
}

type Bot struct {
	cfg       *config.Config
	transport Transport
	states    *state.Store
	queue     *intake.Queue
	feedback  FeedbackStore
	updates   tgbotapi.UpdatesChannel
	logger    *zerolog.Logger
}

func New(cfg *config.Config, transport Transport, states *state.Store, queue *intake.Queue, feedback FeedbackStore, updates tgbotapi.UpdatesChannel, logger *zerolog.Logger) *Bot {
	return &Bot{
		cfg:       cfg,
		transport: transport,
		states:    states,
		queue:     queue,
		feedback:  feedback,
		updates:   updates,
		logger:    logger,
	}
}

// Run dispatches inbound updates until ctx is canceled. Handlers only
// enqueue slow work; nothing here blocks on OCR or the record store
// beyond single feedback writes.
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update := <-b.updates:
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			if update.Message == nil || update.Message.From == nil {
				continue
			}

			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendText(ctx, chatID, text); err != nil {
		b.logger.Error().Err(err).Int64(logFieldUserID, chatID).Msg("send failed")
	}
}

func updateKind(msg *tgbotapi.Message) string {
	switch {
	case msg.IsCommand():
		return "command"
	case msg.Contact != nil:
		return "contact"
	case len(msg.Photo) > 0 || msg.Document != nil:
		return "media"
	case msg.Video != nil || msg.VideoNote != nil:
		return "video"
	default:
		return "text"
	}
}
