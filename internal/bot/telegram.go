package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Telegram implements Transport over the Bot API. All outbound calls go
// through one rate limiter to stay under the platform's send limits.
type Telegram struct {
	api     *tgbotapi.BotAPI
	limiter *rate.Limiter
	tmpDir  string
	logger  *zerolog.Logger
}

func NewTelegram(token string, rps int, tmpDir string, logger *zerolog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	logger.Info().Str("username", api.Self.UserName).Msg("authorized on telegram")

	return &Telegram{
		api:     api,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		tmpDir:  tmpDir,
		logger:  logger,
	}, nil
}

// Updates returns the long-polling update channel.
func (t *Telegram) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	return t.api.GetUpdatesChan(u)
}

func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	return t.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (t *Telegram) SendContactRequest(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(btnShareContact)),
	)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard

	return t.send(ctx, msg)
}

func (t *Telegram) SendEditOptions(ctx context.Context, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, msgEditPrompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnEditScores, CallbackEditScores)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnEditReview, CallbackEditReview)),
	)

	return t.send(ctx, msg)
}

func (t *Telegram) SendMediaGroup(ctx context.Context, chatID int64, paths []string) error {
	media := make([]interface{}, 0, len(paths))
	for _, p := range paths {
		media = append(media, tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(p)))
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if _, err := t.api.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
		return fmt.Errorf("sending media group to %d: %w", chatID, err)
	}

	return nil
}

// ClearKeyboard removes the inline keyboard from an already sent message
// so a pressed edit button cannot be pressed twice.
func (t *Telegram) ClearKeyboard(ctx context.Context, chatID int64, messageID int) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	edit := tgbotapi.EditMessageReplyMarkupConfig{
		BaseEdit: tgbotapi.BaseEdit{ChatID: chatID, MessageID: messageID},
	}

	if _, err := t.api.Request(edit); err != nil {
		return fmt.Errorf("clearing keyboard on message %d: %w", messageID, err)
	}

	return nil
}

func (t *Telegram) AnswerCallback(_ context.Context, callbackID string) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answering callback: %w", err)
	}

	return nil
}

// DownloadFile fetches the file into the intake temp directory under a
// collision-resistant name. The caller owns the returned path.
func (t *Telegram) DownloadFile(ctx context.Context, fileID string) (string, error) {
	url, err := t.FileURL(ctx, fileID)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading file %s: status %s", fileID, resp.Status)
	}

	path := filepath.Join(t.tmpDir, uuid.NewString()+".jpg")

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)

		return "", fmt.Errorf("writing temp file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(path)

		return "", fmt.Errorf("closing temp file: %w", err)
	}

	return path, nil
}

func (t *Telegram) FileURL(_ context.Context, fileID string) (string, error) {
	url, err := t.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolving file %s: %w", fileID, err)
	}

	return url, nil
}

func (t *Telegram) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if _, err := t.api.Send(c); err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	return nil
}
