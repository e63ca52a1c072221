// Package ocr turns a photographed exam-results screenshot into a mapping
// of canonical subject code to integer score.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"regexp"
	"strconv"

	// Screenshot uploads arrive as either format.
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"github.com/Diwan1337/quantum-ocr-bot/internal/subjects"
)

// Sentinel errors distinguishing a broken input image from a failing
// recognition backend. An image with no recognizable pairs is neither:
// Extract returns an empty mapping and no error.
var (
	ErrImageLoad   = errors.New("image load failed")
	ErrRecognition = errors.New("text recognition failed")
)

// pairRE matches one "<label> <1-3 digit score>" occurrence in recognized
// text. Permissive on purpose: the reconciliation step is human-reviewed,
// so a false positive costs less than a missed subject.
var pairRE = regexp.MustCompile(`([А-ЯЁа-яё() ]+)\s+(\d{1,3})`)

// Recognizer is the text-recognition backend boundary.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

type Extractor struct {
	rec    Recognizer
	logger *zerolog.Logger
}

func New(rec Recognizer, logger *zerolog.Logger) *Extractor {
	return &Extractor{rec: rec, logger: logger}
}

// Extract loads the screenshot at path, runs the enhancement pipeline and
// the recognition backend, and parses subject/score pairs out of the text.
// An empty result with a nil error means nothing was recognized and the
// submission needs manual review.
func (e *Extractor) Extract(ctx context.Context, path string) (map[string]int, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageLoad, path, err)
	}

	prepared := preprocess(img)

	text, err := e.rec.Recognize(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecognition, err)
	}

	e.logger.Debug().Str("text", text).Msg("raw recognition output")

	return parseScores(text), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	return img, nil
}

// parseScores extracts subject/score pairs from recognized text. When a
// canonical code repeats, the last occurrence wins.
func parseScores(text string) map[string]int {
	result := make(map[string]int)

	for _, m := range pairRE.FindAllStringSubmatch(text, -1) {
		code := subjects.Normalize(m[1])
		if code == "" {
			continue
		}

		score, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		result[code] = score
	}

	return result
}
