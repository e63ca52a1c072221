package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
)

// Tesseract flags: LSTM engine, dense block-of-text page segmentation.
// Sparse/column modes perform noticeably worse on results-page screenshots.
const (
	tessOEM = "3"
	tessPSM = "6"
)

// Tesseract invokes the tesseract binary over stdin/stdout.
type Tesseract struct {
	Binary string
	Lang   string
}

// Recognize runs the backend on an already preprocessed image and returns
// the raw recognized text.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return "", fmt.Errorf("encoding image for recognition: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.Binary,
		"stdin", "stdout",
		"-l", t.Lang,
		"--oem", tessOEM,
		"--psm", tessPSM,
	)
	cmd.Stdin = &in

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(errOut.String())
		if detail != "" {
			return "", fmt.Errorf("tesseract: %s: %w", detail, err)
		}

		return "", fmt.Errorf("tesseract: %w", err)
	}

	return out.String(), nil
}
