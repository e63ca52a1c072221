package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Reconciliation policies. Overwrite writes every recognized score
// unconditionally; tolerance skips cells whose stored value is within
// ReconcileTolerance of the recognized one.
const (
	PolicyOverwrite = "overwrite"
	PolicyTolerance = "tolerance"
)

const tmpSubdir = "ege_screens"

type Config struct {
	AppEnv                string   `env:"APP_ENV" envDefault:"local"`
	BotToken              string   `env:"BOT_TOKEN,required,notEmpty"`
	SpreadsheetID         string   `env:"SPREADSHEET_ID,required,notEmpty"`
	GoogleCredentialsFile string   `env:"GOOGLE_CREDENTIALS_FILE" envDefault:"google_key.json"`
	ScoresSheet           string   `env:"SCORES_SHEET" envDefault:"EGE"`
	FeedbackSheet         string   `env:"FEEDBACK_SHEET" envDefault:"Feedback"`
	StudentIDs            []string `env:"STUDENT_IDS,required,notEmpty" envSeparator:","`
	TesseractPath         string   `env:"TESSERACT_PATH" envDefault:"tesseract"`
	TesseractLang         string   `env:"TESSERACT_LANG" envDefault:"rus"`
	TmpDir                string   `env:"TMP_DIR"`
	ReconcilePolicy       string   `env:"RECONCILE_POLICY" envDefault:"overwrite"`
	ReconcileTolerance    int      `env:"RECONCILE_TOLERANCE" envDefault:"1"`
	RateLimitRPS          int      `env:"RATE_LIMIT_RPS" envDefault:"25"`
	HealthPort            int      `env:"HEALTH_PORT" envDefault:"8080"`
	InstructionImages     []string `env:"INSTRUCTION_IMAGES" envSeparator:","`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.ReconcilePolicy != PolicyOverwrite && cfg.ReconcilePolicy != PolicyTolerance {
		return nil, fmt.Errorf("invalid RECONCILE_POLICY %q: want %q or %q", cfg.ReconcilePolicy, PolicyOverwrite, PolicyTolerance)
	}

	if cfg.TmpDir == "" {
		cfg.TmpDir = filepath.Join(os.TempDir(), tmpSubdir)
	}

	if err := os.MkdirAll(cfg.TmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tmp dir %s: %w", cfg.TmpDir, err)
	}

	return cfg, nil
}

// AllowedStudentID reports whether id is on the operator-provided allow-list.
func (c *Config) AllowedStudentID(id string) bool {
	for _, known := range c.StudentIDs {
		if known == id {
			return true
		}
	}

	return false
}
