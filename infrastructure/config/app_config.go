package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"reportprint/database"
	"reportprint/logging"
	"reportprint/platform/dispatch"
)

const envPrefix = "REPORTPRINT_"

// ErrConfigNotFound is returned when neither config.toml nor config.json exists.
var ErrConfigNotFound = errors.New("configuration file not found")

// AppConfig holds everything needed to run a batch.
type AppConfig struct {
	PrinterName      string `toml:"printer_name" json:"printer_name" validate:"required"`
	ParentFolder     string `toml:"parent_folder" json:"parent_folder" validate:"required"`
	SofficePath      string `toml:"soffice_path" json:"soffice_path" validate:"required,file"`
	PDFToPrinterPath string `toml:"pdftoprinter_path" json:"pdftoprinter_path" validate:"required,file"`

	Dispatch DispatchConfig   `toml:"dispatch" json:"dispatch"`
	Database *database.Config `toml:"database" json:"database" validate:"required"`
	Logging  *logging.Config  `toml:"logging" json:"logging" validate:"required"`
	Server   ServerConfig     `toml:"server" json:"server"`
	Schedule ScheduleConfig   `toml:"schedule" json:"schedule"`

	// Source is the file the configuration was read from.
	Source string `toml:"-" json:"-"`
}

// DispatchConfig is the file form of dispatch.Config.
type DispatchConfig struct {
	QueueLimit           int      `toml:"queue_limit" json:"queue_limit" validate:"gte=1"`
	QueueWaitIntervalSec float64  `toml:"queue_wait_interval_sec" json:"queue_wait_interval_sec" validate:"gt=0"`
	EventPollIntervalMs  int      `toml:"event_poll_interval_ms" json:"event_poll_interval_ms" validate:"gte=1"`
	SpoolCheckIntervalMs int      `toml:"spool_check_interval_ms" json:"spool_check_interval_ms" validate:"gte=1"`
	EmptyStreakRequired  int      `toml:"empty_streak_required" json:"empty_streak_required" validate:"gte=1"`
	SubmitRatePerSec     float64  `toml:"submit_rate_per_sec" json:"submit_rate_per_sec" validate:"gte=0"`
	SpoolStrategies      []string `toml:"spool_strategies" json:"spool_strategies" validate:"dive,oneof=native shell"`
}

// Runtime converts to the dispatcher's settings.
func (d DispatchConfig) Runtime() dispatch.Config {
	return dispatch.Config{
		QueueLimit:          d.QueueLimit,
		QueueWaitInterval:   time.Duration(d.QueueWaitIntervalSec * float64(time.Second)),
		EventPollInterval:   time.Duration(d.EventPollIntervalMs) * time.Millisecond,
		SpoolCheckInterval:  time.Duration(d.SpoolCheckIntervalMs) * time.Millisecond,
		EmptyStreakRequired: d.EmptyStreakRequired,
		SubmitRatePerSec:    d.SubmitRatePerSec,
	}
}

// ServerConfig controls the optional progress web surface.
type ServerConfig struct {
	Addr        string `toml:"addr" json:"addr"`
	HTTPLogPath string `toml:"http_log_path" json:"http_log_path"`
}

// ScheduleConfig drives unattended runs.
type ScheduleConfig struct {
	Cron    string   `toml:"cron" json:"cron"`
	Kinds   []string `toml:"kinds" json:"kinds" validate:"dive,oneof=pdf word"`
	Exclude []string `toml:"exclude" json:"exclude"`
}

// Default returns a configuration with every optional value filled in.
func Default() *AppConfig {
	d := dispatch.DefaultConfig()
	return &AppConfig{
		Dispatch: DispatchConfig{
			QueueLimit:           d.QueueLimit,
			QueueWaitIntervalSec: d.QueueWaitInterval.Seconds(),
			EventPollIntervalMs:  int(d.EventPollInterval / time.Millisecond),
			SpoolCheckIntervalMs: int(d.SpoolCheckInterval / time.Millisecond),
			EmptyStreakRequired:  d.EmptyStreakRequired,
			SpoolStrategies:      []string{"native", "shell"},
		},
		Database: database.DefaultConfig(),
		Logging:  logging.DefaultConfig(),
		Server:   ServerConfig{Addr: "127.0.0.1:8765"},
	}
}

// legacyConfig is the flat config.json written for the first version of the tool.
type legacyConfig struct {
	PrinterName           string   `json:"printer_name"`
	ParentFolder          string   `json:"parent_folder"`
	SofficePath           string   `json:"soffice_path"`
	PDFToPrinterPath      string   `json:"pdftoprinter_path"`
	QueueLimit            *int     `json:"queue_limit"`
	SleepWhenQueueFullSec *float64 `json:"sleep_when_queue_full_sec"`
}

// BaseDir is the directory holding the executable, where config files live.
func BaseDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// Load reads path, or when path is empty looks for config.toml then
// config.json in dir. Environment overrides are applied last, then the result
// is validated.
func Load(path, dir string) (*AppConfig, error) {
	if path == "" {
		for _, name := range []string{"config.toml", "config.json"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("%w in %s", ErrConfigNotFound, dir)
		}
	}

	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Source = path

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".json":
		var legacy legacyConfig
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		legacy.apply(cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	return cfg, nil
}

func (l legacyConfig) apply(cfg *AppConfig) {
	cfg.PrinterName = l.PrinterName
	cfg.ParentFolder = l.ParentFolder
	cfg.SofficePath = l.SofficePath
	cfg.PDFToPrinterPath = l.PDFToPrinterPath
	if l.QueueLimit != nil {
		cfg.Dispatch.QueueLimit = *l.QueueLimit
	}
	if l.SleepWhenQueueFullSec != nil {
		cfg.Dispatch.QueueWaitIntervalSec = *l.SleepWhenQueueFullSec
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and cross-field rules.
func Validate(cfg *AppConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", dispatch.ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", dispatch.ErrInvalidConfig, err)
	}
	return cfg.Dispatch.Runtime().Validate()
}

// applyEnv overrides file values with REPORTPRINT_* variables.
func applyEnv(cfg *AppConfig) {
	cfg.PrinterName = getEnvWithDefault("PRINTER_NAME", cfg.PrinterName)
	cfg.ParentFolder = getEnvWithDefault("PARENT_FOLDER", cfg.ParentFolder)
	cfg.SofficePath = getEnvWithDefault("SOFFICE_PATH", cfg.SofficePath)
	cfg.PDFToPrinterPath = getEnvWithDefault("PDFTOPRINTER_PATH", cfg.PDFToPrinterPath)

	cfg.Dispatch.QueueLimit = getEnvIntWithDefault("QUEUE_LIMIT", cfg.Dispatch.QueueLimit)
	cfg.Dispatch.EmptyStreakRequired = getEnvIntWithDefault("EMPTY_STREAK_REQUIRED", cfg.Dispatch.EmptyStreakRequired)
	if d := getEnvDurationWithDefault("QUEUE_WAIT_INTERVAL", 0); d > 0 {
		cfg.Dispatch.QueueWaitIntervalSec = d.Seconds()
	}
	if d := getEnvDurationWithDefault("EVENT_POLL_INTERVAL", 0); d > 0 {
		cfg.Dispatch.EventPollIntervalMs = int(d / time.Millisecond)
	}
	if d := getEnvDurationWithDefault("SPOOL_CHECK_INTERVAL", 0); d > 0 {
		cfg.Dispatch.SpoolCheckIntervalMs = int(d / time.Millisecond)
	}

	cfg.Database.Path = getEnvWithDefault("DB_PATH", cfg.Database.Path)
	cfg.Database.BusyTimeoutMs = getEnvIntWithDefault("DB_BUSY_TIMEOUT_MS", cfg.Database.BusyTimeoutMs)
	cfg.Database.EnableWAL = getEnvBoolWithDefault("DB_ENABLE_WAL", cfg.Database.EnableWAL)
	cfg.Database.ConnMaxLifetime = getEnvDurationWithDefault("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)

	cfg.Logging.Level = getEnvWithDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvWithDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.Output = getEnvWithDefault("LOG_OUTPUT", cfg.Logging.Output)

	cfg.Server.Addr = getEnvWithDefault("HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.HTTPLogPath = getEnvWithDefault("HTTP_LOG_PATH", cfg.Server.HTTPLogPath)
	cfg.Schedule.Cron = getEnvWithDefault("SCHEDULE_CRON", cfg.Schedule.Cron)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(v string, def bool) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// Helper functions for environment variable parsing.
func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		return parseBool(value, defaultValue)
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
