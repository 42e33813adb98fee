package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/clock"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/geo"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	TransportTelegram = "telegram"
	TransportConsole  = "console"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	Admin        AdminConfig
	App          AppConfig
	Office       OfficeConfig
	Work         WorkConfig
	Telegram     TelegramConfig
	Notification NotificationConfig
	Maintenance  MaintenanceConfig
	Jobs         JobsConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AdminConfig holds the single admin account for POST /auth/login. Leaving
// either field empty disables password login; tokens can still be issued
// from the CLI.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type OfficeConfig struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

type WorkConfig struct {
	Location        *time.Location
	Start           clock.TimeOfDay
	End             clock.TimeOfDay
	Days            []time.Weekday
	AbsenceCutoff   clock.TimeOfDay
	ConversationTTL time.Duration
}

type TelegramConfig struct {
	Transport  string
	BotToken   string
	Debug      bool
	BotWorkers int
}

type NotificationConfig struct {
	AdminChatIDs []string
	Concurrency  int
}

type MaintenanceConfig struct {
	NotificationLogRetention time.Duration
	AuditLogRetention        time.Duration
	BatchSize                int
	MaxHeapMB                int
	StuckAfter               time.Duration
	MaxStuck                 int
}

type JobsConfig struct {
	// Specs overrides default cron expressions, keyed by job name.
	Specs    map[string]string
	Disabled []string
	Timeout  time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := &Config{}
	var err error

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:   getEnv("STORE_DRIVER", StoreDriverPostgres),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	config.Admin = AdminConfig{
		Username:     getEnv("ADMIN_USERNAME", ""),
		PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
	}

	// Office geofence
	if config.Office.Latitude, err = getEnvFloat("OFFICE_LATITUDE", ""); err != nil {
		return nil, err
	}
	if config.Office.Longitude, err = getEnvFloat("OFFICE_LONGITUDE", ""); err != nil {
		return nil, err
	}
	if config.Office.RadiusMeters, err = getEnvFloat("OFFICE_RADIUS_METERS", "100"); err != nil {
		return nil, err
	}

	// Work policy
	loc, err := time.LoadLocation(getEnv("TIMEZONE", "Africa/Cairo"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	config.Work.Location = loc
	if config.Work.Start, err = getEnvTimeOfDay("WORK_START_TIME", "09:00"); err != nil {
		return nil, err
	}
	if config.Work.End, err = getEnvTimeOfDay("WORK_END_TIME", "17:00"); err != nil {
		return nil, err
	}
	if config.Work.AbsenceCutoff, err = getEnvTimeOfDay("ABSENCE_CUTOFF_TIME", "10:30"); err != nil {
		return nil, err
	}
	if config.Work.Days, err = ParseWeekdays(getEnv("WORK_DAYS", "mon,tue,wed,thu,fri")); err != nil {
		return nil, fmt.Errorf("invalid WORK_DAYS: %w", err)
	}
	if config.Work.ConversationTTL, err = getEnvDuration("CONVERSATION_TTL", "30m"); err != nil {
		return nil, err
	}

	// Chat transport
	botWorkers, err := strconv.Atoi(getEnv("BOT_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid BOT_WORKERS: %w", err)
	}
	config.Telegram = TelegramConfig{
		Transport:  getEnv("TRANSPORT", TransportTelegram),
		BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		Debug:      getEnv("TELEGRAM_DEBUG", "false") == "true",
		BotWorkers: botWorkers,
	}

	// Notifications
	concurrency, err := strconv.Atoi(getEnv("NOTIFICATION_CONCURRENCY", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFICATION_CONCURRENCY: %w", err)
	}
	config.Notification = NotificationConfig{
		AdminChatIDs: getEnvSlice("ADMIN_CHAT_IDS"),
		Concurrency:  concurrency,
	}

	// Maintenance
	m := &config.Maintenance
	if m.NotificationLogRetention, err = getEnvDuration("NOTIFICATION_LOG_RETENTION", "720h"); err != nil {
		return nil, err
	}
	if m.AuditLogRetention, err = getEnvDuration("AUDIT_LOG_RETENTION", "2160h"); err != nil {
		return nil, err
	}
	if m.StuckAfter, err = getEnvDuration("HEALTH_STUCK_AFTER", "14h"); err != nil {
		return nil, err
	}
	if m.BatchSize, err = strconv.Atoi(getEnv("CLEANUP_BATCH_SIZE", "1000")); err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_BATCH_SIZE: %w", err)
	}
	if m.MaxHeapMB, err = strconv.Atoi(getEnv("HEALTH_MAX_HEAP_MB", "512")); err != nil {
		return nil, fmt.Errorf("invalid HEALTH_MAX_HEAP_MB: %w", err)
	}
	if m.MaxStuck, err = strconv.Atoi(getEnv("HEALTH_MAX_STUCK", "0")); err != nil {
		return nil, fmt.Errorf("invalid HEALTH_MAX_STUCK: %w", err)
	}

	// Jobs
	config.Jobs.Specs = make(map[string]string)
	for _, name := range []string{
		"daily_summary", "weekly_summary", "monthly_summary", "absence_report",
		"checkin_reminder", "checkout_reminder", "cleanup", "health_check",
	} {
		if spec := getEnv("JOB_"+strings.ToUpper(name)+"_SCHEDULE", ""); spec != "" {
			config.Jobs.Specs[name] = spec
		}
	}
	config.Jobs.Disabled = getEnvSlice("DISABLED_JOBS")
	if config.Jobs.Timeout, err = getEnvDuration("JOB_TIMEOUT", "10m"); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreDriverPostgres, StoreDriverMemory)
	}

	switch c.Telegram.Transport {
	case TransportTelegram:
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
		}
	case TransportConsole:
	default:
		return fmt.Errorf("TRANSPORT must be %q or %q", TransportTelegram, TransportConsole)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}

	if _, err := c.Fence().Check(c.Fence().Office); err != nil {
		return fmt.Errorf("invalid office geofence: %w", err)
	}
	if !c.Work.Start.On(time.Time{}).Before(c.Work.End.On(time.Time{})) {
		return fmt.Errorf("WORK_START_TIME must be before WORK_END_TIME")
	}
	if len(c.Notification.AdminChatIDs) == 0 {
		slog.Warn("ADMIN_CHAT_IDS is empty; admin alerts and reports will not be delivered")
	}
	return nil
}

// Fence returns the configured office geofence.
func (c *Config) Fence() geo.Fence {
	return geo.Fence{
		Office:       geo.Point{Latitude: c.Office.Latitude, Longitude: c.Office.Longitude},
		RadiusMeters: c.Office.RadiusMeters,
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// SlogLevel maps LOG_LEVEL onto slog levels; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekdays reads a comma separated list of three-letter day names or
// numbers (0 = Sunday).
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		day, ok := weekdayNames[part]
		if !ok {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 || n > 6 {
				return nil, fmt.Errorf("unknown weekday %q", part)
			}
			day = time.Weekday(n)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, errors.New("at least one work day is required")
	}
	return days, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func getEnvFloat(key, fallback string) (float64, error) {
	value := getEnv(key, fallback)
	if value == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvTimeOfDay(key, fallback string) (clock.TimeOfDay, error) {
	t, err := clock.ParseTimeOfDay(getEnv(key, fallback))
	if err != nil {
		return clock.TimeOfDay{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}
