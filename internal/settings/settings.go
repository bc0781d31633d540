package settings

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
)

// Persisted setting keys. Values are stored as strings.
const (
	KeyQueryTimeout         = "queryTimeout"         // seconds
	KeyDefaultThreshold     = "defaultThreshold"     // days
	KeyAutoRefreshInterval  = "autoRefreshInterval"  // milliseconds, "0" disables
	KeyHistoryRetentionDays = "historyRetentionDays" // days, "-1" keeps forever
	KeyTheme                = "theme"
)

var defaults = map[string]string{
	KeyQueryTimeout:         "5",
	KeyDefaultThreshold:     "7",
	KeyAutoRefreshInterval:  "0",
	KeyHistoryRetentionDays: "30",
	KeyTheme:                "light",
}

// KV is the persistence surface the settings store needs.
type KV interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]string, error)
}

type Store struct {
	kv     KV
	logger *zap.Logger
}

func NewStore(kv KV, logger *zap.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

// Get returns the stored value for key, falling back to the default.
func (s *Store) Get(ctx context.Context, key string) string {
	value, ok, err := s.kv.GetSetting(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to read setting", zap.String("key", key), zap.Error(err))
		return defaults[key]
	}
	if !ok {
		return defaults[key]
	}
	return value
}

// All returns every setting merged over the defaults.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	stored, err := s.kv.AllSettings(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(defaults))
	for key, value := range defaults {
		out[key] = value
	}
	for key, value := range stored {
		if _, known := defaults[key]; known {
			out[key] = value
		}
	}
	return out, nil
}

// Set validates and persists one setting.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if _, known := defaults[key]; !known {
		return core.Validationf("unknown setting %q", key)
	}

	switch key {
	case KeyTheme:
		if value != "light" && value != "dark" {
			return core.Validationf("theme must be light or dark")
		}
	case KeyHistoryRetentionDays:
		n, err := strconv.Atoi(value)
		if err != nil || (n < 1 && n != -1) {
			return core.Validationf("historyRetentionDays must be a positive day count or -1")
		}
	default:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return core.Validationf("%s must be a non-negative integer", key)
		}
	}

	return s.kv.SetSetting(ctx, key, value)
}

// QueryTimeout is the TLS fetch timeout.
func (s *Store) QueryTimeout(ctx context.Context) time.Duration {
	seconds, err := strconv.Atoi(s.Get(ctx, KeyQueryTimeout))
	if err != nil || seconds <= 0 {
		seconds, _ = strconv.Atoi(defaults[KeyQueryTimeout])
	}
	return time.Duration(seconds) * time.Second
}

// DefaultThreshold is the notify threshold applied to new records.
func (s *Store) DefaultThreshold(ctx context.Context) int {
	days, err := strconv.Atoi(s.Get(ctx, KeyDefaultThreshold))
	if err != nil || days < core.MinNotifyThreshold || days > core.MaxNotifyThreshold {
		return core.DefaultNotifyThreshold
	}
	return days
}

// AutoRefreshInterval is the scheduler period in milliseconds; 0
// disables the scheduler.
func (s *Store) AutoRefreshInterval(ctx context.Context) int64 {
	ms, err := strconv.ParseInt(s.Get(ctx, KeyAutoRefreshInterval), 10, 64)
	if err != nil || ms < 0 {
		return 0
	}
	return ms
}

// HistoryRetentionDays returns the prune horizon; -1 keeps forever.
func (s *Store) HistoryRetentionDays(ctx context.Context) int {
	days, err := strconv.Atoi(s.Get(ctx, KeyHistoryRetentionDays))
	if err != nil {
		return 30
	}
	return days
}
