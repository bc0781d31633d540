package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
)

type memKV struct {
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: map[string]string{}}
}

func (m *memKV) GetSetting(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) SetSetting(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memKV) AllSettings(_ context.Context) (map[string]string, error) {
	return m.values, nil
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore(newMemKV(), zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 5*time.Second, s.QueryTimeout(ctx))
	assert.Equal(t, 7, s.DefaultThreshold(ctx))
	assert.Equal(t, int64(0), s.AutoRefreshInterval(ctx))
	assert.Equal(t, 30, s.HistoryRetentionDays(ctx))
	assert.Equal(t, "light", s.Get(ctx, KeyTheme))
}

func TestStoreSetAndGet(t *testing.T) {
	s := NewStore(newMemKV(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAutoRefreshInterval, "300000"))
	require.NoError(t, s.Set(ctx, KeyDefaultThreshold, "14"))
	require.NoError(t, s.Set(ctx, KeyTheme, "dark"))
	require.NoError(t, s.Set(ctx, KeyHistoryRetentionDays, "-1"))

	assert.Equal(t, int64(300000), s.AutoRefreshInterval(ctx))
	assert.Equal(t, 14, s.DefaultThreshold(ctx))
	assert.Equal(t, "dark", s.Get(ctx, KeyTheme))
	assert.Equal(t, -1, s.HistoryRetentionDays(ctx))
}

func TestStoreSetRejectsBadInput(t *testing.T) {
	s := NewStore(newMemKV(), zap.NewNop())
	ctx := context.Background()

	var verr *core.ValidationError
	assert.ErrorAs(t, s.Set(ctx, "bogusKey", "1"), &verr)
	assert.ErrorAs(t, s.Set(ctx, KeyTheme, "solarized"), &verr)
	assert.ErrorAs(t, s.Set(ctx, KeyAutoRefreshInterval, "soon"), &verr)
	assert.ErrorAs(t, s.Set(ctx, KeyAutoRefreshInterval, "-5"), &verr)
	assert.ErrorAs(t, s.Set(ctx, KeyHistoryRetentionDays, "0"), &verr)
}

func TestStoreAllMergesDefaults(t *testing.T) {
	kv := newMemKV()
	kv.values[KeyTheme] = "dark"
	kv.values["strayKey"] = "ignored"

	s := NewStore(kv, zap.NewNop())
	all, err := s.All(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "dark", all[KeyTheme])
	assert.Equal(t, "5", all[KeyQueryTimeout])
	assert.NotContains(t, all, "strayKey")
}
