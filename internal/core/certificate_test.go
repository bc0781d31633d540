package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		days int
		want Status
	}{
		{-365, StatusExpired},
		{-1, StatusExpired},
		{0, StatusDanger},
		{1, StatusDanger},
		{7, StatusDanger},
		{8, StatusWarning},
		{30, StatusWarning},
		{31, StatusSafe},
		{90, StatusSafe},
		{10000, StatusSafe},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.days), "Classify(%d)", tt.days)
	}
}

func TestStatusRank(t *testing.T) {
	assert.Less(t, StatusRank(StatusExpired), StatusRank(StatusDanger))
	assert.Less(t, StatusRank(StatusDanger), StatusRank(StatusWarning))
	assert.Less(t, StatusRank(StatusWarning), StatusRank(StatusSafe))
	assert.Greater(t, StatusRank(Status("")), StatusRank(StatusSafe))
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		notAfter time.Time
		want     int
	}{
		{"ten days out", now.Add(10 * 24 * time.Hour), 10},
		{"half a day out floors to zero", now.Add(12 * time.Hour), 0},
		{"expired half a day floors to -1", now.Add(-12 * time.Hour), -1},
		{"expired exactly two days", now.Add(-48 * time.Hour), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysRemaining(tt.notAfter, now))
		})
	}
}

func TestManualSnapshot(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	expire := now.Add(5 * 24 * time.Hour)
	start := now.Add(-30 * 24 * time.Hour)

	snap := ManualSnapshot("example.com", &start, expire, now)

	assert.Equal(t, "example.com", snap.Domain)
	assert.Equal(t, "manual", snap.Issuer)
	assert.Equal(t, "example.com", snap.Subject)
	assert.Equal(t, 5, snap.DaysRemaining)
	assert.Equal(t, StatusDanger, snap.Status)
	assert.True(t, snap.IsValid)
	assert.Equal(t, "-", snap.SerialNumber)
	assert.Equal(t, expire, *snap.NotAfter)
	assert.Equal(t, start, *snap.NotBefore)
}

func TestManualSnapshotExpired(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	expire := now.Add(-24 * time.Hour)

	snap := ManualSnapshot("old.example.com", nil, expire, now)

	assert.Equal(t, StatusExpired, snap.Status)
	assert.False(t, snap.IsValid)
	assert.Nil(t, snap.NotBefore)
}
