package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notifiable(id int64, domain string, daysRemaining, threshold int) WatchedDomain {
	w := watched(id, domain, "", days(daysRemaining))
	w.NotifyEnabled = true
	w.NotifyThreshold = threshold
	return w
}

func TestEvaluateNotificationsThreshold(t *testing.T) {
	within := notifiable(1, "a.com", 5, 10)
	outside := notifiable(2, "b.com", 5, 3)

	items := EvaluateNotifications([]WatchedDomain{within, outside})

	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "a.com", items[0].Domain)
	assert.Equal(t, 5, items[0].DaysRemaining)
	assert.Equal(t, 10, items[0].Threshold)
	assert.Equal(t, StatusDanger, items[0].Status)
}

func TestEvaluateNotificationsSkipsDisabledAndUnchecked(t *testing.T) {
	disabled := watched(1, "a.com", "", days(2))
	disabled.NotifyEnabled = false

	unchecked := watched(2, "b.com", "", nil)
	unchecked.NotifyEnabled = true

	items := EvaluateNotifications([]WatchedDomain{disabled, unchecked})
	assert.Empty(t, items)
}

func TestEvaluateNotificationsSkipsExpired(t *testing.T) {
	expired := notifiable(1, "a.com", -3, 30)

	items := EvaluateNotifications([]WatchedDomain{expired})
	assert.Empty(t, items)
}

func TestEvaluateNotificationsOrdering(t *testing.T) {
	records := []WatchedDomain{
		notifiable(1, "late.com", 9, 30),
		notifiable(2, "urgent.com", 1, 30),
		notifiable(3, "b-tie.com", 5, 30),
		notifiable(4, "a-tie.com", 5, 30),
	}

	items := EvaluateNotifications(records)

	require.Len(t, items, 4)
	assert.Equal(t, "urgent.com", items[0].Domain)
	assert.Equal(t, "a-tie.com", items[1].Domain)
	assert.Equal(t, "b-tie.com", items[2].Domain)
	assert.Equal(t, "late.com", items[3].Domain)
}

func TestEvaluateNotificationsIsPureRead(t *testing.T) {
	records := []WatchedDomain{notifiable(1, "a.com", 2, 7)}

	first := EvaluateNotifications(records)
	second := EvaluateNotifications(records)

	assert.Equal(t, first, second)
	assert.True(t, records[0].NotifyEnabled)
	assert.Equal(t, 7, records[0].NotifyThreshold)
}
