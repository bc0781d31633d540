package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watched(id int64, domain, nickname string, days *int) WatchedDomain {
	w := WatchedDomain{
		ID:              id,
		Domain:          domain,
		Nickname:        nickname,
		NotifyThreshold: DefaultNotifyThreshold,
		AddedTime:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if days != nil {
		notAfter := w.AddedTime.Add(time.Duration(*days) * 24 * time.Hour)
		w.CertInfo = &CertificateSnapshot{
			Domain:        domain,
			DaysRemaining: *days,
			Status:        Classify(*days),
			NotAfter:      &notAfter,
			IsValid:       *days >= 0,
		}
	}
	return w
}

func days(d int) *int { return &d }

func viewFixture() []WatchedDomain {
	return []WatchedDomain{
		watched(1, "alpha.example.com", "prod frontend", days(3)),
		watched(2, "beta.example.com", "", days(20)),
		watched(3, "gamma.example.com", "staging", days(120)),
		watched(4, "delta.example.com", "", days(-2)),
		watched(5, "epsilon.example.com", "never checked", nil),
		watched(6, "zeta.example.com", "", days(45)),
	}
}

func viewIDs(records []WatchedDomain) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestViewKeywordFilter(t *testing.T) {
	records := viewFixture()

	got := View(records, FilterConfig{SearchKeyword: "GAMMA", SortBy: SortDomain})
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	// Nickname matches too.
	got = View(records, FilterConfig{SearchKeyword: "prod", SortBy: SortDomain})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	// Empty keyword passes all.
	got = View(records, FilterConfig{SortBy: SortDomain})
	assert.Len(t, got, len(records))
}

func TestViewStatusFilter(t *testing.T) {
	records := viewFixture()

	got := View(records, FilterConfig{StatusFilter: "danger", SortBy: SortDomain})
	assert.Equal(t, []int64{1}, viewIDs(got))

	got = View(records, FilterConfig{StatusFilter: "expired", SortBy: SortDomain})
	assert.Equal(t, []int64{4}, viewIDs(got))

	// Records without a snapshot are excluded for any explicit status.
	got = View(records, FilterConfig{StatusFilter: "safe", SortBy: SortDomain})
	for _, r := range got {
		assert.NotNil(t, r.CertInfo)
	}
}

func TestViewDaysRangeFilter(t *testing.T) {
	records := viewFixture()

	tests := []struct {
		bucket string
		want   []int64
	}{
		{DaysRange0to7, []int64{1}},
		{DaysRange7to30, []int64{2}},
		{DaysRange30to90, []int64{6}},
		{DaysRange90Plus, []int64{3}},
	}

	for _, tt := range tests {
		got := View(records, FilterConfig{DaysRangeFilter: tt.bucket, SortBy: SortDomain})
		assert.Equal(t, tt.want, viewIDs(got), "bucket %s", tt.bucket)
	}

	// Negative days only appear under "all".
	got := View(records, FilterConfig{DaysRangeFilter: FilterAll, SortBy: SortDomain})
	assert.Contains(t, viewIDs(got), int64(4))
}

func TestViewSortDaysAscMissingLast(t *testing.T) {
	got := View(viewFixture(), FilterConfig{SortBy: SortDaysAsc})
	assert.Equal(t, []int64{4, 1, 2, 6, 3, 5}, viewIDs(got))
}

func TestViewSortDaysDescMissingLast(t *testing.T) {
	got := View(viewFixture(), FilterConfig{SortBy: SortDaysDesc})
	// Missing snapshot maps to -1 descending, so id 5 lands after the
	// last positive value but before the expired record.
	assert.Equal(t, []int64{3, 6, 2, 1, 5, 4}, viewIDs(got))
}

func TestViewSortStatus(t *testing.T) {
	got := View(viewFixture(), FilterConfig{SortBy: SortStatus})
	assert.Equal(t, []int64{4, 1, 2, 3, 6, 5}, viewIDs(got))
}

func TestViewSortDomain(t *testing.T) {
	got := View(viewFixture(), FilterConfig{SortBy: SortDomain})
	assert.Equal(t, []int64{1, 2, 4, 5, 3, 6}, viewIDs(got))
}

func TestViewIdempotent(t *testing.T) {
	cfgs := []FilterConfig{
		{SortBy: SortDaysAsc},
		{SortBy: SortDaysDesc},
		{SortBy: SortStatus},
		{SortBy: SortDomain},
		{SearchKeyword: "example", StatusFilter: FilterAll, DaysRangeFilter: DaysRange0to7, SortBy: SortDaysAsc},
	}

	for _, cfg := range cfgs {
		once := View(viewFixture(), cfg)
		twice := View(once, cfg)
		assert.Equal(t, viewIDs(once), viewIDs(twice), "config %+v", cfg)
	}
}

func TestViewStableOnTies(t *testing.T) {
	records := []WatchedDomain{
		watched(1, "a.example.com", "", days(10)),
		watched(2, "b.example.com", "", days(10)),
		watched(3, "c.example.com", "", days(10)),
	}

	got := View(records, FilterConfig{SortBy: SortDaysAsc})
	assert.Equal(t, []int64{1, 2, 3}, viewIDs(got))

	got = View(records, FilterConfig{SortBy: SortStatus})
	assert.Equal(t, []int64{1, 2, 3}, viewIDs(got))
}

func TestViewDoesNotMutateInput(t *testing.T) {
	records := viewFixture()
	original := viewIDs(records)

	View(records, FilterConfig{SortBy: SortDaysDesc})
	assert.Equal(t, original, viewIDs(records))
}
