package watchlist

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certwatch-io/certwatch/internal/core"
)

func seedDomains(t *testing.T, f *fixture, domains ...string) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, 0, len(domains))
	for _, d := range domains {
		id, err := f.svc.Add(ctx, d, "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestSelectionRequiresBatchMode(t *testing.T) {
	f := newFixture(t)
	ids := seedDomains(t, f, "a.com")

	var verr *core.ValidationError
	assert.ErrorAs(t, f.svc.ToggleSelection(ids[0]), &verr)

	_, err := f.svc.SelectAll(core.DefaultFilterConfig())
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.BatchRefresh(context.Background())
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.BatchDelete(context.Background())
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.ExportSelected()
	assert.ErrorAs(t, err, &verr)
}

func TestToggleSelection(t *testing.T) {
	f := newFixture(t)
	ids := seedDomains(t, f, "a.com", "b.com")

	f.svc.EnterBatchMode()
	assert.True(t, f.svc.BatchModeActive())

	require.NoError(t, f.svc.ToggleSelection(ids[0]))
	assert.Equal(t, []int64{ids[0]}, f.svc.SelectedIDs())

	require.NoError(t, f.svc.ToggleSelection(ids[0]))
	assert.Empty(t, f.svc.SelectedIDs())

	assert.ErrorIs(t, f.svc.ToggleSelection(999), core.ErrNotFound)
}

func TestEnterBatchModeResetsSelection(t *testing.T) {
	f := newFixture(t)
	ids := seedDomains(t, f, "a.com")

	f.svc.EnterBatchMode()
	require.NoError(t, f.svc.ToggleSelection(ids[0]))

	f.svc.EnterBatchMode()
	assert.True(t, f.svc.BatchModeActive())
	assert.Empty(t, f.svc.SelectedIDs())
}

func TestCancelBatchModeDiscardsSelection(t *testing.T) {
	f := newFixture(t)
	ids := seedDomains(t, f, "a.com")

	f.svc.EnterBatchMode()
	require.NoError(t, f.svc.ToggleSelection(ids[0]))
	f.svc.CancelBatchMode()

	assert.False(t, f.svc.BatchModeActive())
	assert.Empty(t, f.svc.SelectedIDs())
}

func TestSelectAllScopedToView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedDomains(t, f, "safe.com", "danger.com", "nocert.com")

	require.NoError(t, f.svc.ApplyCertSnapshot(ctx, ids[0],
		&core.CertificateSnapshot{Domain: "safe.com", DaysRemaining: 120, Status: core.StatusSafe}))
	require.NoError(t, f.svc.ApplyCertSnapshot(ctx, ids[1],
		&core.CertificateSnapshot{Domain: "danger.com", DaysRemaining: 3, Status: core.StatusDanger}))

	f.svc.EnterBatchMode()

	cfg := core.DefaultFilterConfig()
	cfg.StatusFilter = string(core.StatusDanger)
	n, err := f.svc.SelectAll(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []int64{ids[1]}, f.svc.SelectedIDs())

	n, err = f.svc.SelectAll(core.DefaultFilterConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestClearSelectionKeepsSessionOpen(t *testing.T) {
	f := newFixture(t)
	ids := seedDomains(t, f, "a.com", "b.com")

	f.svc.EnterBatchMode()
	require.NoError(t, f.svc.ToggleSelection(ids[0]))
	require.NoError(t, f.svc.ToggleSelection(ids[1]))

	f.svc.ClearSelection()
	assert.True(t, f.svc.BatchModeActive())
	assert.Empty(t, f.svc.SelectedIDs())
}

func TestBatchRefreshCountsPerSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedDomains(t, f, "ok.com", "broken.com", "untouched.com")
	f.fetcher.errs["broken.com"] = fmt.Errorf("reset by peer")

	f.svc.EnterBatchMode()
	require.NoError(t, f.svc.ToggleSelection(ids[0]))
	require.NoError(t, f.svc.ToggleSelection(ids[1]))

	summary, err := f.svc.BatchRefresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Success)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"broken.com"}, summary.FailedDomains)
	assert.NotContains(t, f.fetcher.calls, "untouched.com")

	// A refresh run leaves the session open for further actions.
	assert.True(t, f.svc.BatchModeActive())
}

func TestBatchRefreshSkipsManualSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedDomains(t, f, "auto.com", "manual.com")
	require.NoError(t, f.svc.SetManual(ctx, ids[1], "", "2030-01-01"))

	f.svc.EnterBatchMode()
	_, err := f.svc.SelectAll(core.DefaultFilterConfig())
	require.NoError(t, err)

	summary, err := f.svc.BatchRefresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Success)
	assert.NotContains(t, f.fetcher.calls, "manual.com")
}

func TestBatchDeleteEndsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedDomains(t, f, "a.com", "b.com", "c.com")

	f.svc.EnterBatchMode()
	require.NoError(t, f.svc.ToggleSelection(ids[0]))
	require.NoError(t, f.svc.ToggleSelection(ids[2]))

	summary, err := f.svc.BatchDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Deleted)
	assert.Equal(t, 0, summary.Failed)

	assert.False(t, f.svc.BatchModeActive())
	records := f.svc.List()
	require.Len(t, records, 1)
	assert.Equal(t, "b.com", records[0].Domain)
}

func TestBatchDeleteKeepsGoingOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedDomains(t, f, "a.com", "b.com")
	f.repo.deleteErr[ids[0]] = fmt.Errorf("db down")

	f.svc.EnterBatchMode()
	_, err := f.svc.SelectAll(core.DefaultFilterConfig())
	require.NoError(t, err)

	summary, err := f.svc.BatchDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "db down")

	records := f.svc.List()
	require.Len(t, records, 1)
	assert.Equal(t, "a.com", records[0].Domain)
}

func TestExportSelected(t *testing.T) {
	f := newFixture(t)
	ids := seedDomains(t, f, "a.com", "b.com")

	f.svc.EnterBatchMode()
	require.NoError(t, f.svc.ToggleSelection(ids[1]))

	data, err := f.svc.ExportSelected()
	require.NoError(t, err)

	body := strings.TrimPrefix(string(data), "\uFEFF")
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"b.com"`)
	assert.NotContains(t, body, `"a.com"`)
}
