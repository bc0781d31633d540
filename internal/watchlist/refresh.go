package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
)

// RefreshSummary reports a multi-record refresh. Total counts the
// records attempted; manual records are excluded before counting.
type RefreshSummary struct {
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Failed        int      `json:"failed"`
	FailedDomains []string `json:"failedDomains,omitempty"`
}

// CheckCertificate runs an ad-hoc live check for any domain, watched
// or not, and records the snapshot in the history log.
func (s *Service) CheckCertificate(ctx context.Context, domain string) (*core.CertificateSnapshot, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, core.Validationf("domain must not be empty")
	}

	snap, err := s.fetcher.Refresh(ctx, domain)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveCertificate(ctx, snap); err != nil {
		s.logger.Warn("History save failed", zap.String("domain", domain), zap.Error(err))
	}
	return snap, nil
}

// RefreshRecord re-fetches one watched record and applies the result.
// History is not written; refreshes update state, checks record it.
func (s *Service) RefreshRecord(ctx context.Context, id int64) (*core.CertificateSnapshot, error) {
	s.mu.Lock()
	r := s.findLocked(id)
	if r == nil {
		s.mu.Unlock()
		return nil, core.ErrNotFound
	}
	domain, manual := r.Domain, r.IsManual
	s.mu.Unlock()

	if manual {
		return nil, core.Validationf("record %d is in manual mode", id)
	}

	snap, err := s.fetcher.Refresh(ctx, domain)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyCertSnapshot(ctx, id, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// QuickCheck refreshes one watched record addressed by domain name.
func (s *Service) QuickCheck(ctx context.Context, domain string) (*core.CertificateSnapshot, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))

	s.mu.Lock()
	var id int64 = -1
	for i := range s.records {
		if s.records[i].Domain == domain {
			id = s.records[i].ID
			break
		}
	}
	s.mu.Unlock()

	if id < 0 {
		return nil, core.ErrNotFound
	}
	return s.RefreshRecord(ctx, id)
}

// refreshTarget is one record snapshot taken before a sequential run.
type refreshTarget struct {
	id     int64
	domain string
}

// RefreshAll re-fetches every automatic record, one at a time. Fetch
// failures skip the record and keep going; the old snapshot stays in
// place until a later refresh succeeds.
func (s *Service) RefreshAll(ctx context.Context) RefreshSummary {
	s.mu.Lock()
	targets := make([]refreshTarget, 0, len(s.records))
	for i := range s.records {
		if s.records[i].IsManual {
			continue
		}
		targets = append(targets, refreshTarget{id: s.records[i].ID, domain: s.records[i].Domain})
	}
	s.mu.Unlock()

	runID := uuid.New().String()
	started := time.Now()
	s.logger.Info("Refresh run started", zap.String("run_id", runID), zap.Int("targets", len(targets)))

	summary := s.refreshSequential(ctx, targets)

	s.logger.Info("Refresh run finished",
		zap.String("run_id", runID),
		zap.Int("success", summary.Success),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", time.Since(started)))
	return summary
}

func (s *Service) refreshSequential(ctx context.Context, targets []refreshTarget) RefreshSummary {
	summary := RefreshSummary{Total: len(targets)}

	for _, t := range targets {
		snap, err := s.fetcher.Refresh(ctx, t.domain)
		if err == nil {
			err = s.ApplyCertSnapshot(ctx, t.id, snap)
		}
		if err != nil {
			summary.Failed++
			summary.FailedDomains = append(summary.FailedDomains, t.domain)
			s.logger.Warn("Refresh failed", zap.String("domain", t.domain), zap.Error(err))
			continue
		}
		summary.Success++
	}
	return summary
}

// ImportResult reports a bulk text import.
type ImportResult struct {
	Total         int      `json:"total"`
	Success       int      `json:"success"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	FailedDomains []string `json:"failedDomains,omitempty"`
}

// ImportFromText adds one domain per line. Blank lines and lines
// starting with # are ignored; a line may carry "domain,nickname".
// Duplicates count as skipped, not failed. The resolvability
// pre-check is bypassed so a large paste is not gated on DNS.
func (s *Service) ImportFromText(ctx context.Context, raw string) ImportResult {
	var result ImportResult

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		domain, nickname := line, ""
		if i := strings.Index(line, ","); i >= 0 {
			domain = strings.TrimSpace(line[:i])
			nickname = strings.TrimSpace(line[i+1:])
		}
		result.Total++

		_, err := s.addImported(ctx, domain, nickname)
		switch {
		case err == nil:
			result.Success++
		case errors.Is(err, core.ErrDuplicate):
			result.Skipped++
		default:
			result.Failed++
			result.FailedDomains = append(result.FailedDomains, domain)
			s.logger.Warn("Import line failed", zap.String("domain", domain), zap.Error(err))
		}
	}

	s.logger.Info("Import finished",
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result
}

func (s *Service) addImported(ctx context.Context, domain, nickname string) (int64, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return 0, core.Validationf("domain must not be empty")
	}

	s.mu.Lock()
	dup := s.hasDomainLocked(domain)
	s.mu.Unlock()
	if dup {
		return 0, core.ErrDuplicate
	}

	threshold := core.DefaultNotifyThreshold
	if s.defaults != nil {
		threshold = s.defaults.DefaultThreshold(ctx)
	}

	id, err := s.repo.CreateWatched(ctx, domain, nickname, threshold)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.records = append(s.records, core.WatchedDomain{
		ID:              id,
		Domain:          domain,
		Nickname:        nickname,
		NotifyThreshold: threshold,
		AddedTime:       s.now(),
	})
	s.mu.Unlock()
	return id, nil
}

// BatchRefresh refreshes every selected record sequentially. Manual
// records in the selection are skipped and not counted.
func (s *Service) BatchRefresh(ctx context.Context) (RefreshSummary, error) {
	s.mu.Lock()
	if !s.selection.active {
		s.mu.Unlock()
		return RefreshSummary{}, core.Validationf("batch mode is not active")
	}
	targets := make([]refreshTarget, 0, len(s.selection.ids))
	for i := range s.records {
		r := &s.records[i]
		if _, ok := s.selection.ids[r.ID]; !ok || r.IsManual {
			continue
		}
		targets = append(targets, refreshTarget{id: r.ID, domain: r.Domain})
	}
	s.mu.Unlock()

	runID := uuid.New().String()
	s.logger.Info("Batch refresh started", zap.String("run_id", runID), zap.Int("targets", len(targets)))
	return s.refreshSequential(ctx, targets), nil
}

// BatchDeleteSummary reports a selection-wide delete.
type BatchDeleteSummary struct {
	Total   int      `json:"total"`
	Deleted int      `json:"deleted"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// BatchDelete removes every selected record sequentially and ends the
// selection session.
func (s *Service) BatchDelete(ctx context.Context) (BatchDeleteSummary, error) {
	s.mu.Lock()
	if !s.selection.active {
		s.mu.Unlock()
		return BatchDeleteSummary{}, core.Validationf("batch mode is not active")
	}
	ids := make([]int64, 0, len(s.selection.ids))
	for id := range s.selection.ids {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sortIDs(ids)

	summary := BatchDeleteSummary{Total: len(ids)}
	for _, id := range ids {
		if err := s.Remove(ctx, id); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%d: %v", id, err))
			continue
		}
		summary.Deleted++
	}

	s.CancelBatchMode()
	return summary, nil
}

// ExportSelected renders the selected records as CSV.
func (s *Service) ExportSelected() ([]byte, error) {
	s.mu.Lock()
	active := s.selection.active
	s.mu.Unlock()
	if !active {
		return nil, core.Validationf("batch mode is not active")
	}
	return core.ExportCSV(s.SelectedRecords()), nil
}
