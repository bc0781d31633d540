package watchlist

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/core"
)

// Repository is the persistence collaborator for the watch list.
type Repository interface {
	CreateWatched(ctx context.Context, domain, nickname string, notifyThreshold int) (int64, error)
	ListWatched(ctx context.Context) ([]core.WatchedDomain, error)
	DeleteWatched(ctx context.Context, id int64) error
	UpdateNickname(ctx context.Context, id int64, nickname string) error
	UpdateNotifySettings(ctx context.Context, id int64, enabled bool, threshold int) error
	UpdateLastCheck(ctx context.Context, id int64, checkedAt time.Time) error
	SetManual(ctx context.Context, id int64, startDate *time.Time, expireDate time.Time) error
	ClearManual(ctx context.Context, id int64) error
	SaveCertificate(ctx context.Context, snap *core.CertificateSnapshot) error
}

// Fetcher retrieves certificate snapshots. Fetch may serve from a
// cache; Refresh always goes to the network.
type Fetcher interface {
	Fetch(ctx context.Context, domain string) (*core.CertificateSnapshot, error)
	Refresh(ctx context.Context, domain string) (*core.CertificateSnapshot, error)
}

// Verifier pre-checks that a domain resolves before it is added.
type Verifier interface {
	Resolvable(ctx context.Context, domain string) bool
}

// Defaults supplies record-creation defaults from the settings store.
type Defaults interface {
	DefaultThreshold(ctx context.Context) int
}

// Service owns the in-memory watch list and the selection state. It is
// the single session object; create one per process and pass it to the
// scheduler and the API layer.
//
// Writes to the same record are applied in arrival order with no
// per-id serialization: a user edit racing a scheduled refresh is
// last-write-wins. This is an accepted trade-off, not an oversight.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	fetcher   Fetcher
	verifier  Verifier
	defaults  Defaults
	logger    *zap.Logger
	records   []core.WatchedDomain
	selection selectionState
	now       func() time.Time
}

func NewService(repo Repository, fetcher Fetcher, verifier Verifier, defaults Defaults, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		fetcher:  fetcher,
		verifier: verifier,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// Load hydrates the in-memory list from the repository. Manual-mode
// snapshots are synthesized on read, so nothing is fetched here.
func (s *Service) Load(ctx context.Context) error {
	records, err := s.repo.ListWatched(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.selection.pruneMissing(s.idSetLocked())
	s.logger.Info("Watch list loaded", zap.Int("count", len(records)))
	return nil
}

// List returns an insertion-ordered copy. Manual records get their
// snapshot recomputed against the current clock so the remaining days
// stay fresh without a fetch.
func (s *Service) List() []core.WatchedDomain {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]core.WatchedDomain, len(s.records))
	for i, r := range s.records {
		if r.IsManual && r.ManualExpireDate != nil {
			r.CertInfo = core.ManualSnapshot(r.Domain, r.ManualStartDate, *r.ManualExpireDate, now)
		}
		out[i] = r
	}
	return out
}

// View applies the filter/sort pipeline to the current list.
func (s *Service) View(cfg core.FilterConfig) []core.WatchedDomain {
	return core.View(s.List(), cfg)
}

// Get returns one record by id.
func (s *Service) Get(id int64) (core.WatchedDomain, error) {
	for _, r := range s.List() {
		if r.ID == id {
			return r, nil
		}
	}
	return core.WatchedDomain{}, core.ErrNotFound
}

// Add validates and registers a new watched domain. Domains are
// canonicalized to lower case; duplicate detection is therefore
// case-insensitive.
func (s *Service) Add(ctx context.Context, domain, nickname string) (int64, error) {
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

	if s.verifier != nil && !s.verifier.Resolvable(ctx, domain) {
		return 0, core.Validationf("domain %s does not resolve", domain)
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

	s.logger.Info("Domain watched", zap.Int64("id", id), zap.String("domain", domain))
	return id, nil
}

// Remove deletes a record and purges its id from any active selection.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.DeleteWatched(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	s.selection.remove(id)

	s.logger.Info("Domain removed", zap.Int64("id", id))
	return nil
}

func (s *Service) UpdateNickname(ctx context.Context, id int64, nickname string) error {
	if err := s.repo.UpdateNickname(ctx, id, nickname); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findLocked(id); r != nil {
		r.Nickname = nickname
	}
	return nil
}

// UpdateNotifySettings rejects thresholds outside [1, 365]; out of
// range input is an error, never silently clamped.
func (s *Service) UpdateNotifySettings(ctx context.Context, id int64, enabled bool, threshold int) error {
	if threshold < core.MinNotifyThreshold || threshold > core.MaxNotifyThreshold {
		return core.Validationf("notify threshold must be between %d and %d days",
			core.MinNotifyThreshold, core.MaxNotifyThreshold)
	}

	if err := s.repo.UpdateNotifySettings(ctx, id, enabled, threshold); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findLocked(id); r != nil {
		r.NotifyEnabled = enabled
		r.NotifyThreshold = threshold
	}
	return nil
}

// ApplyCertSnapshot replaces the record's snapshot and stamps the
// check time. Last write wins.
func (s *Service) ApplyCertSnapshot(ctx context.Context, id int64, snap *core.CertificateSnapshot) error {
	checkedAt := s.now()
	if err := s.repo.UpdateLastCheck(ctx, id, checkedAt); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findLocked(id)
	if r == nil {
		return core.ErrNotFound
	}
	r.CertInfo = snap
	r.LastCheckTime = &checkedAt
	return nil
}

// Date formats accepted for manual validity input. A bare date gets
// midnight appended.
const (
	manualDateTimeLayout = "2006-01-02 15:04:05"
	manualDateLayout     = "2006-01-02"
)

// SetManual switches a record to manual mode with user-supplied
// validity dates. An empty expire date is rejected: reverting to
// automatic checking is ClearManual, never an ambiguous SetManual.
func (s *Service) SetManual(ctx context.Context, id int64, startDate, expireDate string) error {
	if strings.TrimSpace(expireDate) == "" {
		return core.Validationf("expire date must not be empty; use clear-manual to resume automatic checks")
	}

	expire, err := parseManualDate(expireDate)
	if err != nil {
		return err
	}

	var start *time.Time
	if strings.TrimSpace(startDate) != "" {
		t, err := parseManualDate(startDate)
		if err != nil {
			return err
		}
		if !t.Before(expire) {
			return core.Validationf("start date must be before expire date")
		}
		start = &t
	}

	if err := s.repo.SetManual(ctx, id, start, expire); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findLocked(id)
	if r == nil {
		return core.ErrNotFound
	}
	r.IsManual = true
	r.ManualStartDate = start
	r.ManualExpireDate = &expire
	r.CertInfo = core.ManualSnapshot(r.Domain, start, expire, s.now())

	s.logger.Info("Manual mode set", zap.Int64("id", id), zap.Time("expire", expire))
	return nil
}

// ClearManual reverts a record to automatic checking. The synthetic
// snapshot is dropped; the next refresh repopulates it.
func (s *Service) ClearManual(ctx context.Context, id int64) error {
	if err := s.repo.ClearManual(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findLocked(id)
	if r == nil {
		return core.ErrNotFound
	}
	r.IsManual = false
	r.ManualStartDate = nil
	r.ManualExpireDate = nil
	r.CertInfo = nil

	s.logger.Info("Manual mode cleared", zap.Int64("id", id))
	return nil
}

func parseManualDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(manualDateTimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(manualDateLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, core.Validationf("date %q must use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", s)
}

// Notifications evaluates the current threshold alerts.
func (s *Service) Notifications() []core.NotificationItem {
	return core.EvaluateNotifications(s.List())
}

// Stats aggregates the current watch list.
func (s *Service) Stats() core.Statistics {
	return core.Aggregate(s.List())
}

// ExportView renders the filtered view (or the full list for the
// default config) as CSV.
func (s *Service) ExportView(cfg core.FilterConfig) []byte {
	return core.ExportCSV(s.View(cfg))
}

// Locked helpers. Callers hold s.mu.

func (s *Service) findLocked(id int64) *core.WatchedDomain {
	for i := range s.records {
		if s.records[i].ID == id {
			return &s.records[i]
		}
	}
	return nil
}

func (s *Service) hasDomainLocked(domain string) bool {
	for i := range s.records {
		if strings.EqualFold(s.records[i].Domain, domain) {
			return true
		}
	}
	return false
}

func (s *Service) idSetLocked() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(s.records))
	for i := range s.records {
		ids[s.records[i].ID] = struct{}{}
	}
	return ids
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
