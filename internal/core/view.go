package core

import (
	"sort"
	"strings"
)

// Filter and sort selector values accepted by View.
const (
	FilterAll = "all"

	DaysRange0to7   = "0-7"
	DaysRange7to30  = "7-30"
	DaysRange30to90 = "30-90"
	DaysRange90Plus = "90+"

	SortDaysAsc  = "days-asc"
	SortDaysDesc = "days-desc"
	SortStatus   = "status"
	SortDomain   = "domain"
)

// FilterConfig is transient view state, never persisted with records.
type FilterConfig struct {
	SearchKeyword   string `json:"searchKeyword" form:"keyword"`
	StatusFilter    string `json:"statusFilter" form:"status"`
	DaysRangeFilter string `json:"daysRangeFilter" form:"days"`
	SortBy          string `json:"sortBy" form:"sort"`
}

// DefaultFilterConfig matches the reset state of the view.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		StatusFilter:    FilterAll,
		DaysRangeFilter: FilterAll,
		SortBy:          SortDaysAsc,
	}
}

// View derives a display-ordered slice from records. The pipeline is
// keyword filter, status filter, days-range filter, then a stable
// sort. The input slice is not mutated and the result is idempotent:
// re-applying the same config to its own output yields the same order.
func View(records []WatchedDomain, cfg FilterConfig) []WatchedDomain {
	out := make([]WatchedDomain, 0, len(records))

	keyword := strings.ToLower(strings.TrimSpace(cfg.SearchKeyword))
	for _, r := range records {
		if keyword != "" {
			domain := strings.ToLower(r.Domain)
			nickname := strings.ToLower(r.Nickname)
			if !strings.Contains(domain, keyword) && !strings.Contains(nickname, keyword) {
				continue
			}
		}

		if cfg.StatusFilter != "" && cfg.StatusFilter != FilterAll {
			if r.CertInfo == nil || string(r.CertInfo.Status) != cfg.StatusFilter {
				continue
			}
		}

		if cfg.DaysRangeFilter != "" && cfg.DaysRangeFilter != FilterAll {
			if r.CertInfo == nil || !daysInRange(r.CertInfo.DaysRemaining, cfg.DaysRangeFilter) {
				continue
			}
		}

		out = append(out, r)
	}

	sortView(out, cfg.SortBy)
	return out
}

// daysInRange checks the bucket boundaries [0,7], (7,30], (30,90],
// (90, inf). Negative days never match an explicit bucket.
func daysInRange(days int, bucket string) bool {
	switch bucket {
	case DaysRange0to7:
		return days >= 0 && days <= 7
	case DaysRange7to30:
		return days > 7 && days <= 30
	case DaysRange30to90:
		return days > 30 && days <= 90
	case DaysRange90Plus:
		return days > 90
	default:
		return true
	}
}

const missingDaysAsc = int(^uint(0) >> 1) // max int, missing sorts last ascending

func sortView(records []WatchedDomain, sortBy string) {
	switch sortBy {
	case SortDaysAsc, "":
		sort.SliceStable(records, func(i, j int) bool {
			return daysKey(records[i], missingDaysAsc) < daysKey(records[j], missingDaysAsc)
		})
	case SortDaysDesc:
		// Missing values map to -1 here rather than min-int. The
		// asymmetry with ascending order is a compatibility
		// requirement: unknown records sort last in both directions.
		sort.SliceStable(records, func(i, j int) bool {
			return daysKey(records[i], -1) > daysKey(records[j], -1)
		})
	case SortStatus:
		sort.SliceStable(records, func(i, j int) bool {
			return statusKey(records[i]) < statusKey(records[j])
		})
	case SortDomain:
		sort.SliceStable(records, func(i, j int) bool {
			return strings.ToLower(records[i].Domain) < strings.ToLower(records[j].Domain)
		})
	}
}

func daysKey(r WatchedDomain, missing int) int {
	if r.CertInfo == nil {
		return missing
	}
	return r.CertInfo.DaysRemaining
}

func statusKey(r WatchedDomain) int {
	if r.CertInfo == nil {
		return 100
	}
	return StatusRank(r.CertInfo.Status)
}
