package core

import "sort"

// IssuerCount is one entry in the issuer distribution.
type IssuerCount struct {
	Issuer string `json:"issuer"`
	Count  int    `json:"count"`
}

// Statistics aggregates the watch list for the overview endpoint and
// the metrics collector.
type Statistics struct {
	Total            int             `json:"total"`
	Safe             int             `json:"safe"`
	Warning          int             `json:"warning"`
	Danger           int             `json:"danger"`
	Expired          int             `json:"expired"`
	Unchecked        int             `json:"unchecked"`
	DaysDistribution map[string]int  `json:"daysDistribution"`
	TopIssuers       []IssuerCount   `json:"topIssuers"`
	ExpiringSoon     []WatchedDomain `json:"expiringSoon"`
}

const topIssuerLimit = 10

// Aggregate computes watch-list statistics. ExpiringSoon lists
// records within 30 days of expiry (not yet expired), most urgent
// first.
func Aggregate(records []WatchedDomain) Statistics {
	stats := Statistics{
		Total: len(records),
		DaysDistribution: map[string]int{
			DaysRange0to7:   0,
			DaysRange7to30:  0,
			DaysRange30to90: 0,
			DaysRange90Plus: 0,
		},
	}

	issuers := map[string]int{}
	for _, r := range records {
		if r.CertInfo == nil {
			stats.Unchecked++
			continue
		}

		switch r.CertInfo.Status {
		case StatusSafe:
			stats.Safe++
		case StatusWarning:
			stats.Warning++
		case StatusDanger:
			stats.Danger++
		case StatusExpired:
			stats.Expired++
		}

		days := r.CertInfo.DaysRemaining
		for _, bucket := range []string{DaysRange0to7, DaysRange7to30, DaysRange30to90, DaysRange90Plus} {
			if daysInRange(days, bucket) {
				stats.DaysDistribution[bucket]++
				break
			}
		}

		issuer := r.CertInfo.Issuer
		if issuer == "" {
			issuer = "unknown"
		}
		issuers[issuer]++

		if days >= 0 && days <= WarningThresholdDays {
			stats.ExpiringSoon = append(stats.ExpiringSoon, r)
		}
	}

	for issuer, count := range issuers {
		stats.TopIssuers = append(stats.TopIssuers, IssuerCount{Issuer: issuer, Count: count})
	}
	sort.SliceStable(stats.TopIssuers, func(i, j int) bool {
		if stats.TopIssuers[i].Count != stats.TopIssuers[j].Count {
			return stats.TopIssuers[i].Count > stats.TopIssuers[j].Count
		}
		return stats.TopIssuers[i].Issuer < stats.TopIssuers[j].Issuer
	})
	if len(stats.TopIssuers) > topIssuerLimit {
		stats.TopIssuers = stats.TopIssuers[:topIssuerLimit]
	}

	sort.SliceStable(stats.ExpiringSoon, func(i, j int) bool {
		return stats.ExpiringSoon[i].CertInfo.DaysRemaining < stats.ExpiringSoon[j].CertInfo.DaysRemaining
	})

	return stats
}
