package core

import "sort"

// EvaluateNotifications returns the domains currently due for an
// alert: notifications enabled, a snapshot present, and remaining days
// within the per-record threshold. Expired records are excluded; they
// surface through classification instead of threshold alerts. The
// result is ordered most urgent first, ties broken by domain name.
// Pure read; repeat invocations are not suppressed here.
func EvaluateNotifications(records []WatchedDomain) []NotificationItem {
	items := []NotificationItem{}

	for _, r := range records {
		if !r.NotifyEnabled || r.CertInfo == nil {
			continue
		}
		days := r.CertInfo.DaysRemaining
		if days < 0 || days > r.NotifyThreshold {
			continue
		}

		item := NotificationItem{
			ID:            r.ID,
			Domain:        r.Domain,
			Nickname:      r.Nickname,
			DaysRemaining: days,
			Threshold:     r.NotifyThreshold,
			Status:        r.CertInfo.Status,
		}
		if r.CertInfo.NotAfter != nil {
			item.NotAfter = *r.CertInfo.NotAfter
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DaysRemaining != items[j].DaysRemaining {
			return items[i].DaysRemaining < items[j].DaysRemaining
		}
		return items[i].Domain < items[j].Domain
	})

	return items
}
