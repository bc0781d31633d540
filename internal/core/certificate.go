package core

import (
	"math"
	"time"
)

// Status is the risk category derived from a certificate's remaining
// validity. It is never stored authoritatively; always recompute it
// from DaysRemaining via Classify.
type Status string

const (
	StatusSafe    Status = "safe"
	StatusWarning Status = "warning"
	StatusDanger  Status = "danger"
	StatusExpired Status = "expired"
)

// Classification thresholds in days.
const (
	DangerThresholdDays  = 7
	WarningThresholdDays = 30
)

// Classify maps remaining validity in days to a Status. First match
// wins: 7 days is danger, not warning; 0 days is danger, not expired.
func Classify(daysRemaining int) Status {
	switch {
	case daysRemaining < 0:
		return StatusExpired
	case daysRemaining <= DangerThresholdDays:
		return StatusDanger
	case daysRemaining <= WarningThresholdDays:
		return StatusWarning
	default:
		return StatusSafe
	}
}

// StatusRank orders statuses by urgency for sorting. Unknown statuses
// (including the zero value) rank last.
func StatusRank(s Status) int {
	switch s {
	case StatusExpired:
		return 0
	case StatusDanger:
		return 1
	case StatusWarning:
		return 2
	case StatusSafe:
		return 3
	default:
		return 99
	}
}

// StatusLabel returns the human-readable label used in exports.
func StatusLabel(s Status) string {
	switch s {
	case StatusSafe:
		return "Safe"
	case StatusWarning:
		return "Warning"
	case StatusDanger:
		return "Danger"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// CertificateSnapshot is the immutable result of one certificate check.
type CertificateSnapshot struct {
	Domain        string     `json:"domain"`
	Issuer        string     `json:"issuer,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	NotBefore     *time.Time `json:"notBefore,omitempty"`
	NotAfter      *time.Time `json:"notAfter,omitempty"`
	DaysRemaining int        `json:"daysRemaining"`
	IsValid       bool       `json:"isValid"`
	Status        Status     `json:"status"`
	SerialNumber  string     `json:"serialNumber,omitempty"`
	Version       int        `json:"version,omitempty"`
	SANDomains    []string   `json:"sanDomains,omitempty"`
	QueryTime     *time.Time `json:"queryTime,omitempty"`
}

// DaysRemaining computes floor((notAfter - now) / 24h). Negative for
// expired certificates.
func DaysRemaining(notAfter, now time.Time) int {
	return int(math.Floor(notAfter.Sub(now).Hours() / 24))
}

// ManualSnapshot synthesizes a snapshot from user-supplied validity
// dates for records in manual mode.
func ManualSnapshot(domain string, start *time.Time, expire time.Time, now time.Time) *CertificateSnapshot {
	days := DaysRemaining(expire, now)
	expireCopy := expire
	return &CertificateSnapshot{
		Domain:        domain,
		Issuer:        "manual",
		Subject:       domain,
		NotBefore:     start,
		NotAfter:      &expireCopy,
		DaysRemaining: days,
		IsValid:       days >= 0,
		Status:        Classify(days),
		SerialNumber:  "-",
	}
}
