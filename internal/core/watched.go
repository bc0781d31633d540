package core

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDuplicate is returned when adding a domain already present in
	// the watch list.
	ErrDuplicate = errors.New("domain already watched")

	// ErrNotFound is returned for operations on an id no longer present.
	ErrNotFound = errors.New("watched domain not found")
)

// ValidationError rejects bad input before any collaborator call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Notify threshold bounds in days.
const (
	MinNotifyThreshold = 1
	MaxNotifyThreshold = 365
)

// DefaultNotifyThreshold is used when no setting overrides it.
const DefaultNotifyThreshold = 7

// WatchedDomain is one tracked hostname and its last known
// certificate state.
type WatchedDomain struct {
	ID               int64                `json:"id" db:"id"`
	Domain           string               `json:"domain" db:"domain"`
	Nickname         string               `json:"nickname,omitempty" db:"nickname"`
	CertInfo         *CertificateSnapshot `json:"certInfo,omitempty" db:"-"`
	NotifyEnabled    bool                 `json:"notifyEnabled" db:"notify_enabled"`
	NotifyThreshold  int                  `json:"notifyThreshold" db:"notify_threshold"`
	IsManual         bool                 `json:"isManual" db:"is_manual"`
	ManualStartDate  *time.Time           `json:"manualStartDate,omitempty" db:"manual_start_date"`
	ManualExpireDate *time.Time           `json:"manualExpireDate,omitempty" db:"manual_expire_date"`
	LastCheckTime    *time.Time           `json:"lastCheckTime,omitempty" db:"last_check_time"`
	AddedTime        time.Time            `json:"addedTime" db:"added_time"`
}

// NotificationItem is one domain currently due for an alert.
type NotificationItem struct {
	ID            int64     `json:"id"`
	Domain        string    `json:"domain"`
	Nickname      string    `json:"nickname,omitempty"`
	DaysRemaining int       `json:"daysRemaining"`
	NotAfter      time.Time `json:"notAfter"`
	Threshold     int       `json:"threshold"`
	Status        Status    `json:"status"`
}

// RegistrationDetails holds WHOIS-level domain registration data,
// distinct from certificate validity.
type RegistrationDetails struct {
	Registrar    string     `json:"registrar,omitempty"`
	DomainStatus []string   `json:"domainStatus,omitempty"`
	CreatedDate  *time.Time `json:"createdDate,omitempty"`
	UpdatedDate  *time.Time `json:"updatedDate,omitempty"`
	ExpiryDate   *time.Time `json:"expiryDate,omitempty"`
	DaysToExpiry int        `json:"daysToExpiry"`
}
