package checker

import (
	"fmt"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/certwatch-io/certwatch/internal/core"
)

// WHOISChecker looks up domain registration data. Registration expiry
// is a separate axis from certificate expiry; the watch list exposes
// both.
type WHOISChecker struct{}

func NewWHOISChecker() *WHOISChecker {
	return &WHOISChecker{}
}

func (w *WHOISChecker) Check(domain string) (*core.RegistrationDetails, error) {
	raw, err := whois.Whois(domain)
	if err != nil {
		return nil, fmt.Errorf("whois lookup failed: %w", err)
	}

	result, err := whoisparser.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("whois parse failed: %w", err)
	}

	details := &core.RegistrationDetails{
		Registrar: result.Registrar.Name,
	}
	if len(result.Domain.Status) != 0 {
		details.DomainStatus = result.Domain.Status
	}

	if result.Domain.CreatedDate != "" {
		if t, err := parseWhoisDate(result.Domain.CreatedDate); err == nil {
			details.CreatedDate = &t
		}
	}
	if result.Domain.UpdatedDate != "" {
		if t, err := parseWhoisDate(result.Domain.UpdatedDate); err == nil {
			details.UpdatedDate = &t
		}
	}
	if result.Domain.ExpirationDate != "" {
		if t, err := parseWhoisDate(result.Domain.ExpirationDate); err == nil {
			details.ExpiryDate = &t
			details.DaysToExpiry = core.DaysRemaining(t, time.Now())
		}
	}

	return details, nil
}

func parseWhoisDate(dateStr string) (time.Time, error) {
	// Registries disagree on date formats.
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"02-Jan-2006",
		"2006.01.02 15:04:05",
		"2006/01/02",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
