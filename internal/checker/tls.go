package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/certwatch-io/certwatch/internal/config"
	"github.com/certwatch-io/certwatch/internal/core"
	"github.com/certwatch-io/certwatch/internal/settings"
)

// TLSFetcher retrieves certificate metadata for a domain. It only
// reads the presented leaf certificate; trust chains are not verified.
type TLSFetcher struct {
	port     string
	settings *settings.Store
	cache    *Cache
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewTLSFetcher(cfg config.FetchConfig, st *settings.Store, cache *Cache, logger *zap.Logger) *TLSFetcher {
	return &TLSFetcher{
		port:     cfg.Port,
		settings: st,
		cache:    cache,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.BurstSize),
		logger:   logger,
	}
}

// Fetch returns a snapshot for domain, serving from the cache when a
// recent one exists.
func (f *TLSFetcher) Fetch(ctx context.Context, domain string) (*core.CertificateSnapshot, error) {
	if f.cache != nil {
		if snap, ok := f.cache.GetSnapshot(ctx, domain); ok {
			f.logger.Debug("Snapshot cache hit", zap.String("domain", domain))
			return snap, nil
		}
	}
	return f.Refresh(ctx, domain)
}

// Refresh always dials out, bypassing and then repopulating the cache.
func (f *TLSFetcher) Refresh(ctx context.Context, domain string) (*core.CertificateSnapshot, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, core.Validationf("domain must not be empty")
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timeout := f.settings.QueryTimeout(ctx)
	dialer := &net.Dialer{Timeout: timeout}

	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(domain, f.port), &tls.Config{
		// Metadata collection only; an invalid chain must still yield
		// a snapshot.
		InsecureSkipVerify: true,
		ServerName:         domain,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", domain, err)
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificate presented by %s", domain)
	}
	cert := certs[0]

	now := time.Now()
	days := core.DaysRemaining(cert.NotAfter, now)
	notBefore := cert.NotBefore
	notAfter := cert.NotAfter

	snap := &core.CertificateSnapshot{
		Domain:        domain,
		Issuer:        cert.Issuer.CommonName,
		Subject:       cert.Subject.CommonName,
		NotBefore:     &notBefore,
		NotAfter:      &notAfter,
		DaysRemaining: days,
		IsValid:       !now.Before(cert.NotBefore) && !now.After(cert.NotAfter),
		Status:        core.Classify(days),
		SerialNumber:  cert.SerialNumber.String(),
		Version:       cert.Version,
		SANDomains:    cert.DNSNames,
	}

	if f.cache != nil {
		f.cache.SetSnapshot(ctx, domain, snap)
	}
	return snap, nil
}

// BatchResult carries the outcome of an ad-hoc multi-domain check.
type BatchResult struct {
	Results []core.CertificateSnapshot
	Errors  []string
}

// FetchBatch checks several domains concurrently. The shared limiter
// still bounds the outbound connection rate. Failures are collected
// as "domain: reason" strings, never dropped.
func (f *TLSFetcher) FetchBatch(ctx context.Context, domains []string) BatchResult {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		br BatchResult
	)

	for _, domain := range domains {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()

			snap, err := f.Refresh(ctx, d)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				br.Errors = append(br.Errors, fmt.Sprintf("%s: %v", d, err))
				return
			}
			br.Results = append(br.Results, *snap)
		}(domain)
	}

	wg.Wait()
	return br
}
