package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/certwatch-io/certwatch/internal/core"
)

type Repository struct {
	db *sqlx.DB
}

func NewConnection(databaseURL string, maxConns, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Watched domain operations

func (r *Repository) CreateWatched(ctx context.Context, domain, nickname string, notifyThreshold int) (int64, error) {
	var id int64
	query := `
        INSERT INTO watched_domains (domain, nickname, notify_threshold)
        VALUES ($1, $2, $3)
        RETURNING id`

	err := r.db.GetContext(ctx, &id, query, domain, nickname, notifyThreshold)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, core.ErrDuplicate
		}
		return 0, fmt.Errorf("insert watched domain: %w", err)
	}
	return id, nil
}

func (r *Repository) ListWatched(ctx context.Context) ([]core.WatchedDomain, error) {
	records := []core.WatchedDomain{}
	query := `
        SELECT id, domain, COALESCE(nickname, '') AS nickname,
               notify_enabled, notify_threshold, is_manual,
               manual_start_date, manual_expire_date,
               last_check_time, added_time
        FROM watched_domains
        ORDER BY added_time, id`

	err := r.db.SelectContext(ctx, &records, query)
	return records, err
}

func (r *Repository) DeleteWatched(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM watched_domains WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete watched domain: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) UpdateNickname(ctx context.Context, id int64, nickname string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE watched_domains SET nickname = $1 WHERE id = $2`, nickname, id)
	if err != nil {
		return fmt.Errorf("update nickname: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) UpdateNotifySettings(ctx context.Context, id int64, enabled bool, threshold int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE watched_domains SET notify_enabled = $1, notify_threshold = $2 WHERE id = $3`,
		enabled, threshold, id)
	if err != nil {
		return fmt.Errorf("update notify settings: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) UpdateLastCheck(ctx context.Context, id int64, checkedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE watched_domains SET last_check_time = $1 WHERE id = $2`, checkedAt, id)
	if err != nil {
		return fmt.Errorf("update last check time: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) SetManual(ctx context.Context, id int64, startDate *time.Time, expireDate time.Time) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE watched_domains
        SET is_manual = TRUE, manual_start_date = $1, manual_expire_date = $2
        WHERE id = $3`,
		startDate, expireDate, id)
	if err != nil {
		return fmt.Errorf("set manual mode: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) ClearManual(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE watched_domains
        SET is_manual = FALSE, manual_start_date = NULL, manual_expire_date = NULL
        WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("clear manual mode: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Certificate history operations

type historyRow struct {
	ID            int64          `db:"id"`
	Domain        string         `db:"domain"`
	Issuer        string         `db:"issuer"`
	Subject       string         `db:"subject"`
	NotBefore     *time.Time     `db:"not_before"`
	NotAfter      *time.Time     `db:"not_after"`
	DaysRemaining int            `db:"days_remaining"`
	IsValid       bool           `db:"is_valid"`
	Status        string         `db:"status"`
	SerialNumber  string         `db:"serial_number"`
	Version       int            `db:"version"`
	SANDomains    pq.StringArray `db:"san_domains"`
	QueryTime     time.Time      `db:"query_time"`
}

func (r *Repository) SaveCertificate(ctx context.Context, snap *core.CertificateSnapshot) error {
	query := `
        INSERT INTO cert_history (
            domain, issuer, subject, not_before, not_after,
            days_remaining, is_valid, status, serial_number, version, san_domains
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		snap.Domain, snap.Issuer, snap.Subject, snap.NotBefore, snap.NotAfter,
		snap.DaysRemaining, snap.IsValid, string(snap.Status),
		snap.SerialNumber, snap.Version, pq.StringArray(snap.SANDomains))
	if err != nil {
		return fmt.Errorf("save certificate history: %w", err)
	}
	return nil
}

func (r *Repository) ListHistory(ctx context.Context, limit int) ([]core.CertificateSnapshot, error) {
	rows := []historyRow{}
	query := `
        SELECT id, domain, COALESCE(issuer,'') AS issuer, COALESCE(subject,'') AS subject,
               not_before, not_after, days_remaining, is_valid, status,
               COALESCE(serial_number,'') AS serial_number, version, san_domains, query_time
        FROM cert_history
        ORDER BY query_time DESC
        LIMIT $1`

	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, err
	}

	snaps := make([]core.CertificateSnapshot, 0, len(rows))
	for _, row := range rows {
		queryTime := row.QueryTime
		snaps = append(snaps, core.CertificateSnapshot{
			Domain:        row.Domain,
			Issuer:        row.Issuer,
			Subject:       row.Subject,
			NotBefore:     row.NotBefore,
			NotAfter:      row.NotAfter,
			DaysRemaining: row.DaysRemaining,
			IsValid:       row.IsValid,
			Status:        core.Status(row.Status),
			SerialNumber:  row.SerialNumber,
			Version:       row.Version,
			SANDomains:    []string(row.SANDomains),
			QueryTime:     &queryTime,
		})
	}
	return snaps, nil
}

func (r *Repository) ClearHistory(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cert_history`)
	return err
}

func (r *Repository) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cert_history WHERE query_time < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Settings operations

func (r *Repository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO settings (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (r *Repository) AllSettings(ctx context.Context) (map[string]string, error) {
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM settings`); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
