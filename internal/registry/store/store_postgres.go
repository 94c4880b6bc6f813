package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"renterverify/internal/registry/ledger"
	"renterverify/internal/registry/models"
	"renterverify/pkg/platform/sentinel"
	txcontext "renterverify/pkg/platform/tx"
)

// registryLockKey is the pg_advisory_xact_lock key that serializes registry
// mutations across every process sharing the database.
const registryLockKey int64 = 0x52454e544552

const schema = `
CREATE TABLE IF NOT EXISTS registry_admin (
	id         BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
	admin      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS verified_renters (
	renter            TEXT PRIMARY KEY,
	business_name     TEXT NOT NULL CHECK (business_name <> ''),
	business_id       TEXT NOT NULL CHECK (business_id <> ''),
	is_verified       BOOLEAN NOT NULL DEFAULT FALSE,
	verification_date BIGINT NOT NULL DEFAULT 0,
	last_updated      BIGINT NOT NULL
);
`

// PostgresStore persists the registry in PostgreSQL. It implements
// ledger.Ledger; inside RunInTx every statement joins the open transaction.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the registry tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate registry schema: %w", err)
	}
	return nil
}

// EnsureAdmin installs admin as the initial administrator unless one is
// already recorded. An existing admin always wins over configuration.
func (s *PostgresStore) EnsureAdmin(ctx context.Context, admin models.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO registry_admin (id, admin) VALUES (TRUE, $1) ON CONFLICT (id) DO NOTHING`,
		admin.String(),
	)
	if err != nil {
		return fmt.Errorf("bootstrap registry admin: %w", err)
	}
	return nil
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(txCtx context.Context, l ledger.Ledger) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin registry tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if _, err = sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, registryLockKey); err != nil {
		return fmt.Errorf("lock registry: %w", err)
	}

	if err = fn(txcontext.WithTx(ctx, sqlTx), s); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit registry tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Admin(ctx context.Context) (models.Identity, error) {
	var admin string
	err := txcontext.QuerierFrom(ctx, s.db).
		QueryRowContext(ctx, `SELECT admin FROM registry_admin WHERE id = TRUE`).
		Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("registry admin is not configured")
	}
	if err != nil {
		return "", fmt.Errorf("load registry admin: %w", err)
	}
	return models.Identity(admin), nil
}

func (s *PostgresStore) PutAdmin(ctx context.Context, admin models.Identity) error {
	res, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx,
		`UPDATE registry_admin SET admin = $1, updated_at = now() WHERE id = TRUE`,
		admin.String(),
	)
	if err != nil {
		return fmt.Errorf("update registry admin: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New("registry admin is not configured")
	}
	return nil
}

func (s *PostgresStore) Record(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	var (
		record           models.VerificationRecord
		verificationDate int64
		lastUpdated      int64
	)
	err := txcontext.QuerierFrom(ctx, s.db).QueryRowContext(ctx, `
		SELECT business_name, business_id, is_verified, verification_date, last_updated
		FROM verified_renters
		WHERE renter = $1`,
		renter.String(),
	).Scan(&record.BusinessName, &record.BusinessID, &record.IsVerified, &verificationDate, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find verification record: %w", err)
	}
	record.VerificationDate = models.Ordinal(verificationDate)
	record.LastUpdated = models.Ordinal(lastUpdated)
	return &record, nil
}

func (s *PostgresStore) PutRecord(ctx context.Context, renter models.Identity, record models.VerificationRecord) error {
	_, err := txcontext.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO verified_renters (renter, business_name, business_id, is_verified, verification_date, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (renter) DO UPDATE SET
			business_name     = EXCLUDED.business_name,
			business_id       = EXCLUDED.business_id,
			is_verified       = EXCLUDED.is_verified,
			verification_date = EXCLUDED.verification_date,
			last_updated      = EXCLUDED.last_updated`,
		renter.String(),
		record.BusinessName,
		record.BusinessID,
		record.IsVerified,
		int64(record.VerificationDate),
		int64(record.LastUpdated),
	)
	if err != nil {
		return fmt.Errorf("save verification record: %w", err)
	}
	return nil
}

// FindRecord reads a record outside any transaction.
func (s *PostgresStore) FindRecord(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error) {
	return s.Record(ctx, renter)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
