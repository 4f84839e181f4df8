package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// PurchaseRecord is one committed purchase. Rows whose PublishedAt is null
// are the outbox: the poller publishes them and marks them published.
type PurchaseRecord struct {
	SessionID   string
	UserID      int64
	Username    string
	Amount      float64
	LeadIDs     []int64
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type RepoInterface interface {
	Close() error
	RunMigrations(*Credentials) error
	RecordPurchase(ctx context.Context, rec *PurchaseRecord) error
	GetUnpublished(ctx context.Context, limit int) ([]*PurchaseRecord, error)
	MarkPublished(ctx context.Context, sessionID string) error
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// RecordPurchase inserts one row per payment session. Replays are dropped
// by the primary key, keeping the ledger idempotent with the marker.
func (r *Repository) RecordPurchase(ctx context.Context, rec *PurchaseRecord) error {
	leadIDs, err := json.Marshal(rec.LeadIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal lead ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO purchases (session_id, user_id, username, amount, lead_ids)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO NOTHING`,
		rec.SessionID, rec.UserID, rec.Username, rec.Amount, leadIDs)
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}
	return nil
}

func (r *Repository) GetUnpublished(ctx context.Context, limit int) ([]*PurchaseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, user_id, username, amount, lead_ids, created_at
		FROM purchases
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpublished purchases: %w", err)
	}
	defer rows.Close()

	var records []*PurchaseRecord
	for rows.Next() {
		var rec PurchaseRecord
		var leadIDs []byte
		if err := rows.Scan(&rec.SessionID, &rec.UserID, &rec.Username, &rec.Amount, &leadIDs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase row: %w", err)
		}
		if err := json.Unmarshal(leadIDs, &rec.LeadIDs); err != nil {
			return nil, fmt.Errorf("corrupt lead ids for session %s: %w", rec.SessionID, err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *Repository) MarkPublished(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET published_at = now() WHERE session_id = $1`,
		sessionID)
	if err != nil {
		return fmt.Errorf("failed to mark purchase published: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
