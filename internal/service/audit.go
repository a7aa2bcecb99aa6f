package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sheetproxy/internal/model"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// AuditLog records write requests forwarded upstream.
type AuditLog interface {
	Record(ctx context.Context, entry model.AuditEntry) error
	Close() error
}

type NopAuditLog struct{}

func (NopAuditLog) Record(context.Context, model.AuditEntry) error { return nil }
func (NopAuditLog) Close() error                                   { return nil }

const createAuditTable = `CREATE TABLE IF NOT EXISTS proxy_audit (
	id         UUID PRIMARY KEY,
	request_id TEXT NOT NULL,
	resource   TEXT NOT NULL,
	action     TEXT NOT NULL,
	success    BOOLEAN NOT NULL,
	message    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
)`

const insertAuditEntry = `INSERT INTO proxy_audit (id, request_id, resource, action, success, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type PostgresAuditLog struct {
	db *sql.DB
}

func NewPostgresAuditLog() *PostgresAuditLog {
	return &PostgresAuditLog{}
}

func (p *PostgresAuditLog) Connect(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	return p.attach(ctx, db)
}

// attach pings db and creates the audit table; db is closed on failure.
func (p *PostgresAuditLog) attach(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, createAuditTable); err != nil {
		db.Close()
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	p.db = db
	return nil
}

func (p *PostgresAuditLog) Record(ctx context.Context, entry model.AuditEntry) error {
	if p.db == nil {
		return fmt.Errorf("audit log is not connected")
	}
	entry = completeEntry(entry)

	_, err := p.db.ExecContext(ctx, insertAuditEntry,
		entry.ID, entry.RequestID, string(entry.Resource), entry.Action,
		entry.Success, entry.Message, entry.CreatedAt)
	return err
}

func (p *PostgresAuditLog) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func completeEntry(entry model.AuditEntry) model.AuditEntry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return entry
}
