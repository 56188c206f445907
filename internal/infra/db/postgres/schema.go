package postgres

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessment_records (
  id              TEXT        PRIMARY KEY,
  tenant_id       TEXT        NOT NULL,
  user_id         TEXT        NOT NULL,
  assessment_type TEXT        NOT NULL,
  record_json     JSONB       NOT NULL,
  status          TEXT        NOT NULL,
  client_ip       TEXT        NOT NULL DEFAULT '',
  user_agent      TEXT        NOT NULL DEFAULT '',
  created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessment_latest ON assessment_records (tenant_id, user_id, assessment_type, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessment_created ON assessment_records (tenant_id, created_at);`

// EnsureSchema creates the assessment table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
