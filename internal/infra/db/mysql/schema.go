package mysql

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessment_records (
  id              VARCHAR(64)  NOT NULL PRIMARY KEY,
  tenant_id       VARCHAR(64)  NOT NULL,
  user_id         VARCHAR(64)  NOT NULL,
  assessment_type VARCHAR(128) NOT NULL,
  record_json     JSON         NOT NULL,
  status          VARCHAR(32)  NOT NULL,
  client_ip       VARCHAR(64)  NOT NULL DEFAULT '',
  user_agent      VARCHAR(512) NOT NULL DEFAULT '',
  created_at      DATETIME(6)  NOT NULL,
  KEY idx_assessment_latest (tenant_id, user_id, assessment_type, created_at),
  KEY idx_assessment_created (tenant_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// EnsureSchema creates the assessment table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
