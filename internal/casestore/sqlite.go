package casestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

// SQLiteStore persists cases in a single table. Summary columns are kept
// alongside the JSON payloads so status filtering stays in SQL.
type SQLiteStore struct {
	db *sqlx.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cases (
	case_id             TEXT PRIMARY KEY,
	claim_type          TEXT NOT NULL,
	policy_number       TEXT NOT NULL DEFAULT '',
	success_probability REAL NOT NULL DEFAULT 0,
	estimated_payout    REAL NOT NULL DEFAULT 0,
	status              TEXT NOT NULL DEFAULT 'active',
	created_at          TEXT NOT NULL,
	updated_at          TEXT NOT NULL DEFAULT '',
	extracted_info      TEXT NOT NULL DEFAULT '{}',
	analysis            TEXT NOT NULL DEFAULT '{}',
	strategy            TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS cases_status ON cases (status);
`

type caseRow struct {
	CaseID             string  `db:"case_id"`
	ClaimType          string  `db:"claim_type"`
	PolicyNumber       string  `db:"policy_number"`
	SuccessProbability float64 `db:"success_probability"`
	EstimatedPayout    float64 `db:"estimated_payout"`
	Status             string  `db:"status"`
	CreatedAt          string  `db:"created_at"`
	UpdatedAt          string  `db:"updated_at"`
	ExtractedInfo      string  `db:"extracted_info"`
	Analysis           string  `db:"analysis"`
	Strategy           string  `db:"strategy"`
}

const selectCase = `SELECT case_id, claim_type, policy_number, success_probability, estimated_payout,
	status, created_at, updated_at, extracted_info, analysis, strategy FROM cases`

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Put(ctx context.Context, c claims.Case) error {
	row, err := toRow(c)
	if err != nil {
		return err
	}
	_, err = s.db.NamedExecContext(ctx, `INSERT OR REPLACE INTO cases (case_id, claim_type, policy_number,
		success_probability, estimated_payout, status, created_at, updated_at, extracted_info, analysis, strategy)
		VALUES (:case_id, :claim_type, :policy_number, :success_probability, :estimated_payout, :status,
		:created_at, :updated_at, :extracted_info, :analysis, :strategy)`, row)
	if err != nil {
		return fmt.Errorf("save case %s: %w", c.CaseID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (claims.Case, error) {
	var row caseRow
	if err := s.db.GetContext(ctx, &row, selectCase+" WHERE case_id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return claims.Case{}, ErrNotFound
		}
		return claims.Case{}, fmt.Errorf("load case %s: %w", id, err)
	}
	return fromRow(row)
}

func (s *SQLiteStore) List(ctx context.Context, status claims.CaseStatus) ([]claims.Case, error) {
	var rows []caseRow
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &rows, selectCase)
	} else {
		err = s.db.SelectContext(ctx, &rows, selectCase+" WHERE status = ?", string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	out := make([]claims.Case, 0, len(rows))
	for _, r := range rows {
		c, err := fromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortCases(out)
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cases WHERE case_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete case %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toRow(c claims.Case) (caseRow, error) {
	extracted, err := json.Marshal(c.ExtractedInfo)
	if err != nil {
		return caseRow{}, fmt.Errorf("encode extracted info: %w", err)
	}
	analysis, err := json.Marshal(c.Analysis)
	if err != nil {
		return caseRow{}, fmt.Errorf("encode analysis: %w", err)
	}
	strategy, err := json.Marshal(c.Strategy)
	if err != nil {
		return caseRow{}, fmt.Errorf("encode strategy: %w", err)
	}
	updated := ""
	if c.UpdatedAt != nil {
		updated = timeToString(*c.UpdatedAt)
	}
	return caseRow{
		CaseID:             c.CaseID,
		ClaimType:          string(c.ClaimType),
		PolicyNumber:       c.PolicyNumber,
		SuccessProbability: c.SuccessProbability,
		EstimatedPayout:    c.EstimatedPayout,
		Status:             string(c.Status),
		CreatedAt:          timeToString(c.CreatedAt),
		UpdatedAt:          updated,
		ExtractedInfo:      string(extracted),
		Analysis:           string(analysis),
		Strategy:           string(strategy),
	}, nil
}

func fromRow(r caseRow) (claims.Case, error) {
	c := claims.Case{
		CaseID:             r.CaseID,
		ClaimType:          claims.DocumentKind(r.ClaimType),
		PolicyNumber:       r.PolicyNumber,
		SuccessProbability: r.SuccessProbability,
		EstimatedPayout:    r.EstimatedPayout,
		Status:             claims.CaseStatus(r.Status),
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, r.CreatedAt)
	if r.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.UpdatedAt); err == nil {
			c.UpdatedAt = &t
		}
	}
	if err := json.Unmarshal([]byte(r.ExtractedInfo), &c.ExtractedInfo); err != nil {
		return claims.Case{}, fmt.Errorf("decode case %s extracted info: %w", r.CaseID, err)
	}
	if err := json.Unmarshal([]byte(r.Analysis), &c.Analysis); err != nil {
		return claims.Case{}, fmt.Errorf("decode case %s analysis: %w", r.CaseID, err)
	}
	if err := json.Unmarshal([]byte(r.Strategy), &c.Strategy); err != nil {
		return claims.Case{}, fmt.Errorf("decode case %s strategy: %w", r.CaseID, err)
	}
	return c, nil
}

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
