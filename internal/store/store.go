// Package store persists evaluation history and the reference directory of
// companies and past acquisitions in SQLite.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

const lookupLimit = 10

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id                     TEXT PRIMARY KEY,
	company                TEXT NOT NULL,
	acquirer               TEXT NOT NULL DEFAULT '',
	decision               TEXT NOT NULL DEFAULT '',
	acquisition_score      REAL NOT NULL DEFAULT 0,
	mna_likelihood         REAL NOT NULL DEFAULT 0,
	valuation_forecast_usd REAL NOT NULL DEFAULT 0,
	combined_risk_score    REAL NOT NULL DEFAULT 0,
	degraded               INTEGER NOT NULL DEFAULT 0,
	created_at             TEXT NOT NULL,
	payload                TEXT NOT NULL DEFAULT '{}',
	report_markdown        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS companies (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	permalink         TEXT NOT NULL DEFAULT '',
	domain            TEXT NOT NULL DEFAULT '',
	category_code     TEXT NOT NULL DEFAULT '',
	funding_total_usd REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS acquisitions (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	acquirer_id         TEXT NOT NULL,
	acquired_id         TEXT NOT NULL,
	price_amount        REAL NOT NULL DEFAULT 0,
	price_currency_code TEXT NOT NULL DEFAULT 'USD',
	acquired_at         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_acquisitions_acquirer ON acquisitions(acquirer_id);
CREATE INDEX IF NOT EXISTS idx_companies_category ON companies(category_code);
`

type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the SQLite database at path. A single
// connection in WAL mode avoids writer contention.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Evaluation is one persisted pipeline run. Payload holds the full response
// envelope as JSON; the scalar columns exist for listing and filtering
// without deserializing it.
type Evaluation struct {
	ID                   string          `db:"id" json:"id"`
	Company              string          `db:"company" json:"company"`
	Acquirer             string          `db:"acquirer" json:"acquirer,omitempty"`
	Decision             string          `db:"decision" json:"decision"`
	AcquisitionScore     float64         `db:"acquisition_score" json:"acquisition_score"`
	MnaLikelihood        float64         `db:"mna_likelihood" json:"mna_likelihood"`
	ValuationForecastUSD float64         `db:"valuation_forecast_usd" json:"valuation_forecast_usd"`
	CombinedRiskScore    float64         `db:"combined_risk_score" json:"combined_risk_score"`
	Degraded             bool            `db:"degraded" json:"degraded"`
	CreatedAt            time.Time       `db:"-" json:"created_at"`
	CreatedAtRaw         string          `db:"created_at" json:"-"`
	Payload              json.RawMessage `db:"-" json:"-"`
	PayloadRaw           string          `db:"payload" json:"-"`
	ReportMarkdown       string          `db:"report_markdown" json:"-"`
}

// NewEvaluationID returns a fresh random identifier.
func NewEvaluationID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "eval-" + hex.EncodeToString(b)
}

func (s *Store) SaveEvaluation(ctx context.Context, e *Evaluation) error {
	if e.ID == "" {
		e.ID = NewEvaluationID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if len(e.Payload) == 0 {
		e.Payload = json.RawMessage("{}")
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO evaluations
		(id, company, acquirer, decision, acquisition_score, mna_likelihood,
		 valuation_forecast_usd, combined_risk_score, degraded, created_at, payload, report_markdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Company, e.Acquirer, e.Decision, e.AcquisitionScore, e.MnaLikelihood,
		e.ValuationForecastUSD, e.CombinedRiskScore, boolToInt(e.Degraded),
		e.CreatedAt.Format(time.RFC3339Nano), string(e.Payload), e.ReportMarkdown)
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	return nil
}

func (s *Store) GetEvaluation(ctx context.Context, id string) (*Evaluation, error) {
	var e Evaluation
	err := s.db.GetContext(ctx, &e, `SELECT id, company, acquirer, decision, acquisition_score,
		mna_likelihood, valuation_forecast_usd, combined_risk_score, degraded, created_at,
		payload, report_markdown
		FROM evaluations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, e.CreatedAtRaw)
	e.Payload = json.RawMessage(e.PayloadRaw)
	return &e, nil
}

// ListEvaluations returns the most recent runs, newest first.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Evaluation
	err := s.db.SelectContext(ctx, &out, `SELECT id, company, acquirer, decision,
		acquisition_score, mna_likelihood, valuation_forecast_usd, combined_risk_score,
		degraded, created_at, payload, report_markdown
		FROM evaluations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	for i := range out {
		out[i].CreatedAt, _ = time.Parse(time.RFC3339Nano, out[i].CreatedAtRaw)
		out[i].Payload = json.RawMessage(out[i].PayloadRaw)
	}
	return out, nil
}

type Company struct {
	ID              string  `db:"id" json:"id"`
	Name            string  `db:"name" json:"name"`
	Permalink       string  `db:"permalink" json:"permalink"`
	Domain          string  `db:"domain" json:"domain"`
	CategoryCode    string  `db:"category_code" json:"category_code"`
	FundingTotalUSD float64 `db:"funding_total_usd" json:"funding_total_usd"`
}

func (s *Store) UpsertCompany(ctx context.Context, c Company) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO companies
		(id, name, permalink, domain, category_code, funding_total_usd)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Permalink, c.Domain, c.CategoryCode, c.FundingTotalUSD)
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}

// FindCompetitors returns up to 10 directory companies competing with the
// named one: same category when industry is given, and never the company
// itself (matched by case-insensitive name containment).
func (s *Store) FindCompetitors(ctx context.Context, companyName, industry string) ([]Company, error) {
	var out []Company
	var err error
	pattern := "%" + companyName + "%"
	if industry != "" {
		err = s.db.SelectContext(ctx, &out, `SELECT id, name, permalink, domain, category_code, funding_total_usd
			FROM companies
			WHERE category_code = ? AND name NOT LIKE ? COLLATE NOCASE
			ORDER BY funding_total_usd DESC LIMIT ?`, industry, pattern, lookupLimit)
	} else {
		err = s.db.SelectContext(ctx, &out, `SELECT id, name, permalink, domain, category_code, funding_total_usd
			FROM companies
			WHERE name NOT LIKE ? COLLATE NOCASE
			ORDER BY funding_total_usd DESC LIMIT ?`, pattern, lookupLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("find competitors: %w", err)
	}
	return out, nil
}

// AcquisitionTarget is a past acquisition joined with the acquired company's
// directory entry.
type AcquisitionTarget struct {
	Name              string  `db:"name" json:"name"`
	Permalink         string  `db:"permalink" json:"permalink"`
	Domain            string  `db:"domain" json:"domain"`
	PriceAmount       float64 `db:"price_amount" json:"price_amount"`
	PriceCurrencyCode string  `db:"price_currency_code" json:"price_currency_code"`
	AcquiredAt        string  `db:"acquired_at" json:"acquired_at,omitempty"`
}

type Acquisition struct {
	AcquirerID        string  `db:"acquirer_id"`
	AcquiredID        string  `db:"acquired_id"`
	PriceAmount       float64 `db:"price_amount"`
	PriceCurrencyCode string  `db:"price_currency_code"`
	AcquiredAt        string  `db:"acquired_at"`
}

func (s *Store) InsertAcquisition(ctx context.Context, a Acquisition) error {
	if a.PriceCurrencyCode == "" {
		a.PriceCurrencyCode = "USD"
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO acquisitions
		(acquirer_id, acquired_id, price_amount, price_currency_code, acquired_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.AcquirerID, a.AcquiredID, a.PriceAmount, a.PriceCurrencyCode, a.AcquiredAt)
	if err != nil {
		return fmt.Errorf("insert acquisition: %w", err)
	}
	return nil
}

// FindAcquisitionTargets resolves the acquirer by fuzzy name match, then
// returns up to 10 of its past acquisitions with acquired-company details.
// An unknown acquirer yields an empty list, not an error.
func (s *Store) FindAcquisitionTargets(ctx context.Context, acquirerName string) ([]AcquisitionTarget, error) {
	var acquirerID string
	err := s.db.GetContext(ctx, &acquirerID, `SELECT id FROM companies
		WHERE name LIKE ? COLLATE NOCASE ORDER BY name LIMIT 1`, "%"+acquirerName+"%")
	if errors.Is(err, sql.ErrNoRows) {
		return []AcquisitionTarget{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve acquirer: %w", err)
	}

	var out []AcquisitionTarget
	err = s.db.SelectContext(ctx, &out, `SELECT c.name, c.permalink, c.domain,
		a.price_amount, a.price_currency_code, a.acquired_at
		FROM acquisitions a
		JOIN companies c ON c.id = a.acquired_id
		WHERE a.acquirer_id = ?
		ORDER BY a.id LIMIT ?`, acquirerID, lookupLimit)
	if err != nil {
		return nil, fmt.Errorf("find acquisition targets: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
