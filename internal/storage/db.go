package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/kafuicharbeleklu/SmartProcure/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS analyses (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  date TEXT NOT NULL,
  needsSummary TEXT,
  marketAnalysis TEXT,
  bestOption TEXT NOT NULL,
  offersJson TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  winningSupplier TEXT,
  evaluationJson TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);

CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  nameKey TEXT NOT NULL UNIQUE,
  nif TEXT,
  category TEXT NOT NULL DEFAULT 'Général',
  email TEXT,
  phone TEXT,
  address TEXT,
  rating REAL NOT NULL DEFAULT 3,
  ratingCount INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  lastActiveDate TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  sender TEXT,
  subject TEXT,
  receivedAt TEXT,
  filename TEXT NOT NULL,
  mediaType TEXT NOT NULL,
  hash TEXT NOT NULL UNIQUE,
  path TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'new',
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) InsertAnalysis(result internal.AnalysisResult) error {
	offersJSON, err := json.Marshal(result.Offers)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`
INSERT INTO analyses (id, title, date, needsSummary, marketAnalysis, bestOption, offersJson, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, result.ID, result.Title, result.Date, result.NeedsSummary, result.MarketAnalysis, result.BestOption, string(offersJSON), string(internal.StatusPending))
	return err
}

func (d *DB) GetAnalysis(id string) (*internal.AnalysisResult, error) {
	row := d.conn.QueryRow(`
SELECT id, title, date, needsSummary, marketAnalysis, bestOption, offersJson, status, winningSupplier, evaluationJson
FROM analyses WHERE id = ?
`, id)
	result, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *DB) ListAnalyses() ([]internal.AnalysisResult, error) {
	rows, err := d.conn.Query(`
SELECT id, title, date, needsSummary, marketAnalysis, bestOption, offersJson, status, winningSupplier, evaluationJson
FROM analyses ORDER BY createdAt DESC, id DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.AnalysisResult
	for rows.Next() {
		result, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *result)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (*internal.AnalysisResult, error) {
	var result internal.AnalysisResult
	var offersJSON string
	var status string
	var winningSupplier, evaluationJSON sql.NullString

	if err := row.Scan(
		&result.ID, &result.Title, &result.Date, &result.NeedsSummary, &result.MarketAnalysis,
		&result.BestOption, &offersJSON, &status, &winningSupplier, &evaluationJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(offersJSON), &result.Offers); err != nil {
		return nil, fmt.Errorf("decode offers for analysis %s: %w", result.ID, err)
	}
	result.Status = internal.AnalysisStatus(status)
	if winningSupplier.Valid {
		result.WinningSupplier = winningSupplier.String
	}
	if evaluationJSON.Valid && evaluationJSON.String != "" {
		var eval internal.SupplierEvaluation
		if err := json.Unmarshal([]byte(evaluationJSON.String), &eval); err == nil {
			result.Evaluation = &eval
		}
	}
	return &result, nil
}

// ErrAlreadyClosed is returned when a closure is attempted twice; an
// AnalysisResult is mutated exactly once.
var ErrAlreadyClosed = errors.New("storage: analysis already closed")

// CloseAnalysis records the human decision: winning supplier, evaluation,
// completed status. The supplier's running rating absorbs the evaluation's
// global score.
func (d *DB) CloseAnalysis(id string, eval internal.SupplierEvaluation) error {
	evalJSON, err := json.Marshal(eval)
	if err != nil {
		return err
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
UPDATE analyses SET status = ?, winningSupplier = ?, evaluationJson = ?
WHERE id = ? AND status = ?
`, string(internal.StatusCompleted), eval.SupplierName, string(evalJSON), id, string(internal.StatusPending))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := d.GetAnalysis(id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("analysis not found: %s", id)
		}
		return ErrAlreadyClosed
	}

	if _, err := tx.Exec(`
UPDATE suppliers SET
  rating = (rating * ratingCount + ?) / (ratingCount + 1),
  ratingCount = ratingCount + 1,
  updatedAt = CURRENT_TIMESTAMP
WHERE nameKey = ?
`, eval.GlobalScore, nameKey(eval.SupplierName)); err != nil {
		return err
	}

	return tx.Commit()
}

// RegisterSuppliers adds any supplier from the offer list that is not yet
// known, carrying over the contact details the extraction found. Existing
// suppliers only get their activity date refreshed.
func (d *DB) RegisterSuppliers(offers []internal.Offer, date string, newID func() string) (int, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	added := 0
	for _, offer := range offers {
		key := nameKey(offer.SupplierName)
		if key == "" {
			continue
		}
		var existingID string
		err := tx.QueryRow(`SELECT id FROM suppliers WHERE nameKey = ?`, key).Scan(&existingID)
		if err == nil {
			if _, err := tx.Exec(`UPDATE suppliers SET lastActiveDate = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, date, existingID); err != nil {
				return added, err
			}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return added, err
		}

		if _, err := tx.Exec(`
INSERT INTO suppliers (id, name, nameKey, nif, category, email, phone, address, rating, ratingCount, status, lastActiveDate)
VALUES (?, ?, ?, ?, 'Général', ?, ?, ?, 3, 0, 'active', ?)
`, newID(), offer.SupplierName, key, offer.TaxID, offer.Email, offer.Phone, offer.Address, date); err != nil {
			return added, err
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return added, err
	}
	return added, nil
}

func (d *DB) ListSuppliers() ([]internal.Supplier, error) {
	rows, err := d.conn.Query(`
SELECT id, name, nif, category, email, phone, address, rating, ratingCount, status, lastActiveDate
FROM suppliers ORDER BY name COLLATE NOCASE ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (d *DB) GetSupplierByName(name string) (*internal.Supplier, error) {
	row := d.conn.QueryRow(`
SELECT id, name, nif, category, email, phone, address, rating, ratingCount, status, lastActiveDate
FROM suppliers WHERE nameKey = ?
`, nameKey(name))
	s, err := scanSupplier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSupplier(row rowScanner) (internal.Supplier, error) {
	var s internal.Supplier
	var nif, email, phone, address, lastActive sql.NullString
	var status string
	if err := row.Scan(&s.ID, &s.Name, &nif, &s.Category, &email, &phone, &address, &s.Rating, &s.RatingCount, &status, &lastActive); err != nil {
		return internal.Supplier{}, err
	}
	s.TaxID = nif.String
	s.Email = email.String
	s.Phone = phone.String
	s.Address = address.String
	s.LastActiveDate = lastActive.String
	s.Status = internal.SupplierStatus(status)
	return s, nil
}

func (d *DB) InsertSupplier(s internal.Supplier) error {
	_, err := d.conn.Exec(`
INSERT INTO suppliers (id, name, nameKey, nif, category, email, phone, address, rating, ratingCount, status, lastActiveDate)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.Name, nameKey(s.Name), s.TaxID, s.Category, s.Email, s.Phone, s.Address, s.Rating, s.RatingCount, string(s.Status), s.LastActiveDate)
	return err
}

func (d *DB) UpdateSupplier(s internal.Supplier) error {
	res, err := d.conn.Exec(`
UPDATE suppliers SET name = ?, nameKey = ?, nif = ?, category = ?, email = ?, phone = ?, address = ?,
  rating = ?, ratingCount = ?, status = ?, lastActiveDate = ?, updatedAt = CURRENT_TIMESTAMP
WHERE id = ?
`, s.Name, nameKey(s.Name), s.TaxID, s.Category, s.Email, s.Phone, s.Address, s.Rating, s.RatingCount, string(s.Status), s.LastActiveDate, s.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("supplier not found: %s", s.ID)
	}
	return nil
}

func (d *DB) DeleteSupplier(id string) error {
	_, err := d.conn.Exec(`DELETE FROM suppliers WHERE id = ?`, id)
	return err
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

const settingsKey = "settings"

// GetSettings reads the settings blob, falling back to defaults when the
// blob is missing or unparsable.
func (d *DB) GetSettings(defaults internal.Settings) (internal.Settings, error) {
	value, err := d.GetMetadata(settingsKey)
	if err != nil {
		return defaults, err
	}
	if value == nil {
		return defaults, nil
	}
	var s internal.Settings
	if err := json.Unmarshal([]byte(*value), &s); err != nil {
		return defaults, nil
	}
	return s, nil
}

func (d *DB) SaveSettings(s internal.Settings) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return d.SetMetadata(settingsKey, string(blob))
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) InsertDocument(doc internal.DocumentRow) (int64, error) {
	res, err := d.conn.Exec(`
INSERT INTO documents (provider, messageId, sender, subject, receivedAt, filename, mediaType, hash, path, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(hash) DO NOTHING
`, doc.Provider, doc.MessageID, doc.Sender, doc.Subject, doc.ReceivedAt, doc.Filename, doc.MediaType, doc.Hash, doc.Path, string(internal.DocumentNew))
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	// a duplicate hash is a silent no-op, not a new row
	if affected == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

func (d *DB) ListDocumentsByStatus(status internal.DocumentStatus, limit int) ([]internal.DocumentRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, sender, subject, receivedAt, filename, mediaType, hash, path, status
FROM documents WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.DocumentRow
	for rows.Next() {
		var doc internal.DocumentRow
		var sender, subject, receivedAt sql.NullString
		var statusStr string
		if err := rows.Scan(&doc.ID, &doc.Provider, &doc.MessageID, &sender, &subject, &receivedAt, &doc.Filename, &doc.MediaType, &doc.Hash, &doc.Path, &statusStr); err != nil {
			return nil, err
		}
		doc.Sender = sender.String
		doc.Subject = subject.String
		doc.ReceivedAt = receivedAt.String
		doc.Status = internal.DocumentStatus(statusStr)
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (d *DB) UpdateDocumentStatus(id int, status internal.DocumentStatus) error {
	_, err := d.conn.Exec(`UPDATE documents SET status = ? WHERE id = ?`, string(status), id)
	return err
}
