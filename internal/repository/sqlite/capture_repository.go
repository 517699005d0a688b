package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tryon/internal/dto"
	"tryon/internal/model"
	"tryon/internal/repository"
)

const captureColumns = `id, filename, product_id, session_id, timestamp, filepath, filesize, content_type`

// CaptureRepository implements repository.CaptureRepository for SQLite.
type CaptureRepository struct {
	db *DB
}

// NewCaptureRepository creates a new SQLite capture repository.
func NewCaptureRepository(db *DB) *CaptureRepository {
	return &CaptureRepository{db: db}
}

var _ repository.CaptureRepository = (*CaptureRepository)(nil)

// Insert adds a new capture record to the database.
func (r *CaptureRepository) Insert(c *model.Capture) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO captures (filename, product_id, session_id, timestamp, filepath, filesize, content_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.Filename, c.ProductID, c.SessionID, c.Timestamp, c.FilePath, c.FileSize, c.ContentType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert capture: %w", err)
	}

	return result.LastInsertId()
}

// GetByID retrieves a capture by its ID.
func (r *CaptureRepository) GetByID(id int64) (*model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`SELECT `+captureColumns+` FROM captures WHERE id = ?`, id)
	return scanCapture(row)
}

// GetByFilename retrieves a capture by its filename.
func (r *CaptureRepository) GetByFilename(filename string) (*model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	row := r.db.Conn().QueryRow(`SELECT `+captureColumns+` FROM captures WHERE filename = ?`, filename)
	return scanCapture(row)
}

// GetAll retrieves captures based on filter criteria, newest first.
func (r *CaptureRepository) GetAll(filter *dto.CaptureFilters) ([]model.Capture, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)
	query := `SELECT ` + captureColumns + ` FROM captures` + where + ` ORDER BY timestamp DESC, id DESC`

	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captures: %w", err)
	}
	defer rows.Close()

	var captures []model.Capture
	for rows.Next() {
		var c model.Capture
		if err := rows.Scan(&c.ID, &c.Filename, &c.ProductID, &c.SessionID, &c.Timestamp, &c.FilePath, &c.FileSize, &c.ContentType); err != nil {
			return nil, fmt.Errorf("failed to scan capture: %w", err)
		}
		captures = append(captures, c)
	}

	return captures, rows.Err()
}

// GetTotalCount returns the total count of captures matching the filter.
func (r *CaptureRepository) GetTotalCount(filter *dto.CaptureFilters) (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	where, args := buildWhere(filter)

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM captures`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count captures: %w", err)
	}

	return count, nil
}

// Delete removes a capture record by ID.
func (r *CaptureRepository) Delete(id int64) error {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`DELETE FROM captures WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete capture: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteAll removes every capture record.
func (r *CaptureRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec(`DELETE FROM captures`); err != nil {
		return fmt.Errorf("failed to clear captures: %w", err)
	}
	return nil
}

func scanCapture(row *sql.Row) (*model.Capture, error) {
	var c model.Capture
	err := row.Scan(&c.ID, &c.Filename, &c.ProductID, &c.SessionID, &c.Timestamp, &c.FilePath, &c.FileSize, &c.ContentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capture: %w", err)
	}
	return &c, nil
}

func buildWhere(filter *dto.CaptureFilters) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var clauses []string
	var args []interface{}

	if filter.ProductID > 0 {
		clauses = append(clauses, "product_id = ?")
		args = append(args, filter.ProductID)
	}

	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}

	if !filter.DateAfter.IsZero() {
		clauses = append(clauses, "DATE(timestamp) >= DATE(?)")
		args = append(args, filter.DateAfter)
	}

	if !filter.DateBefore.IsZero() {
		clauses = append(clauses, "DATE(timestamp) <= DATE(?)")
		args = append(args, filter.DateBefore)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
