package repository

import (
	"database/sql"
	"errors"

	"github.com/Shweta-Mathanker/womanSafetyDTI/models"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
)

// ErrNotFound is returned when no marker lies within tolerance of the
// requested coordinates.
var ErrNotFound = errors.New("marker not found")

type MarkersRepository struct {
	db *sql.DB
}

func NewMarkersRepository(db *sql.DB) *MarkersRepository {
	return &MarkersRepository{db: db}
}

// Create stores a new marker and returns it with its assigned id and
// creation time.
func (r *MarkersRepository) Create(at geo.Point, description string) (models.Marker, error) {
	var m models.Marker
	err := r.db.QueryRow(`
		INSERT INTO markers (latitude, longitude, description)
		VALUES ($1, $2, $3)
		RETURNING id, latitude, longitude, description, created_at
	`, at.Latitude, at.Longitude, description).Scan(
		&m.ID, &m.Latitude, &m.Longitude, &m.Description, &m.CreatedAt,
	)
	return m, err
}

// ListAll returns every marker, newest first.
func (r *MarkersRepository) ListAll() ([]models.Marker, error) {
	rows, err := r.db.Query(`
		SELECT id, latitude, longitude, description, created_at
		FROM markers
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []models.Marker
	for rows.Next() {
		var m models.Marker
		if err := rows.Scan(&m.ID, &m.Latitude, &m.Longitude, &m.Description, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// DeleteByApproxCoordinates removes the newest marker whose coordinates both
// lie within tol degrees of at, returning the removed marker. ErrNotFound is
// returned when nothing matches.
func (r *MarkersRepository) DeleteByApproxCoordinates(at geo.Point, tol float64) (models.Marker, error) {
	var m models.Marker
	err := r.db.QueryRow(`
		DELETE FROM markers
		WHERE id = (
			SELECT id FROM markers
			WHERE ABS(latitude - $1) <= $3 AND ABS(longitude - $2) <= $3
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id, latitude, longitude, description, created_at
	`, at.Latitude, at.Longitude, geo.SQLTolerance(tol)).Scan(
		&m.ID, &m.Latitude, &m.Longitude, &m.Description, &m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Marker{}, ErrNotFound
	}
	return m, err
}
