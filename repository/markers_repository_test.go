package repository

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
)

// MarkersRepositorySuite runs against a real Postgres instance and is skipped
// when DATABASE_URL is not set.
type MarkersRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo *MarkersRepository
}

func (s *MarkersRepositorySuite) SetupSuite() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		s.T().Skip("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(db.Ping())
	s.db = db

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS markers (
			id SERIAL PRIMARY KEY,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	s.Require().NoError(err)
	s.repo = NewMarkersRepository(db)
}

func (s *MarkersRepositorySuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *MarkersRepositorySuite) SetupTest() {
	_, err := s.db.Exec("TRUNCATE markers RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *MarkersRepositorySuite) TestCreateAndListNewestFirst() {
	first, err := s.repo.Create(geo.Point{Latitude: 12.9716, Longitude: 77.5946}, "dark alley")
	s.Require().NoError(err)
	s.True(first.ID > 0)
	s.Equal("dark alley", first.Description)
	s.False(first.CreatedAt.IsZero())

	second, err := s.repo.Create(geo.Point{Latitude: 13.0827, Longitude: 80.2707}, "")
	s.Require().NoError(err)

	all, err := s.repo.ListAll()
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.ID, all[0].ID)
	s.Equal(first.ID, all[1].ID)
}

func (s *MarkersRepositorySuite) TestDeleteWithinTolerance() {
	created, err := s.repo.Create(geo.Point{Latitude: 12.9716, Longitude: 77.5946}, "")
	s.Require().NoError(err)

	removed, err := s.repo.DeleteByApproxCoordinates(
		geo.Point{Latitude: 12.97161, Longitude: 77.59461}, geo.DefaultTolerance)
	s.Require().NoError(err)
	s.Equal(created.ID, removed.ID)

	all, err := s.repo.ListAll()
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *MarkersRepositorySuite) TestDeleteOutsideToleranceNotFound() {
	_, err := s.repo.Create(geo.Point{Latitude: 12.9716, Longitude: 77.5946}, "")
	s.Require().NoError(err)

	_, err = s.repo.DeleteByApproxCoordinates(
		geo.Point{Latitude: 12.9800, Longitude: 77.6000}, geo.DefaultTolerance)
	s.ErrorIs(err, ErrNotFound)

	all, err := s.repo.ListAll()
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *MarkersRepositorySuite) TestDeleteMatchesNewestWhenStacked() {
	at := geo.Point{Latitude: 12.9716, Longitude: 77.5946}
	_, err := s.repo.Create(at, "older")
	s.Require().NoError(err)
	newest, err := s.repo.Create(at, "newer")
	s.Require().NoError(err)

	removed, err := s.repo.DeleteByApproxCoordinates(at, geo.DefaultTolerance)
	s.Require().NoError(err)
	s.Equal(newest.ID, removed.ID)
}

func TestMarkersRepositorySuite(t *testing.T) {
	suite.Run(t, new(MarkersRepositorySuite))
}
