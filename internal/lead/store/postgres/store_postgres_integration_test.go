//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"leadgate/internal/lead/models"
	"leadgate/internal/lead/store/postgres"
	"leadgate/internal/platform/database"
	"leadgate/pkg/platform/sentinel"
	"leadgate/pkg/requestcontext"
	"leadgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(database.Migrate(s.pg.DSN, database.DirectionUp))
	s.store = postgres.New(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE contacts`)
	s.Require().NoError(err)
}

func phoneLead(ip string) models.NormalizedSubmission {
	phone := "+34 600 123 456"
	return models.NormalizedSubmission{
		Name:      "Bo",
		Company:   "Acme",
		TeamSize:  40,
		Phone:     &phone,
		IPAddress: ip,
	}
}

func (s *PostgresStoreSuite) TestInsertThenCount() {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	rec, err := s.store.Insert(ctx, phoneLead("203.0.113.5"))
	s.Require().NoError(err)
	s.Equal(now, rec.CreatedAt)

	var (
		email    *string
		phone    *string
		teamSize int
	)
	err = s.pg.DB.QueryRow(`SELECT email, phone, team_size FROM contacts WHERE id = $1`, rec.ID).Scan(&email, &phone, &teamSize)
	s.Require().NoError(err)
	s.Nil(email)
	s.Require().NotNil(phone)
	s.Equal("+34 600 123 456", *phone)
	s.Equal(40, teamSize)

	n, err := s.store.Count(ctx, "203.0.113.5")
	s.Require().NoError(err)
	s.Equal(1, n)

	n, err = s.store.Count(ctx, "198.51.100.1")
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *PostgresStoreSuite) TestSchemaRejectsBothContacts() {
	sub := phoneLead("203.0.113.5")
	email := "bo@acme.com"
	sub.Email = &email

	_, err := s.store.Insert(context.Background(), sub)
	s.ErrorIs(err, sentinel.ErrInvalidRecord)
}

func (s *PostgresStoreSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}
