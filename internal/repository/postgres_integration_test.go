//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/pagination"
	"github.com/movementpass/public-api/internal/persistence"
	"github.com/movementpass/public-api/internal/repository"
)

// Run with: go test -tags=integration ./internal/repository/...
type PostgresStoreSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	pool       *pgxpool.Pool
	passes     repository.PassRepository
	applicants repository.ApplicantRepository
	base       time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("passes"),
		postgres.WithUsername("passes"),
		postgres.WithPassword("passes"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.Require().NoError(persistence.RunMigrations(ctx, s.pool, "../../migrations", zap.NewNop()))

	s.passes = repository.NewPassRepository(s.pool)
	s.applicants = repository.NewApplicantRepository(s.pool)
	s.base = time.Date(2021, 4, 20, 10, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE passes, applicants`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) register(id string) {
	err := s.applicants.Register(context.Background(), &domain.Applicant{
		ID:          id,
		Name:        "Applicant " + id,
		DateOfBirth: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		District:    1047,
		Thana:       10234,
		Gender:      "F",
		IDType:      "NID",
		IDNumber:    "1234567890",
		Photo:       "https://photos.example.com/" + id + ".png",
		CreatedAt:   s.base,
	})
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newPass(id, owner string, end time.Duration) *domain.Pass {
	vehicle := "Dhaka Metro 1-23-4567"
	return &domain.Pass{
		ID:             id,
		ApplicantID:    owner,
		FromLocation:   "Mirpur",
		ToLocation:     "Motijheel",
		District:       1047,
		Thana:          10234,
		StartAt:        s.base,
		EndAt:          s.base.Add(time.Minute + end),
		Type:           "R",
		Reason:         "Hospital visit",
		IncludeVehicle: true,
		VehicleNo:      &vehicle,
		SelfDriven:     true,
		Status:         domain.PassStatusApplied,
		CreatedAt:      s.base,
	}
}

func (s *PostgresStoreSuite) appliedCount(id string) int {
	a, err := s.applicants.FindByID(context.Background(), id)
	s.Require().NoError(err)
	s.Require().NotNil(a)
	return a.AppliedCount
}

func (s *PostgresStoreSuite) TestCreateRollsBackWithoutApplicant() {
	ctx := context.Background()

	_, err := s.passes.Create(ctx, s.newPass("orphan", "01799999999", time.Hour))
	s.Require().ErrorIs(err, repository.ErrApplicantNotFound)

	var count int
	s.Require().NoError(s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM passes`).Scan(&count))
	s.Equal(0, count)
}

func (s *PostgresStoreSuite) TestCreateRollsBackOnDuplicatePass() {
	ctx := context.Background()
	s.register("01711111111")

	_, err := s.passes.Create(ctx, s.newPass("p1", "01711111111", time.Hour))
	s.Require().NoError(err)
	_, err = s.passes.Create(ctx, s.newPass("p1", "01711111111", 2*time.Hour))
	s.Require().ErrorIs(err, repository.ErrConflict)

	s.Equal(1, s.appliedCount("01711111111"))
}

func (s *PostgresStoreSuite) TestGetOwnedRoundTrip() {
	ctx := context.Background()
	s.register("01711111111")
	s.register("01822222222")

	want := s.newPass("p1", "01711111111", time.Hour)
	_, err := s.passes.Create(ctx, want)
	s.Require().NoError(err)

	got, err := s.passes.GetOwned(ctx, "p1", "01711111111")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(*want.VehicleNo, *got.VehicleNo)
	s.Nil(got.DriverName)
	s.True(want.EndAt.Equal(got.EndAt))

	foreign, err := s.passes.GetOwned(ctx, "p1", "01822222222")
	s.Require().NoError(err)
	s.Nil(foreign)
}

func (s *PostgresStoreSuite) TestQueryOwnedWalk() {
	ctx := context.Background()
	s.register("01711111111")
	s.register("01822222222")

	total := pagination.DefaultPageSize + 7
	for i := 0; i < total; i++ {
		_, err := s.passes.Create(ctx, s.newPass(fmt.Sprintf("p%03d", i), "01711111111", time.Duration(i/3)*time.Hour))
		s.Require().NoError(err)
	}
	_, err := s.passes.Create(ctx, s.newPass("foreign", "01822222222", time.Hour))
	s.Require().NoError(err)

	seen := map[string]bool{}
	var cursor *pagination.Cursor
	var last *domain.Pass
	for {
		page, next, err := s.passes.QueryOwned(ctx, "01711111111", cursor, 0)
		s.Require().NoError(err)
		for i := range page {
			s.False(seen[page[i].ID], "duplicate %s", page[i].ID)
			seen[page[i].ID] = true
			if last != nil {
				s.False(page[i].EndAt.After(last.EndAt))
			}
			last = &page[i]
		}
		if next == nil {
			break
		}
		cursor = next
	}
	s.Len(seen, total)
	s.Equal(total, s.appliedCount("01711111111"))
}

func (s *PostgresStoreSuite) TestRegisterConflict() {
	ctx := context.Background()
	s.register("01711111111")

	err := s.applicants.Register(ctx, &domain.Applicant{ID: "01711111111", Name: "Impostor", CreatedAt: s.base})
	s.Require().ErrorIs(err, repository.ErrConflict)

	stored, err := s.applicants.FindByID(ctx, "01711111111")
	s.Require().NoError(err)
	s.Equal("Applicant 01711111111", stored.Name)
}

func (s *PostgresStoreSuite) TestCreateBatch() {
	ctx := context.Background()
	s.register("01711111111")
	s.register("01822222222")

	err := s.passes.CreateBatch(ctx, []domain.Pass{
		*s.newPass("b1", "01711111111", time.Hour),
		*s.newPass("b2", "01711111111", 2*time.Hour),
		*s.newPass("b3", "01822222222", time.Hour),
	})
	s.Require().NoError(err)
	s.Equal(2, s.appliedCount("01711111111"))
	s.Equal(1, s.appliedCount("01822222222"))

	err = s.passes.CreateBatch(ctx, []domain.Pass{
		*s.newPass("b4", "01711111111", time.Hour),
		*s.newPass("b1", "01711111111", time.Hour),
	})
	s.Require().ErrorIs(err, repository.ErrConflict)
	s.Equal(2, s.appliedCount("01711111111"))
}
