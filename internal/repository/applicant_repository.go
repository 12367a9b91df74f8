package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/movementpass/public-api/internal/domain"
)

// ApplicantRepository defines persistence access for applicants.
type ApplicantRepository interface {
	// Register inserts the applicant unless the id is taken, in which case
	// it returns ErrConflict and leaves the stored record alone.
	Register(ctx context.Context, applicant *domain.Applicant) error
	// FindByID returns nil when no applicant has the id.
	FindByID(ctx context.Context, id string) (*domain.Applicant, error)
}

type applicantRepository struct {
	pool *pgxpool.Pool
}

// NewApplicantRepository returns a Postgres-backed implementation.
func NewApplicantRepository(pool *pgxpool.Pool) ApplicantRepository {
	return &applicantRepository{pool: pool}
}

func (r *applicantRepository) Register(ctx context.Context, a *domain.Applicant) error {
	const query = `
        INSERT INTO applicants (id, name, date_of_birth, district, thana, gender, id_type, id_number, photo,
                                created_at, applied_count, approved_count, rejected_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0,0,0)
        ON CONFLICT (id) DO NOTHING`

	cmd, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		a.DateOfBirth,
		a.District,
		a.Thana,
		a.Gender,
		a.IDType,
		a.IDNumber,
		a.Photo,
		a.CreatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *applicantRepository) FindByID(ctx context.Context, id string) (*domain.Applicant, error) {
	const query = `
        SELECT id, name, date_of_birth, district, thana, gender, id_type, id_number, photo,
               created_at, applied_count, approved_count, rejected_count
        FROM applicants WHERE id=$1`

	var a domain.Applicant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Name,
		&a.DateOfBirth,
		&a.District,
		&a.Thana,
		&a.Gender,
		&a.IDType,
		&a.IDNumber,
		&a.Photo,
		&a.CreatedAt,
		&a.AppliedCount,
		&a.ApprovedCount,
		&a.RejectedCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.DateOfBirth = a.DateOfBirth.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}
