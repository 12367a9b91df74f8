package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/pagination"
)

// PassRepository encapsulates pass persistence.
type PassRepository interface {
	// Create stores the pass and bumps the owner's applied count atomically.
	Create(ctx context.Context, pass *domain.Pass) (string, error)
	// CreateBatch stores ingested passes and their counter increments in one transaction.
	CreateBatch(ctx context.Context, passes []domain.Pass) error
	// GetOwned returns nil when the pass is missing or belongs to someone else.
	GetOwned(ctx context.Context, id, callerID string) (*domain.Pass, error)
	// QueryOwned pages through the caller's passes by end time, newest first.
	QueryOwned(ctx context.Context, callerID string, cursor *pagination.Cursor, pageSize int) ([]domain.Pass, *pagination.Cursor, error)
}

type passRepository struct {
	pool *pgxpool.Pool
}

// NewPassRepository instantiates repository.
func NewPassRepository(pool *pgxpool.Pool) PassRepository {
	return &passRepository{pool: pool}
}

const passColumns = `id, applicant_id, from_location, to_location, district, thana, start_at, end_at,
               type, reason, include_vehicle, vehicle_no, self_driven, driver_name, driver_license_no,
               status, created_at`

var passCopyColumns = []string{
	"id", "applicant_id", "from_location", "to_location", "district", "thana", "start_at", "end_at",
	"type", "reason", "include_vehicle", "vehicle_no", "self_driven", "driver_name", "driver_license_no",
	"status", "created_at",
}

const incrementAppliedCount = `UPDATE applicants SET applied_count = applied_count + $2 WHERE id = $1`

func (r *passRepository) Create(ctx context.Context, pass *domain.Pass) (string, error) {
	const insert = `
        INSERT INTO passes (` + passColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insert, passValues(pass)...); err != nil {
			return fmt.Errorf("insert pass %s: %w", pass.ID, conflictOr(err))
		}
		cmd, err := tx.Exec(ctx, incrementAppliedCount, pass.ApplicantID, 1)
		if err != nil {
			return fmt.Errorf("increment applied count: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrApplicantNotFound
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return pass.ID, nil
}

func (r *passRepository) CreateBatch(ctx context.Context, passes []domain.Pass) error {
	if len(passes) == 0 {
		return nil
	}

	perApplicant := make(map[string]int)
	order := make([]string, 0)
	for i := range passes {
		id := passes[i].ApplicantID
		if _, seen := perApplicant[id]; !seen {
			order = append(order, id)
		}
		perApplicant[id]++
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"passes"}, passCopyColumns,
			pgx.CopyFromSlice(len(passes), func(i int) ([]any, error) {
				return passValues(&passes[i]), nil
			}))
		if err != nil {
			return fmt.Errorf("copy passes: %w", conflictOr(err))
		}

		batch := &pgx.Batch{}
		for _, id := range order {
			batch.Queue(incrementAppliedCount, id, perApplicant[id])
		}
		results := tx.SendBatch(ctx, batch)
		for range order {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("increment applied count: %w", err)
			}
		}
		return results.Close()
	})
}

func (r *passRepository) GetOwned(ctx context.Context, id, callerID string) (*domain.Pass, error) {
	const query = `SELECT ` + passColumns + ` FROM passes WHERE id=$1 AND applicant_id=$2`

	pass, err := scanPass(r.pool.QueryRow(ctx, query, id, callerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pass, nil
}

func (r *passRepository) QueryOwned(ctx context.Context, callerID string, cursor *pagination.Cursor, pageSize int) ([]domain.Pass, *pagination.Cursor, error) {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	query := `SELECT ` + passColumns + ` FROM passes WHERE applicant_id=$1`
	args := []any{callerID}
	if ks, ok := cursor.Keyset(); ok {
		args = append(args, ks.EndAt, ks.ID)
		query += ` AND (end_at, id) < ($2, $3)`
	}
	query += fmt.Sprintf(` ORDER BY end_at DESC, id DESC LIMIT %d`, pageSize+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	passes := make([]domain.Pass, 0, pageSize)
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, nil, err
		}
		passes = append(passes, *pass)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	page, next := cutPage(passes, pageSize)
	return page, next, nil
}

// conflictOr maps a unique violation to ErrConflict.
func conflictOr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

// cutPage trims a pageSize+1 read down to one page and reports where the
// next page starts.
func cutPage(passes []domain.Pass, pageSize int) ([]domain.Pass, *pagination.Cursor) {
	if len(passes) <= pageSize {
		return passes, nil
	}
	page := passes[:pageSize]
	return page, pagination.After(page[len(page)-1])
}

func passValues(p *domain.Pass) []any {
	return []any{
		p.ID,
		p.ApplicantID,
		p.FromLocation,
		p.ToLocation,
		p.District,
		p.Thana,
		p.StartAt,
		p.EndAt,
		p.Type,
		p.Reason,
		p.IncludeVehicle,
		p.VehicleNo,
		p.SelfDriven,
		p.DriverName,
		p.DriverLicenseNo,
		p.Status,
		p.CreatedAt,
	}
}

func scanPass(row pgx.Row) (*domain.Pass, error) {
	var p domain.Pass
	if err := row.Scan(
		&p.ID,
		&p.ApplicantID,
		&p.FromLocation,
		&p.ToLocation,
		&p.District,
		&p.Thana,
		&p.StartAt,
		&p.EndAt,
		&p.Type,
		&p.Reason,
		&p.IncludeVehicle,
		&p.VehicleNo,
		&p.SelfDriven,
		&p.DriverName,
		&p.DriverLicenseNo,
		&p.Status,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.StartAt = p.StartAt.UTC()
	p.EndAt = p.EndAt.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
