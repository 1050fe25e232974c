package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/federgolf/referee-system/models"
	"github.com/lib/pq"
)

var (
	ErrRefereeNotFound      = errors.New("referee not found")
	ErrRefereeEmailConflict = errors.New("referee email already in use")
	ErrRefereeInvalidZone   = errors.New("invalid zone reference")
)

// RefereeWorkload — арбитр с количеством активных назначений и признаком
// наличия заявленных доступностей (для отчёта по валидации).
type RefereeWorkload struct {
	Referee         models.Referee
	AssignmentCount int
	HasAvailability bool
}

type RefereeRepository interface {
	Create(ctx context.Context, referee *models.Referee) error
	GetByID(ctx context.Context, id int) (*models.Referee, error)
	GetByEmail(ctx context.Context, email string) (*models.Referee, error)
	Update(ctx context.Context, referee *models.Referee) error
	ListActiveWorkloads(ctx context.Context, zoneID *int) ([]RefereeWorkload, error)
}

type postgresRefereeRepository struct {
	db *sql.DB
}

func NewPostgresRefereeRepository(db *sql.DB) RefereeRepository {
	return &postgresRefereeRepository{db: db}
}

const refereeColumns = `id, first_name, last_name, email, referee_code, level, zone_id, role, is_active, password_hash, created_at`

func scanReferee(row *sql.Row) (*models.Referee, error) {
	ref := &models.Referee{}
	err := row.Scan(
		&ref.ID, &ref.FirstName, &ref.LastName, &ref.Email, &ref.RefereeCode,
		&ref.Level, &ref.ZoneID, &ref.Role, &ref.IsActive, &ref.PasswordHash, &ref.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return ref, nil
}

func (r *postgresRefereeRepository) Create(ctx context.Context, ref *models.Referee) error {
	query := `
		INSERT INTO referees (first_name, last_name, email, referee_code, level, zone_id, role, is_active, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		ref.FirstName, ref.LastName, ref.Email, ref.RefereeCode,
		ref.Level, ref.ZoneID, ref.Role, ref.IsActive, ref.PasswordHash,
	).Scan(&ref.ID, &ref.CreatedAt)

	return r.handleRefereeError(err)
}

func (r *postgresRefereeRepository) GetByID(ctx context.Context, id int) (*models.Referee, error) {
	query := `SELECT ` + refereeColumns + ` FROM referees WHERE id = $1`
	return scanReferee(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresRefereeRepository) GetByEmail(ctx context.Context, email string) (*models.Referee, error) {
	query := `SELECT ` + refereeColumns + ` FROM referees WHERE email = $1`
	return scanReferee(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresRefereeRepository) Update(ctx context.Context, ref *models.Referee) error {
	query := `
		UPDATE referees SET
			first_name = $1, last_name = $2, email = $3, referee_code = $4,
			level = $5, zone_id = $6, role = $7, is_active = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		ref.FirstName, ref.LastName, ref.Email, ref.RefereeCode,
		ref.Level, ref.ZoneID, ref.Role, ref.IsActive, ref.ID,
	)
	if err != nil {
		return r.handleRefereeError(err)
	}
	return checkAffectedRows(result, ErrRefereeNotFound)
}

// ListActiveWorkloads считает активные назначения (турниры в нетерминальных
// статусах) и наличие доступностей одним запросом, без N+1.
func (r *postgresRefereeRepository) ListActiveWorkloads(ctx context.Context, zoneID *int) ([]RefereeWorkload, error) {
	query := `
		SELECT
			r.id, r.first_name, r.last_name, r.email, r.referee_code, r.level,
			r.zone_id, r.role, r.is_active, r.password_hash, r.created_at,
			COUNT(a.id) FILTER (WHERE t.status NOT IN ('completed', 'cancelled')) AS assignment_count,
			EXISTS (SELECT 1 FROM availabilities av WHERE av.referee_id = r.id) AS has_availability
		FROM referees r
		LEFT JOIN assignments a ON a.referee_id = r.id
		LEFT JOIN tournaments t ON t.id = a.tournament_id
		WHERE r.role = 'referee' AND r.is_active = TRUE`

	args := []interface{}{}
	if zoneID != nil {
		query += ` AND r.zone_id = $1`
		args = append(args, *zoneID)
	}
	query += `
		GROUP BY r.id
		ORDER BY assignment_count DESC, r.last_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query referee workloads: %w", err)
	}
	defer rows.Close()

	workloads := make([]RefereeWorkload, 0)
	for rows.Next() {
		var w RefereeWorkload
		if scanErr := rows.Scan(
			&w.Referee.ID, &w.Referee.FirstName, &w.Referee.LastName, &w.Referee.Email,
			&w.Referee.RefereeCode, &w.Referee.Level, &w.Referee.ZoneID, &w.Referee.Role,
			&w.Referee.IsActive, &w.Referee.PasswordHash, &w.Referee.CreatedAt,
			&w.AssignmentCount, &w.HasAvailability,
		); scanErr != nil {
			return nil, scanErr
		}
		workloads = append(workloads, w)
	}
	return workloads, rows.Err()
}

func (r *postgresRefereeRepository) handleRefereeError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "referees_email_key" {
				return ErrRefereeEmailConflict
			}
		case "23503":
			if pqErr.Constraint == "referees_zone_id_fkey" {
				return ErrRefereeInvalidZone
			}
		}
	}
	return err
}
