package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/federgolf/referee-system/models"
	"github.com/lib/pq"
)

var (
	ErrAssignmentNotFound       = errors.New("assignment not found")
	ErrAssignmentDuplicate      = errors.New("referee already assigned to this tournament")
	ErrAssignmentInvalidReferee = errors.New("invalid referee reference")
	ErrAssignmentInvalidEvent   = errors.New("invalid tournament reference")
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int) error
	// ListByTournament возвращает состав турнира с загруженными арбитрами.
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Assignment, error)
	// ListActiveHydrated — назначения на нетерминальные турниры с арбитром
	// и турниром (включая клуб и тип), опционально ограниченные зоной.
	// Источник данных для детектора конфликтов.
	ListActiveHydrated(ctx context.Context, zoneID *int) ([]models.Assignment, error)
}

type postgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &postgresAssignmentRepository{db: db}
}

func (r *postgresAssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	query := `
		INSERT INTO assignments (tournament_id, referee_id, role, assigned_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, assigned_at`

	err := r.db.QueryRowContext(ctx, query,
		a.TournamentID, a.RefereeID, a.Role, a.AssignedBy,
	).Scan(&a.ID, &a.AssignedAt)

	return r.handleAssignmentError(err)
}

func (r *postgresAssignmentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAssignmentNotFound)
}

func (r *postgresAssignmentRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Assignment, error) {
	query := `
		SELECT
			a.id, a.tournament_id, a.referee_id, a.role, a.assigned_by, a.assigned_at,
			r.id, r.first_name, r.last_name, r.email, r.referee_code, r.level, r.zone_id, r.role, r.is_active, r.created_at
		FROM assignments a
		JOIN referees r ON r.id = a.referee_id
		WHERE a.tournament_id = $1
		ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.Assignment, 0)
	for rows.Next() {
		var a models.Assignment
		ref := &models.Referee{}
		if scanErr := rows.Scan(
			&a.ID, &a.TournamentID, &a.RefereeID, &a.Role, &a.AssignedBy, &a.AssignedAt,
			&ref.ID, &ref.FirstName, &ref.LastName, &ref.Email, &ref.RefereeCode,
			&ref.Level, &ref.ZoneID, &ref.Role, &ref.IsActive, &ref.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		a.Referee = ref
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *postgresAssignmentRepository) ListActiveHydrated(ctx context.Context, zoneID *int) ([]models.Assignment, error) {
	query := `
		SELECT
			a.id, a.tournament_id, a.referee_id, a.role, a.assigned_by, a.assigned_at,
			r.id, r.first_name, r.last_name, r.email, r.referee_code, r.level, r.zone_id, r.role, r.is_active, r.created_at,
			t.id, t.name, t.club_id, t.tournament_type_id, t.start_date, t.end_date, t.is_national, t.status, t.notes, t.created_at,
			c.id, c.name, c.email, c.zone_id, c.is_active,
			z.id, z.code, z.name, z.email, z.folder_code, z.is_active,
			tt.id, tt.name, tt.is_national, tt.min_referees, tt.required_level
		FROM assignments a
		JOIN referees r ON r.id = a.referee_id
		JOIN tournaments t ON t.id = a.tournament_id
		LEFT JOIN clubs c ON c.id = t.club_id
		LEFT JOIN zones z ON z.id = c.zone_id
		LEFT JOIN tournament_types tt ON tt.id = t.tournament_type_id
		WHERE t.status NOT IN ('completed', 'cancelled')`

	args := []interface{}{}
	if zoneID != nil {
		query += ` AND c.zone_id = $1`
		args = append(args, *zoneID)
	}
	query += ` ORDER BY a.referee_id, t.start_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]models.Assignment, 0)
	for rows.Next() {
		var a models.Assignment
		ref := &models.Referee{}

		refScan := func(dest ...interface{}) error {
			prefix := []interface{}{
				&a.ID, &a.TournamentID, &a.RefereeID, &a.Role, &a.AssignedBy, &a.AssignedAt,
				&ref.ID, &ref.FirstName, &ref.LastName, &ref.Email, &ref.RefereeCode,
				&ref.Level, &ref.ZoneID, &ref.Role, &ref.IsActive, &ref.CreatedAt,
			}
			return rows.Scan(append(prefix, dest...)...)
		}

		t, scanErr := scanHydratedTournament(refScan)
		if scanErr != nil {
			return nil, scanErr
		}
		a.Referee = ref
		a.Tournament = t
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *postgresAssignmentRepository) handleAssignmentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrAssignmentDuplicate
		case "23503":
			switch pqErr.Constraint {
			case "assignments_referee_id_fkey":
				return ErrAssignmentInvalidReferee
			case "assignments_tournament_id_fkey":
				return ErrAssignmentInvalidEvent
			}
		}
	}
	return err
}
