package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/federgolf/referee-system/models"
	"github.com/lib/pq"
)

var (
	ErrAvailabilityNotFound  = errors.New("availability not found")
	ErrAvailabilityDuplicate = errors.New("availability already declared for this tournament")
)

type AvailabilityRepository interface {
	Create(ctx context.Context, availability *models.Availability) error
	Delete(ctx context.Context, id int) error
	// ListByIDsHydrated загружает заявки с турнирами (включая тип) — агрегат,
	// который нужен маршрутизатору получателей.
	ListByIDsHydrated(ctx context.Context, ids []int) ([]models.Availability, error)
	ListByReferee(ctx context.Context, refereeID int) ([]models.Availability, error)
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) Create(ctx context.Context, av *models.Availability) error {
	query := `
		INSERT INTO availabilities (referee_id, tournament_id, notes)
		VALUES ($1, $2, $3)
		RETURNING id, submitted_at`

	err := r.db.QueryRowContext(ctx, query, av.RefereeID, av.TournamentID, av.Notes).
		Scan(&av.ID, &av.SubmittedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAvailabilityDuplicate
		}
		return err
	}
	return nil
}

func (r *postgresAvailabilityRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availabilities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAvailabilityNotFound)
}

const availabilityHydratedQuery = `
	SELECT
		av.id, av.referee_id, av.tournament_id, av.submitted_at, av.notes,
		t.id, t.name, t.club_id, t.tournament_type_id, t.start_date, t.end_date, t.is_national, t.status, t.notes, t.created_at,
		c.id, c.name, c.email, c.zone_id, c.is_active,
		z.id, z.code, z.name, z.email, z.folder_code, z.is_active,
		tt.id, tt.name, tt.is_national, tt.min_referees, tt.required_level
	FROM availabilities av
	JOIN tournaments t ON t.id = av.tournament_id
	LEFT JOIN clubs c ON c.id = t.club_id
	LEFT JOIN zones z ON z.id = c.zone_id
	LEFT JOIN tournament_types tt ON tt.id = t.tournament_type_id`

func (r *postgresAvailabilityRepository) scanHydrated(rows *sql.Rows) ([]models.Availability, error) {
	availabilities := make([]models.Availability, 0)
	for rows.Next() {
		var av models.Availability
		avScan := func(dest ...interface{}) error {
			prefix := []interface{}{&av.ID, &av.RefereeID, &av.TournamentID, &av.SubmittedAt, &av.Notes}
			return rows.Scan(append(prefix, dest...)...)
		}
		t, scanErr := scanHydratedTournament(avScan)
		if scanErr != nil {
			return nil, scanErr
		}
		av.Tournament = t
		availabilities = append(availabilities, av)
	}
	return availabilities, rows.Err()
}

func (r *postgresAvailabilityRepository) ListByIDsHydrated(ctx context.Context, ids []int) ([]models.Availability, error) {
	if len(ids) == 0 {
		return []models.Availability{}, nil
	}
	query := availabilityHydratedQuery + `
	WHERE av.id = ANY($1)
	ORDER BY t.start_date, av.id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanHydrated(rows)
}

func (r *postgresAvailabilityRepository) ListByReferee(ctx context.Context, refereeID int) ([]models.Availability, error) {
	query := availabilityHydratedQuery + `
	WHERE av.referee_id = $1
	ORDER BY t.start_date, av.id`

	rows, err := r.db.QueryContext(ctx, query, refereeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanHydrated(rows)
}
