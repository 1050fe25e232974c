package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/federgolf/referee-system/models"
)

var ErrZoneNotFound = errors.New("zone not found")

type ZoneRepository interface {
	GetByID(ctx context.Context, id int) (*models.Zone, error)
	List(ctx context.Context, onlyActive bool) ([]models.Zone, error)
}

type postgresZoneRepository struct {
	db *sql.DB
}

func NewPostgresZoneRepository(db *sql.DB) ZoneRepository {
	return &postgresZoneRepository{db: db}
}

func (r *postgresZoneRepository) GetByID(ctx context.Context, id int) (*models.Zone, error) {
	query := `
		SELECT id, code, name, email, folder_code, is_active
		FROM zones
		WHERE id = $1`

	z := &models.Zone{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&z.ID, &z.Code, &z.Name, &z.Email, &z.FolderCode, &z.IsActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return z, nil
}

func (r *postgresZoneRepository) List(ctx context.Context, onlyActive bool) ([]models.Zone, error) {
	query := `
		SELECT id, code, name, email, folder_code, is_active
		FROM zones`
	if onlyActive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		var z models.Zone
		if scanErr := rows.Scan(&z.ID, &z.Code, &z.Name, &z.Email, &z.FolderCode, &z.IsActive); scanErr != nil {
			return nil, scanErr
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
