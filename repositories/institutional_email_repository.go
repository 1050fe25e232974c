package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/federgolf/referee-system/models"
)

var ErrInstitutionalEmailNotFound = errors.New("institutional email not found")

type InstitutionalEmailRepository interface {
	GetByID(ctx context.Context, id int) (*models.InstitutionalEmail, error)
	ListActive(ctx context.Context) ([]models.InstitutionalEmail, error)
}

type postgresInstitutionalEmailRepository struct {
	db *sql.DB
}

func NewPostgresInstitutionalEmailRepository(db *sql.DB) InstitutionalEmailRepository {
	return &postgresInstitutionalEmailRepository{db: db}
}

func (r *postgresInstitutionalEmailRepository) GetByID(ctx context.Context, id int) (*models.InstitutionalEmail, error) {
	query := `SELECT id, name, email, category, is_active FROM institutional_emails WHERE id = $1`

	e := &models.InstitutionalEmail{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Name, &e.Email, &e.Category, &e.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInstitutionalEmailNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresInstitutionalEmailRepository) ListActive(ctx context.Context) ([]models.InstitutionalEmail, error) {
	query := `
		SELECT id, name, email, category, is_active
		FROM institutional_emails
		WHERE is_active = TRUE
		ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]models.InstitutionalEmail, 0)
	for rows.Next() {
		var e models.InstitutionalEmail
		if scanErr := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Category, &e.IsActive); scanErr != nil {
			return nil, scanErr
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
