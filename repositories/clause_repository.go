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
	ErrClauseNotFound     = errors.New("clause not found")
	ErrClauseCodeConflict = errors.New("clause code already in use")
	ErrSelectionBadClause = errors.New("invalid clause reference in selection")
)

type ClauseRepository interface {
	Create(ctx context.Context, clause *models.Clause) error
	// GetByID возвращает клаузулу; includeDeleted позволяет читать мягко
	// удалённые записи — на них продолжают ссылаться исторические выборки.
	GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Clause, error)
	ListActive(ctx context.Context, audience *models.ClauseAudience) ([]models.Clause, error)
	Update(ctx context.Context, clause *models.Clause) error
	SoftDelete(ctx context.Context, id int) error

	// ReplaceSelections атомарно заменяет выбор клаузул уведомления.
	ReplaceSelections(ctx context.Context, notificationID int, selections map[string]int) error
	ListSelections(ctx context.Context, notificationID int) ([]models.ClauseSelection, error)
}

type postgresClauseRepository struct {
	db *sql.DB
}

func NewPostgresClauseRepository(db *sql.DB) ClauseRepository {
	return &postgresClauseRepository{db: db}
}

const clauseColumns = `id, code, category, title, content, applies_to, is_active, sort_order, deleted_at`

func (r *postgresClauseRepository) Create(ctx context.Context, c *models.Clause) error {
	query := `
		INSERT INTO notification_clauses (code, category, title, content, applies_to, is_active, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		c.Code, c.Category, c.Title, c.Content, c.AppliesTo, c.IsActive, c.SortOrder,
	).Scan(&c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrClauseCodeConflict
		}
		return err
	}
	return nil
}

func (r *postgresClauseRepository) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Clause, error) {
	query := `SELECT ` + clauseColumns + ` FROM notification_clauses WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	c := &models.Clause{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Code, &c.Category, &c.Title, &c.Content,
		&c.AppliesTo, &c.IsActive, &c.SortOrder, &c.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClauseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresClauseRepository) ListActive(ctx context.Context, audience *models.ClauseAudience) ([]models.Clause, error) {
	query := `
		SELECT ` + clauseColumns + `
		FROM notification_clauses
		WHERE deleted_at IS NULL AND is_active = TRUE`

	args := []interface{}{}
	if audience != nil {
		query += ` AND (applies_to = $1 OR applies_to = 'all')`
		args = append(args, *audience)
	}
	query += ` ORDER BY sort_order, title`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clauses := make([]models.Clause, 0)
	for rows.Next() {
		var c models.Clause
		if scanErr := rows.Scan(
			&c.ID, &c.Code, &c.Category, &c.Title, &c.Content,
			&c.AppliesTo, &c.IsActive, &c.SortOrder, &c.DeletedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		clauses = append(clauses, c)
	}
	return clauses, rows.Err()
}

func (r *postgresClauseRepository) Update(ctx context.Context, c *models.Clause) error {
	query := `
		UPDATE notification_clauses SET
			code = $1, category = $2, title = $3, content = $4,
			applies_to = $5, is_active = $6, sort_order = $7
		WHERE id = $8 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query,
		c.Code, c.Category, c.Title, c.Content, c.AppliesTo, c.IsActive, c.SortOrder, c.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrClauseCodeConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrClauseNotFound)
}

// SoftDelete помечает клаузулу удалённой, не разрушая исторические ссылки.
func (r *postgresClauseRepository) SoftDelete(ctx context.Context, id int) error {
	query := `UPDATE notification_clauses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClauseNotFound)
}

func (r *postgresClauseRepository) ReplaceSelections(ctx context.Context, notificationID int, selections map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin selections transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM notification_clause_selections WHERE notification_id = $1`, notificationID,
	); err != nil {
		return fmt.Errorf("failed to clear previous selections: %w", err)
	}

	for placeholder, clauseID := range selections {
		if clauseID == 0 {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notification_clause_selections (notification_id, clause_id, placeholder_code)
			VALUES ($1, $2, $3)`,
			notificationID, clauseID, placeholder,
		)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return ErrSelectionBadClause
			}
			return fmt.Errorf("failed to insert selection %q: %w", placeholder, err)
		}
	}

	return tx.Commit()
}

// ListSelections возвращает выборки вместе с клаузулами, включая мягко
// удалённые: содержимое разрешается по последнему известному состоянию.
func (r *postgresClauseRepository) ListSelections(ctx context.Context, notificationID int) ([]models.ClauseSelection, error) {
	query := `
		SELECT
			s.id, s.notification_id, s.clause_id, s.placeholder_code,
			c.id, c.code, c.category, c.title, c.content, c.applies_to, c.is_active, c.sort_order, c.deleted_at
		FROM notification_clause_selections s
		JOIN notification_clauses c ON c.id = s.clause_id
		WHERE s.notification_id = $1
		ORDER BY s.placeholder_code`

	rows, err := r.db.QueryContext(ctx, query, notificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	selections := make([]models.ClauseSelection, 0)
	for rows.Next() {
		var s models.ClauseSelection
		c := &models.Clause{}
		if scanErr := rows.Scan(
			&s.ID, &s.NotificationID, &s.ClauseID, &s.PlaceholderCode,
			&c.ID, &c.Code, &c.Category, &c.Title, &c.Content,
			&c.AppliesTo, &c.IsActive, &c.SortOrder, &c.DeletedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		s.Clause = c
		selections = append(selections, s)
	}
	return selections, rows.Err()
}
