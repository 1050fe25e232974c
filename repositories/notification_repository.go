package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/federgolf/referee-system/models"
	"github.com/lib/pq"
)

var (
	ErrNotificationNotFound     = errors.New("notification not found")
	ErrNotificationInvalidEvent = errors.New("invalid tournament reference")
)

type NotificationRepository interface {
	// Upsert реализует идемпотентное get-or-create по tournament_id одним
	// запросом: конкурентные вызовы не создают дубликатов (UNIQUE + ON
	// CONFLICT вместо проверки-перед-вставкой). Список арбитров-получателей
	// перезаписывается актуальным значением при каждом вызове.
	Upsert(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int) (*models.Notification, error)
	GetByTournament(ctx context.Context, tournamentID int) (*models.Notification, error)
	UpdateMetadata(ctx context.Context, id int, metadata *models.NotificationMetadata) error
	UpdateRecipients(ctx context.Context, id int, recipients models.NotificationRecipients) error
	UpdateDocuments(ctx context.Context, id int, documents models.NotificationDocuments) error
	MarkSent(ctx context.Context, id int) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Upsert(ctx context.Context, n *models.Notification) error {
	recipients, err := json.Marshal(n.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients: %w", err)
	}

	query := `
		INSERT INTO tournament_notifications (tournament_id, status, recipients, referee_list)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id) DO UPDATE
			SET recipients = EXCLUDED.recipients,
			    referee_list = EXCLUDED.referee_list
		RETURNING id, status, documents, metadata, sent_at, created_at`

	var (
		documents []byte
		metadata  []byte
	)
	err = r.db.QueryRowContext(ctx, query,
		n.TournamentID, models.NotificationPending, recipients, n.RefereeList,
	).Scan(&n.ID, &n.Status, &documents, &metadata, &n.SentAt, &n.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrNotificationInvalidEvent
		}
		return err
	}

	return unmarshalNotificationJSON(n, documents, metadata)
}

const notificationColumns = `id, tournament_id, status, recipients, documents, metadata, referee_list, sent_at, created_at`

func (r *postgresNotificationRepository) scanNotification(row *sql.Row) (*models.Notification, error) {
	n := &models.Notification{}
	var (
		recipients []byte
		documents  []byte
		metadata   []byte
	)
	err := row.Scan(
		&n.ID, &n.TournamentID, &n.Status, &recipients, &documents,
		&metadata, &n.RefereeList, &n.SentAt, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if len(recipients) > 0 {
		if err = json.Unmarshal(recipients, &n.Recipients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipients: %w", err)
		}
	}
	if err = unmarshalNotificationJSON(n, documents, metadata); err != nil {
		return nil, err
	}
	return n, nil
}

func unmarshalNotificationJSON(n *models.Notification, documents, metadata []byte) error {
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &n.Documents); err != nil {
			return fmt.Errorf("failed to unmarshal documents: %w", err)
		}
	}
	if len(metadata) > 0 {
		meta := &models.NotificationMetadata{}
		if err := json.Unmarshal(metadata, meta); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
		n.Metadata = meta
	}
	return nil
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id int) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM tournament_notifications WHERE id = $1`
	return r.scanNotification(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresNotificationRepository) GetByTournament(ctx context.Context, tournamentID int) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM tournament_notifications WHERE tournament_id = $1`
	return r.scanNotification(r.db.QueryRowContext(ctx, query, tournamentID))
}

func (r *postgresNotificationRepository) UpdateMetadata(ctx context.Context, id int, metadata *models.NotificationMetadata) error {
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_notifications SET metadata = $1 WHERE id = $2`, payload, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) UpdateRecipients(ctx context.Context, id int, recipients models.NotificationRecipients) error {
	payload, err := json.Marshal(recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_notifications SET recipients = $1 WHERE id = $2`, payload, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) UpdateDocuments(ctx context.Context, id int, documents models.NotificationDocuments) error {
	payload, err := json.Marshal(documents)
	if err != nil {
		return fmt.Errorf("failed to marshal documents: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_notifications SET documents = $1 WHERE id = $2`, payload, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}

func (r *postgresNotificationRepository) MarkSent(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournament_notifications SET status = $1, sent_at = NOW() WHERE id = $2`,
		models.NotificationSent, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}
