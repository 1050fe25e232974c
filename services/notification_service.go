package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/federgolf/referee-system/config"
	"github.com/federgolf/referee-system/live"
	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
	"github.com/federgolf/referee-system/storage"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// NotificationService координирует жизненный цикл уведомления турнира:
// подготовка (идемпотентная), метаданные, выбор клаузул, генерация
// документов и рассылка по каналам.
type NotificationService interface {
	// PrepareNotification создаёт уведомление турнира либо возвращает
	// существующее, обновляя в нём список арбитров-получателей.
	PrepareNotification(ctx context.Context, tournamentID int) (*models.Notification, error)
	GetNotification(ctx context.Context, id int) (*models.Notification, error)
	// GetTournamentNotification находит уведомление по турниру (не более
	// одного на турнир).
	GetTournamentNotification(ctx context.Context, tournamentID int) (*models.Notification, error)
	UpdateMetadata(ctx context.Context, id int, metadata *models.NotificationMetadata) error
	SaveClauseSelections(ctx context.Context, id int, selections map[string]int) error
	GenerateDocuments(ctx context.Context, id int) (*models.NotificationDocuments, error)
	// RegenerateDocument пересоздаёт один документ ("convocation" или
	// "club_letter"), не трогая второй.
	RegenerateDocument(ctx context.Context, id int, docType string) (*models.NotificationDocuments, error)
	// Send рассылает письма по каналам получателей. force пересчитывает
	// список арбитров по актуальному составу перед отправкой.
	Send(ctx context.Context, id int, force bool) error
}

type notificationService struct {
	notificationRepo  repositories.NotificationRepository
	tournamentRepo    repositories.TournamentRepository
	clauseRepo        repositories.ClauseRepository
	refereeRepo       repositories.RefereeRepository
	institutionalRepo repositories.InstitutionalEmailRepository
	clauses           ClauseService
	documents         DocumentService
	email             EmailService
	uploader          storage.FileUploader
	hub               *live.Hub
	cfg               *config.Config
	logger            *slog.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	tournamentRepo repositories.TournamentRepository,
	clauseRepo repositories.ClauseRepository,
	refereeRepo repositories.RefereeRepository,
	institutionalRepo repositories.InstitutionalEmailRepository,
	clauses ClauseService,
	documents DocumentService,
	email EmailService,
	uploader storage.FileUploader,
	hub *live.Hub,
	cfg *config.Config,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo:  notificationRepo,
		tournamentRepo:    tournamentRepo,
		clauseRepo:        clauseRepo,
		refereeRepo:       refereeRepo,
		institutionalRepo: institutionalRepo,
		clauses:           clauses,
		documents:         documents,
		email:             email,
		uploader:          uploader,
		hub:               hub,
		cfg:               cfg,
		logger:            logger,
	}
}

func (s *notificationService) PrepareNotification(ctx context.Context, tournamentID int) (*models.Notification, error) {
	tournament, err := s.tournamentRepo.GetHydrated(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	refereeIDs := make([]int, 0, len(tournament.Assignments))
	names := make([]string, 0, len(tournament.Assignments))
	for _, a := range models.SortAssignmentsByRole(tournament.Assignments) {
		refereeIDs = append(refereeIDs, a.RefereeID)
		if a.Referee != nil {
			names = append(names, a.Referee.FullName())
		}
	}

	notification := &models.Notification{
		TournamentID: tournamentID,
		Recipients: models.NotificationRecipients{
			Club:          true,
			Referees:      refereeIDs,
			Institutional: []int{},
		},
		RefereeList: strings.Join(names, ", "),
	}
	if err := s.notificationRepo.Upsert(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to prepare notification: %w", err)
	}

	notification.Tournament = tournament
	s.logger.Info("notification prepared",
		"notification_id", notification.ID,
		"tournament_id", tournamentID,
		"status", notification.Status,
		"referees", len(refereeIDs))
	return notification, nil
}

func (s *notificationService) GetNotification(ctx context.Context, id int) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotificationError(err)
	}

	tournament, err := s.tournamentRepo.GetHydrated(ctx, notification.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	notification.Tournament = tournament

	selections, err := s.clauseRepo.ListSelections(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load clause selections: %w", err)
	}
	notification.Selections = selections
	return notification, nil
}

func (s *notificationService) GetTournamentNotification(ctx context.Context, tournamentID int) (*models.Notification, error) {
	notification, err := s.notificationRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		return nil, mapNotificationError(err)
	}
	return s.GetNotification(ctx, notification.ID)
}

func (s *notificationService) UpdateMetadata(ctx context.Context, id int, metadata *models.NotificationMetadata) error {
	if metadata == nil {
		return fmt.Errorf("%w: metadata", ErrMissingMetadata)
	}
	if err := s.notificationRepo.UpdateMetadata(ctx, id, metadata); err != nil {
		return mapNotificationError(err)
	}
	return nil
}

func (s *notificationService) SaveClauseSelections(ctx context.Context, id int, selections map[string]int) error {
	if _, err := s.notificationRepo.GetByID(ctx, id); err != nil {
		return mapNotificationError(err)
	}
	for placeholder := range selections {
		if !knownPlaceholder(placeholder) {
			return fmt.Errorf("%w: unknown placeholder %q", ErrValidationFailed, placeholder)
		}
	}
	if err := s.clauseRepo.ReplaceSelections(ctx, id, selections); err != nil {
		if errors.Is(err, repositories.ErrSelectionBadClause) {
			return ErrClauseNotFound
		}
		return err
	}
	return nil
}

// GenerateDocuments собирает оба документа параллельно, публикует их в
// объектное хранилище и сохраняет имена файлов в уведомлении.
func (s *notificationService) GenerateDocuments(ctx context.Context, id int) (*models.NotificationDocuments, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotificationError(err)
	}

	tournament, err := s.tournamentRepo.GetHydrated(ctx, notification.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	clauses, err := s.clauses.ResolveClauses(ctx, id)
	if err != nil {
		return nil, err
	}

	var convocation, clubLetter *Artifact
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var genErr error
		convocation, genErr = s.documents.GenerateConvocation(gctx, tournament, clauses)
		return genErr
	})
	g.Go(func() error {
		var genErr error
		clubLetter, genErr = s.documents.GenerateClubDocument(gctx, tournament, clauses)
		return genErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Имена файлов сохраняются только после публикации обоих артефактов,
	// иначе уведомление ссылалось бы на недоступные документы.
	folder := s.documents.GetZoneFolder(tournament)
	for _, artifact := range []*Artifact{convocation, clubLetter} {
		if err := s.publishArtifact(ctx, folder, artifact); err != nil {
			s.logger.Error("failed to publish document",
				"notification_id", id, "filename", artifact.Filename, "error", err)
			return nil, fmt.Errorf("failed to publish document %s: %w", artifact.Filename, err)
		}
	}

	docs := models.NotificationDocuments{
		Convocation: convocation.Filename,
		ClubLetter:  clubLetter.Filename,
	}
	if err := s.notificationRepo.UpdateDocuments(ctx, id, docs); err != nil {
		return nil, mapNotificationError(err)
	}

	s.hub.BroadcastToRoom(tournamentRoom(notification.TournamentID), live.Event{
		Type: live.EventDocumentsGenerated,
		Payload: map[string]interface{}{
			"notification_id": id,
			"documents":       docs,
		},
	})
	return &docs, nil
}

func (s *notificationService) RegenerateDocument(ctx context.Context, id int, docType string) (*models.NotificationDocuments, error) {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotificationError(err)
	}

	tournament, err := s.tournamentRepo.GetHydrated(ctx, notification.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}

	clauses, err := s.clauses.ResolveClauses(ctx, id)
	if err != nil {
		return nil, err
	}

	var artifact *Artifact
	switch docType {
	case "convocation":
		artifact, err = s.documents.GenerateConvocation(ctx, tournament, clauses)
	case "club_letter":
		artifact, err = s.documents.GenerateClubDocument(ctx, tournament, clauses)
	default:
		return nil, fmt.Errorf("%w: unknown document type %q", ErrValidationFailed, docType)
	}
	if err != nil {
		return nil, err
	}

	folder := s.documents.GetZoneFolder(tournament)
	if err := s.publishArtifact(ctx, folder, artifact); err != nil {
		s.logger.Error("failed to publish document",
			"notification_id", id, "filename", artifact.Filename, "error", err)
		return nil, fmt.Errorf("failed to publish document %s: %w", artifact.Filename, err)
	}

	docs := notification.Documents
	switch docType {
	case "convocation":
		docs.Convocation = artifact.Filename
	case "club_letter":
		docs.ClubLetter = artifact.Filename
	}
	if err := s.notificationRepo.UpdateDocuments(ctx, id, docs); err != nil {
		return nil, mapNotificationError(err)
	}

	s.hub.BroadcastToRoom(tournamentRoom(notification.TournamentID), live.Event{
		Type: live.EventDocumentsGenerated,
		Payload: map[string]interface{}{
			"notification_id": id,
			"documents":       docs,
		},
	})
	return &docs, nil
}

func (s *notificationService) publishArtifact(ctx context.Context, folder string, artifact *Artifact) error {
	content, err := os.ReadFile(artifact.Path)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("convocazioni/%s/generated/%s", folder, artifact.Filename)
	_, err = s.uploader.Upload(ctx, key, docxContentType, bytes.NewReader(content))
	return err
}

// Send проверяет метаданные, нормализует получателей и рассылает письма.
// Ошибка одного канала не прерывает остальные; статус переходит в sent
// только если все каналы отработали без ошибок, иначе уведомление
// остаётся pending и отправку можно повторить.
func (s *notificationService) Send(ctx context.Context, id int, force bool) error {
	notification, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return mapNotificationError(err)
	}

	if missing := notification.Metadata.Validate(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingMetadata, strings.Join(missing, ", "))
	}

	tournament, err := s.tournamentRepo.GetHydrated(ctx, notification.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament: %w", err)
	}

	recipients, err := s.normalizeRecipients(ctx, notification, tournament, force)
	if err != nil {
		return err
	}

	attachments, err := s.loadAttachments(notification, tournament)
	if err != nil {
		return err
	}

	failed := s.dispatch(ctx, notification, tournament, recipients, attachments)
	if len(failed) > 0 {
		s.logger.Warn("notification partially dispatched",
			"notification_id", id, "failed_channels", failed)
		return fmt.Errorf("%w: %s", ErrDispatchFailed, strings.Join(failed, ", "))
	}

	if err := s.notificationRepo.MarkSent(ctx, id); err != nil {
		return mapNotificationError(err)
	}

	s.hub.BroadcastToRoom(tournamentRoom(notification.TournamentID), live.Event{
		Type: live.EventNotificationSent,
		Payload: map[string]interface{}{
			"notification_id": id,
			"tournament_id":   notification.TournamentID,
		},
	})
	s.logger.Info("notification sent", "notification_id", id, "tournament_id", notification.TournamentID)
	return nil
}

// normalizeRecipients сверяет сохранённый список арбитров с актуальным
// составом: неназначенные отбрасываются всегда, force дополнительно
// добавляет назначенных после подготовки.
func (s *notificationService) normalizeRecipients(
	ctx context.Context,
	notification *models.Notification,
	tournament *models.Tournament,
	force bool,
) (models.NotificationRecipients, error) {
	current := make(map[int]bool, len(tournament.Assignments))
	for _, a := range tournament.Assignments {
		current[a.RefereeID] = true
	}

	recipients := notification.Recipients
	if force {
		recipients.Referees = make([]int, 0, len(tournament.Assignments))
		for _, a := range tournament.Assignments {
			recipients.Referees = append(recipients.Referees, a.RefereeID)
		}
	} else {
		kept := make([]int, 0, len(recipients.Referees))
		for _, refereeID := range recipients.Referees {
			if current[refereeID] {
				kept = append(kept, refereeID)
			}
		}
		recipients.Referees = kept
	}

	if err := s.notificationRepo.UpdateRecipients(ctx, notification.ID, recipients); err != nil {
		return recipients, mapNotificationError(err)
	}
	return recipients, nil
}

type notificationAttachments struct {
	convocation *EmailAttachment
	clubLetter  *EmailAttachment
}

func (s *notificationService) loadAttachments(notification *models.Notification, tournament *models.Tournament) (*notificationAttachments, error) {
	loaded := &notificationAttachments{}
	if !notification.Metadata.AttachConvocation {
		return loaded, nil
	}
	if notification.Documents.Convocation == "" {
		return nil, fmt.Errorf("%w: documents are not generated", ErrNotificationNotReady)
	}

	folder := s.documents.GetZoneFolder(tournament)
	read := func(filename string) (*EmailAttachment, error) {
		content, err := os.ReadFile(filepath.Join(s.cfg.OutputDir, folder, filename))
		if err != nil {
			return nil, fmt.Errorf("%w: attachment %s unavailable", ErrNotificationNotReady, filename)
		}
		return &EmailAttachment{Filename: filename, Content: content}, nil
	}

	var err error
	if loaded.convocation, err = read(notification.Documents.Convocation); err != nil {
		return nil, err
	}
	if notification.Documents.ClubLetter != "" {
		if loaded.clubLetter, err = read(notification.Documents.ClubLetter); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}

// dispatch отправляет письма по каналам и возвращает имена каналов,
// завершившихся ошибкой.
func (s *notificationService) dispatch(
	ctx context.Context,
	notification *models.Notification,
	tournament *models.Tournament,
	recipients models.NotificationRecipients,
	attachments *notificationAttachments,
) []string {
	meta := notification.Metadata
	var failed []string

	if recipients.Club {
		clubAttachments := collectAttachments(attachments.convocation, attachments.clubLetter)
		if err := s.sendToClub(tournament, meta, clubAttachments); err != nil {
			s.logger.Error("club channel failed", "notification_id", notification.ID, "error", err)
			failed = append(failed, "club")
		}
	}

	refereeAttachments := collectAttachments(attachments.convocation)
	for _, refereeID := range recipients.Referees {
		referee, err := s.refereeRepo.GetByID(ctx, refereeID)
		if err != nil {
			s.logger.Error("referee channel failed", "notification_id", notification.ID,
				"referee_id", refereeID, "error", err)
			failed = append(failed, fmt.Sprintf("referee:%d", refereeID))
			continue
		}
		if err := s.email.Send([]string{referee.Email}, meta.Subject, meta.Message, refereeAttachments...); err != nil {
			s.logger.Error("referee channel failed", "notification_id", notification.ID,
				"referee_id", refereeID, "error", err)
			failed = append(failed, fmt.Sprintf("referee:%d", refereeID))
		}
	}

	for _, emailID := range recipients.Institutional {
		entry, err := s.institutionalRepo.GetByID(ctx, emailID)
		if err != nil {
			s.logger.Error("institutional channel failed", "notification_id", notification.ID,
				"email_id", emailID, "error", err)
			failed = append(failed, fmt.Sprintf("institutional:%d", emailID))
			continue
		}
		if err := s.email.Send([]string{entry.Email}, meta.Subject, meta.Message, refereeAttachments...); err != nil {
			s.logger.Error("institutional channel failed", "notification_id", notification.ID,
				"email_id", emailID, "error", err)
			failed = append(failed, fmt.Sprintf("institutional:%d", emailID))
		}
	}

	return failed
}

func (s *notificationService) sendToClub(tournament *models.Tournament, meta *models.NotificationMetadata, attachments []EmailAttachment) error {
	if tournament.Club == nil || tournament.Club.Email == nil || *tournament.Club.Email == "" {
		return fmt.Errorf("tournament club has no email address")
	}
	return s.email.Send([]string{*tournament.Club.Email}, meta.Subject, meta.Message, attachments...)
}

func collectAttachments(candidates ...*EmailAttachment) []EmailAttachment {
	attachments := make([]EmailAttachment, 0, len(candidates))
	for _, a := range candidates {
		if a != nil {
			attachments = append(attachments, *a)
		}
	}
	return attachments
}

func knownPlaceholder(code string) bool {
	for _, known := range ClausePlaceholders {
		if code == known {
			return true
		}
	}
	return false
}

func tournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}

func mapNotificationError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return ErrNotificationNotFound
	case errors.Is(err, repositories.ErrNotificationInvalidEvent):
		return ErrTournamentNotFound
	default:
		return err
	}
}
