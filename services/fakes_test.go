package services

import (
	"context"
	"io"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
	"github.com/federgolf/referee-system/storage"
)

// Фейки репозиториев для модульных тестов сервисов. Реализованы через
// поля-функции: каждый тест подставляет только нужные методы.

type fakeAssignmentRepo struct {
	createFn             func(ctx context.Context, a *models.Assignment) error
	deleteFn             func(ctx context.Context, id int) error
	listByTournamentFn   func(ctx context.Context, tournamentID int) ([]models.Assignment, error)
	listActiveHydratedFn func(ctx context.Context, zoneID *int) ([]models.Assignment, error)
}

func (f *fakeAssignmentRepo) Create(ctx context.Context, a *models.Assignment) error {
	return f.createFn(ctx, a)
}

func (f *fakeAssignmentRepo) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeAssignmentRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Assignment, error) {
	return f.listByTournamentFn(ctx, tournamentID)
}

func (f *fakeAssignmentRepo) ListActiveHydrated(ctx context.Context, zoneID *int) ([]models.Assignment, error) {
	return f.listActiveHydratedFn(ctx, zoneID)
}

type fakeTournamentRepo struct {
	createFn      func(ctx context.Context, t *models.Tournament) error
	getByIDFn     func(ctx context.Context, id int) (*models.Tournament, error)
	getHydratedFn func(ctx context.Context, id int) (*models.Tournament, error)
	listFn        func(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	listNonTermFn func(ctx context.Context, zoneID *int) ([]models.Tournament, error)
	updateFn      func(ctx context.Context, t *models.Tournament) error
	updStatusFn   func(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error
}

func (f *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	return f.createFn(ctx, t)
}

func (f *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeTournamentRepo) GetHydrated(ctx context.Context, id int) (*models.Tournament, error) {
	return f.getHydratedFn(ctx, id)
}

func (f *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeTournamentRepo) ListNonTerminalHydrated(ctx context.Context, zoneID *int) ([]models.Tournament, error) {
	return f.listNonTermFn(ctx, zoneID)
}

func (f *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	return f.updateFn(ctx, t)
}

func (f *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	return f.updStatusFn(ctx, exec, id, status)
}

type fakeRefereeRepo struct {
	createFn        func(ctx context.Context, r *models.Referee) error
	getByIDFn       func(ctx context.Context, id int) (*models.Referee, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.Referee, error)
	updateFn        func(ctx context.Context, r *models.Referee) error
	listWorkloadsFn func(ctx context.Context, zoneID *int) ([]repositories.RefereeWorkload, error)
}

func (f *fakeRefereeRepo) Create(ctx context.Context, r *models.Referee) error {
	return f.createFn(ctx, r)
}

func (f *fakeRefereeRepo) GetByID(ctx context.Context, id int) (*models.Referee, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeRefereeRepo) GetByEmail(ctx context.Context, email string) (*models.Referee, error) {
	return f.getByEmailFn(ctx, email)
}

func (f *fakeRefereeRepo) Update(ctx context.Context, r *models.Referee) error {
	return f.updateFn(ctx, r)
}

func (f *fakeRefereeRepo) ListActiveWorkloads(ctx context.Context, zoneID *int) ([]repositories.RefereeWorkload, error) {
	return f.listWorkloadsFn(ctx, zoneID)
}

type fakeAvailabilityRepo struct {
	createFn        func(ctx context.Context, av *models.Availability) error
	deleteFn        func(ctx context.Context, id int) error
	listByIDsFn     func(ctx context.Context, ids []int) ([]models.Availability, error)
	listByRefereeFn func(ctx context.Context, refereeID int) ([]models.Availability, error)
}

func (f *fakeAvailabilityRepo) Create(ctx context.Context, av *models.Availability) error {
	return f.createFn(ctx, av)
}

func (f *fakeAvailabilityRepo) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeAvailabilityRepo) ListByIDsHydrated(ctx context.Context, ids []int) ([]models.Availability, error) {
	return f.listByIDsFn(ctx, ids)
}

func (f *fakeAvailabilityRepo) ListByReferee(ctx context.Context, refereeID int) ([]models.Availability, error) {
	return f.listByRefereeFn(ctx, refereeID)
}

type fakeClauseRepo struct {
	createFn            func(ctx context.Context, c *models.Clause) error
	getByIDFn           func(ctx context.Context, id int, includeDeleted bool) (*models.Clause, error)
	listActiveFn        func(ctx context.Context, audience *models.ClauseAudience) ([]models.Clause, error)
	updateFn            func(ctx context.Context, c *models.Clause) error
	softDeleteFn        func(ctx context.Context, id int) error
	replaceSelectionsFn func(ctx context.Context, notificationID int, selections map[string]int) error
	listSelectionsFn    func(ctx context.Context, notificationID int) ([]models.ClauseSelection, error)
}

func (f *fakeClauseRepo) Create(ctx context.Context, c *models.Clause) error {
	return f.createFn(ctx, c)
}

func (f *fakeClauseRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Clause, error) {
	return f.getByIDFn(ctx, id, includeDeleted)
}

func (f *fakeClauseRepo) ListActive(ctx context.Context, audience *models.ClauseAudience) ([]models.Clause, error) {
	return f.listActiveFn(ctx, audience)
}

func (f *fakeClauseRepo) Update(ctx context.Context, c *models.Clause) error {
	return f.updateFn(ctx, c)
}

func (f *fakeClauseRepo) SoftDelete(ctx context.Context, id int) error {
	return f.softDeleteFn(ctx, id)
}

func (f *fakeClauseRepo) ReplaceSelections(ctx context.Context, notificationID int, selections map[string]int) error {
	return f.replaceSelectionsFn(ctx, notificationID, selections)
}

func (f *fakeClauseRepo) ListSelections(ctx context.Context, notificationID int) ([]models.ClauseSelection, error) {
	return f.listSelectionsFn(ctx, notificationID)
}

type fakeNotificationRepo struct {
	upsertFn           func(ctx context.Context, n *models.Notification) error
	getByIDFn          func(ctx context.Context, id int) (*models.Notification, error)
	getByTournamentFn  func(ctx context.Context, tournamentID int) (*models.Notification, error)
	updateMetadataFn   func(ctx context.Context, id int, metadata *models.NotificationMetadata) error
	updateRecipientsFn func(ctx context.Context, id int, recipients models.NotificationRecipients) error
	updateDocumentsFn  func(ctx context.Context, id int, documents models.NotificationDocuments) error
	markSentFn         func(ctx context.Context, id int) error
}

func (f *fakeNotificationRepo) Upsert(ctx context.Context, n *models.Notification) error {
	return f.upsertFn(ctx, n)
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id int) (*models.Notification, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeNotificationRepo) GetByTournament(ctx context.Context, tournamentID int) (*models.Notification, error) {
	return f.getByTournamentFn(ctx, tournamentID)
}

func (f *fakeNotificationRepo) UpdateMetadata(ctx context.Context, id int, metadata *models.NotificationMetadata) error {
	return f.updateMetadataFn(ctx, id, metadata)
}

func (f *fakeNotificationRepo) UpdateRecipients(ctx context.Context, id int, recipients models.NotificationRecipients) error {
	return f.updateRecipientsFn(ctx, id, recipients)
}

func (f *fakeNotificationRepo) UpdateDocuments(ctx context.Context, id int, documents models.NotificationDocuments) error {
	return f.updateDocumentsFn(ctx, id, documents)
}

func (f *fakeNotificationRepo) MarkSent(ctx context.Context, id int) error {
	return f.markSentFn(ctx, id)
}

type fakeInstitutionalRepo struct {
	getByIDFn    func(ctx context.Context, id int) (*models.InstitutionalEmail, error)
	listActiveFn func(ctx context.Context) ([]models.InstitutionalEmail, error)
}

func (f *fakeInstitutionalRepo) GetByID(ctx context.Context, id int) (*models.InstitutionalEmail, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeInstitutionalRepo) ListActive(ctx context.Context) ([]models.InstitutionalEmail, error) {
	return f.listActiveFn(ctx)
}

type fakeZoneRepo struct {
	getByIDFn func(ctx context.Context, id int) (*models.Zone, error)
	listFn    func(ctx context.Context, onlyActive bool) ([]models.Zone, error)
}

func (f *fakeZoneRepo) GetByID(ctx context.Context, id int) (*models.Zone, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeZoneRepo) List(ctx context.Context, onlyActive bool) ([]models.Zone, error) {
	return f.listFn(ctx, onlyActive)
}

// sentEmail фиксирует один вызов почтового сервиса.
type sentEmail struct {
	to          []string
	subject     string
	body        string
	attachments []EmailAttachment
}

type fakeEmailService struct {
	sent   []sentEmail
	sendFn func(to []string, subject, body string, attachments ...EmailAttachment) error
}

func (f *fakeEmailService) Send(to []string, subject, body string, attachments ...EmailAttachment) error {
	if f.sendFn != nil {
		if err := f.sendFn(to, subject, body, attachments...); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: body, attachments: attachments})
	return nil
}

type fakeUploader struct {
	uploads   []string
	uploadErr error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }
