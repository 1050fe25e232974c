package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

// AvailabilityService принимает заявки арбитров на турниры. Пакетная подача
// завершается раздельной рассылкой по комитетским каналам.
type AvailabilityService interface {
	// DeclareBatch создаёт заявки на перечисленные турниры и рассылает
	// раздельные уведомления. Дубликаты заявок пропускаются молча:
	// повторная подача той же формы не должна падать.
	DeclareBatch(ctx context.Context, refereeID int, tournamentIDs []int, notes *string) (*models.RecipientMap, error)
	ListByReferee(ctx context.Context, refereeID int) ([]models.Availability, error)
	Withdraw(ctx context.Context, id int) error
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	recipients       RecipientService
	logger           *slog.Logger
}

func NewAvailabilityService(
	availabilityRepo repositories.AvailabilityRepository,
	recipients RecipientService,
	logger *slog.Logger,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		recipients:       recipients,
		logger:           logger,
	}
}

func (s *availabilityService) DeclareBatch(ctx context.Context, refereeID int, tournamentIDs []int, notes *string) (*models.RecipientMap, error) {
	if len(tournamentIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one tournament is required", ErrValidationFailed)
	}

	created := make([]int, 0, len(tournamentIDs))
	for _, tournamentID := range tournamentIDs {
		av := &models.Availability{
			RefereeID:    refereeID,
			TournamentID: tournamentID,
			Notes:        notes,
		}
		if err := s.availabilityRepo.Create(ctx, av); err != nil {
			if errors.Is(err, repositories.ErrAvailabilityDuplicate) {
				s.logger.Info("availability already declared",
					"referee_id", refereeID, "tournament_id", tournamentID)
				continue
			}
			return nil, fmt.Errorf("failed to declare availability for tournament %d: %w", tournamentID, err)
		}
		created = append(created, av.ID)
	}

	if len(created) == 0 {
		return nil, ErrAvailabilityConflict
	}

	return s.recipients.SendSeparatedNotifications(ctx, refereeID, created)
}

func (s *availabilityService) ListByReferee(ctx context.Context, refereeID int) ([]models.Availability, error) {
	return s.availabilityRepo.ListByReferee(ctx, refereeID)
}

func (s *availabilityService) Withdraw(ctx context.Context, id int) error {
	if err := s.availabilityRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrAvailabilityNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
