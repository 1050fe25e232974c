package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/federgolf/referee-system/config"
	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

// RecipientService разбивает заявки арбитра на каналы уведомлений и
// рассылает по этим каналам отдельные письма. Зональный комитет видит
// только зональные турниры, национальный (CRC) — только национальные,
// сам арбитр получает полную сводку.
type RecipientService interface {
	DetermineRecipients(referee *models.Referee, availabilities []models.Availability) *models.RecipientMap
	SendSeparatedNotifications(ctx context.Context, refereeID int, availabilityIDs []int) (*models.RecipientMap, error)
}

type recipientService struct {
	availabilityRepo repositories.AvailabilityRepository
	refereeRepo      repositories.RefereeRepository
	zoneRepo         repositories.ZoneRepository
	email            EmailService
	cfg              *config.Config
	logger           *slog.Logger
}

func NewRecipientService(
	availabilityRepo repositories.AvailabilityRepository,
	refereeRepo repositories.RefereeRepository,
	zoneRepo repositories.ZoneRepository,
	email EmailService,
	cfg *config.Config,
	logger *slog.Logger,
) RecipientService {
	return &recipientService{
		availabilityRepo: availabilityRepo,
		refereeRepo:      refereeRepo,
		zoneRepo:         zoneRepo,
		email:            email,
		cfg:              cfg,
		logger:           logger,
	}
}

// DetermineRecipients строит карту каналов. Каждая заявка попадает ровно в
// один комитетский канал (по действующей классификации турнира) и
// дополнительно — в личный канал арбитра. Пустые комитетские каналы в
// карту не включаются.
func (s *recipientService) DetermineRecipients(referee *models.Referee, availabilities []models.Availability) *models.RecipientMap {
	zonal := make([]models.Availability, 0)
	national := make([]models.Availability, 0)
	for _, av := range availabilities {
		if av.Tournament == nil {
			continue
		}
		if av.Tournament.EffectiveNational() {
			national = append(national, av)
		} else {
			zonal = append(zonal, av)
		}
	}

	result := &models.RecipientMap{
		Referee: models.RecipientEntry{
			Email:          referee.Email,
			Availabilities: availabilities,
		},
	}
	if len(zonal) > 0 {
		result.Zone = &models.RecipientEntry{
			Email:          s.zoneEmail(referee),
			Availabilities: zonal,
		}
	}
	if len(national) > 0 {
		result.National = &models.RecipientEntry{
			Email:          s.cfg.NationalEmail,
			Availabilities: national,
		}
	}
	return result
}

// zoneEmail — адрес зонального комитета арбитра по шаблону конфигурации.
// Для арбитра без зоны используется общий резервный адрес.
func (s *recipientService) zoneEmail(referee *models.Referee) string {
	if referee.Zone != nil && referee.Zone.Email != nil && *referee.Zone.Email != "" {
		return *referee.Zone.Email
	}
	if referee.ZoneID == nil {
		return s.cfg.FallbackZoneEmail
	}
	return strings.ReplaceAll(s.cfg.ZoneEmailPattern, "{zone_id}", strconv.Itoa(*referee.ZoneID))
}

// SendSeparatedNotifications загружает заявки, строит карту каналов и
// отправляет по письму в каждый непустой канал.
func (s *recipientService) SendSeparatedNotifications(ctx context.Context, refereeID int, availabilityIDs []int) (*models.RecipientMap, error) {
	referee, err := s.refereeRepo.GetByID(ctx, refereeID)
	if err != nil {
		if err == repositories.ErrRefereeNotFound {
			return nil, ErrRefereeNotFound
		}
		return nil, fmt.Errorf("failed to load referee: %w", err)
	}

	// Подгружаем зону арбитра: у зоны может быть явный адрес комитета,
	// который имеет приоритет над шаблоном.
	if referee.ZoneID != nil {
		zone, zoneErr := s.zoneRepo.GetByID(ctx, *referee.ZoneID)
		if zoneErr != nil && zoneErr != repositories.ErrZoneNotFound {
			return nil, fmt.Errorf("failed to load referee zone: %w", zoneErr)
		}
		referee.Zone = zone
	}

	availabilities, err := s.availabilityRepo.ListByIDsHydrated(ctx, availabilityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load availabilities: %w", err)
	}

	recipients := s.DetermineRecipients(referee, availabilities)

	if recipients.Zone != nil {
		if err := s.sendChannel(referee, recipients.Zone, "Disponibilità arbitrale — torneo zonale"); err != nil {
			return nil, err
		}
	}
	if recipients.National != nil {
		if err := s.sendChannel(referee, recipients.National, "Disponibilità arbitrale — torneo nazionale"); err != nil {
			return nil, err
		}
	}
	if len(recipients.Referee.Availabilities) > 0 {
		if err := s.sendChannel(referee, &recipients.Referee, "Riepilogo disponibilità dichiarate"); err != nil {
			return nil, err
		}
	}

	s.logger.Info("availability notifications dispatched",
		"referee_id", refereeID,
		"zonal", recipients.Zone != nil,
		"national", recipients.National != nil,
		"availabilities", len(availabilities))
	return recipients, nil
}

func (s *recipientService) sendChannel(referee *models.Referee, entry *models.RecipientEntry, subject string) error {
	var body strings.Builder
	body.WriteString(fmt.Sprintf("L'arbitro %s ha dichiarato la disponibilità per i seguenti tornei:\n\n", referee.FullName()))
	for _, av := range entry.Availabilities {
		if av.Tournament == nil {
			continue
		}
		body.WriteString(fmt.Sprintf("- %s (%s - %s)\n",
			av.Tournament.Name,
			av.Tournament.StartDate.Format("02/01/2006"),
			av.Tournament.EndDate.Format("02/01/2006")))
	}

	if err := s.email.Send([]string{entry.Email}, subject, body.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}
