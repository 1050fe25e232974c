package services

import (
	"context"
	"errors"
	"testing"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

type fakeRecipientService struct {
	sentFor []int
}

func (f *fakeRecipientService) DetermineRecipients(referee *models.Referee, availabilities []models.Availability) *models.RecipientMap {
	return &models.RecipientMap{}
}

func (f *fakeRecipientService) SendSeparatedNotifications(ctx context.Context, refereeID int, availabilityIDs []int) (*models.RecipientMap, error) {
	f.sentFor = append(f.sentFor, availabilityIDs...)
	return &models.RecipientMap{}, nil
}

func TestDeclareBatchSkipsDuplicates(t *testing.T) {
	nextID := 0
	repo := &fakeAvailabilityRepo{
		createFn: func(ctx context.Context, av *models.Availability) error {
			// Турнир 20 уже заявлен этим арбитром.
			if av.TournamentID == 20 {
				return repositories.ErrAvailabilityDuplicate
			}
			nextID++
			av.ID = nextID
			return nil
		},
	}
	recipients := &fakeRecipientService{}
	svc := NewAvailabilityService(repo, recipients, testLogger())

	result, err := svc.DeclareBatch(context.Background(), 7, []int{10, 20, 30}, nil)
	if err != nil {
		t.Fatalf("DeclareBatch: %v", err)
	}
	if result == nil {
		t.Fatal("DeclareBatch returned nil recipient map")
	}
	if len(recipients.sentFor) != 2 {
		t.Errorf("notified availabilities = %v, want the two newly created ones", recipients.sentFor)
	}
}

func TestDeclareBatchAllDuplicates(t *testing.T) {
	repo := &fakeAvailabilityRepo{
		createFn: func(ctx context.Context, av *models.Availability) error {
			return repositories.ErrAvailabilityDuplicate
		},
	}
	recipients := &fakeRecipientService{}
	svc := NewAvailabilityService(repo, recipients, testLogger())

	_, err := svc.DeclareBatch(context.Background(), 7, []int{10, 20}, nil)
	if !errors.Is(err, ErrAvailabilityConflict) {
		t.Fatalf("DeclareBatch error = %v, want ErrAvailabilityConflict", err)
	}
	if len(recipients.sentFor) != 0 {
		t.Error("no notifications may be sent when nothing was created")
	}
}

func TestDeclareBatchRejectsEmptyList(t *testing.T) {
	svc := NewAvailabilityService(&fakeAvailabilityRepo{}, &fakeRecipientService{}, testLogger())

	_, err := svc.DeclareBatch(context.Background(), 7, nil, nil)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("DeclareBatch error = %v, want ErrValidationFailed", err)
	}
}

func TestWithdrawNotFound(t *testing.T) {
	repo := &fakeAvailabilityRepo{
		deleteFn: func(ctx context.Context, id int) error {
			return repositories.ErrAvailabilityNotFound
		},
	}
	svc := NewAvailabilityService(repo, &fakeRecipientService{}, testLogger())

	if err := svc.Withdraw(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Withdraw error = %v, want ErrNotFound", err)
	}
}
