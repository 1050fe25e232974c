package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/federgolf/referee-system/config"
	"github.com/federgolf/referee-system/models"
)

func testConfig() *config.Config {
	return &config.Config{
		ZoneEmailPattern:   "szr{zone_id}@federgolf.it",
		FallbackZoneEmail:  "arbitri@federgolf.it",
		NationalEmail:      "crc@federgolf.it",
		NationalFolderCode: "CRC",
		TemplatesDir:       "storage/lettere_intestate",
		OverloadThreshold:  10,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func zonalAvailability(id int) models.Availability {
	return models.Availability{
		ID: id,
		Tournament: &models.Tournament{
			ID:   id * 10,
			Name: "Gara Zonale",
			Type: &models.TournamentType{IsNational: false},
		},
	}
}

func nationalAvailability(id int) models.Availability {
	return models.Availability{
		ID: id,
		Tournament: &models.Tournament{
			ID:         id * 10,
			Name:       "Campionato Nazionale",
			IsNational: true,
		},
	}
}

func TestDetermineRecipientsPartition(t *testing.T) {
	zoneID := 3
	referee := &models.Referee{ID: 1, Email: "mario.rossi@example.com", ZoneID: &zoneID}
	svc := NewRecipientService(nil, nil, nil, nil, testConfig(), testLogger()).(*recipientService)

	availabilities := []models.Availability{
		zonalAvailability(1),
		nationalAvailability(2),
		zonalAvailability(3),
	}

	result := svc.DetermineRecipients(referee, availabilities)

	if result.Zone == nil {
		t.Fatal("zone channel missing")
	}
	if result.Zone.Email != "szr3@federgolf.it" {
		t.Errorf("zone email = %q, want szr3@federgolf.it", result.Zone.Email)
	}
	if len(result.Zone.Availabilities) != 2 {
		t.Errorf("zone availabilities = %d, want 2", len(result.Zone.Availabilities))
	}

	if result.National == nil {
		t.Fatal("national channel missing")
	}
	if result.National.Email != "crc@federgolf.it" {
		t.Errorf("national email = %q, want crc@federgolf.it", result.National.Email)
	}
	if len(result.National.Availabilities) != 1 {
		t.Errorf("national availabilities = %d, want 1", len(result.National.Availabilities))
	}

	if result.Referee.Email != referee.Email {
		t.Errorf("referee email = %q, want %q", result.Referee.Email, referee.Email)
	}
	if len(result.Referee.Availabilities) != 3 {
		t.Errorf("referee availabilities = %d, want 3", len(result.Referee.Availabilities))
	}

	// Строгое разбиение: никакая заявка не попадает в оба комитетских канала.
	seen := make(map[int]string)
	for _, av := range result.Zone.Availabilities {
		seen[av.ID] = "zone"
	}
	for _, av := range result.National.Availabilities {
		if channel, ok := seen[av.ID]; ok {
			t.Errorf("availability %d present in both %s and national channels", av.ID, channel)
		}
	}
}

func TestDetermineRecipientsTypeClassification(t *testing.T) {
	// Национальность берётся и из типа турнира, не только из флага.
	zoneID := 2
	referee := &models.Referee{ID: 1, Email: "r@example.com", ZoneID: &zoneID}
	svc := NewRecipientService(nil, nil, nil, nil, testConfig(), testLogger()).(*recipientService)

	availabilities := []models.Availability{
		{
			ID: 1,
			Tournament: &models.Tournament{
				ID:   1,
				Type: &models.TournamentType{IsNational: true},
			},
		},
	}

	result := svc.DetermineRecipients(referee, availabilities)
	if result.Zone != nil {
		t.Error("zonal channel should be empty for a type-national tournament")
	}
	if result.National == nil || len(result.National.Availabilities) != 1 {
		t.Error("type-national tournament must land in the national channel")
	}
}

func TestDetermineRecipientsEmptyChannelsOmitted(t *testing.T) {
	zoneID := 5
	referee := &models.Referee{ID: 1, Email: "r@example.com", ZoneID: &zoneID}
	svc := NewRecipientService(nil, nil, nil, nil, testConfig(), testLogger()).(*recipientService)

	result := svc.DetermineRecipients(referee, []models.Availability{zonalAvailability(1)})
	if result.National != nil {
		t.Error("national channel should be omitted when there are no national availabilities")
	}

	empty := svc.DetermineRecipients(referee, nil)
	if empty.Zone != nil || empty.National != nil {
		t.Error("both committee channels should be omitted for empty input")
	}
	if len(empty.Referee.Availabilities) != 0 {
		t.Error("referee channel should carry an empty set for empty input")
	}
}

func TestZoneEmailFallbacks(t *testing.T) {
	svc := NewRecipientService(nil, nil, nil, nil, testConfig(), testLogger()).(*recipientService)

	zoneID := 4
	zoneEmail := "nordovest@federgolf.it"
	tests := []struct {
		name    string
		referee *models.Referee
		want    string
	}{
		{
			name:    "pattern from zone id",
			referee: &models.Referee{ZoneID: &zoneID},
			want:    "szr4@federgolf.it",
		},
		{
			name:    "explicit zone email wins over pattern",
			referee: &models.Referee{ZoneID: &zoneID, Zone: &models.Zone{ID: 4, Email: &zoneEmail}},
			want:    zoneEmail,
		},
		{
			name:    "no zone falls back to the shared address",
			referee: &models.Referee{},
			want:    "arbitri@federgolf.it",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.zoneEmail(tt.referee); got != tt.want {
				t.Errorf("zoneEmail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendSeparatedNotifications(t *testing.T) {
	zoneID := 3
	referee := &models.Referee{ID: 9, FirstName: "Anna", LastName: "Bianchi", Email: "anna@example.com", ZoneID: &zoneID}

	refereeRepo := &fakeRefereeRepo{
		getByIDFn: func(ctx context.Context, id int) (*models.Referee, error) {
			return referee, nil
		},
	}
	zoneRepo := &fakeZoneRepo{
		getByIDFn: func(ctx context.Context, id int) (*models.Zone, error) {
			return &models.Zone{ID: id, Code: "SZR3", Name: "Centro"}, nil
		},
	}
	availabilityRepo := &fakeAvailabilityRepo{
		listByIDsFn: func(ctx context.Context, ids []int) ([]models.Availability, error) {
			return []models.Availability{zonalAvailability(1), nationalAvailability(2)}, nil
		},
	}
	email := &fakeEmailService{}

	svc := NewRecipientService(availabilityRepo, refereeRepo, zoneRepo, email, testConfig(), testLogger())
	recipients, err := svc.SendSeparatedNotifications(context.Background(), 9, []int{1, 2})
	if err != nil {
		t.Fatalf("SendSeparatedNotifications: %v", err)
	}

	if len(email.sent) != 3 {
		t.Fatalf("emails sent = %d, want 3 (zone, national, referee)", len(email.sent))
	}

	byRecipient := make(map[string]sentEmail)
	for _, msg := range email.sent {
		byRecipient[msg.to[0]] = msg
	}
	if _, ok := byRecipient["szr3@federgolf.it"]; !ok {
		t.Error("zone committee did not receive an email")
	}
	if _, ok := byRecipient["crc@federgolf.it"]; !ok {
		t.Error("national committee did not receive an email")
	}
	refereeMsg, ok := byRecipient["anna@example.com"]
	if !ok {
		t.Fatal("referee did not receive a summary email")
	}
	if !strings.Contains(refereeMsg.body, "Gara Zonale") || !strings.Contains(refereeMsg.body, "Campionato Nazionale") {
		t.Errorf("referee summary must list every tournament, got: %s", refereeMsg.body)
	}

	if recipients.Zone == nil || recipients.National == nil {
		t.Error("returned recipient map is missing channels")
	}
}
