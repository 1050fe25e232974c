package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
	"github.com/federgolf/referee-system/utils"
)

const minPasswordLength = 8

// AuthService обрабатывает вход, регистрацию и профиль арбитра.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (string, *models.Referee, error)
	Register(ctx context.Context, referee *models.Referee, password string) error
	// UpdateProfile обновляет имя, e-mail и контактные данные арбитра.
	// Роль, зона и пароль этим методом не меняются.
	UpdateProfile(ctx context.Context, refereeID int, update *models.Referee) (*models.Referee, error)
}

type authService struct {
	refereeRepo repositories.RefereeRepository
	jwtSecret   []byte
}

func NewAuthService(refereeRepo repositories.RefereeRepository, jwtSecret []byte) AuthService {
	return &authService{refereeRepo: refereeRepo, jwtSecret: jwtSecret}
}

func (s *authService) Login(ctx context.Context, creds models.Credentials) (string, *models.Referee, error) {
	referee, err := s.refereeRepo.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrRefereeNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load referee: %w", err)
	}
	if !referee.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(creds.Password, referee.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(s.jwtSecret, referee.ID, referee.Role, referee.ZoneID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return token, referee, nil
}

func (s *authService) Register(ctx context.Context, referee *models.Referee, password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if referee.Email == "" || referee.FirstName == "" || referee.LastName == "" {
		return fmt.Errorf("%w: first name, last name and email are required", ErrValidationFailed)
	}
	if referee.Role == "" {
		referee.Role = "referee"
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	referee.PasswordHash = hash
	referee.IsActive = true

	if err := s.refereeRepo.Create(ctx, referee); err != nil {
		if errors.Is(err, repositories.ErrRefereeEmailConflict) {
			return ErrRefereeEmailConflict
		}
		return err
	}
	return nil
}

func (s *authService) UpdateProfile(ctx context.Context, refereeID int, update *models.Referee) (*models.Referee, error) {
	referee, err := s.refereeRepo.GetByID(ctx, refereeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRefereeNotFound) {
			return nil, ErrRefereeNotFound
		}
		return nil, fmt.Errorf("failed to load referee: %w", err)
	}

	if update.FirstName != "" {
		referee.FirstName = update.FirstName
	}
	if update.LastName != "" {
		referee.LastName = update.LastName
	}
	if update.Email != "" {
		referee.Email = update.Email
	}
	if update.RefereeCode != nil {
		referee.RefereeCode = update.RefereeCode
	}

	if err := s.refereeRepo.Update(ctx, referee); err != nil {
		if errors.Is(err, repositories.ErrRefereeEmailConflict) {
			return nil, ErrRefereeEmailConflict
		}
		return nil, err
	}
	return referee, nil
}
