package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed   = errors.New("validation failed")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Уведомления
	ErrMissingMetadata      = errors.New("notification metadata is missing required fields")
	ErrNotificationNotReady = errors.New("tournament is not ready for notification")

	// Генерация документов
	ErrTemplateNotFound = errors.New("letterhead template not found")
	ErrDocumentAssembly = errors.New("document assembly failed")

	// Почтовый канал: ошибка одного канала не прерывает остальные.
	ErrDispatchFailed = errors.New("dispatch failed for one or more channels")

	// Ошибки, специфичные для сущностей
	ErrRefereeNotFound      = errors.New("referee not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrZoneNotFound         = errors.New("zone not found")
	ErrClauseNotFound       = errors.New("clause not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")

	// Конфликты
	ErrRefereeEmailConflict = errors.New("email address is already in use")
	ErrAssignmentConflict   = errors.New("referee is already assigned to this tournament")
	ErrAvailabilityConflict = errors.New("availability is already declared for this tournament")
	ErrClauseCodeConflict   = errors.New("clause code is already in use")

	// Турниры
	ErrTournamentInvalidDateRange = errors.New("tournament end date must not precede start date")
	ErrTournamentInvalidStatus    = errors.New("invalid tournament status provided")
)
