package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Имена JWT claims, согласованные с utils.GenerateJWT.
const (
	jwtClaimUserID = "user_id"
	jwtClaimRole   = "role"
	jwtClaimZoneID = "zone_id"
)

func claimsFromContext(ctx context.Context) (jwt.MapClaims, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return nil, errors.New("user claims not found in context or invalid type")
	}
	return claims, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return 0, err
	}

	raw, ok := claims[jwtClaimUserID]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
	}
	// JSON-числа парсятся как float64.
	value, ok := raw.(float64)
	if !ok || value != float64(int(value)) || int(value) <= 0 {
		return 0, fmt.Errorf("invalid '%s' claim: %v", jwtClaimUserID, raw)
	}
	return int(value), nil
}

func GetUserRoleFromContext(ctx context.Context) (string, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}

	raw, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	role, ok := raw.(string)
	if !ok || role == "" {
		return "", fmt.Errorf("invalid '%s' claim: %v", jwtClaimRole, raw)
	}
	return role, nil
}

// GetZoneIDFromContext возвращает зону пользователя либо nil для
// пользователей без зоны (национальные администраторы).
func GetZoneIDFromContext(ctx context.Context) (*int, error) {
	claims, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	raw, ok := claims[jwtClaimZoneID]
	if !ok {
		return nil, nil
	}
	value, ok := raw.(float64)
	if !ok || value != float64(int(value)) {
		return nil, fmt.Errorf("invalid '%s' claim: %v", jwtClaimZoneID, raw)
	}
	zoneID := int(value)
	return &zoneID, nil
}
