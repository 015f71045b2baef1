package models

import "context"

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

const (
	// UserContextKey используется как ключ для хранения UserID в контексте запроса.
	UserContextKey contextKey = "userID"
	// RolesContextKey используется как ключ для хранения ролей пользователя в контексте запроса.
	RolesContextKey contextKey = "userRoles"
)

// GetUserIDFromContext извлекает непрозрачный UserID из контекста.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserContextKey).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// GetRolesFromContext извлекает срез ролей из контекста.
func GetRolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(RolesContextKey).([]string)
	return roles, ok
}
