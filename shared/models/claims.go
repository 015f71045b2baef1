package models

import "github.com/golang-jwt/jwt/v5"

// Claims представляет стандартные поля JWT и пользовательские данные токена.
// UserID - непрозрачный идентификатор пользователя клиентского приложения;
// подпись токена обязательно проверяется (authutils.JWTVerifier), декодирование
// клеймов без верификации не допускается.
type Claims struct {
	UserID               string   `json:"user_id"`
	Roles                []string `json:"roles,omitempty"`
	jwt.RegisteredClaims          // Issuer, Subject, ExpiresAt, IssuedAt, ID (JTI) и т.д.
}

// IsAdmin сообщает, есть ли у пользователя административная роль.
func (c *Claims) IsAdmin() bool {
	return HasRole(c.Roles, RoleAdmin)
}
