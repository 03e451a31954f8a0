// internal/domain/user.go
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	Email    string    `json:"email" db:"email"`
	Password string    `json:"-" db:"password"`
}

// NewUser это запрос на создание пользователя, id назначает хранилище.
type NewUser struct {
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
	Password string `json:"password" db:"password"`
}

// MissingFields возвращает имена обязательных полей, которые не заполнены.
func (u NewUser) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(u.Username) == "" {
		missing = append(missing, "username")
	}
	if u.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(u.Email) == "" {
		missing = append(missing, "email")
	}
	return missing
}
