// Package view проецирует пользователей в тела HTTP-ответов.
// Ни одна функция не возвращает настоящий пароль.
package view

import (
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/google/uuid"
)

// PasswordMask подставляется вместо пароля в детальном представлении
const PasswordMask = "*****"

// UserListItem элемент списка, пароля нет вовсе
type UserListItem struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// UserDetails детальное представление с замаскированным паролем
type UserDetails struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	Email    string    `json:"email"`
}

// UserCreated ответ на создание, только id
type UserCreated struct {
	ID uuid.UUID `json:"id"`
}

// DeleteResult ответ на удаление
type DeleteResult struct {
	Success bool `json:"success"`
}

func UserList(users []domain.User) []UserListItem {
	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserListItem{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	return items
}

func UserDetailsOf(u domain.User) UserDetails {
	return UserDetails{ID: u.ID, Username: u.Username, Password: PasswordMask, Email: u.Email}
}

func UserCreate(u domain.User) UserCreated {
	return UserCreated{ID: u.ID}
}

func UserDelete(deleted int64) DeleteResult {
	return DeleteResult{Success: deleted > 0}
}
