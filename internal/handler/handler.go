package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/GoArmGo/usersvc/internal/core/ports"
	"github.com/GoArmGo/usersvc/internal/domain"
	"github.com/GoArmGo/usersvc/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// UserHandler обрабатывает HTTP-запросы для работы с пользователями.
// На каждый запрос приходится ровно один вызов репозитория.
type UserHandler struct {
	repo   ports.UserRepository
	logger *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(repo ports.UserRepository, logger *slog.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// createUserRequest это тело POST /users
type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (r createUserRequest) toNewUser() domain.NewUser {
	return domain.NewUser{Username: r.Username, Email: r.Email, Password: r.Password}
}

// respondWithJSON отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// respondStorageFailure отвечает 503 при исчерпании пула, иначе fallback без деталей ошибки.
func respondStorageFailure(w http.ResponseWriter, err error, fallback int, logger *slog.Logger) {
	if errors.Is(err, domain.ErrPoolExhausted) {
		respondWithError(w, http.StatusServiceUnavailable, domain.ErrPoolExhausted.Error(), logger)
		return
	}
	respondWithError(w, fallback, domain.ErrStorageUnavailable.Error(), logger)
}

// decodeJSON читает тело запроса в dst, ошибки формата оборачиваются в ErrMalformedRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedRequest, err)
	}
	// после объекта допускаются только пробелы
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON body", domain.ErrMalformedRequest)
	}
	return nil
}

// userID достаёт id из пути. Некорректный UUID не проходит маршрутизацию.
func userID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// ListUsers обслуживает GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ReadAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		respondStorageFailure(w, err, http.StatusInternalServerError, h.logger)
		return
	}

	h.logger.Debug("users listed", "count", len(users))
	respondWithJSON(w, http.StatusOK, view.UserList(users), h.logger)
}

// GetUser обслуживает GET /users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	user, err := h.repo.Find(r.Context(), id)
	switch {
	case err == nil:
		respondWithJSON(w, http.StatusOK, view.UserDetailsOf(*user), h.logger)
	case errors.Is(err, domain.ErrUserNotFound):
		h.logger.Info("user not found", "id", id)
		respondWithError(w, http.StatusNotFound, domain.ErrUserNotFound.Error(), h.logger)
	default:
		h.logger.Error("failed to get user", "id", id, "error", err)
		respondStorageFailure(w, err, http.StatusInternalServerError, h.logger)
	}
}

// CreateUser обслуживает POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid create user body", "error", err)
		respondWithError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	newUser := req.toNewUser()
	if missing := newUser.MissingFields(); len(missing) > 0 {
		h.logger.Warn("missing required fields", "fields", missing)
		respondWithError(w, http.StatusBadRequest,
			fmt.Sprintf("%s: missing fields: %s", domain.ErrMalformedRequest, strings.Join(missing, ", ")), h.logger)
		return
	}

	user, err := h.repo.Create(r.Context(), newUser)
	switch {
	case err == nil:
		h.logger.Info("user created", "id", user.ID)
		respondWithJSON(w, http.StatusCreated, view.UserCreate(*user), h.logger)
	case errors.Is(err, domain.ErrDuplicateUsername):
		h.logger.Info("duplicate username", "username", newUser.Username)
		respondWithError(w, http.StatusUnprocessableEntity, domain.ErrDuplicateUsername.Error(), h.logger)
	case errors.Is(err, domain.ErrInvalidUser):
		h.logger.Info("user rejected by storage", "username", newUser.Username, "error", err)
		respondWithError(w, http.StatusUnprocessableEntity, domain.ErrInvalidUser.Error(), h.logger)
	default:
		h.logger.Error("failed to create user", "error", err)
		respondStorageFailure(w, err, http.StatusInternalServerError, h.logger)
	}
}

// DeleteUser обслуживает DELETE /users/{id}. Удаление несуществующего id даёт 404 с success=false.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	switch {
	case err != nil:
		h.logger.Error("something went really wrong while deleting user", "id", id, "error", err)
		respondStorageFailure(w, err, http.StatusInternalServerError, h.logger)
	case deleted > 0:
		h.logger.Info("user deleted", "id", id)
		respondWithJSON(w, http.StatusOK, view.UserDelete(deleted), h.logger)
	default:
		h.logger.Info("nothing to delete", "id", id)
		respondWithJSON(w, http.StatusNotFound, view.UserDelete(deleted), h.logger)
	}
}
