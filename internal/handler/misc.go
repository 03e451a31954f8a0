package handler

import (
	"log/slog"
	"net/http"
)

type echoRequest struct {
	Data map[string]string `json:"data"`
}

// Ping обслуживает GET /ping, проверка живости
func Ping(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true}, logger)
	}
}

// Echo обслуживает POST /echo и возвращает объект data из тела как есть
func Echo(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req echoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}
		if req.Data == nil {
			req.Data = map[string]string{}
		}
		respondWithJSON(w, http.StatusOK, req.Data, logger)
	}
}
