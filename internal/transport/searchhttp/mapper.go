package searchhttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"
	"property_search/internal/services/session"

	"github.com/go-chi/chi/v5/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFromError переводит ошибки домена в HTTP-статусы.
func statusFromError(err error) int {
	var netErr *domain.NetworkError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case isValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	_, ok := domain.IsValidation(err)
	return ok
}

// messageFromError текст для пользователя. Внутренние детали наружу не уходят.
func messageFromError(err error, view *session.View) string {
	if ve, ok := domain.IsValidation(err); ok {
		return ve.Message
	}
	if view != nil && view.Error != "" {
		return view.Error
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "session not found"
	}
	return domain.MsgSearchFailed
}

// writeError отвечает ошибкой. Если сессия известна, к ответу прикладывается её вид.
func (s *serverAPI) writeError(w http.ResponseWriter, r *http.Request, op string, err error, sess *session.Session) {
	status := statusFromError(err)

	var view *session.View
	if sess != nil {
		v := sess.View()
		view = &v
	}

	log := s.log.With(slog.String("op", op), slog.String("request_id", middleware.GetReqID(r.Context())))
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Debug("request rejected", sl.Err(err))
	}

	writeJSON(w, status, errorResponse{Error: messageFromError(err, view), View: view})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug("request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
