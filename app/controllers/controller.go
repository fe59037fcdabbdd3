package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"feedgram/app/auth"
	"feedgram/app/models"
	"feedgram/app/repositories"
	"feedgram/app/services"
	"feedgram/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// base carries the response helpers shared by every controller.
type base struct {
	views  *views.Renderer
	logger *zap.Logger
}

func (b *base) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (b *base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if wantsJSON(r) {
		b.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

// fail maps a service or repository error onto a status code and reports it.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, message := b.classify(r, err)
	b.sendError(w, r, message, status)
}

// classify picks the status for err. Unexpected errors are logged and
// reported as 500.
func (b *base) classify(r *http.Request, err error) (int, string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict, "Conflicting update, try again"
	case errors.Is(err, services.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	}
	b.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	return http.StatusInternalServerError, "Internal Server Error"
}

func (b *base) render(w http.ResponseWriter, r *http.Request, status int, name string, page views.Page) {
	page.User = currentUser(r)
	if err := b.views.Render(w, status, name, page); err != nil {
		b.logger.Error("template error", zap.String("page", name), zap.Error(err))
		b.sendError(w, r, "Template error", http.StatusInternalServerError)
	}
}

func (b *base) redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return auth.WantsJSON(r)
}

func currentUser(r *http.Request) *models.User {
	user, _ := auth.UserFrom(r.Context())
	return user
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
