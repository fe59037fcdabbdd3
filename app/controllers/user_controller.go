package controllers

import (
	"errors"
	"net/http"

	"feedgram/app/auth"
	"feedgram/app/models"
	"feedgram/app/repositories"
	"feedgram/app/services"
	"feedgram/app/views"

	"go.uber.org/zap"
)

// UserController handles signup, login and logout
type UserController struct {
	base
	userService *services.UserService
	sessions    *auth.Sessions
}

type signupForm struct {
	Username string
}

type loginForm struct {
	Username string
	Next     string
}

func NewUserController(userService *services.UserService, sessions *auth.Sessions, renderer *views.Renderer, logger *zap.Logger) *UserController {
	return &UserController{
		base:        base{views: renderer, logger: logger},
		userService: userService,
		sessions:    sessions,
	}
}

func (uc *UserController) SignupForm(w http.ResponseWriter, r *http.Request) {
	if currentUser(r) != nil {
		uc.redirect(w, r, "/feed")
		return
	}
	uc.render(w, r, http.StatusOK, "signup", views.Page{Title: "Sign up", Content: signupForm{}})
}

// Signup creates the account and logs it in.
func (uc *UserController) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")

	user, err := uc.userService.Register(username, r.FormValue("password"))
	if err != nil {
		status, message := http.StatusBadRequest, err.Error()
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			status, message = http.StatusConflict, "That username is taken"
		case !errors.Is(err, services.ErrInvalid):
			uc.fail(w, r, err)
			return
		}
		if wantsJSON(r) {
			uc.sendError(w, r, message, status)
			return
		}
		uc.render(w, r, status, "signup", views.Page{Title: "Sign up", Error: message, Content: signupForm{Username: username}})
		return
	}

	uc.logger.Info("user registered", zap.Int("user_id", user.ID), zap.String("username", user.Username))
	uc.startSession(w, r, user, "/feed")
}

func (uc *UserController) LoginForm(w http.ResponseWriter, r *http.Request) {
	next := auth.SafeNext(r.URL.Query().Get("next"))
	if currentUser(r) != nil {
		uc.redirect(w, r, next)
		return
	}
	uc.render(w, r, http.StatusOK, "login", views.Page{Title: "Log in", Content: loginForm{Next: next}})
}

// Login checks the credentials and returns the caller to next.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		uc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	next := auth.SafeNext(r.FormValue("next"))

	user, err := uc.userService.Authenticate(username, r.FormValue("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		if wantsJSON(r) {
			uc.sendError(w, r, err.Error(), http.StatusUnauthorized)
			return
		}
		uc.render(w, r, http.StatusUnauthorized, "login", views.Page{
			Title:   "Log in",
			Error:   "Invalid username or password",
			Content: loginForm{Username: username, Next: next},
		})
		return
	}
	if err != nil {
		uc.fail(w, r, err)
		return
	}

	uc.startSession(w, r, user, next)
}

// Logout clears the session cookie.
func (uc *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	uc.sessions.Clear(w)
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	uc.redirect(w, r, "/login")
}

func (uc *UserController) startSession(w http.ResponseWriter, r *http.Request, user *models.User, next string) {
	token, err := uc.sessions.Issue(w, user)
	if err != nil {
		uc.fail(w, r, err)
		return
	}
	if wantsJSON(r) {
		uc.sendJSON(w, http.StatusOK, map[string]interface{}{
			"user":  AuthorView{ID: user.ID, Username: user.Username},
			"token": token,
		})
		return
	}
	uc.redirect(w, r, next)
}
