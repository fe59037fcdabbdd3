package routes

import (
	"net/http"

	"feedgram/app/auth"
	"feedgram/app/controllers"
	"feedgram/app/media"
	"feedgram/app/middleware"
	"feedgram/app/repositories"
	"feedgram/app/services"
	"feedgram/app/views"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps are the collaborators the router wires into controllers.
type Deps struct {
	Store           *repositories.Store
	Media           *media.Store
	Sessions        *auth.Sessions
	Views           *views.Renderer
	Logger          *zap.Logger
	StrictOwnership bool
	CORSOrigins     []string
	// PasswordCost overrides the bcrypt cost when non-zero.
	PasswordCost int
}

// SetupRoutes defines the application's routes and returns the handler to serve.
func SetupRoutes(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Views == nil {
		d.Views = views.MustNew()
	}

	postService := services.NewPostService(d.Store.Posts(), d.Store.Comments())
	postService.SetStrictOwnership(d.StrictOwnership)
	commentService := services.NewCommentService(d.Store.Comments(), d.Store.Posts())
	userService := services.NewUserService(d.Store.Users())
	if d.PasswordCost != 0 {
		userService.SetHashCost(d.PasswordCost)
	}

	postController := controllers.NewPostController(postService, d.Media, d.Views, d.Logger)
	commentController := controllers.NewCommentController(commentService, postService, d.Views, d.Logger)
	userController := controllers.NewUserController(userService, d.Sessions, d.Views, d.Logger)

	router := mux.NewRouter()
	router.Use(d.Sessions.Authenticate(userService, d.Logger))

	// Public web endpoints
	router.HandleFunc("/signup", userController.SignupForm).Methods("GET")
	router.HandleFunc("/signup", userController.Signup).Methods("POST")
	router.HandleFunc("/login", userController.LoginForm).Methods("GET")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/logout", userController.Logout).Methods("POST")
	router.PathPrefix(d.Media.URLPrefix()).Handler(d.Media.Handler()).Methods("GET", "HEAD")

	// API routes with JSON content type
	api := mux.NewRouter()
	api.Use(middleware.ContentTypeJSON)
	api.Use(auth.RequireUser)
	api.HandleFunc("/api/feed", postController.Feed).Methods("GET")
	api.HandleFunc("/api/search", postController.Search).Methods("GET")
	api.HandleFunc("/api/tag/{tag}", postController.ByTag).Methods("GET")
	api.HandleFunc("/api/tags", postController.TagCloud).Methods("GET")
	api.HandleFunc("/api/like/{postId:[0-9]+}", postController.Like).Methods("POST")
	router.PathPrefix("/api/").Handler(withCORS(api, d.CORSOrigins))

	// Everything else needs a logged in user
	web := router.NewRoute().Subrouter()
	web.Use(auth.RequireUser)

	web.HandleFunc("/", postController.Feed).Methods("GET")
	web.HandleFunc("/feed", postController.Feed).Methods("GET")
	web.HandleFunc("/search", postController.Search).Methods("GET")
	web.HandleFunc("/tags", postController.TagCloud).Methods("GET")
	web.HandleFunc("/tag/{tag}", postController.ByTag).Methods("GET")

	web.HandleFunc("/write-post", postController.New).Methods("GET")
	web.HandleFunc("/write-post", postController.Create).Methods("POST")
	web.HandleFunc("/edit-post/{postId:[0-9]+}", postController.Edit).Methods("GET")
	web.HandleFunc("/edit-post/{postId:[0-9]+}", postController.Update).Methods("POST")
	web.HandleFunc("/delete-post/{postId:[0-9]+}", postController.Delete)
	web.HandleFunc("/like/{postId:[0-9]+}", postController.Like)

	web.HandleFunc("/comment/{postId:[0-9]+}", commentController.Create).Methods("POST")
	web.HandleFunc("/comment-delete/{commentId:[0-9]+}", commentController.Delete).Methods("POST")

	return middleware.Logger(d.Logger)(middleware.Recoverer(d.Logger)(router))
}

func withCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return h
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		handlers.AllowCredentials(),
	)(h)
}
