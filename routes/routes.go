package routes

import (
	"net/http"

	"taskboard/handlers"
	"taskboard/middleware"
	"taskboard/repositories"
	"taskboard/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Options struct {
	Tokens      *services.TokenService
	CORSOrigins []string
}

// NewRouter wires the services over store and returns the full HTTP handler.
func NewRouter(store *repositories.Store, opts Options) http.Handler {
	authService := services.NewAuthService(store.Users, opts.Tokens)
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(services.NewProjectService(store))
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(store))
	dashboardHandler := handlers.NewDashboardHandler(services.NewDashboardService(store))

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("", handlers.Health).Methods(http.MethodGet)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.JWTAuth(authService))

	protected.HandleFunc("/users/profile", authHandler.Profile).Methods(http.MethodGet)

	protected.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	protected.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods(http.MethodPut)
	protected.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	protected.HandleFunc("/projects/{id}/collaborators", projectHandler.AddCollaborator).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{id}/collaborators/{userId}", projectHandler.RemoveCollaborator).Methods(http.MethodDelete)

	protected.HandleFunc("/tasks", taskHandler.ListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	protected.HandleFunc("/dashboard/stats", dashboardHandler.Stats).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(r)
}
