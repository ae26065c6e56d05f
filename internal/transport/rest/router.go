package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"geoquiz/internal/repository"
	"geoquiz/internal/service"
	"geoquiz/internal/transport/rest/handler"
	"geoquiz/internal/transport/rest/middleware"
	"geoquiz/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService  *service.AuthService
	RoundService *service.RoundService
	ProfileRepo  repository.ProfileRepo
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.RoundService)
	profileHandler := handler.NewProfileHandler(c.ProfileRepo)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/session", sessionHandler.Open).Methods("POST", "OPTIONS")

	// WebSocket score feed (token in query param)
	v1.HandleFunc("/ws/score", wsHandler.ScoreWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Session routes
	sessionRoutes := v1.NewRoute().Subrouter()
	sessionRoutes.Use(authMW.RequireSession)

	sessionRoutes.HandleFunc("/quiz/start", quizHandler.Start).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz", quizHandler.State).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/goto", quizHandler.Goto).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/next", quizHandler.Next).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/prev", quizHandler.Prev).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/answer", quizHandler.Answer).Methods("POST", "OPTIONS")
	sessionRoutes.HandleFunc("/quiz/score", quizHandler.Score).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/profile", profileHandler.Get).Methods("GET", "OPTIONS")
	sessionRoutes.HandleFunc("/profile", profileHandler.Update).Methods("PUT", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
