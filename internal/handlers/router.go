package handlers

import (
	"net/http"

	"github.com/Dias221467/Campus_Overflow/pkg/middleware"
	"github.com/gorilla/mux"
)

// Routes collects everything the router dispatches to.
type Routes struct {
	Users         *UserHandler
	Questions     *QuestionHandler
	Notifications *NotificationHandler
	Suggestions   *SuggestionHandler
	Hub           *NotificationHub
	Verifier      middleware.TokenVerifier
}

func NewRouter(rt Routes) *mux.Router {
	router := mux.NewRouter()
	auth := middleware.AuthMiddleware(rt.Verifier)

	router.HandleFunc("/health", HealthHandler).Methods("GET")

	// User routes
	router.HandleFunc("/users/register", rt.Users.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", rt.Users.LoginUserHandler).Methods("POST")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(auth)
	protectedUserRoutes.HandleFunc("/me", rt.Users.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", rt.Users.GetUserHandler).Methods("GET")
	protectedUserRoutes.Handle("/{id}", middleware.RequireSelf("id")(http.HandlerFunc(rt.Users.UpdateUserHandler))).Methods("PATCH")

	// Question routes: reads are public, writes need a user
	router.HandleFunc("/questions", rt.Questions.ListQuestionsHandler).Methods("GET")
	router.HandleFunc("/questions/{id}", rt.Questions.GetQuestionHandler).Methods("GET")
	router.Handle("/questions", auth(http.HandlerFunc(rt.Questions.CreateQuestionHandler))).Methods("POST")
	router.Handle("/questions/{id}/answers", auth(http.HandlerFunc(rt.Questions.CreateAnswerHandler))).Methods("POST")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(auth)
	protectedNotificationRoutes.HandleFunc("", rt.Notifications.GetUserNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/unread-count", rt.Notifications.UnreadCountHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/read-all", rt.Notifications.MarkAllAsReadHandler).Methods("POST")
	protectedNotificationRoutes.HandleFunc("/{id}/read", rt.Notifications.MarkAsReadHandler).Methods("POST")

	// AI assistance
	protectedAIRoutes := router.PathPrefix("/ai").Subrouter()
	protectedAIRoutes.Use(auth)
	protectedAIRoutes.HandleFunc("/tags", rt.Suggestions.SuggestTagsHandler).Methods("POST")
	protectedAIRoutes.HandleFunc("/recommend-users", rt.Suggestions.RecommendUsersHandler).Methods("POST")
	protectedAIRoutes.HandleFunc("/mentions", rt.Suggestions.DetectMentionsHandler).Methods("POST")

	// WebSocket authenticates with the token query parameter itself
	router.HandleFunc("/ws/notifications", rt.Hub.ServeWS)

	router.Use(middleware.LoggingMiddleware)
	return router
}
