package handlers

import (
	"net/http"

	"github.com/Dias221467/Campus_Overflow/internal/apperror"
	"github.com/Dias221467/Campus_Overflow/internal/config"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/services"
	jwtutil "github.com/Dias221467/Campus_Overflow/pkg/jwt"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/gorilla/mux"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{Service: service, Config: cfg}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /users/register
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.CreateUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// POST /users/login
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	if h.Config.AuthProvider == config.AuthFirebase {
		writeError(w, r, apperror.Validation("sign in with Firebase and send the ID token as a bearer token"))
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		writeError(w, r, apperror.Internal("failed to generate token", err))
		return
	}

	logger.Log.WithField("user_id", user.ID.Hex()).Info("User logged in")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GET /users/me
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GET /users/{id}
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"], "user")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Service.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PATCH /users/{id}, routed behind RequireSelf.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"], "user")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var update models.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.Service.UpdateUserProfile(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Log.WithField("user_id", id.Hex()).Info("Profile updated")
	writeJSON(w, http.StatusOK, user)
}
