package handlers

import (
	"net/http"

	"github.com/Dias221467/Campus_Overflow/internal/services"
)

type SuggestionHandler struct {
	Service *services.SuggestionService
}

func NewSuggestionHandler(service *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{Service: service}
}

type suggestionRequest struct {
	Text string `json:"text" validate:"required"`
}

// POST /ai/tags
func (h *SuggestionHandler) SuggestTagsHandler(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := h.Service.SuggestTags(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// POST /ai/recommend-users
func (h *SuggestionHandler) RecommendUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	names, err := h.Service.RecommendUsers(r.Context(), req.Text, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"recommendedUsernames": names})
}

// POST /ai/mentions
func (h *SuggestionHandler) DetectMentionsHandler(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	names, err := h.Service.DetectMentions(r.Context(), req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"mentionedUsernames": names})
}
