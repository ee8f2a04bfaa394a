package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/services"
	"github.com/gorilla/mux"
)

type QuestionHandler struct {
	Service *services.QuestionService
	Users   *services.UserService
}

func NewQuestionHandler(service *services.QuestionService, users *services.UserService) *QuestionHandler {
	return &QuestionHandler{Service: service, Users: users}
}

type createQuestionRequest struct {
	Title string `json:"title" validate:"required,max=300"`
	Body  string `json:"body" validate:"required"`
	Tags  string `json:"tags"`
	// Mentions is optional. When absent, names come from @name tokens in body.
	Mentions []string `json:"mentions"`
}

type createAnswerRequest struct {
	Body string `json:"body" validate:"required"`
}

// author loads the caller's profile to embed in questions and answers.
func (h *QuestionHandler) author(r *http.Request) (models.Author, error) {
	id, err := callerID(r)
	if err != nil {
		return models.Author{}, err
	}
	user, err := h.Users.GetUserByID(r.Context(), id)
	if err != nil {
		return models.Author{}, err
	}
	return user.AsAuthor(), nil
}

// POST /questions
func (h *QuestionHandler) CreateQuestionHandler(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	author, err := h.author(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.Service.CreateQuestion(r.Context(), services.CreateQuestionInput{
		Title:    req.Title,
		Body:     req.Body,
		Tags:     req.Tags,
		Author:   author,
		Mentions: req.Mentions,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.Hex()})
}

// GET /questions?sort=newest|popular|unanswered&tag=&limit=
func (h *QuestionHandler) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.QuestionFilter{Sort: q.Get("sort"), Tag: q.Get("tag")}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.Limit = n
		}
	}

	questions, err := h.Service.ListQuestions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// GET /questions/{id}
func (h *QuestionHandler) GetQuestionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"], "question")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := h.Service.GetQuestion(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// POST /questions/{id}/answers
func (h *QuestionHandler) CreateAnswerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"], "question")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	author, err := h.author(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := h.Service.CreateAnswer(r.Context(), id, req.Body, author)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}
