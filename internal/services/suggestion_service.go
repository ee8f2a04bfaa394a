package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Dias221467/Campus_Overflow/internal/apperror"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxSuggestedTags       = 5
	maxRecommendedUsers    = 3
	minMentionDetectLength = 20
)

// Suggester is the model behind question assistance.
type Suggester interface {
	SuggestTags(ctx context.Context, question string) ([]string, error)
	RecommendUsers(ctx context.Context, question string, candidates []models.User) ([]string, error)
	DetectMentions(ctx context.Context, question string, names []string) ([]string, error)
}

// SuggestionService wraps a Suggester with the user directory. Every
// operation is best effort: model errors yield empty results, and without a
// Suggester mentions fall back to @name extraction.
type SuggestionService struct {
	ai    Suggester
	users repository.UserStore
}

func NewSuggestionService(ai Suggester, users repository.UserStore) *SuggestionService {
	return &SuggestionService{ai: ai, users: users}
}

func (s *SuggestionService) SuggestTags(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("text is required")
	}
	if s.ai == nil {
		return []string{}, nil
	}

	raw, err := s.ai.SuggestTags(ctx, text)
	if err != nil {
		logger.Log.WithError(err).Warn("Tag suggestion failed")
		return []string{}, nil
	}

	var cleaned []string
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		cleaned = append(cleaned, strings.Join(strings.Fields(tag), "-"))
	}
	tags := MergeNames(cleaned)
	if len(tags) > maxSuggestedTags {
		tags = tags[:maxSuggestedTags]
	}
	return tags, nil
}

// RecommendUsers proposes up to three existing users, never the requester,
// whose bios fit the question.
func (s *SuggestionService) RecommendUsers(ctx context.Context, text string, requester primitive.ObjectID) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.Validation("text is required")
	}
	if s.ai == nil {
		return []string{}, nil
	}

	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}
	var candidates []models.User
	for _, u := range users {
		if u.ID != requester {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) == 0 {
		return []string{}, nil
	}

	names, err := s.ai.RecommendUsers(ctx, text, candidates)
	if err != nil {
		logger.Log.WithError(err).Warn("User recommendation failed")
		return []string{}, nil
	}

	out := keepKnown(names, candidates)
	if len(out) > maxRecommendedUsers {
		out = out[:maxRecommendedUsers]
	}
	return out, nil
}

// DetectMentions lists existing user names the text refers to. Texts shorter
// than 20 characters are not analysed.
func (s *SuggestionService) DetectMentions(ctx context.Context, text string) ([]string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minMentionDetectLength {
		return []string{}, nil
	}

	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}

	names := ExtractMentions(text)
	if s.ai != nil {
		all := make([]string, 0, len(users))
		for _, u := range users {
			all = append(all, u.Name)
		}
		detected, err := s.ai.DetectMentions(ctx, text, MergeNames(all))
		if err != nil {
			logger.Log.WithError(err).Warn("Mention detection failed, using @name extraction")
		} else {
			names = MergeNames(detected, names)
		}
	}
	return keepKnown(names, users), nil
}

func keepKnown(names []string, users []models.User) []string {
	known := make(map[string]bool, len(users))
	for _, u := range users {
		known[u.Name] = true
	}
	out := []string{}
	for _, n := range MergeNames(names) {
		if known[n] {
			out = append(out, n)
		}
	}
	return out
}
