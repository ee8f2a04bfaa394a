package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/apperror"
	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Publisher pushes a stored notification to the recipient's live connections.
type Publisher interface {
	Publish(userID primitive.ObjectID, notif models.Notification)
}

// Mailer sends a notification by e-mail.
type Mailer interface {
	Send(to, subject, body string) error
}

var koreanMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "방금 전", DivBy: time.Second},
	{D: time.Minute, Format: "%d초 %s", DivBy: time.Second},
	{D: time.Hour, Format: "%d분 %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%d시간 %s", DivBy: time.Hour},
	{D: humanize.Week, Format: "%d일 %s", DivBy: humanize.Day},
	{D: humanize.Month, Format: "%d주 %s", DivBy: humanize.Week},
	{D: humanize.Year, Format: "%d개월 %s", DivBy: humanize.Month},
	{D: humanize.LongTime, Format: "%d년 %s", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "오래 %s", DivBy: 1},
}

type NotificationService struct {
	repo      repository.NotificationStore
	users     repository.UserStore
	publisher Publisher
	mailer    Mailer
	locale    string
	now       func() time.Time
}

type NotificationOption func(*NotificationService)

func WithPublisher(p Publisher) NotificationOption {
	return func(s *NotificationService) { s.publisher = p }
}

func WithMailer(m Mailer) NotificationOption {
	return func(s *NotificationService) { s.mailer = m }
}

// WithLocale selects how timeAgo is rendered: "ko" or "en".
func WithLocale(locale string) NotificationOption {
	return func(s *NotificationService) { s.locale = locale }
}

func NewNotificationService(repo repository.NotificationStore, users repository.UserStore, opts ...NotificationOption) *NotificationService {
	s := &NotificationService{repo: repo, users: users, locale: "ko", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNotification stores an unread notification, then pushes it live and
// e-mails it. Only the store write can fail the call.
func (s *NotificationService) CreateNotification(ctx context.Context, userID primitive.ObjectID, message, link string) error {
	notif := &models.Notification{
		UserID:    userID,
		Message:   message,
		Link:      link,
		Read:      false,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		return apperror.Internal("failed to create notification", err)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"notification_id": notif.ID.Hex(),
		"user_id":         userID.Hex(),
	})
	log.Debug("Notification created")

	if s.publisher != nil {
		s.publisher.Publish(userID, *notif)
	}
	if s.mailer != nil {
		s.sendMail(ctx, log, userID, message, link)
	}
	return nil
}

func (s *NotificationService) sendMail(ctx context.Context, log *logrus.Entry, userID primitive.ObjectID, message, link string) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		log.WithError(err).Warn("Skipping notification e-mail, recipient lookup failed")
		return
	}
	if err := s.mailer.Send(user.Email, "Campus Overflow: "+message, message+"\n\n"+link); err != nil {
		log.WithError(err).Warn("Failed to e-mail notification")
	}
}

// GetNotificationsForUser returns the user's notifications newest first with
// TimeAgo rendered for now.
func (s *NotificationService) GetNotificationsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	notifications, err := s.repo.GetUserNotifications(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("failed to get notifications", err)
	}

	now := s.now()
	for i := range notifications {
		notifications[i].TimeAgo = s.timeAgo(notifications[i].CreatedAt, now)
	}
	return notifications, nil
}

func (s *NotificationService) timeAgo(t, now time.Time) string {
	if s.locale == "en" {
		return humanize.RelTime(t, now, "ago", "from now")
	}
	return humanize.CustomRelTime(t, now, "전", "후", koreanMagnitudes)
}

// MarkNotificationAsRead sets read=true. Repeating it is harmless.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.MarkAsRead(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("notification")
	}
	if err != nil {
		return apperror.Internal("failed to mark notification as read", err)
	}
	return nil
}

// MarkOwnNotificationAsRead marks id read on behalf of userID, refusing
// notifications addressed to someone else.
func (s *NotificationService) MarkOwnNotificationAsRead(ctx context.Context, userID, id primitive.ObjectID) error {
	notif, err := s.repo.GetNotificationByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("notification")
	}
	if err != nil {
		return apperror.Internal("failed to mark notification as read", err)
	}
	if notif.UserID != userID {
		return apperror.Forbidden("notification belongs to another user")
	}
	return s.MarkNotificationAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, apperror.Internal("failed to mark notifications as read", err)
	}
	return n, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.Internal("failed to count notifications", err)
	}
	return n, nil
}
