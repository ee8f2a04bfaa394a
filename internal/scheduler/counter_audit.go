package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Campus_Overflow/internal/models"
	"github.com/Dias221467/Campus_Overflow/internal/repository"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const auditTimeout = 5 * time.Minute

// AuditReport summarizes one pass over all questions.
type AuditReport struct {
	Checked int
	Drifted int
	Fixed   int
	// Skipped counts drifted questions that took an answer mid-repair.
	// They are left for the next run.
	Skipped int
}

// CounterAudit compares each question's answersCount with its stored
// answers. With fix set it replaces a drifted counter with the real count,
// provided the counter has not moved since it was read.
type CounterAudit struct {
	questions repository.QuestionStore
	fix       bool
}

func NewCounterAudit(questions repository.QuestionStore, fix bool) *CounterAudit {
	return &CounterAudit{questions: questions, fix: fix}
}

func (a *CounterAudit) Run(ctx context.Context) (AuditReport, error) {
	var report AuditReport

	questions, err := a.questions.ListQuestions(ctx, models.QuestionFilter{Sort: models.SortNewest})
	if err != nil {
		return report, fmt.Errorf("failed to list questions: %w", err)
	}

	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		actual, err := a.questions.CountAnswers(ctx, q.ID)
		if err != nil {
			logger.Log.WithError(err).WithField("question_id", q.ID.Hex()).Warn("Failed to count answers")
			continue
		}
		if actual == q.AnswersCount {
			continue
		}

		report.Drifted++
		log := logger.Log.WithFields(logrus.Fields{
			"question_id": q.ID.Hex(),
			"stored":      q.AnswersCount,
			"actual":      actual,
		})
		if !a.fix {
			log.Warn("answersCount drift detected")
			continue
		}
		err = a.questions.SetAnswersCount(ctx, q.ID, q.AnswersCount, actual)
		if errors.Is(err, repository.ErrTxConflict) {
			report.Skipped++
			log.Info("answersCount changed during audit, repair skipped")
			continue
		}
		if err != nil {
			log.WithError(err).Error("Failed to repair answersCount")
			continue
		}
		report.Fixed++
		log.Info("answersCount repaired")
	}
	return report, nil
}

// StartCounterAudit runs audit on schedule until the returned cron is stopped.
func StartCounterAudit(schedule string, audit *CounterAudit) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		report, err := audit.Run(ctx)
		if err != nil {
			logger.Log.WithError(err).Error("Counter audit failed")
			return
		}
		logger.Log.WithFields(logrus.Fields{
			"checked": report.Checked,
			"drifted": report.Drifted,
			"fixed":   report.Fixed,
			"skipped": report.Skipped,
		}).Info("Counter audit finished")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}
