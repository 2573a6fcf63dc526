package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-escrow/internal/logger"
	"github.com/ignatzorin/freelance-escrow/internal/metrics"
	"github.com/ignatzorin/freelance-escrow/internal/models"
)

// FreelancerFinder ищет активных исполнителей по навыкам.
type FreelancerFinder interface {
	ListFreelancersBySkills(ctx context.Context, skillIDs []uuid.UUID) ([]models.User, error)
}

// MatchingDispatcher уведомляет исполнителей, у которых есть хотя бы один
// из требуемых навыков заказа.
type MatchingDispatcher struct {
	users    FreelancerFinder
	notifier EventNotifier
}

func NewMatchingDispatcher(users FreelancerFinder, notifier EventNotifier) *MatchingDispatcher {
	return &MatchingDispatcher{users: users, notifier: notifier}
}

// Dispatch возвращает число успешно доставленных уведомлений. Заказ без навыков
// никому не рассылается. Ошибка доставки одному получателю не прерывает рассылку остальным.
func (d *MatchingDispatcher) Dispatch(ctx context.Context, job *models.Job) int {
	skillIDs := job.RequiredSkillIDs()
	if len(skillIDs) == 0 {
		return 0
	}

	log := logger.Op("dispatch").WithField("job_id", job.ID)
	freelancers, err := d.users.ListFreelancersBySkills(ctx, skillIDs)
	if err != nil {
		log.WithError(err).Error("не удалось подобрать исполнителей")
		return 0
	}

	delivered := 0
	for i := range freelancers {
		recipient := freelancers[i].ID
		err := d.notifier.Deliver(recipient, models.EventJobMatched, job)
		metrics.DispatchNotification(err)
		if err != nil {
			log.WithFields(logrus.Fields{"freelancer_id": recipient}).WithError(err).Warn("не удалось уведомить исполнителя")
			continue
		}
		delivered++
	}

	log.WithFields(logrus.Fields{
		"matched":   len(freelancers),
		"delivered": delivered,
	}).Info("рассылка заказа завершена")
	return delivered
}
