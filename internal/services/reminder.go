package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/logger"
	"gorm.io/gorm"
)

// reminderSweepBatch caps how many due reminders one sweep picks up.
const reminderSweepBatch = 50

type ReminderService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewReminderService(db *gorm.DB, queue TaskQueue) *ReminderService {
	return &ReminderService{db: db, queue: queue}
}

// SweepDue finds tasks whose reminder time has passed and hands each to
// the queue. A task is marked at enqueue time so the next sweep never
// picks it up again. Returns the number of reminders enqueued.
func (s *ReminderService) SweepDue() (int, error) {
	now := time.Now()

	var tasks []models.Task
	err := s.db.
		Where("remind_at IS NOT NULL AND remind_at <= ?", now).
		Where("reminded_at IS NULL").
		Where("status NOT IN ?", []string{models.TaskStatusDone, models.TaskStatusArchived}).
		Limit(reminderSweepBatch).
		Find(&tasks).Error
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for i := range tasks {
		task := &tasks[i]
		assignees, err := task.AssigneeIDs()
		if err != nil {
			logger.Warnf("Task %d has malformed assignees: %v", task.ID, err)
			assignees = nil
		}

		payload := &ReminderTask{
			TaskID:     task.ID,
			Title:      task.Title,
			UserID:     task.UserID,
			AssignedTo: assignees,
			RemindAt:   *task.RemindAt,
		}
		if err := s.queue.Enqueue(payload); err != nil {
			logger.Errorf("Failed to enqueue reminder for task %d: %v", task.ID, err)
			continue
		}

		if err := s.db.Model(task).Update("reminded_at", now).Error; err != nil {
			logger.Errorf("Failed to mark task %d reminded: %v", task.ID, err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// DeliverReminder is the queue-side processor: it notifies the task owner
// and every assignee over the event stream and leaves an audit trail.
func (s *ReminderService) DeliverReminder(ctx context.Context, payload *ReminderTask) error {
	var task models.Task
	if err := s.db.First(&task, payload.TaskID).Error; err != nil {
		// Task deleted between enqueue and delivery, nothing to do
		return nil
	}
	if task.Status == models.TaskStatusDone || task.Status == models.TaskStatusArchived {
		return nil
	}

	recipients := append([]uint{payload.UserID}, payload.AssignedTo...)
	seen := make(map[uint]bool, len(recipients))
	for _, userID := range recipients {
		if userID == 0 || seen[userID] {
			continue
		}
		seen[userID] = true
		PublishReminderEvent(userID, &task)
	}

	LogInfo("reminder", "deliver", fmt.Sprintf("Reminder delivered for task %q (id=%d)", task.Title, task.ID), &task.UserID, "", "", nil)
	return nil
}

var reminderCron *cron.Cron

// StartReminderScheduler sweeps for due reminders every minute.
func StartReminderScheduler(svc *ReminderService) {
	if reminderCron != nil {
		return
	}

	reminderCron = cron.New()
	_, err := reminderCron.AddFunc("@every 1m", func() {
		n, err := svc.SweepDue()
		if err != nil {
			logger.Errorf("Reminder sweep failed: %v", err)
			return
		}
		if n > 0 {
			logger.Infof("Reminder sweep enqueued %d reminder(s)", n)
		}
	})
	if err != nil {
		logger.Errorf("Failed to schedule reminder sweep: %v", err)
		return
	}

	reminderCron.Start()
	logger.Infof("Reminder scheduler started (every minute)")
}

// StopReminderScheduler stops the sweep loop.
func StopReminderScheduler() {
	if reminderCron != nil {
		reminderCron.Stop()
		reminderCron = nil
		logger.Infof("Reminder scheduler stopped")
	}
}
