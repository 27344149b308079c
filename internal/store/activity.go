package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/karpix25/mini-karpix/internal/leaderboard"
	"github.com/karpix25/mini-karpix/internal/models"
)

// UserActivity returns the subscriber row for a user, or nil when the user
// has never been seen. Callers treat a nil row as zero activity; that
// fallback is part of this contract, not an accident of a missing row.
func UserActivity(userID int64) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := db.First(&s, "telegram_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// WindowScores aggregates message points per user since the cutoff. Rows
// are joined to subscribers for display names; users without a subscriber
// row are left out, matching what the leaderboard can actually render.
func WindowScores(since time.Time) ([]leaderboard.Row, error) {
	var rows []leaderboard.Row
	err := db.Model(&models.Message{}).
		Select("messages.user_id AS user_id, SUM(messages.points) AS score, subscribers.first_name AS first_name, subscribers.username AS username").
		Joins("JOIN subscribers ON subscribers.telegram_id = messages.user_id").
		Where("messages.message_date >= ?", since).
		Group("messages.user_id, subscribers.first_name, subscribers.username").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AllTimeScores reads the lifetime counter path: active subscribers with at
// least one counted message, score = message_count * pointsPerMessage. This
// deliberately does not sum message rows; the two paths can drift if events
// are pruned (see DESIGN.md).
func AllTimeScores(pointsPerMessage int) ([]leaderboard.Row, error) {
	var rows []leaderboard.Row
	err := db.Model(&models.Subscriber{}).
		Select("telegram_id AS user_id, message_count * ? AS score, first_name, username", pointsPerMessage).
		Where("is_active = ? AND message_count > 0", true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
