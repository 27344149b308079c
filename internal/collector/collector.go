// Package collector runs the group bot that turns member messages into
// activity counters and point events.
package collector

import (
	"log"
	"time"

	tele "gopkg.in/telebot.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/karpix25/mini-karpix/internal/models"
	"github.com/karpix25/mini-karpix/internal/store"
)

type Collector struct {
	GroupID          int64
	PointsPerMessage int
}

// Register wires the bot handlers. Only traffic from the configured group
// is recorded.
func (col *Collector) Register(b *tele.Bot) {
	b.Handle(tele.OnText, func(c tele.Context) error {
		if c.Chat() == nil || c.Chat().ID != col.GroupID || c.Sender() == nil {
			return nil
		}
		if err := col.RecordMessage(c.Sender(), int64(c.Message().ID)); err != nil {
			log.Printf("collector: record message from %d: %v", c.Sender().ID, err)
		}
		return nil
	})

	b.Handle(tele.OnChatMember, func(c tele.Context) error {
		upd := c.ChatMember()
		if upd == nil || upd.Chat.ID != col.GroupID {
			return nil
		}
		member := upd.NewChatMember
		var err error
		switch member.Role {
		case tele.Member, tele.Administrator, tele.Creator:
			err = col.SetMembership(member.User, true)
		case tele.Left, tele.Kicked:
			err = col.SetMembership(member.User, false)
		}
		if err != nil {
			log.Printf("collector: membership update for %d: %v", member.User.ID, err)
		}
		return nil
	})
}

// RecordMessage bumps the lifetime counter and appends a point event, in one
// transaction. A first-time sender gets a subscriber row with count 1. The
// counter and the event log are written together but never reconciled
// afterwards; the all-time and windowed leaderboards read different ones.
func (col *Collector) RecordMessage(from *tele.User, messageID int64) error {
	db := store.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Subscriber{}).
			Where("telegram_id = ?", from.ID).
			UpdateColumn("message_count", gorm.Expr("message_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			sub := models.Subscriber{
				TelegramID:   from.ID,
				Username:     from.Username,
				FirstName:    from.FirstName,
				MessageCount: 1,
				IsActive:     true,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.Message{
			UserID:    from.ID,
			MessageID: messageID,
			Points:    col.PointsPerMessage,
		}).Error
	})
}

// SetMembership upserts the subscriber's active flag on join/leave updates.
func (col *Collector) SetMembership(user *tele.User, active bool) error {
	db := store.GetDB()
	if active {
		sub := models.Subscriber{
			TelegramID: user.ID,
			Username:   user.Username,
			FirstName:  user.FirstName,
			IsActive:   true,
		}
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true, "unsubscription_date": nil}),
		}).Create(&sub).Error
	}
	now := time.Now()
	return db.Model(&models.Subscriber{}).
		Where("telegram_id = ?", user.ID).
		Updates(map[string]interface{}{"is_active": false, "unsubscription_date": &now}).Error
}
