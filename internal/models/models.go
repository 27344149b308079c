package models

import "time"

// Subscriber is one known member of the community group. MessageCount is the
// lifetime activity counter the all-time leaderboard and tier computation
// read; it is incremented by the collector together with a Message row, but
// the two are never reconciled (see DESIGN.md).
type Subscriber struct {
	TelegramID         int64      `json:"telegram_id" gorm:"primaryKey"`
	Username           string     `json:"username"`
	FirstName          string     `json:"first_name"`
	SubscriptionDate   time.Time  `json:"subscription_date" gorm:"autoCreateTime"`
	UnsubscriptionDate *time.Time `json:"unsubscription_date"`
	MessageCount       int        `json:"message_count" gorm:"default:0"`
	IsActive           bool       `json:"is_active" gorm:"default:true"`
}

// Message is one scored group message, append-only. Windowed leaderboards
// sum Points over these rows.
type Message struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"user_id" gorm:"index:idx_messages_date_user,priority:2"`
	MessageID   int64     `json:"message_id"`
	MessageDate time.Time `json:"message_date" gorm:"autoCreateTime;index:idx_messages_date_user,priority:1"`
	Points      int       `json:"points"`
}

type Course struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug         string `json:"slug" gorm:"uniqueIndex;not null"`
	Title        string `json:"title" gorm:"not null"`
	RankRequired int    `json:"rank_required" gorm:"default:1"`
	SortOrder    int    `json:"sort_order" gorm:"default:0"`
}

type Lesson struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CourseSlug   string    `json:"course_slug" gorm:"index;not null"`
	SectionID    string    `json:"section_id" gorm:"not null"`
	SectionTitle string    `json:"section_title"`
	LessonSlug   string    `json:"lesson_slug" gorm:"not null"`
	Title        string    `json:"title" gorm:"not null"`
	Content      string    `json:"content"`
	SortOrder    int       `json:"sort_order" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LessonCompletion marks a lesson done for a user; the unique index makes
// repeat completions a no-op.
type LessonCompletion struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"user_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID    uint      `json:"lesson_id" gorm:"uniqueIndex:idx_user_lesson;not null"`
	CompletedAt time.Time `json:"completed_at" gorm:"autoCreateTime"`
}

type Admin struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}
