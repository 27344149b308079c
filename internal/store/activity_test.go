package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/karpix25/mini-karpix/internal/models"
)

func setupDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := InitDB(dsn)
	require.NoError(t, err)
	SetDB(d)
}

func TestUserActivityNilForUnknown(t *testing.T) {
	setupDB(t)

	s, err := UserActivity(12345)
	require.NoError(t, err)
	require.Nil(t, s)

	require.NoError(t, db.Create(&models.Subscriber{TelegramID: 12345, FirstName: "Ada", MessageCount: 7}).Error)
	s, err = UserActivity(12345)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, 7, s.MessageCount)
}

func TestWindowScoresAggregates(t *testing.T) {
	setupDB(t)
	require.NoError(t, db.Create(&models.Subscriber{TelegramID: 1, FirstName: "A", Username: "a", MessageCount: 3}).Error)
	require.NoError(t, db.Create(&models.Subscriber{TelegramID: 2, FirstName: "B", Username: "b", MessageCount: 1}).Error)

	now := time.Now()
	msgs := []models.Message{
		{UserID: 1, MessageID: 1, MessageDate: now.Add(-time.Hour), Points: 2},
		{UserID: 1, MessageID: 2, MessageDate: now.Add(-2 * time.Hour), Points: 2},
		{UserID: 1, MessageID: 3, MessageDate: now.Add(-40 * 24 * time.Hour), Points: 2}, // outside
		{UserID: 2, MessageID: 4, MessageDate: now.Add(-time.Hour), Points: 2},
		{UserID: 99, MessageID: 5, MessageDate: now.Add(-time.Hour), Points: 2}, // no subscriber row
	}
	for i := range msgs {
		require.NoError(t, db.Create(&msgs[i]).Error)
	}

	rows, err := WindowScores(now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[int64]int{}
	for _, r := range rows {
		byID[r.UserID] = r.Score
	}
	require.Equal(t, 4, byID[1])
	require.Equal(t, 2, byID[2])
}

func TestAllTimeScoresFiltersInactiveAndZero(t *testing.T) {
	setupDB(t)
	subs := []models.Subscriber{
		{TelegramID: 1, FirstName: "A", MessageCount: 10, IsActive: true},
		{TelegramID: 2, FirstName: "B", MessageCount: 5, IsActive: false},
		{TelegramID: 3, FirstName: "C", MessageCount: 0, IsActive: true},
	}
	for i := range subs {
		require.NoError(t, db.Create(&subs[i]).Error)
	}

	rows, err := AllTimeScores(2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].UserID)
	require.Equal(t, 20, rows[0].Score)
}

func TestCompleteLessonIdempotent(t *testing.T) {
	setupDB(t)
	lesson := models.Lesson{CourseSlug: "basics", SectionID: "s1", LessonSlug: "first", Title: "First"}
	require.NoError(t, db.Create(&lesson).Error)

	require.NoError(t, CompleteLesson(10, lesson.ID))
	require.NoError(t, CompleteLesson(10, lesson.ID))

	done, err := CompletedLessonIDs(10, "basics")
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.True(t, done[lesson.ID])

	var count int64
	require.NoError(t, db.Model(&models.LessonCompletion{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
