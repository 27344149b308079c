package store

import (
	"gorm.io/gorm/clause"

	"github.com/karpix25/mini-karpix/internal/models"
)

func ListCourses() ([]models.Course, error) {
	var courses []models.Course
	if err := db.Order("sort_order, id").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func CourseBySlug(slug string) (*models.Course, error) {
	var c models.Course
	if err := db.First(&c, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func CourseLessons(slug string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := db.Where("course_slug = ?", slug).Order("sort_order, id").Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// CompletedLessonIDs returns the set of lesson ids the user has finished
// within one course.
func CompletedLessonIDs(userID int64, courseSlug string) (map[uint]bool, error) {
	var ids []uint
	err := db.Model(&models.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Where("lesson_completions.user_id = ? AND lessons.course_slug = ?", userID, courseSlug).
		Pluck("lesson_completions.lesson_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// CompleteLesson records a completion; repeating it is a no-op.
func CompleteLesson(userID int64, lessonID uint) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.LessonCompletion{UserID: userID, LessonID: lessonID}).Error
}
