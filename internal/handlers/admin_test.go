package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/karpix25/mini-karpix/internal/models"
	"github.com/karpix25/mini-karpix/internal/store"
)

func setupAdmin(t *testing.T) *gin.Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := store.InitDB(dsn)
	require.NoError(t, err)
	store.SetDB(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Admin{Username: "root", PasswordHash: string(hash)}).Error)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := &Admin{JWTSecret: "test-secret"}
	admin.RegisterRoutes(r)
	return r
}

func adminDo(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginAdmin(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := adminDo(r, "POST", "/admin/login", "", map[string]string{"username": "root", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])
	return resp["token"]
}

func TestAdminLogin(t *testing.T) {
	r := setupAdmin(t)

	loginAdmin(t, r)

	w := adminDo(r, "POST", "/admin/login", "", map[string]string{"username": "root", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = adminDo(r, "POST", "/admin/login", "", map[string]string{"username": "nobody", "password": "hunter2"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthRequired(t *testing.T) {
	r := setupAdmin(t)

	w := adminDo(r, "GET", "/admin/lessons", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = adminDo(r, "GET", "/admin/lessons", "bogus-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCourseCRUD(t *testing.T) {
	r := setupAdmin(t)
	token := loginAdmin(t, r)

	w := adminDo(r, "POST", "/admin/courses", token, models.Course{Slug: "basics", Title: "Basics", RankRequired: 2})
	require.Equal(t, http.StatusCreated, w.Code)
	var course models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &course))
	require.NotZero(t, course.ID)

	course.Title = "Basics, reworked"
	w = adminDo(r, "PUT", fmt.Sprintf("/admin/courses/%d", course.ID), token, course)
	require.Equal(t, http.StatusOK, w.Code)

	w = adminDo(r, "GET", "/admin/courses", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var courses []models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	require.Equal(t, "Basics, reworked", courses[0].Title)

	w = adminDo(r, "DELETE", fmt.Sprintf("/admin/courses/%d", course.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = adminDo(r, "PUT", fmt.Sprintf("/admin/courses/%d", course.ID), token, course)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminLessonCRUD(t *testing.T) {
	r := setupAdmin(t)
	token := loginAdmin(t, r)

	lesson := models.Lesson{CourseSlug: "basics", SectionID: "s1", SectionTitle: "Start here", LessonSlug: "first", Title: "First", Content: "# First"}
	w := adminDo(r, "POST", "/admin/lessons", token, lesson)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lesson))
	require.NotZero(t, lesson.ID)

	w = adminDo(r, "GET", fmt.Sprintf("/admin/lessons/%d", lesson.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	lesson.Content = "# First, edited"
	w = adminDo(r, "PUT", fmt.Sprintf("/admin/lessons/%d", lesson.ID), token, lesson)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Lesson
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "# First, edited", updated.Content)

	// Filter by course slug.
	w = adminDo(r, "GET", "/admin/lessons?course=basics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lessons []models.Lesson
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lessons))
	require.Len(t, lessons, 1)

	w = adminDo(r, "GET", "/admin/lessons?course=other", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lessons = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lessons))
	require.Empty(t, lessons)

	w = adminDo(r, "DELETE", fmt.Sprintf("/admin/lessons/%d", lesson.ID), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = adminDo(r, "GET", fmt.Sprintf("/admin/lessons/%d", lesson.ID), token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
