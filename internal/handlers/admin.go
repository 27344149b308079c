package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/karpix25/mini-karpix/internal/auth"
	"github.com/karpix25/mini-karpix/internal/models"
	"github.com/karpix25/mini-karpix/internal/store"
)

// Admin is the course/lesson management surface, a separate service in
// deployment. Login issues a bearer token; everything else requires it.
type Admin struct {
	JWTSecret string
}

func (a *Admin) RegisterRoutes(r *gin.Engine) {
	r.POST("/admin/login", a.login)

	g := r.Group("/admin", a.requireToken())
	g.GET("/courses", a.listCourses)
	g.POST("/courses", a.createCourse)
	g.PUT("/courses/:id", a.updateCourse)
	g.DELETE("/courses/:id", a.deleteCourse)
	g.GET("/lessons", a.listLessons)
	g.POST("/lessons", a.createLesson)
	g.GET("/lessons/:id", a.getLesson)
	g.PUT("/lessons/:id", a.updateLesson)
	g.DELETE("/lessons/:id", a.deleteLesson)
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *Admin) login(c *gin.Context) {
	var req loginReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var admin models.Admin
	db := store.GetDB()
	if err := db.First(&admin, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := auth.GenerateToken(a.JWTSecret, admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a *Admin) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := auth.ParseToken(a.JWTSecret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("admin_id", claims.AdminID)
		c.Next()
	}
}

func (a *Admin) listCourses(c *gin.Context) {
	courses, err := store.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (a *Admin) createCourse(c *gin.Context) {
	var course models.Course
	if err := c.BindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.GetDB().Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (a *Admin) updateCourse(c *gin.Context) {
	db := store.GetDB()
	var existing models.Course
	if err := db.First(&existing, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var course models.Course
	if err := c.BindJSON(&course); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course.ID = existing.ID
	if err := db.Save(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, course)
}

func (a *Admin) deleteCourse(c *gin.Context) {
	if err := store.GetDB().Delete(&models.Course{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *Admin) listLessons(c *gin.Context) {
	db := store.GetDB()
	q := db.Order("course_slug, sort_order, id")
	if slug := c.Query("course"); slug != "" {
		q = q.Where("course_slug = ?", slug)
	}
	var lessons []models.Lesson
	if err := q.Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lessons)
}

func (a *Admin) createLesson(c *gin.Context) {
	var lesson models.Lesson
	if err := c.BindJSON(&lesson); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.GetDB().Create(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (a *Admin) getLesson(c *gin.Context) {
	var lesson models.Lesson
	if err := store.GetDB().First(&lesson, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (a *Admin) updateLesson(c *gin.Context) {
	db := store.GetDB()
	var existing models.Lesson
	if err := db.First(&existing, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var lesson models.Lesson
	if err := c.BindJSON(&lesson); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson.ID = existing.ID
	lesson.CreatedAt = existing.CreatedAt
	if err := db.Save(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (a *Admin) deleteLesson(c *gin.Context) {
	if err := store.GetDB().Delete(&models.Lesson{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
