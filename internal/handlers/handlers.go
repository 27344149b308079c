package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/karpix25/mini-karpix/internal/content"
	"github.com/karpix25/mini-karpix/internal/leaderboard"
	"github.com/karpix25/mini-karpix/internal/rank"
	"github.com/karpix25/mini-karpix/internal/store"
	"github.com/karpix25/mini-karpix/internal/telegram"
)

// API carries the read-only configuration the public handlers need. The
// tier table is injected here, never global.
type API struct {
	Ranks            rank.Table
	Library          *content.Library
	BotToken         string
	PointsPerMessage int
	TopN             int
	CacheTTL         time.Duration
}

func (a *API) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api", a.requireInitData())
	api.GET("/me", a.getMe)
	api.GET("/ranks", a.getRanks)
	api.GET("/content", a.getContentList)
	api.GET("/content/:id", a.getArticle)
	api.GET("/leaderboard", a.getLeaderboard)
	api.GET("/courses", a.getCourses)
	api.GET("/courses/:slug", a.getCourse)
	api.GET("/courses/:slug/lessons/:id", a.getLesson)
	api.POST("/courses/:slug/lessons/:id/complete", a.completeLesson)
}

const ctxUserKey = "tg_user"

// requireInitData authenticates the mini-app caller via the signed
// X-Init-Data header.
func (a *API) requireInitData() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Init-Data")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Init-Data header is missing"})
			return
		}
		u, err := telegram.ValidateInitData(raw, a.BotToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid init data"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *telegram.User {
	return c.MustGet(ctxUserKey).(*telegram.User)
}

// userPoints loads the caller's points. A user the collector has never seen
// counts as zero; that fallback is the data-source contract, see store.
func (a *API) userPoints(userID int64) (points int, sub bool, firstName, username string, err error) {
	s, err := store.UserActivity(userID)
	if err != nil {
		return 0, false, "", "", err
	}
	if s == nil {
		return 0, false, "", "", nil
	}
	return s.MessageCount * a.PointsPerMessage, true, s.FirstName, s.Username, nil
}

type userData struct {
	ID                 int64  `json:"id"`
	FirstName          string `json:"first_name"`
	Username           string `json:"username"`
	Points             int    `json:"points"`
	Rank               string `json:"rank"`
	NextRankName       string `json:"next_rank_name"`
	PointsToNextRank   *int   `json:"points_to_next_rank"`
	ProgressPercentage int    `json:"progress_percentage"`
}

func (a *API) getMe(c *gin.Context) {
	u := currentUser(c)
	points, known, firstName, username, err := a.userPoints(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !known {
		firstName, username = u.FirstName, u.Username
	}

	pr := a.Ranks.Progress(points)
	out := userData{
		ID:                 u.ID,
		FirstName:          firstName,
		Username:           username,
		Points:             points,
		Rank:               pr.Current.Name,
		NextRankName:       "Max",
		PointsToNextRank:   pr.PointsToNext,
		ProgressPercentage: pr.Percent,
	}
	if pr.Next != nil {
		out.NextRankName = pr.Next.Name
	}
	c.JSON(http.StatusOK, out)
}

type rankInfo struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	MinPoints  int    `json:"min_points"`
	IsUnlocked bool   `json:"is_unlocked"`
}

func (a *API) getRanks(c *gin.Context) {
	u := currentUser(c)
	points, _, _, _, err := a.userPoints(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	tiers := a.Ranks.Tiers()
	out := make([]rankInfo, 0, len(tiers))
	for i, tier := range tiers {
		unlocked, err := a.Ranks.Unlocked(points, i+1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, rankInfo{Level: i + 1, Name: tier.Name, MinPoints: tier.MinPoints, IsUnlocked: unlocked})
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) getContentList(c *gin.Context) {
	u := currentUser(c)
	points, _, _, _, err := a.userPoints(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	list, err := a.Library.List(a.Ranks.Level(points))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) getArticle(c *gin.Context) {
	u := currentUser(c)
	points, _, _, _, err := a.userPoints(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	article, err := a.Library.Get(c.Param("id"), a.Ranks.Level(points))
	switch {
	case errors.Is(err, content.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
	case errors.Is(err, content.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "rank too low for this content"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, article)
	}
}

// windowRows fetches aggregated scores for a period, through the redis
// cache when one is configured. Only the per-period row set is cached; the
// requester-specific ranking view is always computed fresh.
func (a *API) windowRows(window leaderboard.Window) ([]leaderboard.Row, error) {
	cacheKey := "leaderboard:" + string(window)
	if store.RDB != nil {
		if raw, err := store.RDB.Get(context.Background(), cacheKey).Bytes(); err == nil {
			var rows []leaderboard.Row
			if json.Unmarshal(raw, &rows) == nil {
				return rows, nil
			}
		}
	}

	var rows []leaderboard.Row
	var err error
	if since, ok := window.Since(time.Now()); ok {
		rows, err = store.WindowScores(since)
	} else {
		rows, err = store.AllTimeScores(a.PointsPerMessage)
	}
	if err != nil {
		return nil, err
	}

	if store.RDB != nil {
		if raw, err := json.Marshal(rows); err == nil {
			store.RDB.Set(context.Background(), cacheKey, raw, a.CacheTTL)
		}
	}
	return rows, nil
}

func (a *API) getLeaderboard(c *gin.Context) {
	window, err := leaderboard.ParseWindow(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := a.windowRows(window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, leaderboard.Rank(rows, currentUser(c).ID, a.TopN))
}

type courseInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	RankRequired int    `json:"rank_required"`
	IsUnlocked   bool   `json:"is_unlocked"`
}

func (a *API) getCourses(c *gin.Context) {
	u := currentUser(c)
	points, _, _, _, err := a.userPoints(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	courses, err := store.ListCourses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]courseInfo, 0, len(courses))
	for _, course := range courses {
		unlocked, err := a.Ranks.Unlocked(points, course.RankRequired)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, courseInfo{ID: course.Slug, Title: course.Title, RankRequired: course.RankRequired, IsUnlocked: unlocked})
	}
	c.JSON(http.StatusOK, out)
}

type lessonInfo struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type sectionInfo struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Lessons []lessonInfo `json:"lessons"`
}

type courseTree struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Progress int           `json:"progress"`
	Sections []sectionInfo `json:"sections"`
}

// loadCourse checks the course gate and assembles the section tree with
// completion marks. Sections keep the order lessons first appear in.
func (a *API) loadCourse(c *gin.Context) (*courseTree, bool) {
	u := currentUser(c)
	points, _, _, _, err := a.userPoints(u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	course, err := store.CourseBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	unlocked, err := a.Ranks.Unlocked(points, course.RankRequired)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if !unlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "rank too low for this course"})
		return nil, false
	}

	lessons, err := store.CourseLessons(course.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	done, err := store.CompletedLessonIDs(u.ID, course.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}

	tree := courseTree{ID: course.Slug, Title: course.Title, Sections: []sectionInfo{}}
	byID := map[string]int{}
	completed := 0
	for _, l := range lessons {
		idx, ok := byID[l.SectionID]
		if !ok {
			idx = len(tree.Sections)
			byID[l.SectionID] = idx
			title := l.SectionTitle
			if title == "" {
				title = l.SectionID
			}
			tree.Sections = append(tree.Sections, sectionInfo{ID: l.SectionID, Title: title, Lessons: []lessonInfo{}})
		}
		if done[l.ID] {
			completed++
		}
		tree.Sections[idx].Lessons = append(tree.Sections[idx].Lessons, lessonInfo{ID: l.ID, Title: l.Title, Completed: done[l.ID]})
	}
	if len(lessons) > 0 {
		tree.Progress = 100 * completed / len(lessons)
	}
	return &tree, true
}

func (a *API) getCourse(c *gin.Context) {
	tree, ok := a.loadCourse(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, tree)
}

// findLesson resolves :slug/:id after the course gate has passed.
func (a *API) findLesson(c *gin.Context) (*courseTree, uint, bool) {
	tree, ok := a.loadCourse(c)
	if !ok {
		return nil, 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return nil, 0, false
	}
	for _, s := range tree.Sections {
		for _, l := range s.Lessons {
			if l.ID == uint(id) {
				return tree, uint(id), true
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
	return nil, 0, false
}

func (a *API) getLesson(c *gin.Context) {
	_, id, ok := a.findLesson(c)
	if !ok {
		return
	}
	lessons, err := store.CourseLessons(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, l := range lessons {
		if l.ID == id {
			done, err := store.CompletedLessonIDs(currentUser(c).ID, l.CourseSlug)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": l.ID, "title": l.Title, "content": l.Content, "completed": done[l.ID]})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
}

func (a *API) completeLesson(c *gin.Context) {
	_, id, ok := a.findLesson(c)
	if !ok {
		return
	}
	if err := store.CompleteLesson(currentUser(c).ID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}
