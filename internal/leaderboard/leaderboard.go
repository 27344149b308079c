package leaderboard

import (
	"fmt"
	"sort"
	"time"
)

// Window selects the scoring period.
type Window string

const (
	Window7Days  Window = "7d"
	Window30Days Window = "30d"
	WindowAll    Window = "all"
)

// ParseWindow maps the period query value onto a Window.
func ParseWindow(s string) (Window, error) {
	switch Window(s) {
	case Window7Days, Window30Days, WindowAll:
		return Window(s), nil
	case "":
		return Window7Days, nil
	}
	return "", fmt.Errorf("leaderboard: unknown period %q", s)
}

// Since returns the aggregation cutoff for event-sourced windows. The
// all-time window has no cutoff and reads the lifetime counter instead.
func (w Window) Since(now time.Time) (time.Time, bool) {
	switch w {
	case Window7Days:
		return now.AddDate(0, 0, -7), true
	case Window30Days:
		return now.AddDate(0, 0, -30), true
	}
	return time.Time{}, false
}

// Row is one user's aggregated score for a window, as fetched from the store.
type Row struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
}

// Entry is a Row with its assigned position.
type Entry struct {
	Rank int `json:"rank"`
	Row
}

// Result is the leaderboard view for one requester: the top slice plus the
// requester's own standing even when it falls outside the slice.
type Result struct {
	TopUsers    []Entry `json:"top_users"`
	CurrentUser *Entry  `json:"current_user"`
}

// Rank orders rows by (score desc, user id asc) and assigns SQL RANK()
// positions: tied scores share a rank and the next distinct score's rank is
// its 1-based position in the sorted order, so ranks skip after ties.
// CurrentUser is looked up over the full ranked set, not the truncated top.
func Rank(rows []Row, requesterID int64, topN int) Result {
	ranked := make([]Entry, len(rows))
	for i, r := range rows {
		ranked[i] = Entry{Row: r}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	for i := range ranked {
		if i > 0 && ranked[i].Score == ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}
	}

	res := Result{TopUsers: []Entry{}}
	if topN > len(ranked) {
		topN = len(ranked)
	}
	if topN > 0 {
		res.TopUsers = ranked[:topN]
	}
	for i := range ranked {
		if ranked[i].UserID == requesterID {
			e := ranked[i]
			res.CurrentUser = &e
			break
		}
	}
	return res
}
