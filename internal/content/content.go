// Package content serves the tier-gated markdown article library. Articles
// live on disk as "<rankRequired>__<slug>.md"; the numeric prefix is the
// 1-based tier ordinal needed to read them.
package content

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNotFound is returned when no article matches the requested id.
var ErrNotFound = fmt.Errorf("content: article not found")

// ErrForbidden is returned when the reader's tier is below the article's.
var ErrForbidden = fmt.Errorf("content: rank too low")

type ArticleInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	RankRequired int    `json:"rank_required"`
}

type Article struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Library reads articles from a directory. Stateless; every call re-reads
// the directory so admin-side file drops show up without a restart.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// parseName splits "<rank>__<slug>.md". Files that don't match are skipped.
func parseName(name string) (rankRequired int, id string, ok bool) {
	base := strings.TrimSuffix(name, ".md")
	if base == name {
		return 0, "", false
	}
	parts := strings.SplitN(base, "__", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return n, parts[1], true
}

// List returns the articles readable at the given tier level, ordered by
// required rank.
func (l *Library) List(level int) ([]ArticleInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("content: read dir: %w", err)
	}
	out := []ArticleInfo{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		required, id, ok := parseName(e.Name())
		if !ok || required > level {
			continue
		}
		title, err := firstHeading(filepath.Join(l.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, ArticleInfo{ID: id, Title: title, RankRequired: required})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RankRequired < out[j].RankRequired })
	return out, nil
}

// Get returns the article body, enforcing the tier gate.
func (l *Library) Get(id string, level int) (*Article, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("content: read dir: %w", err)
	}
	for _, e := range entries {
		required, gotID, ok := parseName(e.Name())
		if !ok || gotID != id {
			continue
		}
		if level < required {
			return nil, ErrForbidden
		}
		b, err := os.ReadFile(filepath.Join(l.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("content: read article: %w", err)
		}
		return &Article{ID: id, Content: string(b)}, nil
	}
	return nil, ErrNotFound
}

func firstHeading(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("content: open article: %w", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(sc.Text()), "#")), nil
	}
	return "", sc.Err()
}
