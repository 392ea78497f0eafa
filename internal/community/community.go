// Package community holds the founder feed model and Social Points scoring.
package community

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// DefaultAuthor is used for posts and comments without a name.
const DefaultAuthor = "Founder"

// LeaderboardSize is how many authors the leaderboard shows.
const LeaderboardSize = 5

var (
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrPostNotFound = errors.New("post not found")
)

type (
	Comment struct {
		ID        string    `json:"id"`
		Author    string    `json:"author"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Post struct {
		ID        string    `json:"id"`
		Author    string    `json:"author"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
		Likes     int       `json:"likes"`
		Comments  []Comment `json:"comments"`
	}

	LeaderboardEntry struct {
		User   string `json:"user"`
		Points int    `json:"points"`
	}
)

// Points is one like per like plus two per comment.
func (p Post) Points() int {
	return p.Likes + 2*len(p.Comments)
}

// AuthorOrDefault trims name and falls back to DefaultAuthor.
func AuthorOrDefault(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return DefaultAuthor
	}
	return name
}

// NormalizeContent trims content and rejects blank text.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyContent
	}
	return content, nil
}

// Leaderboard sums points per author and returns the top LeaderboardSize,
// highest first. Ties keep the order in which authors first appear in posts.
func Leaderboard(posts []Post) []LeaderboardEntry {
	var entries []LeaderboardEntry
	index := make(map[string]int)
	for _, p := range posts {
		i, ok := index[p.Author]
		if !ok {
			index[p.Author] = len(entries)
			entries = append(entries, LeaderboardEntry{User: p.Author, Points: p.Points()})
			continue
		}
		entries[i].Points += p.Points()
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	if len(entries) > LeaderboardSize {
		entries = entries[:LeaderboardSize]
	}
	return entries
}

// FindPost returns the index of the post with id, or -1.
func FindPost(posts []Post, id string) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// SeedPosts is the starter feed, timestamped relative to now.
func SeedPosts(now time.Time) []Post {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	at := func(day time.Time, h, m int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	return []Post{
		{
			ID:        "1",
			Author:    "Asha (Retail)",
			Content:   "Launched my first pop-up in the local market this weekend. Footfall was low, but 8 paying customers and 15 email signups. Any tips on improving booth visibility?",
			CreatedAt: at(today, 9, 20),
			Likes:     5,
			Comments: []Comment{
				{ID: "c1", Author: "Neha", Content: "Try adding a clear “What you get” board and a small demo table at the front.", CreatedAt: at(today, 9, 45)},
			},
		},
		{
			ID:        "2",
			Author:    "Farah (Food)",
			Content:   "Got my first repeat corporate order for lunch catering (50 people). Want to build a simple landing page next – any no-code tools you love?",
			CreatedAt: at(yesterday, 18, 10),
			Likes:     8,
			Comments: []Comment{
				{ID: "c2", Author: "Priya", Content: "Tally + a simple storefront is great to start, or try basic landing on any website builder.", CreatedAt: at(yesterday, 18, 30)},
				{ID: "c3", Author: "Kavita", Content: "Keep it one-page: menu, pricing range, testimonials, and a WhatsApp button.", CreatedAt: at(yesterday, 18, 48)},
			},
		},
	}
}
