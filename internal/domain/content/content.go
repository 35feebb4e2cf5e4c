// Package content holds the read-only shapes served on the public pages.
// The content API is the source of truth; nothing here is written locally.
package content

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("content not found")

type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Body        string    `json:"body,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Venue    string    `json:"venue,omitempty"`
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt,omitempty"`
	Capacity int       `json:"capacity,omitempty"`
}

type Service struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body,omitempty"`
}

type Post struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Body        string    `json:"body,omitempty"`
	AuthorName  string    `json:"authorName,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

type Whitepaper struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Abstract    string    `json:"abstract"`
	FileURL     string    `json:"fileUrl"`
	PublishedAt time.Time `json:"publishedAt"`
}
