package domain

import "time"

type Blog struct {
	ID        string
	Title     string
	Content   string
	PhotoName string
	PhotoPath string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Details is a blog joined with its author's public fields.
type Details struct {
	Blog
	AuthorName     string
	AuthorUsername string
}

type Comment struct {
	ID        string
	Content   string
	BlogID    string
	AuthorID  string
	CreatedAt time.Time
}

type CommentView struct {
	Comment
	AuthorUsername string
}

// Update replaces title and content; the photo fields change only when
// PhotoName is set.
type Update struct {
	ID        string
	Title     string
	Content   string
	PhotoName string
	PhotoPath string
	UpdatedAt time.Time
}
