package dto

import "time"

type Blog struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Photo     string    `json:"photo"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type BlogDetails struct {
	ID             string    `json:"_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Photo          string    `json:"photo"`
	CreatedAt      time.Time `json:"createdAt"`
	AuthorName     string    `json:"authorName"`
	AuthorUsername string    `json:"authorUsername"`
}

type Comment struct {
	ID             string    `json:"_id"`
	CreatedAt      time.Time `json:"createdAt"`
	Content        string    `json:"content"`
	AuthorUsername string    `json:"authorUsername"`
}
