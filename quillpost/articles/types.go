package articles

import (
	"errors"
	"time"

	"codeberg.org/quillpost/server/internal/storage"
)

var (
	ErrArticleNotFound = errors.New("article not found")
)

type Repository struct {
	db storage.DBTX
}

// a blog post; Author is the email of the principal that created it
type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateArticleRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

type UpdateArticleRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}
