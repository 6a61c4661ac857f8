package articles

import (
	"context"

	"codeberg.org/quillpost/server/api/rest/pagination"
	"codeberg.org/quillpost/server/quillpost/articles"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// the article operations the handlers need
type Store interface {
	Create(ctx context.Context, author string, req articles.CreateArticleRequest) (*articles.Article, error)
	List(ctx context.Context, limit, offset int) ([]articles.Article, int, error)
	Get(ctx context.Context, id int64) (*articles.Article, error)
	Update(ctx context.Context, id int64, author string, req articles.UpdateArticleRequest) (*articles.Article, error)
	Delete(ctx context.Context, id int64, author string) error
}

// ArticlesListResponse is a page of articles, newest first
type ArticlesListResponse struct {
	Articles   []articles.Article `json:"articles"`
	Pagination pagination.Meta    `json:"pagination"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
