package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeberg.org/quillpost/server/internal/storage"
)

func NewRepository(db storage.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, author string, req CreateArticleRequest) (*Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, queryCreate, req.Title, req.Content, author))
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}

	return article, nil
}

// returns a page of articles, newest first, with the total count
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Article, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, queryCount).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, queryList, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}

	defer rows.Close() //nolint:errcheck // read-only cursor

	articles := []Article{}

	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}

		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}

	return articles, total, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, queryGet, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}

		return nil, fmt.Errorf("get article: %w", err)
	}

	return article, nil
}

// updates an article owned by author; ErrArticleNotFound when no such row exists for them
func (r *Repository) Update(ctx context.Context, id int64, author string, req UpdateArticleRequest) (*Article, error) {
	article, err := scanArticle(r.db.QueryRowContext(ctx, queryUpdate, req.Title, req.Content, id, author))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArticleNotFound
		}

		return nil, fmt.Errorf("update article: %w", err)
	}

	return article, nil
}

func (r *Repository) Delete(ctx context.Context, id int64, author string) error {
	result, err := r.db.ExecContext(ctx, queryDelete, id, author)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}

	if affected == 0 {
		return ErrArticleNotFound
	}

	return nil
}

func scanArticle(row *sql.Row) (*Article, error) {
	var a Article

	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Author, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}
