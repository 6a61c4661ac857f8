package articles

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/quillpost/server/api/rest/pagination"
	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/errors"
	"codeberg.org/quillpost/server/quillpost/articles"
	"github.com/gin-gonic/gin"
)

// ListArticlesHandler godoc
// @Summary List articles
// @Description Page through all articles, newest first
// @Tags articles
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} ArticlesListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/articles [get]
// @Security BearerAuth
func ListArticlesHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c, defaultPageSize, maxPageSize)

		list, total, err := store.List(c.Request.Context(), params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list articles", err)
			return
		}

		c.JSON(http.StatusOK, ArticlesListResponse{
			Articles:   list,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}

// GetArticleHandler godoc
// @Summary Get article
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} articles.Article
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/articles/{id} [get]
// @Security BearerAuth
func GetArticleHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := errors.ValidatePathID(c, "id")
		if !ok {
			return
		}

		article, err := store.Get(c.Request.Context(), id)
		if err != nil {
			respondLookupError(c, err)
			return
		}

		c.JSON(http.StatusOK, article)
	}
}

// CreateArticleHandler godoc
// @Summary Create article
// @Description Publish an article authored by the caller
// @Tags articles
// @Accept json
// @Produce json
// @Param request body articles.CreateArticleRequest true "Article"
// @Success 201 {object} articles.Article
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/articles [post]
// @Security BearerAuth
func CreateArticleHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := auth.GetPrincipal(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req articles.CreateArticleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		article, err := store.Create(c.Request.Context(), principal.Email, req)
		if err != nil {
			errors.InternalError(c, "failed to create article", err)
			return
		}

		c.JSON(http.StatusCreated, article)
	}
}

// UpdateArticleHandler godoc
// @Summary Update article
// @Description Only the author may edit an article
// @Tags articles
// @Accept json
// @Produce json
// @Param id path int true "Article ID"
// @Param request body articles.UpdateArticleRequest true "Article"
// @Success 200 {object} articles.Article
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/articles/{id} [put]
// @Security BearerAuth
func UpdateArticleHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := auth.GetPrincipal(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		id, ok := errors.ValidatePathID(c, "id")
		if !ok {
			return
		}

		var req articles.UpdateArticleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if !authorizeAuthor(c, store, id, principal.Email) {
			return
		}

		article, err := store.Update(c.Request.Context(), id, principal.Email, req)
		if err != nil {
			respondLookupError(c, err)
			return
		}

		c.JSON(http.StatusOK, article)
	}
}

// DeleteArticleHandler godoc
// @Summary Delete article
// @Description Only the author may delete an article
// @Tags articles
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/articles/{id} [delete]
// @Security BearerAuth
func DeleteArticleHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := auth.GetPrincipal(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		id, ok := errors.ValidatePathID(c, "id")
		if !ok {
			return
		}

		if !authorizeAuthor(c, store, id, principal.Email) {
			return
		}

		if err := store.Delete(c.Request.Context(), id, principal.Email); err != nil {
			respondLookupError(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "article deleted successfully"})
	}
}

// writes 404 or 403 and returns false unless email authored the article
func authorizeAuthor(c *gin.Context, store Store, id int64, email string) bool {
	article, err := store.Get(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err)
		return false
	}

	if article.Author != email {
		errors.Forbidden(c, "only the author can modify this article")
		return false
	}

	return true
}

func respondLookupError(c *gin.Context, err error) {
	if stderrors.Is(err, articles.ErrArticleNotFound) {
		errors.NotFound(c, "article")
		return
	}

	errors.InternalError(c, "failed to load article", err)
}
