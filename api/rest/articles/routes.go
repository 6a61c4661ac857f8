package articles

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store) {
	articles := router.Group("/articles")
	{
		articles.GET("", ListArticlesHandler(store))
		articles.POST("", CreateArticleHandler(store))
		articles.GET("/:id", GetArticleHandler(store))
		articles.PUT("/:id", UpdateArticleHandler(store))
		articles.DELETE("/:id", DeleteArticleHandler(store))
	}
}
