package users

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store) {
	me := router.Group("/users/me")
	{
		me.GET("", GetCurrentUserHandler(store))
		me.PUT("", UpdateProfileHandler(store))
	}
}
