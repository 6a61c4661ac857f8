package users

import (
	stderrors "errors"
	"net/http"
	"strings"

	"codeberg.org/quillpost/server/internal/auth"
	"codeberg.org/quillpost/server/internal/errors"
	"codeberg.org/quillpost/server/quillpost/users"
	"github.com/gin-gonic/gin"
)

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Returns the account of the authenticated caller
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/users/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		user, err := store.FindByID(c.Request.Context(), userID)
		if err != nil {
			if stderrors.Is(err, users.ErrUserNotFound) {
				errors.NotFound(c, "user")
				return
			}

			errors.InternalError(c, "failed to load user", err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// UpdateProfileHandler godoc
// @Summary Update profile
// @Description Change the nickname of the authenticated caller
// @Tags users
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/users/me [put]
// @Security BearerAuth
func UpdateProfileHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := store.UpdateNickname(c.Request.Context(), userID, strings.TrimSpace(req.Nickname))
		if err != nil {
			switch {
			case stderrors.Is(err, users.ErrNicknameTaken):
				errors.Conflict(c, "nickname already taken")
			case stderrors.Is(err, users.ErrUserNotFound):
				errors.NotFound(c, "user")
			default:
				errors.InternalError(c, "failed to update profile", err)
			}

			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}
