package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Current user
// @Description Get the authenticated user with followers and following
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	profile, err := s.userService.Me(c.UserContext(), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user
// @Description Get a user with followers and following
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// SearchUsers handles GET /api/users/search?username=
// @Summary Search users
// @Description Case-insensitive username substring search
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param username query string true "Username fragment"
// @Success 200 {array} models.User
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userService.SearchByUsername(c.UserContext(), c.Query("username"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by author
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {array} models.Post
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.GetPostsByAuthorID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetMyPosts handles GET /api/users/me/posts
// @Summary My posts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /users/me/posts [get]
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	posts, err := s.postService.GetPostsByAuthorID(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
