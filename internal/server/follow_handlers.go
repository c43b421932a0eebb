package server

import (
	"github.com/gofiber/fiber/v2"
)

type followRequest struct {
	FollowingID string `json:"following_id"`
}

// ToggleFollow handles POST /api/follows
// @Summary Follow or unfollow
// @Description Follows the user when not yet following, unfollows otherwise
// @Tags follows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body followRequest true "User to toggle"
// @Success 200 {object} message
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follows [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req followRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := s.followService.ToggleFollow(c.UserContext(), user.ID, req.FollowingID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(message{Message: "Follow successful"})
}
