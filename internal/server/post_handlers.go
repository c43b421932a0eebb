package server

import (
	"instogram/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"image_url,omitempty"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// GetFeed handles GET /api/posts
// @Summary Latest feed
// @Description All posts newest first, served from the feed cache
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	payload, err := s.postService.LatestFeed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPostByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createPostRequest true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.AddPost(c.UserContext(), service.AddPostInput{
		AuthorID: user.ID,
		Content:  req.Content,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body createCommentRequest true "Comment"
// @Success 201 {object} message
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	var req createCommentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	if err := s.postService.AddComment(c.UserContext(), c.Params("id"), req.Content, user.Username); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message{Message: "Success"})
}

// ToggleLike handles POST /api/posts/:id/likes
// @Summary Like or unlike post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} message
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/likes [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.postService.AddLike(c.UserContext(), c.Params("id"), user.Username); err != nil {
		return respondError(c, err)
	}
	return c.JSON(message{Message: "Success"})
}
