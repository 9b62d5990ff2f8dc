package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogapi/internal/errors"
	"blogapi/internal/middleware"
	"blogapi/internal/service"
)

// PostHandler handles post endpoints.
type PostHandler struct {
	svc service.PostService
}

func NewPostHandler(svc service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

type postData struct {
	Post *service.PostDetail `json:"post"`
}

// Create godoc
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} Response{data=postData}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	var req service.CreatePostInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.svc.CreatePost(c.Request().Context(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Post created successfully", postData{Post: post})
}

// Get godoc
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} Response{data=postData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	post, err := h.svc.GetPost(c.Request().Context(), middleware.CurrentUser(c), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post retrieved successfully", postData{Post: post})
}

// List godoc
// @Summary List posts
// @Description Keyset pagination. Pass meta.nextCursor back as cursor to get the next page.
// @Tags posts
// @Produce json
// @Param q query string false "Search in title and content"
// @Param categoryId query string false "Category ID"
// @Param userId query string false "Author ID"
// @Param tags query string false "Comma-separated tags, all must match"
// @Param sortBy query string false "createdAt or updatedAt"
// @Param sortOrder query string false "asc or desc"
// @Param cursor query string false "Opaque cursor"
// @Param limit query int false "Page size (1-100, default 10)"
// @Success 200 {object} Response{data=service.PostPage}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	var query service.ListPostsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		return errors.BadRequest("Invalid query parameters")
	}
	if err := c.Validate(&query); err != nil {
		return err
	}
	page, err := h.svc.ListPosts(c.Request().Context(), middleware.CurrentUser(c), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Posts retrieved successfully", page)
}

// Update godoc
// @Summary Update post
// @Description Owner or moderator and above. Only fields present in the body change.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body service.UpdatePostInput true "Fields to change"
// @Success 200 {object} Response{data=postData}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /posts/{id} [put]
// @Router /posts/{id} [patch]
func (h *PostHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.UpdatePostInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.svc.UpdatePost(c.Request().Context(), middleware.CurrentUser(c), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Post updated successfully", postData{Post: post})
}

// Delete godoc
// @Summary Delete post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeletePost(c.Request().Context(), middleware.CurrentUser(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}
