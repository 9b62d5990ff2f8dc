package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogapi/internal/middleware"
	"blogapi/internal/model"
	"blogapi/internal/service"
)

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

type categoryData struct {
	Category *model.Category `json:"category"`
}

type categoriesData struct {
	Categories []model.Category `json:"categories"`
}

// Create godoc
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateCategoryInput true "Category"
// @Success 201 {object} Response{data=categoryData}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req service.CreateCategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.svc.CreateCategory(c.Request().Context(), middleware.CurrentUser(c), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Category created successfully", categoryData{Category: category})
}

// Get godoc
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response{data=categoryData}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	category, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category retrieved successfully", categoryData{Category: category})
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param name query string false "Case-insensitive name filter"
// @Success 200 {object} Response{data=categoriesData}
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.svc.ListCategories(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Categories retrieved successfully", categoriesData{Categories: categories})
}

// Update godoc
// @Summary Update category
// @Description Only fields present in the body change.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param request body service.UpdateCategoryInput true "Fields to change"
// @Success 200 {object} Response{data=categoryData}
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
// @Router /categories/{id} [patch]
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req service.UpdateCategoryInput
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	category, err := h.svc.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Category updated successfully", categoryData{Category: category})
}

// Delete godoc
// @Summary Delete category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Category deleted successfully"})
}
