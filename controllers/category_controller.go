package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmahmod/social-api/middleware"
	"github.com/devmahmod/social-api/models"
	"github.com/devmahmod/social-api/utils"
)

// CategoryController manages browsing categories.
type CategoryController struct {
	db *gorm.DB
}

// NewCategoryController creates a CategoryController.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{db: db}
}

type createCategoryRequest struct {
	Title string `json:"title"`
}

// CreateCategory adds a new category. Admin only.
func (c *CategoryController) CreateCategory(ctx *gin.Context) {
	var req createCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, "title is required")
		return
	}
	if err := checkLength("title", title, 2, 100); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	var existing models.Category
	err := c.db.Where("title = ?", title).First(&existing).Error
	if err == nil {
		utils.Error(ctx, http.StatusConflict, "category already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ServerError(ctx, "error creating category", err)
		return
	}

	category := models.Category{Title: utils.Sanitize(title)}
	if err := c.db.Create(&category).Error; err != nil {
		utils.ServerError(ctx, "error creating category", err)
		return
	}
	ctx.JSON(http.StatusCreated, category)
}

// ListCategories returns every category.
func (c *CategoryController) ListCategories(ctx *gin.Context) {
	categories := []models.Category{}
	if err := c.db.Order("title ASC").Find(&categories).Error; err != nil {
		utils.ServerError(ctx, "error fetching categories", err)
		return
	}
	ctx.JSON(http.StatusOK, categories)
}

// DeleteCategory removes a category. Admin only. Posts keep their stored
// category string; filtering for it simply returns nothing new.
func (c *CategoryController) DeleteCategory(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)
	var category models.Category
	if err := c.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "category not found")
			return
		}
		utils.ServerError(ctx, "error deleting category", err)
		return
	}

	if err := c.db.Delete(&category).Error; err != nil {
		utils.ServerError(ctx, "error deleting category", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Category %q has been deleted", category.Title)})
}
