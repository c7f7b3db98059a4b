package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmahmod/social-api/middleware"
	"github.com/devmahmod/social-api/models"
	"github.com/devmahmod/social-api/utils"
)

// CommentController manages comments on posts.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

type createCommentRequest struct {
	PostID uint   `json:"postId"`
	Text   string `json:"text"`
}

type updateCommentRequest struct {
	Text string `json:"text"`
}

// CreateComment attaches a comment to an existing post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req createCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.PostID == 0 {
		utils.Error(ctx, http.StatusBadRequest, "postId is required")
		return
	}
	if err := validateCommentText(req.Text); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	var post models.Post
	if err := c.db.First(&post, req.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.ServerError(ctx, "error creating comment", err)
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: userID,
		Text:   utils.Sanitize(req.Text),
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.ServerError(ctx, "error creating comment", err)
		return
	}
	if err := c.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.ServerError(ctx, "error creating comment", err)
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:posts:detail:%d", post.ID))
	ctx.JSON(http.StatusCreated, comment)
}

// ListComments returns every comment. Admin only.
func (c *CommentController) ListComments(ctx *gin.Context) {
	comments := []models.Comment{}
	if err := c.db.Preload("User").Order("created_at DESC").Find(&comments).Error; err != nil {
		utils.ServerError(ctx, "error fetching comments", err)
		return
	}
	ctx.JSON(http.StatusOK, comments)
}

// UpdateComment lets the author change the comment text. Administrators get
// no override, matching the post update rule.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req updateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateCommentText(req.Text); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	id, _ := middleware.IDParam(ctx)
	var comment models.Comment
	if err := c.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "comment not found")
			return
		}
		utils.ServerError(ctx, "error updating comment", err)
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok || comment.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, "access denied, you are not allowed")
		return
	}

	if err := c.db.Model(&comment).Update("text", utils.Sanitize(req.Text)).Error; err != nil {
		utils.ServerError(ctx, "error updating comment", err)
		return
	}
	if err := c.db.Preload("User").First(&comment, id).Error; err != nil {
		utils.ServerError(ctx, "error updating comment", err)
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:posts:detail:%d", comment.PostID))
	ctx.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment. Allowed for the author or an administrator.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)
	var comment models.Comment
	if err := c.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "comment not found")
			return
		}
		utils.ServerError(ctx, "error deleting comment", err)
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok || (comment.UserID != userID && !middleware.IsAdmin(ctx)) {
		utils.Error(ctx, http.StatusForbidden, "access denied, forbidden")
		return
	}

	if err := c.db.Delete(&comment).Error; err != nil {
		utils.ServerError(ctx, "error deleting comment", err)
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:posts:detail:%d", comment.PostID))
	ctx.JSON(http.StatusOK, gin.H{"message": "Comment has been deleted"})
}

func validateCommentText(text string) error {
	if text == "" {
		return fmt.Errorf("text is required")
	}
	return checkLength("text", text, 1, 5000)
}
