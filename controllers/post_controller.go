package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devmahmod/social-api/middleware"
	"github.com/devmahmod/social-api/models"
	"github.com/devmahmod/social-api/utils"
)

// postsPerPage is the fixed page size for paged listing.
const postsPerPage = 3

// PostController manages CRUD operations for posts.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a PostController backed by the given database handle.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

type createPostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type updatePostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// CreatePost persists a new post owned by the authenticated caller. Ownership
// always comes from the verified token, never from the body.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req createPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := validateCreatePost(req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	post := models.Post{
		UserID:      userID,
		Title:       utils.Sanitize(req.Title),
		Description: utils.Sanitize(req.Description),
		Category:    strings.TrimSpace(req.Category),
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.ServerError(ctx, "failed to create post, please try again", err)
		return
	}

	if err := p.db.Preload("User").First(&post, post.ID).Error; err != nil {
		utils.ServerError(ctx, "failed to load created post", err)
		return
	}
	post.Likes = []uint{}
	post.Comments = []models.Comment{}

	utils.InvalidateByPrefix("cache:posts:list:")

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

// ListPosts returns posts in one of three mutually exclusive modes selected by
// query parameters: paged (pageNumber, fixed page size, checked first), by
// category, or everything. Always newest first with the owner populated.
func (p *PostController) ListPosts(ctx *gin.Context) {
	pageNumber := strings.TrimSpace(ctx.Query("pageNumber"))
	category := strings.TrimSpace(ctx.Query("category"))

	cacheKey := fmt.Sprintf("cache:posts:list:page=%s:cat=%s", pageNumber, category)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	query := p.db.Preload("User").Order("created_at DESC")
	switch {
	case pageNumber != "":
		page := parsePageNumber(pageNumber)
		query = query.Offset((page - 1) * postsPerPage).Limit(postsPerPage)
	case category != "":
		query = query.Where("category = ?", category)
	}

	posts := []models.Post{}
	if err := query.Find(&posts).Error; err != nil {
		utils.ServerError(ctx, "error fetching posts", err)
		return
	}

	if err := p.loadLikes(posts); err != nil {
		utils.ServerError(ctx, "error fetching posts", err)
		return
	}

	utils.CacheSetJSON(cacheKey, posts, time.Hour)
	ctx.JSON(http.StatusOK, posts)
}

// GetPost returns a single post with its owner and comments populated.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)

	cacheKey := fmt.Sprintf("cache:posts:detail:%d", id)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	post, ok := p.fetchPost(ctx, id)
	if !ok {
		return
	}

	utils.CacheSetJSON(cacheKey, post, time.Hour)
	ctx.JSON(http.StatusOK, post)
}

// CountPosts returns the total number of posts as a bare number.
func (p *PostController) CountPosts(ctx *gin.Context) {
	var count int64
	if err := p.db.Model(&models.Post{}).Count(&count).Error; err != nil {
		utils.ServerError(ctx, "error counting posts", err)
		return
	}
	ctx.JSON(http.StatusOK, count)
}

// UpdatePost applies a partial update of title, description and category.
// Only the owner may update; administrators deliberately get no override here,
// unlike delete. The asymmetry matches the documented product behavior.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req updatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validateUpdatePost(req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	id, _ := middleware.IDParam(ctx)
	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.ServerError(ctx, "error updating the post", err)
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok || post.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, "access denied, you are not allowed")
		return
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		changes["description"] = utils.Sanitize(*req.Description)
	}
	if req.Category != nil {
		changes["category"] = strings.TrimSpace(*req.Category)
	}
	if len(changes) > 0 {
		if err := p.db.Model(&post).Updates(changes).Error; err != nil {
			utils.ServerError(ctx, "error updating the post", err)
			return
		}
	}

	updated, ok := p.fetchPost(ctx, id)
	if !ok {
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:posts:detail:%d", id))

	ctx.JSON(http.StatusOK, updated)
}

// DeletePost removes a post along with its comments and likes. Allowed for
// the owner or an administrator.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)
	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.ServerError(ctx, "error deleting the post", err)
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok || (post.UserID != userID && !middleware.IsAdmin(ctx)) {
		utils.Error(ctx, http.StatusForbidden, "access denied, forbidden")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.ServerError(ctx, "error deleting the post", err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:posts:detail:%d", id))

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Post has been deleted successfully",
		"postId":  post.ID,
	})
}

// ToggleLike flips the caller's membership in the post's likes set. The flip
// is a conditional delete followed by an insert-if-absent, so concurrent
// toggles cannot produce duplicate likes.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)

	var post models.Post
	if err := p.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.ServerError(ctx, "error toggling like", err)
		return
	}

	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	res := p.db.Where("post_id = ? AND user_id = ?", post.ID, userID).Delete(&models.PostLike{})
	if res.Error != nil {
		utils.ServerError(ctx, "error toggling like", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		// Not liked yet: add. ON CONFLICT DO NOTHING keeps a concurrent
		// duplicate insert from failing the request.
		like := models.PostLike{PostID: post.ID, UserID: userID}
		if err := p.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			utils.ServerError(ctx, "error toggling like", err)
			return
		}
	}

	updated, ok := p.fetchPost(ctx, id)
	if !ok {
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:posts:detail:%d", id))

	ctx.JSON(http.StatusOK, updated)
}

// fetchPost loads a post with owner, comments (with authors) and likes. It
// writes the error response itself and reports success through ok.
func (p *PostController) fetchPost(ctx *gin.Context, id uint) (models.Post, bool) {
	var post models.Post
	err := p.db.Preload("User").Preload("Comments.User").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return post, false
		}
		utils.ServerError(ctx, "error fetching the post", err)
		return post, false
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if err := p.loadLikesInto(&post); err != nil {
		utils.ServerError(ctx, "error fetching the post", err)
		return post, false
	}
	return post, true
}

// loadLikes fills the Likes set for a batch of posts with a single query.
func (p *PostController) loadLikes(posts []models.Post) error {
	ids := make([]uint, 0, len(posts))
	for i := range posts {
		posts[i].Likes = []uint{}
		ids = append(ids, posts[i].ID)
	}
	if len(ids) == 0 {
		return nil
	}

	var rows []models.PostLike
	if err := p.db.Where("post_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	byPost := map[uint][]uint{}
	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], row.UserID)
	}
	for i := range posts {
		if likes, ok := byPost[posts[i].ID]; ok {
			posts[i].Likes = likes
		}
	}
	return nil
}

func (p *PostController) loadLikesInto(post *models.Post) error {
	likes := []uint{}
	err := p.db.Model(&models.PostLike{}).
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Pluck("user_id", &likes).Error
	if err != nil {
		return err
	}
	post.Likes = likes
	return nil
}

func parsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
