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

// UserController manages user listing and profiles.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Password *string `json:"password"`
}

// ListUsers returns every account. Admin only; passwords never serialize.
func (u *UserController) ListUsers(ctx *gin.Context) {
	users := []models.User{}
	if err := u.db.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.ServerError(ctx, "error fetching users", err)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

// CountUsers returns the total account count as a bare number. Admin only.
func (u *UserController) CountUsers(ctx *gin.Context) {
	var count int64
	if err := u.db.Model(&models.User{}).Count(&count).Error; err != nil {
		utils.ServerError(ctx, "error counting users", err)
		return
	}
	ctx.JSON(http.StatusOK, count)
}

// GetProfile returns a public profile with the user's posts.
func (u *UserController) GetProfile(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)

	var user models.User
	err := u.db.Preload("Posts", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.ServerError(ctx, "error fetching the user", err)
		return
	}
	if user.Posts == nil {
		user.Posts = []models.Post{}
	}
	ctx.JSON(http.StatusOK, user)
}

// UpdateProfile lets a user change their own username, bio or password.
// Route middleware already guarantees the caller is the profile owner.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, _ := middleware.IDParam(ctx)
	var user models.User
	if err := u.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.ServerError(ctx, "error updating the user", err)
		return
	}

	changes := map[string]interface{}{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if err := checkLength("username", name, 2, 100); err != nil {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		changes["username"] = utils.Sanitize(name)
	}
	if req.Bio != nil {
		if err := checkLength("bio", *req.Bio, 0, 500); err != nil {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		changes["bio"] = utils.Sanitize(*req.Bio)
	}
	if req.Password != nil {
		if err := checkLength("password", *req.Password, 6, 128); err != nil {
			utils.Error(ctx, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.ServerError(ctx, "error updating the user", err)
			return
		}
		changes["password_hash"] = hash
	}

	if len(changes) > 0 {
		if err := u.db.Model(&user).Updates(changes).Error; err != nil {
			utils.ServerError(ctx, "error updating the user", err)
			return
		}
	}

	if err := u.db.First(&user, id).Error; err != nil {
		utils.ServerError(ctx, "error updating the user", err)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// DeleteProfile removes an account together with its posts, comments and
// likes. Allowed for the account owner or an administrator.
func (u *UserController) DeleteProfile(ctx *gin.Context) {
	id, _ := middleware.IDParam(ctx)
	var user models.User
	if err := u.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.ServerError(ctx, "error deleting the user", err)
		return
	}

	err := u.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostLike{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.ServerError(ctx, "error deleting the user", err)
		return
	}

	utils.InvalidateByPrefix("cache:posts:")
	utils.Sugar.Infow("user deleted", "user_id", user.ID)
	ctx.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("User %d has been deleted", user.ID)})
}
