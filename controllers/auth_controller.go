package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/devmahmod/social-api/config"
	"github.com/devmahmod/social-api/models"
	"github.com/devmahmod/social-api/utils"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	db  *gorm.DB
	cfg config.AppConfig
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, cfg config.AppConfig) *AuthController {
	return &AuthController{db: db, cfg: cfg}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a local account with a bcrypt-hashed password.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRegister(req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	var existing models.User
	err := a.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		utils.Error(ctx, http.StatusConflict, "email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.ServerError(ctx, "error registering user", err)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.ServerError(ctx, "error registering user", err)
		return
	}

	user := models.User{
		Username:     utils.Sanitize(req.Username),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.ServerError(ctx, "error registering user", err)
		return
	}

	utils.Sugar.Infow("user registered", "user_id", user.ID)
	ctx.JSON(http.StatusCreated, gin.H{"message": "Registered successfully, please log in"})
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message as a bad password so accounts can't be enumerated.
			utils.Error(ctx, http.StatusBadRequest, "invalid email or password")
			return
		}
		utils.ServerError(ctx, "error logging in", err)
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusBadRequest, "invalid email or password")
		return
	}

	ttl := time.Duration(a.cfg.TokenTTLHours) * time.Hour
	token, err := utils.GenerateToken(a.cfg.JWTSecret, user.ID, user.Username, user.IsAdmin, ttl)
	if err != nil {
		utils.ServerError(ctx, "error logging in", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":    token,
		"id":       user.ID,
		"username": user.Username,
		"isAdmin":  user.IsAdmin,
	})
}

// Logout revokes the caller's token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, "missing bearer token")
		return
	}
	token := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(a.cfg.JWTSecret, token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid token")
		return
	}

	utils.BlacklistToken(token, claims.ExpiresAt.Time)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func validateRegister(req registerRequest) error {
	if req.Username == "" {
		return fmt.Errorf("username is required")
	}
	if err := checkLength("username", req.Username, 2, 100); err != nil {
		return err
	}
	if req.Email == "" {
		return fmt.Errorf("email is required")
	}
	if err := checkLength("email", req.Email, 5, 100); err != nil {
		return err
	}
	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("email must be a valid address")
	}
	if req.Password == "" {
		return fmt.Errorf("password is required")
	}
	return checkLength("password", req.Password, 6, 128)
}
