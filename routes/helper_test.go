package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/devmahmod/social-api/config"
	"github.com/devmahmod/social-api/models"
	"github.com/devmahmod/social-api/utils"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    config.AppConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Post{}, &models.PostLike{},
		&models.Comment{}, &models.Category{},
	))

	cfg := config.AppConfig{
		AppPort:            "0",
		DatabaseURI:        "test",
		JWTSecret:          "test-secret",
		TokenTTLHours:      1,
		RateLimitPerMinute: 10000,
		AllowedOrigins:     []string{"*"},
		GinMode:            "test",
	}

	return &testEnv{router: SetupRouter(cfg, db), db: db, cfg: cfg}
}

func (e *testEnv) createUser(t *testing.T, username, email string, admin bool) models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{Username: username, Email: email, PasswordHash: hash, IsAdmin: admin}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateToken(e.cfg.JWTSecret, user.ID, user.Username, user.IsAdmin, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *testEnv) seedPost(t *testing.T, owner models.User, title, category string, createdAt time.Time) models.Post {
	t.Helper()
	post := models.Post{
		UserID:      owner.ID,
		Title:       title,
		Description: "a sufficiently long description",
		Category:    category,
		CreatedAt:   createdAt,
	}
	require.NoError(t, e.db.Create(&post).Error)
	return post
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
