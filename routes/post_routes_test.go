package routes

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devmahmod/social-api/models"
)

type postResponse struct {
	Message string      `json:"message"`
	Post    models.Post `json:"post"`
}

func TestCreatePostOwnerComesFromToken(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)

	// user_id in the body must be ignored; ownership comes from the token.
	w := env.request(t, http.MethodPost, "/api/posts", env.tokenFor(t, owner), map[string]interface{}{
		"title":       "Hello",
		"description": "A sufficiently long description here",
		"user_id":     9999,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp postResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Post created successfully", resp.Message)
	assert.Equal(t, owner.ID, resp.Post.UserID)
	assert.Equal(t, "Hello", resp.Post.Title)
	assert.Equal(t, "alice", resp.Post.User.Username)
	assert.Empty(t, resp.Post.Likes)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, env.createUser(t, "alice", "alice@example.com", false))

	cases := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"missing title", map[string]interface{}{"description": "a long enough description"}, "title is required"},
		{"short title", map[string]interface{}{"title": "ab", "description": "a long enough description"}, "title must be between 3 and 200 characters"},
		{"missing description", map[string]interface{}{"title": "Hello"}, "description is required"},
		{"short description", map[string]interface{}{"title": "Hello", "description": "too short"}, "description must be between 10 and 50000 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/api/posts", token, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			decodeBody(t, w, &resp)
			assert.Equal(t, tc.message, resp["message"])
		})
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodPost, "/api/posts", "", map[string]interface{}{
		"title": "Hello", "description": "a long enough description",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListPostsNewestFirstWithOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	base := time.Now().Add(-time.Hour)
	env.seedPost(t, owner, "first", "", base)
	env.seedPost(t, owner, "second", "", base.Add(time.Minute))
	env.seedPost(t, owner, "third", "", base.Add(2*time.Minute))

	w := env.request(t, http.MethodGet, "/api/posts", env.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.Post
	decodeBody(t, w, &posts)
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0].Title)
	assert.Equal(t, "second", posts[1].Title)
	assert.Equal(t, "first", posts[2].Title)
	assert.Equal(t, "alice", posts[0].User.Username)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestListPostsPagedSkipsNewestThree(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 5; i++ {
		env.seedPost(t, owner, fmt.Sprintf("post-%d", i), "", base.Add(time.Duration(i)*time.Minute))
	}

	w := env.request(t, http.MethodGet, "/api/posts?pageNumber=2", env.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.Post
	decodeBody(t, w, &posts)
	// Page 2 with page size 3 skips exactly the 3 newest.
	require.Len(t, posts, 2)
	assert.Equal(t, "post-2", posts[0].Title)
	assert.Equal(t, "post-1", posts[1].Title)
}

func TestListPostsPageNumberWinsOverCategory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	base := time.Now().Add(-time.Hour)
	env.seedPost(t, owner, "tech-post", "tech", base)
	env.seedPost(t, owner, "misc-post", "misc", base.Add(time.Minute))

	w := env.request(t, http.MethodGet, "/api/posts?pageNumber=1&category=tech", env.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.Post
	decodeBody(t, w, &posts)
	// Paged mode ignores the category filter entirely.
	require.Len(t, posts, 2)
	assert.Equal(t, "misc-post", posts[0].Title)
}

func TestListPostsByCategory(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	base := time.Now().Add(-time.Hour)
	env.seedPost(t, owner, "tech-old", "tech", base)
	env.seedPost(t, owner, "misc", "misc", base.Add(time.Minute))
	env.seedPost(t, owner, "tech-new", "tech", base.Add(2*time.Minute))

	w := env.request(t, http.MethodGet, "/api/posts?category=tech", env.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []models.Post
	decodeBody(t, w, &posts)
	require.Len(t, posts, 2)
	assert.Equal(t, "tech-new", posts[0].Title)
	assert.Equal(t, "tech-old", posts[1].Title)
}

func TestListPostsRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	post := env.seedPost(t, owner, "Hello", "", time.Now())

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Post
	decodeBody(t, w, &got)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "alice", got.User.Username)
	assert.NotNil(t, got.Comments)
	assert.Empty(t, got.Comments)
	assert.Empty(t, got.Likes)
}

func TestGetPostNotFoundIsNever500(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/posts/424242", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]string
	decodeBody(t, w, &resp)
	assert.Equal(t, "post not found", resp["message"])
}

func TestGetPostInvalidIDRejectedByMiddleware(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/posts/not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCountPosts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	env.seedPost(t, owner, "one", "", time.Now())
	env.seedPost(t, owner, "two", "", time.Now())

	// No auth needed, and the body is a bare number.
	w := env.request(t, http.MethodGet, "/api/posts/count", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", strings.TrimSpace(w.Body.String()))
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	stranger := env.createUser(t, "bob", "bob@example.com", false)
	admin := env.createUser(t, "root", "root@example.com", true)
	post := env.seedPost(t, owner, "Original", "", time.Now())
	path := fmt.Sprintf("/api/posts/%d", post.ID)
	payload := map[string]interface{}{"title": "Changed"}

	// Non-owner is rejected.
	w := env.request(t, http.MethodPut, path, env.tokenFor(t, stranger), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Administrators get no override on update.
	w = env.request(t, http.MethodPut, path, env.tokenFor(t, admin), payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner succeeds, and untouched fields survive a partial update.
	w = env.request(t, http.MethodPut, path, env.tokenFor(t, owner), payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Post
	decodeBody(t, w, &got)
	assert.Equal(t, "Changed", got.Title)
	assert.Equal(t, "a sufficiently long description", got.Description)
	assert.Equal(t, "alice", got.User.Username)
}

func TestUpdatePostValidatesBeforeAuthorization(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	stranger := env.createUser(t, "bob", "bob@example.com", false)
	post := env.seedPost(t, owner, "Original", "", time.Now())

	// A malformed payload from a non-owner still fails as 400, not 403.
	w := env.request(t, http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID),
		env.tokenFor(t, stranger), map[string]interface{}{"title": "ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePostNotFound(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", false)
	w := env.request(t, http.MethodPut, "/api/posts/424242", env.tokenFor(t, user),
		map[string]interface{}{"title": "Changed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	stranger := env.createUser(t, "bob", "bob@example.com", false)
	admin := env.createUser(t, "root", "root@example.com", true)
	post := env.seedPost(t, owner, "Doomed", "", time.Now())
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	w := env.request(t, http.MethodDelete, path, env.tokenFor(t, stranger), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Delete, unlike update, grants administrators an override.
	w = env.request(t, http.MethodDelete, path, env.tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
		PostID  uint   `json:"postId"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "Post has been deleted successfully", resp.Message)
	assert.Equal(t, post.ID, resp.PostID)

	w = env.request(t, http.MethodDelete, path, env.tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostRemovesCommentsAndLikes(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	post := env.seedPost(t, owner, "Doomed", "", time.Now())
	require.NoError(t, env.db.Create(&models.Comment{PostID: post.ID, UserID: owner.ID, Text: "hi"}).Error)
	require.NoError(t, env.db.Create(&models.PostLike{PostID: post.ID, UserID: owner.ID}).Error)

	w := env.request(t, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), env.tokenFor(t, owner), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var comments, likes int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.NoError(t, env.db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	liker := env.createUser(t, "bob", "bob@example.com", false)
	post := env.seedPost(t, owner, "Likeable", "", time.Now())
	path := fmt.Sprintf("/api/posts/like/%d", post.ID)

	w := env.request(t, http.MethodPut, path, env.tokenFor(t, liker), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Post
	decodeBody(t, w, &got)
	assert.Equal(t, []uint{liker.ID}, got.Likes)

	// Second toggle by the same user restores the original state.
	w = env.request(t, http.MethodPut, path, env.tokenFor(t, liker), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &got)
	assert.Empty(t, got.Likes)
}

func TestToggleLikeKeepsLikesUnique(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "alice", "alice@example.com", false)
	bob := env.createUser(t, "bob", "bob@example.com", false)
	post := env.seedPost(t, owner, "Likeable", "", time.Now())
	path := fmt.Sprintf("/api/posts/like/%d", post.ID)

	// Odd number of toggles per user: each must appear exactly once.
	for i := 0; i < 3; i++ {
		w := env.request(t, http.MethodPut, path, env.tokenFor(t, owner), nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.request(t, http.MethodPut, path, env.tokenFor(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Post
	decodeBody(t, w, &got)
	require.Len(t, got.Likes, 2)
	assert.ElementsMatch(t, []uint{owner.ID, bob.ID}, got.Likes)
}

func TestToggleLikeMissingPost(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "alice", "alice@example.com", false)
	w := env.request(t, http.MethodPut, "/api/posts/like/424242", env.tokenFor(t, user), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "ursula", "u@example.com", false)
	visitor := env.createUser(t, "victor", "v@example.com", false)

	w := env.request(t, http.MethodPost, "/api/posts", env.tokenFor(t, author), map[string]interface{}{
		"title":       "Hello",
		"description": "A sufficiently long description here",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created postResponse
	decodeBody(t, w, &created)
	require.Equal(t, author.ID, created.Post.UserID)

	path := fmt.Sprintf("/api/posts/%d", created.Post.ID)
	w = env.request(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.Post
	decodeBody(t, w, &fetched)
	assert.Equal(t, "Hello", fetched.Title)
	assert.Empty(t, fetched.Comments)

	likePath := fmt.Sprintf("/api/posts/like/%d", created.Post.ID)
	w = env.request(t, http.MethodPut, likePath, env.tokenFor(t, visitor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &fetched)
	assert.Equal(t, []uint{visitor.ID}, fetched.Likes)

	w = env.request(t, http.MethodPut, likePath, env.tokenFor(t, visitor), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &fetched)
	assert.Empty(t, fetched.Likes)
}
