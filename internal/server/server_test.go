package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"funprofile/internal/config"
	"funprofile/internal/models"
	"funprofile/internal/repository"
	"funprofile/internal/service"
	"funprofile/internal/storage"
	"funprofile/internal/testutil"
)

type testServer struct {
	*Server
	db           *gorm.DB
	mediaBucket  *storage.MemoryBucket
	avatarBucket *storage.MemoryBucket
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewTestDB(t)
	testutil.NewTestRedis(t)

	cfg := &config.Config{
		JWTSecret:          "test-secret-test-secret-test-secret!",
		Port:               "0",
		Env:                "test",
		AllowedOrigins:     "*",
		MediaBucket:        "post-media",
		AvatarBucket:       "avatars",
		WalletChainName:    "BNB Smart Chain",
		WalletChainID:      56,
		WalletExplorerURL:  "https://bscscan.com/tx/",
		WalletDefaultToken: "ETH",
	}

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	profiles := repository.NewProfileRepository(db)
	wallets := repository.NewWalletRepository(db)
	friendships := repository.NewFriendshipRepository(db)

	mediaBucket := storage.NewMemoryBucket()
	avatarBucket := storage.NewMemoryBucket()

	srv := NewServer(Deps{
		Config:         cfg,
		DB:             db,
		Users:          users,
		Posts:          posts,
		Profiles:       profiles,
		Wallets:        wallets,
		Friendships:    friendships,
		PostService:    service.NewPostService(posts, profiles, mediaBucket),
		ProfileService: service.NewProfileService(profiles, avatarBucket),
		WalletService:  service.NewWalletService(wallets, profiles, cfg),
	})
	return &testServer{Server: srv, db: db, mediaBucket: mediaBucket, avatarBucket: avatarBucket}
}

func (ts *testServer) signup(t *testing.T, username string) (token string, user models.User) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token, out.User
}

func jsonRequest(t *testing.T, method, target, token string, payload interface{}) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func multipartPostRequest(t *testing.T, target, token, content string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("content", content))
	for name, data := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)
	token, user := ts.signup(t, "alice")
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)

	resp, err := ts.App().Test(jsonRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass1",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.App().Test(jsonRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"username": "x", "email": "bad", "password": "short",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePostRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	req := multipartPostRequest(t, "/api/posts/", "", "anonymous post", nil)
	resp, err := ts.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	// Nothing reached storage.
	assert.Equal(t, 0, ts.mediaBucket.Len())
}

func TestCreatePostMultipart(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup(t, "poster")

	img := testutil.PNG(t, 80, 60)
	req := multipartPostRequest(t, "/api/posts/", token, "hello feed", map[string][]byte{"pic.png": img})
	resp, err := ts.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Post.Content)
	assert.Equal(t, "hello feed", *out.Post.Content)
	assert.Len(t, out.Post.MediaURLs, 1)
	assert.Equal(t, 1, ts.mediaBucket.Len())
}

func TestFeedAndEngagement(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup(t, "author")
	readerToken, _ := ts.signup(t, "reader")

	req := multipartPostRequest(t, "/api/posts/", token, "engage with me", nil)
	resp, err := ts.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	postID := created.Post.ID

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", postID), readerToken,
		map[string]string{"content": "first!"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/reactions", postID), readerToken,
		map[string]string{"type": "love"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/shares", postID), readerToken, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = ts.App().Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/posts/%d", postID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var post models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&post))
	assert.Equal(t, int64(1), post.CommentCount)
	assert.Equal(t, int64(1), post.ReactionCount)
	assert.Equal(t, int64(1), post.ShareCount)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	ts := newTestServer(t)
	ownerToken, _ := ts.signup(t, "owner")
	otherToken, _ := ts.signup(t, "other")

	resp, err := ts.App().Test(multipartPostRequest(t, "/api/posts/", ownerToken, "mine", nil), -1)
	require.NoError(t, err)
	var created struct {
		Post models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp, err = ts.App().Test(jsonRequest(t, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", created.Post.ID), otherToken, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodDelete,
		fmt.Sprintf("/api/posts/%d", created.Post.ID), ownerToken, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestProfileAndHonorBoard(t *testing.T) {
	ts := newTestServer(t)
	token, user := ts.signup(t, "profiled")

	resp, err := ts.App().Test(jsonRequest(t, http.MethodPut, "/api/profiles/me", token,
		map[string]string{"bio": "hello there"}), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.App().Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/profiles/%d", user.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile models.Profile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.Equal(t, "hello there", profile.Bio)

	resp, err = ts.App().Test(httptest.NewRequest(http.MethodGet, "/api/profiles/honor-board", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReplaceAvatarEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup(t, "avatared")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("avatar", "face.png")
	require.NoError(t, err)
	_, err = fw.Write(testutil.PNG(t, 32, 32))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/profiles/me/avatar", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, ts.avatarBucket.Len())
}

func TestWalletEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.signup(t, "walleter")

	// Wallet routes are auth-gated as a group.
	resp, err := ts.App().Test(httptest.NewRequest(http.MethodGet, "/api/wallet/history", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPost, "/api/wallet/contacts", token,
		map[string]string{"name": "Ada", "address": "0x1234567890abcdef1234567890abcdef12345678"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodGet, "/api/wallet/contacts", token, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var contacts struct {
		Contacts []models.WalletContact `json:"contacts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&contacts))
	assert.Len(t, contacts.Contacts, 1)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPost, "/api/wallet/send", token,
		map[string]interface{}{"to_address": "bad", "amount": 1}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}


func TestFriendshipFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, alice := ts.signup(t, "falice")
	bobToken, bob := ts.signup(t, "fbob")

	resp, err := ts.App().Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/profiles/%d/friend-requests", bob.ID), aliceToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodGet,
		"/api/profiles/me/friend-requests", bobToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending struct {
		Requests []models.Friendship `json:"requests"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	require.Len(t, pending.Requests, 1)

	resp, err = ts.App().Test(jsonRequest(t, http.MethodPut,
		fmt.Sprintf("/api/friendships/%d/accept", alice.ID), bobToken, nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.App().Test(httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/profiles/%d/friends", alice.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var friends struct {
		FriendIDs []uint `json:"friend_ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&friends))
	assert.Equal(t, []uint{bob.ID}, friends.FriendIDs)
}
