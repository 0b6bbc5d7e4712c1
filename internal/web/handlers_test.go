package web

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikicms/internal/session"
)

func get(path string, params map[string]string, state session.State) *Request {
	return NewRequest(context.Background(), http.MethodGet, path, params, nil, state)
}

func post(path string, params map[string]string, form url.Values, state session.State) *Request {
	return NewRequest(context.Background(), http.MethodPost, path, params, form, state)
}

func TestIndex(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Index(get("/", nil, session.Anonymous))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "index", resp.View)
	assert.Equal(t, "index", resp.Data.Page)
	assert.Len(t, resp.Data.Articles, 2)
	assert.Nil(t, resp.Data.User)
	assert.Nil(t, resp.Session, "rendering must not touch the session")
}

func TestIndex_ShowsCurrentUser(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Index(get("/", nil, session.Authenticated("1")))
	require.NotNil(t, resp.Data.User)
	assert.Equal(t, "hora", resp.Data.User.Username)
}

func TestShowArticle(t *testing.T) {
	h := newTestHandler(t)

	resp := h.ShowArticle(get("/articles/wiki", map[string]string{"id": "wiki"}, session.Anonymous))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "show", resp.View)
	require.NotNil(t, resp.Data.Article)
	assert.Equal(t, "wiki", resp.Data.Article.ID)

	resp = h.EditArticle(get("/articles/wiki/edit", map[string]string{"id": "wiki"}, session.Anonymous))
	assert.Equal(t, "edit", resp.View)

	resp = h.ShowArticle(get("/articles/missing", map[string]string{"id": "missing"}, session.Anonymous))
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "not_found", resp.View)
}

func TestCreateArticle(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{"title": {"Test Article"}, "content": {"body"}}
	resp := h.CreateArticle(post("/articles", nil, form, session.Anonymous))
	assert.True(t, resp.IsRedirect())
	assert.Equal(t, http.StatusFound, resp.Status)
	assert.Equal(t, "/articles/Test", resp.RedirectTo)

	a, err := h.articleService.Get(context.Background(), "Test")
	require.NoError(t, err)
	assert.Equal(t, "Test Article", a.Title)
}

func TestCreateArticle_EmptyID(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{"title": {" starts with space"}, "content": {"kept"}}
	resp := h.CreateArticle(post("/articles", nil, form, session.Anonymous))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "new", resp.View)
	assert.NotEmpty(t, resp.Data.Error)
	assert.Equal(t, "kept", resp.Data.Content)
}

func TestCreateArticle_EscapesRedirect(t *testing.T) {
	h := newTestHandler(t)

	form := url.Values{"title": {"a/b?c rest"}}
	resp := h.CreateArticle(post("/articles", nil, form, session.Anonymous))
	assert.Equal(t, "/articles/a%2Fb%3Fc", resp.RedirectTo)
}

func TestUpdateArticle_KeepsID(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	form := url.Values{"title": {"Renamed entirely"}, "content": {"new"}}
	resp := h.UpdateArticle(post("/articles/wiki", map[string]string{"id": "wiki"}, form, session.Anonymous))
	assert.Equal(t, "/articles/wiki", resp.RedirectTo)

	a, err := h.articleService.Get(ctx, "wiki")
	require.NoError(t, err)
	assert.Equal(t, "Renamed entirely", a.Title)
}

func TestDeleteArticle(t *testing.T) {
	h := newTestHandler(t)
	params := map[string]string{"id": "wiki"}

	resp := h.DeleteArticle(post("/articles/wiki/delete", params, nil, session.Anonymous))
	assert.Equal(t, "/", resp.RedirectTo)

	// deleting again is still a redirect
	resp = h.DeleteArticle(post("/articles/wiki/delete", params, nil, session.Anonymous))
	assert.Equal(t, "/", resp.RedirectTo)

	resp = h.ShowArticle(get("/articles/wiki", params, session.Anonymous))
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Login(post("/login", nil, url.Values{"username": {"hora"}, "password": {"123"}}, session.Anonymous))
	assert.Equal(t, "/", resp.RedirectTo)
	require.NotNil(t, resp.Session)
	assert.Equal(t, session.Authenticated("1"), *resp.Session)

	resp = h.Login(post("/login", nil, url.Values{"username": {"hora"}, "password": {"bad"}}, session.Anonymous))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.Equal(t, "login", resp.View)
	assert.Equal(t, "hora", resp.Data.Username)
	assert.Nil(t, resp.Session, "a failed login leaves the cookie alone")
}

func TestLogout(t *testing.T) {
	h := newTestHandler(t)

	for _, state := range []session.State{session.Authenticated("1"), session.Anonymous} {
		resp := h.Logout(get("/logout", nil, state))
		assert.Equal(t, "/", resp.RedirectTo)
		require.NotNil(t, resp.Session)
		assert.False(t, resp.Session.IsAuthenticated())
	}
}

func TestRegister(t *testing.T) {
	h := newTestHandler(t)

	resp := h.Register(post("/register", nil, url.Values{"username": {"kai"}, "password": {"pw"}}, session.Anonymous))
	assert.Equal(t, "/", resp.RedirectTo)
	require.NotNil(t, resp.Session)
	assert.Equal(t, "3", resp.Session.UserID)

	resp = h.Register(post("/register", nil, url.Values{"username": {"kai"}, "password": {"other"}}, session.Anonymous))
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, "register", resp.View)
	assert.Contains(t, resp.Data.Error, "kai")
	assert.Nil(t, resp.Session)
}

func TestCreateUser_NotImplemented(t *testing.T) {
	h := newTestHandler(t)

	resp := h.CreateUser(post("/users", nil, nil, session.Anonymous))
	assert.Equal(t, http.StatusNotImplemented, resp.Status)
	assert.Equal(t, "error", resp.View)
}
