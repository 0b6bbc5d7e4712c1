package web

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"wikicms/internal/article"
	"wikicms/internal/auth"
	"wikicms/internal/config"
	"wikicms/internal/session"
	"wikicms/internal/user"
)

type WebHandler struct {
	articleService *article.ArticleService
	authService    *auth.AuthService
	sessions       *session.Carrier
	renderer       Renderer
	config         *config.Config
	logger         *zap.SugaredLogger
}

func NewWebHandler(
	articleService *article.ArticleService,
	authService *auth.AuthService,
	sessions *session.Carrier,
	renderer Renderer,
	config *config.Config,
	logger *zap.SugaredLogger,
) *WebHandler {
	return &WebHandler{
		articleService: articleService,
		authService:    authService,
		sessions:       sessions,
		renderer:       renderer,
		config:         config,
		logger:         logger,
	}
}

// page starts a PageData with the session owner filled in
func (h *WebHandler) page(req *Request) PageData {
	return PageData{User: h.authService.CurrentUser(req.Context(), req.Session)}
}

// Article pages

func (h *WebHandler) Index(req *Request) *Response {
	articles, err := h.articleService.List(req.Context())
	if err != nil {
		return h.serverError(req, err)
	}

	data := h.page(req)
	data.Articles = articles
	return Render("index", data)
}

func (h *WebHandler) NewArticle(req *Request) *Response {
	return Render("new", h.page(req))
}

func (h *WebHandler) ShowArticle(req *Request) *Response {
	return h.renderArticle(req, "show")
}

func (h *WebHandler) EditArticle(req *Request) *Response {
	return h.renderArticle(req, "edit")
}

func (h *WebHandler) renderArticle(req *Request, view string) *Response {
	id := req.Param("id")
	a, err := h.articleService.Get(req.Context(), id)
	if errors.Is(err, article.ErrNotFound) {
		return h.notFound(req, "No article with id "+id)
	}
	if err != nil {
		return h.serverError(req, err)
	}

	data := h.page(req)
	data.Article = a
	return Render(view, data)
}

func (h *WebHandler) CreateArticle(req *Request) *Response {
	title := req.FormValue("title")
	content := req.FormValue("content")

	id, err := h.articleService.Create(req.Context(), title, content)
	if errors.Is(err, article.ErrEmptyID) {
		data := h.page(req)
		data.Error = "Title must start with a word"
		data.Title = title
		data.Content = content
		return Render("new", data).WithStatus(http.StatusBadRequest)
	}
	if err != nil {
		return h.serverError(req, err)
	}

	return Redirect(articlePath(id))
}

func (h *WebHandler) UpdateArticle(req *Request) *Response {
	id := req.Param("id")
	if err := h.articleService.Update(req.Context(), id, req.FormValue("title"), req.FormValue("content")); err != nil {
		return h.serverError(req, err)
	}
	return Redirect(articlePath(id))
}

func (h *WebHandler) DeleteArticle(req *Request) *Response {
	if err := h.articleService.Delete(req.Context(), req.Param("id")); err != nil {
		return h.serverError(req, err)
	}
	return Redirect("/")
}

// Auth pages

func (h *WebHandler) LoginForm(req *Request) *Response {
	return Render("login", h.page(req))
}

func (h *WebHandler) Login(req *Request) *Response {
	username := req.FormValue("username")
	next, _, err := h.authService.Login(req.Context(), req.Session, username, req.FormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		data := h.page(req)
		data.Error = "Invalid username or password"
		data.Username = username
		return Render("login", data).WithStatus(http.StatusUnauthorized)
	}
	if err != nil {
		return h.serverError(req, err)
	}

	return Redirect("/").WithSession(next)
}

func (h *WebHandler) Logout(req *Request) *Response {
	return Redirect("/").WithSession(h.authService.Logout(req.Context(), req.Session))
}

func (h *WebHandler) RegisterForm(req *Request) *Response {
	return Render("register", h.page(req))
}

func (h *WebHandler) Register(req *Request) *Response {
	username := req.FormValue("username")
	next, _, err := h.authService.Register(req.Context(), req.Session, username, req.FormValue("password"))
	if errors.Is(err, user.ErrDuplicateUsername) {
		data := h.page(req)
		data.Error = "Username " + username + " is already taken"
		data.Username = username
		return Render("register", data).WithStatus(http.StatusConflict)
	}
	if err != nil {
		return h.serverError(req, err)
	}

	return Redirect("/").WithSession(next)
}

// CreateUser answers the legacy user-creation route, which never had a body
func (h *WebHandler) CreateUser(req *Request) *Response {
	data := h.page(req)
	data.Error = "Not implemented: use /register"
	return Render("error", data).WithStatus(http.StatusNotImplemented)
}

// Fallbacks

func (h *WebHandler) NotFound(req *Request) *Response {
	return h.notFound(req, "")
}

func (h *WebHandler) MethodNotAllowed(req *Request) *Response {
	data := h.page(req)
	data.Error = req.Method + " is not allowed on " + req.Path
	return Render("error", data).WithStatus(http.StatusMethodNotAllowed)
}

func (h *WebHandler) notFound(req *Request, msg string) *Response {
	data := h.page(req)
	data.Error = msg
	return Render("not_found", data).WithStatus(http.StatusNotFound)
}

func (h *WebHandler) serverError(req *Request, err error) *Response {
	h.logger.Errorw("Request failed", "method", req.Method, "path", req.Path, "error", err)
	return Render("error", PageData{Error: "Internal server error"}).WithStatus(http.StatusInternalServerError)
}

func articlePath(id string) string {
	return "/articles/" + url.PathEscape(id)
}
