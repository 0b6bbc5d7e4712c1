package web

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wikicms/middleware"
)

// HandlerFunc is a page handler: a function of the request alone
type HandlerFunc func(req *Request) *Response

// Route binds a method and path pattern to a handler. Patterns use literal
// segments and {name} wildcards that capture exactly one path segment.
type Route struct {
	Name    string
	Method  string
	Pattern string
	Handler HandlerFunc
}

// Routes returns the route table in match order. gorilla/mux tries routes
// in registration order and the first match wins, so literal paths such as
// /articles/new must precede the {id} patterns that would also match them.
func (h *WebHandler) Routes() []Route {
	return []Route{
		{"index", http.MethodGet, "/", h.Index},
		{"article.new", http.MethodGet, "/articles/new", h.NewArticle},
		{"article.show", http.MethodGet, "/articles/{id}", h.ShowArticle},
		{"article.edit", http.MethodGet, "/articles/{id}/edit", h.EditArticle},
		{"article.create", http.MethodPost, "/articles", h.CreateArticle},
		{"article.update", http.MethodPost, "/articles/{id}", h.UpdateArticle},
		{"article.delete", http.MethodPost, "/articles/{id}/delete", h.DeleteArticle},
		{"login.form", http.MethodGet, "/login", h.LoginForm},
		{"login", http.MethodPost, "/login", h.Login},
		{"logout", http.MethodGet, "/logout", h.Logout},
		{"register.form", http.MethodGet, "/register", h.RegisterForm},
		{"register", http.MethodPost, "/register", h.Register},
		{"user.create", http.MethodPost, "/users", h.CreateUser},
	}
}

func (h *WebHandler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	// Article IDs may contain characters that need escaping, "/" included
	r.UseEncodedPath()
	r.Use(middleware.MetricsMiddleware)

	// Operational endpoints
	r.HandleFunc("/healthz", healthz).Methods("GET").Name("healthz")
	if h.config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET").Name("metrics")
	}

	// Web pages
	for _, route := range h.Routes() {
		r.HandleFunc(route.Pattern, h.adapt(route.Handler)).Methods(route.Method).Name(route.Name)
	}

	r.NotFoundHandler = h.adapt(h.NotFound)
	r.MethodNotAllowedHandler = h.adapt(h.MethodNotAllowed)

	return r
}

// adapt turns a page handler into an http.HandlerFunc. It is the only place
// that reads the form, path variables and session cookie, and the only place
// that writes cookies, redirects and rendered views.
func (h *WebHandler) adapt(handler HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.write(w, r, Render("error", PageData{Error: "Malformed form body"}).WithStatus(http.StatusBadRequest))
			return
		}

		params := make(map[string]string)
		for name, raw := range mux.Vars(r) {
			value, err := url.PathUnescape(raw)
			if err != nil {
				value = raw
			}
			params[name] = value
		}

		req := NewRequest(r.Context(), r.Method, r.URL.Path, params, r.PostForm, h.sessions.Load(r))
		h.write(w, r, handler(req))
	}
}

func (h *WebHandler) write(w http.ResponseWriter, r *http.Request, resp *Response) {
	if resp.Session != nil {
		if err := h.sessions.Save(w, r, *resp.Session); err != nil {
			h.logger.Errorw("Failed to save session", "path", r.URL.Path, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	if resp.IsRedirect() {
		http.Redirect(w, r, resp.RedirectTo, resp.Status)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, resp.View, resp.Data); err != nil {
		h.logger.Errorw("Template execution error", "view", resp.View, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(resp.Status)
	buf.WriteTo(w)
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
