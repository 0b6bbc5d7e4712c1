package web

import (
	"context"
	"net/http"
	"net/url"

	"wikicms/internal/session"
	"wikicms/models"
)

// Request is everything a page handler may look at. Handlers never touch
// http.Request or the cookie directly.
type Request struct {
	Method  string
	Path    string
	Params  map[string]string
	Form    url.Values
	Session session.State

	ctx context.Context
}

// NewRequest builds a Request, mainly for calling handlers in tests
func NewRequest(ctx context.Context, method, path string, params map[string]string, form url.Values, state session.State) *Request {
	if params == nil {
		params = map[string]string{}
	}
	if form == nil {
		form = url.Values{}
	}
	return &Request{
		Method:  method,
		Path:    path,
		Params:  params,
		Form:    form,
		Session: state,
		ctx:     ctx,
	}
}

func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Param returns a path parameter captured by the route pattern
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// FormValue returns a body field
func (r *Request) FormValue(name string) string {
	return r.Form.Get(name)
}

// PageData is the variable bag handed to views
type PageData struct {
	Page     string
	User     *models.User
	Articles []*models.Article
	Article  *models.Article
	Error    string
	Username string
	Title    string
	Content  string
}

// Response is a handler's directive: render a view, or redirect. A non-nil
// Session replaces the client's session cookie.
type Response struct {
	Status     int
	View       string
	Data       PageData
	RedirectTo string
	Session    *session.State
}

// Render renders view with data and status 200
func Render(view string, data PageData) *Response {
	data.Page = view
	return &Response{Status: http.StatusOK, View: view, Data: data}
}

// Redirect sends the browser to path with 302 Found
func Redirect(path string) *Response {
	return &Response{Status: http.StatusFound, RedirectTo: path}
}

// WithStatus overrides the response status
func (resp *Response) WithStatus(status int) *Response {
	resp.Status = status
	return resp
}

// WithSession asks for the session cookie to be rewritten with state
func (resp *Response) WithSession(state session.State) *Response {
	resp.Session = &state
	return resp
}

// IsRedirect reports whether the response is a redirect directive
func (resp *Response) IsRedirect() bool {
	return resp.RedirectTo != ""
}
