// Package session carries the authenticated user's ID in a signed cookie.
// Nothing is stored server-side; the cookie is the whole session.
package session

import (
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	CookieName = "session"
	userIDKey  = "user_id"
)

// State is the session payload. An empty UserID means anonymous.
type State struct {
	UserID string
}

// Anonymous is the state of a visitor without a valid session
var Anonymous = State{}

// Authenticated returns the state for a logged-in user
func Authenticated(userID string) State {
	return State{UserID: userID}
}

func (s State) IsAuthenticated() bool {
	return s.UserID != ""
}

// Carrier reads and writes State through a signed cookie
type Carrier struct {
	store  *sessions.CookieStore
	logger *zap.SugaredLogger
}

// NewCarrier creates a Carrier whose cookies are signed with keys and expire
// after maxAge seconds. The first key signs new cookies and every key is
// accepted when verifying, which allows key rotation.
func NewCarrier(keys [][]byte, maxAge int, secure bool, logger *zap.SugaredLogger) *Carrier {
	pairs := make([][]byte, 0, len(keys)*2)
	for _, k := range keys {
		// no block key: the cookie is signed, not encrypted
		pairs = append(pairs, k, nil)
	}

	store := sessions.NewCookieStore(pairs...)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	// MaxAge sets both the cookie lifetime and the signed timestamp check
	store.MaxAge(maxAge)

	return &Carrier{store: store, logger: logger}
}

// Load returns the state carried by the request. Missing, tampered and
// expired cookies all yield Anonymous.
func (c *Carrier) Load(r *http.Request) State {
	sess, err := c.store.Get(r, CookieName)
	if err != nil {
		var cookieErr securecookie.Error
		if errors.As(err, &cookieErr) && cookieErr.IsDecode() {
			c.logger.Debugw("Discarding undecodable session cookie", "error", err)
		} else {
			c.logger.Warnw("Failed to read session cookie", "error", err)
		}
		return Anonymous
	}

	if userID, ok := sess.Values[userIDKey].(string); ok {
		return Authenticated(userID)
	}
	return Anonymous
}

// Save writes state to the response cookie, replacing what the request carried
func (c *Carrier) Save(w http.ResponseWriter, r *http.Request, state State) error {
	// Get only errors on a bad incoming cookie; a fresh session is returned
	// regardless and overwrites it.
	sess, _ := c.store.Get(r, CookieName)

	sess.Values = make(map[interface{}]interface{})
	if state.IsAuthenticated() {
		sess.Values[userIDKey] = state.UserID
	}

	return sess.Save(r, w)
}
