// Package server hosts the transaction lesson in a browser: an HTML form plus a small
// JSON API over the same three actions (new key, build & sign, verify).
package server

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/OdyseeTeam/fast-tx/blockchain/model"
	"github.com/OdyseeTeam/fast-tx/blockchain/workflow"
	"github.com/OdyseeTeam/fast-tx/storage"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Server struct {
	store  storage.Store
	cookie string

	// overridable in tests
	random io.Reader
	now    func() time.Time

	// one actor per session; actions are serialized rather than locked per session
	mu sync.Mutex
}

func New(store storage.Store, cookieName string) *Server {
	return &Server{
		store:  store,
		cookie: cookieName,
		now:    time.Now,
	}
}

// Start serves on addr in the background and returns the http.Server so the caller can shut it down.
func (s *Server) Start(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Infof("listening on %s", addr)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
	return srv
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.page())
	mux.Handle("/key", s.post(s.pageKey))
	mux.Handle("/sign", s.post(s.pageSign))
	mux.Handle("/verify", s.post(s.pageVerify))
	mux.Handle("/api/session", s.apiSession())
	mux.Handle("/api/key", s.post(s.apiKey))
	mux.Handle("/api/sign", s.post(s.apiSign))
	mux.Handle("/api/verify", s.post(s.apiVerify))
	return mux
}

func (s *Server) post(fn http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	})
}

// sessionID returns the caller's session id, issuing a new cookie when there is none.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return id
}

// action loads the session, runs fn and saves whatever fn returns. When fn fails the
// stored session is left as it was.
func (s *Server) action(id string, fn func(workflow.Session) (workflow.Session, error)) (workflow.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.store.Load(id)
	if err != nil {
		return workflow.Session{}, err
	}
	next, err := fn(sess)
	if err != nil {
		return sess, err
	}
	if err := s.store.Save(id, next); err != nil {
		return sess, err
	}
	return next, nil
}

func (s *Server) load(id string) (workflow.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(id)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrEncoding):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidKey), errors.Is(err, model.ErrMalformedState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// userMessage hides internal failures; taxonomy errors are meant for the user.
func userMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func logFailure(action, id string, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		logrus.Errorf("%s failed for session %s: %+v", action, id, err)
		return
	}
	logrus.Debugf("%s rejected for session %s: %v", action, id, err)
}
