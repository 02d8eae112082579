package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SessionSuite struct {
	suite.Suite
	manager *Manager
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	var err error
	s.manager, err = New("test-signing-key", 10*time.Minute, false)
	s.Require().NoError(err)
}

func (s *SessionSuite) TestNew() {
	s.Run("empty signing key is rejected", func() {
		_, err := New("", time.Minute, false)
		s.Error(err)
	})

	s.Run("non-positive timeout is rejected", func() {
		_, err := New("key", 0, false)
		s.Error(err)
	})
}

func (s *SessionSuite) TestIssueAndValidate() {
	s.Run("round trips the username", func() {
		token, err := s.manager.Issue("alice", time.Now())
		s.Require().NoError(err)

		username, err := s.manager.Validate(token)
		s.Require().NoError(err)
		s.Equal("alice", username)
	})

	s.Run("rejects an expired token", func() {
		token, err := s.manager.Issue("alice", time.Now().Add(-time.Hour))
		s.Require().NoError(err)

		_, err = s.manager.Validate(token)
		s.ErrorIs(err, ErrInvalidSession)
	})

	s.Run("rejects a token signed with another key", func() {
		other, err := New("another-key", 10*time.Minute, false)
		s.Require().NoError(err)
		token, err := other.Issue("alice", time.Now())
		s.Require().NoError(err)

		_, err = s.manager.Validate(token)
		s.ErrorIs(err, ErrInvalidSession)
	})

	s.Run("rejects garbage", func() {
		_, err := s.manager.Validate("not-a-token")
		s.ErrorIs(err, ErrInvalidSession)
	})
}

func (s *SessionSuite) TestCookies() {
	s.Run("set cookie round trips through a request", func() {
		w := httptest.NewRecorder()
		err := s.manager.SetCookie(w, "bob", time.Now())
		s.Require().NoError(err)

		cookies := w.Result().Cookies()
		s.Require().Len(cookies, 1)
		cookie := cookies[0]
		s.Equal(CookieName, cookie.Name)
		s.True(cookie.HttpOnly)
		s.Equal(http.SameSiteStrictMode, cookie.SameSite)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(cookie)
		username, err := s.manager.FromRequest(r)
		s.Require().NoError(err)
		s.Equal("bob", username)
	})

	s.Run("missing cookie yields no session", func() {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := s.manager.FromRequest(r)
		s.ErrorIs(err, ErrNoSession)
	})

	s.Run("clear cookie expires the session cookie", func() {
		w := httptest.NewRecorder()
		s.manager.ClearCookie(w)

		cookies := w.Result().Cookies()
		s.Require().Len(cookies, 1)
		s.Equal(CookieName, cookies[0].Name)
		s.Less(cookies[0].MaxAge, 0)
	})
}
