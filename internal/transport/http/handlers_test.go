package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vouch/internal/directory"
	"vouch/internal/directory/static"
	"vouch/internal/lockout"
	"vouch/internal/login"
	"vouch/internal/session"
	httptransport "vouch/internal/transport/http"
	"vouch/internal/verification/service"
	"vouch/internal/verification/store"
)

type fakeLogin struct{}

func (fakeLogin) Fields() []login.Field { return login.BaseFields() }

func (fakeLogin) Authenticate(_ context.Context, form map[string]string) login.Outcome {
	username := form["username"]
	if username != "" && form["password"] == "letmein" {
		return login.Outcome{Username: username, OK: true}
	}
	return login.Outcome{Username: username, Message: "Login failed."}
}

func (fakeLogin) ProductionReady() bool { return false }

type fakeReporter struct {
	texts []string
	fail  error
}

func (f *fakeReporter) Email(_ context.Context, text, _ string, _ int64) error {
	if f.fail != nil {
		return f.fail
	}
	f.texts = append(f.texts, text)
	return nil
}

type TransportSuite struct {
	suite.Suite
	router   http.Handler
	sessions *session.Manager
	reporter *fakeReporter
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	people := static.New([]directory.Person{
		directory.NewPerson([]string{"alice", "Alice A"}),
		directory.NewPerson([]string{"bob", "Bob B"}),
		directory.NewPerson([]string{"carol", "Carol C"}),
	}, slog.Default())

	ledger, err := service.New(store.NewMemory(), people, service.WithConfig(service.Config{
		Timeout:      300 * time.Second,
		SecretLength: 8,
	}))
	s.Require().NoError(err)

	locks, err := lockout.New(lockout.NewMemory(), lockout.WithConfig(lockout.Config{
		Threshold:    3,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	}))
	s.Require().NoError(err)

	s.sessions, err = session.New("test-signing-key", 10*time.Minute, false)
	s.Require().NoError(err)

	s.reporter = &fakeReporter{}
	handler := httptransport.New(ledger, people, fakeLogin{}, locks, s.reporter,
		s.sessions, slog.Default(), []string{"uid", "name"})
	s.router = httptransport.NewRouter(handler, s.sessions, nil)
}

func (s *TransportSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *TransportSuite) jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (s *TransportSuite) loginAs(username string) *http.Cookie {
	w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
		"fields": map[string]string{"username": username, "password": "letmein"},
	}))
	s.Require().Equal(http.StatusOK, w.Code)
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			return cookie
		}
	}
	s.Require().FailNow("no session cookie in login response")
	return nil
}

func (s *TransportSuite) authed(username string, req *http.Request) *http.Request {
	req.AddCookie(s.loginAs(username))
	return req
}

func (s *TransportSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (s *TransportSuite) TestLogin() {
	s.Run("success sets a session cookie", func() {
		cookie := s.loginAs("alice")
		username, err := s.sessions.Validate(cookie.Value)
		s.Require().NoError(err)
		s.Equal("alice", username)
	})

	s.Run("normalizes the username", func() {
		w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
			"fields": map[string]string{"username": " alice@example.com ", "password": "letmein"},
		}))
		s.Require().Equal(http.StatusOK, w.Code)
		var resp map[string]string
		s.decode(w, &resp)
		s.Equal("alice", resp["username"])
	})

	s.Run("missing username is invalid input", func() {
		w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
			"fields": map[string]string{"password": "letmein"},
		}))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("wrong password is unauthorized", func() {
		w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
			"fields": map[string]string{"username": "alice", "password": "wrong"},
		}))
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("repeated failures lock the account", func() {
		for i := 0; i < 3; i++ {
			w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
				"fields": map[string]string{"username": "dave", "password": "wrong"},
			}))
			s.Equal(http.StatusUnauthorized, w.Code)
		}

		w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
			"fields": map[string]string{"username": "dave", "password": "letmein"},
		}))
		s.Equal(http.StatusForbidden, w.Code)
		s.NotEmpty(w.Header().Get("Retry-After"))
	})

	s.Run("success clears earlier failures", func() {
		for i := 0; i < 2; i++ {
			s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
				"fields": map[string]string{"username": "erin", "password": "wrong"},
			}))
		}
		s.loginAs("erin")

		for i := 0; i < 2; i++ {
			s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
				"fields": map[string]string{"username": "erin", "password": "wrong"},
			}))
		}
		w := s.do(s.jsonRequest(http.MethodPost, "/api/login", map[string]any{
			"fields": map[string]string{"username": "erin", "password": "letmein"},
		}))
		s.Equal(http.StatusOK, w.Code)
	})
}

func (s *TransportSuite) TestFields() {
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/fields", nil))
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Fields []struct {
			Name   string `json:"name"`
			Secret bool   `json:"secret"`
		} `json:"fields"`
		Warning bool `json:"warning"`
	}
	s.decode(w, &resp)
	s.True(resp.Warning)
	s.Require().Len(resp.Fields, 2)
	s.Equal("username", resp.Fields[0].Name)
	s.True(resp.Fields[1].Secret)
}

func (s *TransportSuite) TestLogout() {
	w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/logout", nil)))
	s.Require().Equal(http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Less(cookies[0].MaxAge, 0)
}

func (s *TransportSuite) TestSearch() {
	s.Run("requires a session", func() {
		w := s.do(httptest.NewRequest(http.MethodGet, "/api/search?q=alice", nil))
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("rejects short or illegal queries", func() {
		w := s.do(s.authed("alice", httptest.NewRequest(http.MethodGet, "/api/search?q=al", nil)))
		s.Equal(http.StatusBadRequest, w.Code)

		w = s.do(s.authed("alice", httptest.NewRequest(http.MethodGet, "/api/search?q=al%2Ace", nil)))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("returns matching people with attribute names", func() {
		w := s.do(s.authed("alice", httptest.NewRequest(http.MethodGet, "/api/search?q=Bob", nil)))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp struct {
			AttributeNames []string   `json:"attribute_names"`
			Results        [][]string `json:"results"`
		}
		s.decode(w, &resp)
		s.Equal([]string{"uid", "name"}, resp.AttributeNames)
		s.Require().Len(resp.Results, 1)
		s.Equal("bob", resp.Results[0][0])
	})
}

func (s *TransportSuite) TestCreateVerification() {
	s.Run("creates a record for the session user", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
			map[string]string{"destination_uid": "bob"})))
		s.Require().Equal(http.StatusCreated, w.Code)

		var resp struct {
			SourceUID    string `json:"source_uid"`
			DestName     string `json:"dest_name"`
			SharedSecret string `json:"shared_secret"`
			Phonetic     string `json:"phonetic"`
			ExpiresIn    string `json:"expires_in"`
		}
		s.decode(w, &resp)
		s.Equal("alice", resp.SourceUID)
		s.Equal("Bob B", resp.DestName)
		s.Len(resp.SharedSecret, 8)
		s.NotEmpty(resp.Phonetic)
		s.Equal("5 minutes", resp.ExpiresIn)
	})

	s.Run("missing destination is invalid input", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
			map[string]string{})))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("self verification is invalid input", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
			map[string]string{"destination_uid": "alice"})))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown destination is invalid input", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
			map[string]string{"destination_uid": "mallory"})))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("duplicate active pair conflicts", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
			map[string]string{"destination_uid": "carol"})))
		s.Require().Equal(http.StatusCreated, w.Code)

		w = s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
			map[string]string{"destination_uid": "carol"})))
		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *TransportSuite) TestListVerifications() {
	w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
		map[string]string{"destination_uid": "bob"})))
	s.Require().Equal(http.StatusCreated, w.Code)

	s.Run("groups records by direction", func() {
		w := s.do(s.authed("bob", httptest.NewRequest(http.MethodGet, "/api/verifications", nil)))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp struct {
			AsSource      []json.RawMessage `json:"as_source"`
			AsDestination []json.RawMessage `json:"as_destination"`
		}
		s.decode(w, &resp)
		s.Empty(resp.AsSource)
		s.Len(resp.AsDestination, 1)
	})

	s.Run("history returns records for either side", func() {
		w := s.do(s.authed("alice", httptest.NewRequest(http.MethodGet, "/api/verifications?history=true", nil)))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp struct {
			History []json.RawMessage `json:"history"`
		}
		s.decode(w, &resp)
		s.Len(resp.History, 1)
	})
}

func (s *TransportSuite) TestGetVerification() {
	w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/verifications",
		map[string]string{"destination_uid": "bob"})))
	s.Require().Equal(http.StatusCreated, w.Code)
	var created struct {
		ID int64 `json:"id"`
	}
	s.decode(w, &created)

	s.Run("participants can read the record", func() {
		target := fmt.Sprintf("/api/verifications/%d", created.ID)
		w := s.do(s.authed("bob", httptest.NewRequest(http.MethodGet, target, nil)))
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("other users see not found", func() {
		target := fmt.Sprintf("/api/verifications/%d", created.ID)
		w := s.do(s.authed("carol", httptest.NewRequest(http.MethodGet, target, nil)))
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("unknown id is not found", func() {
		w := s.do(s.authed("alice", httptest.NewRequest(http.MethodGet, "/api/verifications/9999", nil)))
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("non-numeric id is invalid input", func() {
		w := s.do(s.authed("alice", httptest.NewRequest(http.MethodGet, "/api/verifications/abc", nil)))
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *TransportSuite) TestReport() {
	s.Run("submits the report", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/reports",
			map[string]any{"verification_id": 1, "reason": "they did not know the secret"})))
		s.Require().Equal(http.StatusAccepted, w.Code)
		s.Equal([]string{"they did not know the secret"}, s.reporter.texts)
	})

	s.Run("rejects a non-positive id", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/reports",
			map[string]any{"verification_id": 0, "reason": "reason"})))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("rejects an empty reason", func() {
		w := s.do(s.authed("alice", s.jsonRequest(http.MethodPost, "/api/reports",
			map[string]any{"verification_id": 1, "reason": "  "})))
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *TransportSuite) TestHealth() {
	w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	s.Equal(http.StatusOK, w.Code)
}
