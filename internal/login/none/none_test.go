package none

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/login"
)

type NoneProviderSuite struct {
	suite.Suite
	provider *Provider
}

func TestNoneProviderSuite(t *testing.T) {
	suite.Run(t, new(NoneProviderSuite))
}

func (s *NoneProviderSuite) SetupTest() {
	s.provider = New(slog.Default())
}

func (s *NoneProviderSuite) TestFields() {
	s.Run("password descriptor is dropped", func() {
		fields := s.provider.Fields()
		s.Require().Len(fields, 1)
		s.Equal("username", fields[0].Name)
		s.False(fields[0].Secret)
		s.True(fields[0].Required)
	})
}

func (s *NoneProviderSuite) TestAuthenticate() {
	ctx := context.Background()

	s.Run("accepts any username without a credential", func() {
		outcome := s.provider.Authenticate(ctx, map[string]string{"username": "alice"})
		s.True(outcome.OK)
		s.Equal("alice", outcome.Username)
		s.Empty(outcome.Message)
	})

	s.Run("normalizes email-style usernames", func() {
		outcome := s.provider.Authenticate(ctx, map[string]string{"username": " alice@corp.com "})
		s.True(outcome.OK)
		s.Equal("alice", outcome.Username)
	})

	s.Run("missing username is a failure outcome, not an error", func() {
		outcome := s.provider.Authenticate(ctx, map[string]string{})
		s.False(outcome.OK)
		s.Empty(outcome.Username)
		s.Contains(outcome.Message, "Username")
	})
}

func (s *NoneProviderSuite) TestProductionReady() {
	s.False(s.provider.ProductionReady())
}

func TestBaseFieldsContract(t *testing.T) {
	t.Run("base contract supplies username and password in order", func(t *testing.T) {
		fields := login.SortFields(login.BaseFields())
		if len(fields) != 2 || fields[0].Name != "username" || fields[1].Name != "password" {
			t.Fatalf("unexpected base fields: %+v", fields)
		}
		if !fields[1].Secret {
			t.Fatal("password field must be secret")
		}
	})
}
