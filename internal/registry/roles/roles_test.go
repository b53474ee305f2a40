package roles

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"certledger/internal/registry/models"
	dErrors "certledger/pkg/domain-errors"
)

const (
	owner   = models.Identity("0xowner")
	alice   = models.Identity("0xalice")
	bob     = models.Identity("0xbob")
	mallory = models.Identity("0xmallory")
)

type RoleManagerSuite struct {
	suite.Suite
	manager *Manager
}

func TestRoleManagerSuite(t *testing.T) {
	suite.Run(t, new(RoleManagerSuite))
}

func (s *RoleManagerSuite) SetupTest() {
	s.manager = New(owner)
}

func (s *RoleManagerSuite) TestOwnerPredicates() {
	s.Run("owner is recognized", func() {
		s.True(s.manager.IsOwner(owner))
		s.False(s.manager.IsOwner(alice))
	})

	s.Run("owner is implicitly a trusted issuer", func() {
		s.True(s.manager.IsTrustedIssuer(owner))
	})

	s.Run("owner is not an explicit admin set member", func() {
		s.False(s.manager.IsAdmin(owner))
	})
}

func (s *RoleManagerSuite) TestAddAdmin() {
	s.Run("owner can appoint admins", func() {
		s.NoError(s.manager.AddAdmin(owner, alice))
		s.True(s.manager.IsAdmin(alice))
	})

	s.Run("adding an existing admin is a no-op", func() {
		s.NoError(s.manager.AddAdmin(owner, alice))
		s.NoError(s.manager.AddAdmin(owner, alice))
		s.True(s.manager.IsAdmin(alice))
	})

	s.Run("non-owner cannot appoint admins", func() {
		err := s.manager.AddAdmin(mallory, bob)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.EqualError(err, "not an owner")
		s.False(s.manager.IsAdmin(bob))
	})

	s.Run("admins cannot appoint admins", func() {
		s.Require().NoError(s.manager.AddAdmin(owner, alice))
		err := s.manager.AddAdmin(alice, bob)
		s.Require().Error(err)
		s.EqualError(err, "not an owner")
	})

	s.Run("owner never becomes an admin set member", func() {
		s.NoError(s.manager.AddAdmin(owner, owner))
		s.False(s.manager.IsAdmin(owner))
	})
}

func (s *RoleManagerSuite) TestRemoveAdmin() {
	s.Run("owner can remove admins", func() {
		s.Require().NoError(s.manager.AddAdmin(owner, alice))
		s.NoError(s.manager.RemoveAdmin(owner, alice))
		s.False(s.manager.IsAdmin(alice))
	})

	s.Run("removing an absent admin is a no-op", func() {
		s.NoError(s.manager.RemoveAdmin(owner, bob))
	})

	s.Run("owner can never be a removal target", func() {
		err := s.manager.RemoveAdmin(owner, owner)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.EqualError(err, "cannot remove contract owner or yourself")
	})

	s.Run("non-owner cannot remove admins", func() {
		s.Require().NoError(s.manager.AddAdmin(owner, alice))
		err := s.manager.RemoveAdmin(mallory, alice)
		s.Require().Error(err)
		s.EqualError(err, "not an owner")
		s.True(s.manager.IsAdmin(alice))
	})
}

func (s *RoleManagerSuite) TestTrustedIssuers() {
	s.Run("owner can add and remove trusted issuers", func() {
		s.False(s.manager.IsTrustedIssuer(alice))
		s.NoError(s.manager.AddTrustedIssuer(owner, alice))
		s.True(s.manager.IsTrustedIssuer(alice))
		s.NoError(s.manager.RemoveTrustedIssuer(owner, alice))
		s.False(s.manager.IsTrustedIssuer(alice))
	})

	s.Run("admins can manage trusted issuers", func() {
		s.Require().NoError(s.manager.AddAdmin(owner, alice))
		s.NoError(s.manager.AddTrustedIssuer(alice, bob))
		s.True(s.manager.IsTrustedIssuer(bob))
		s.NoError(s.manager.RemoveTrustedIssuer(alice, bob))
		s.False(s.manager.IsTrustedIssuer(bob))
	})

	s.Run("non-admin cannot manage trusted issuers", func() {
		err := s.manager.AddTrustedIssuer(mallory, bob)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.EqualError(err, "not an admin")
	})

	s.Run("adding an existing issuer is a no-op", func() {
		s.NoError(s.manager.AddTrustedIssuer(owner, alice))
		s.NoError(s.manager.AddTrustedIssuer(owner, alice))
		s.True(s.manager.IsTrustedIssuer(alice))
	})

	s.Run("owner can never be removed from trusted issuers", func() {
		err := s.manager.RemoveTrustedIssuer(owner, owner)
		s.Require().Error(err)
		s.EqualError(err, "cannot remove contract owner or yourself")
		s.True(s.manager.IsTrustedIssuer(owner))
	})

	s.Run("owner never becomes a trusted issuer set member", func() {
		s.NoError(s.manager.AddTrustedIssuer(owner, owner))
		// Still trusted, but only implicitly.
		s.True(s.manager.IsTrustedIssuer(owner))
		s.NoError(s.manager.RemoveTrustedIssuer(owner, alice))
	})
}
