package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/civic-sync/internal/model"
)

func TestAuthStore_AdminLoginWithAnyCredentials(t *testing.T) {
	s := NewAuthStore(newTestClock())

	u := s.Login("whoever@example.com", "not-checked", model.RoleAdmin)

	assert.True(t, s.IsAuthenticated(u.ID))
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, MockAdminID, u.ID)
	assert.Equal(t, "Admin User", u.Name)
	assert.Equal(t, "whoever@example.com", u.Email)
	assert.Zero(t, u.BadgeCount)
	assert.Empty(t, u.Avatar)
}

func TestAuthStore_CitizenProfileCarriesRole(t *testing.T) {
	s := NewAuthStore(newTestClock())

	tests := []struct {
		role model.Role
		want model.Role
	}{
		{model.RoleCitizen, model.RoleCitizen},
		{model.RoleResolver, model.RoleResolver},
		{model.RoleEventManager, model.RoleEventManager},
		{"superuser", model.RoleCitizen},
		{"", model.RoleCitizen},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := s.Login("rahul@example.com", "x", tt.role)
			assert.Equal(t, MockCitizenID, u.ID)
			assert.Equal(t, "Rahul Sharma", u.Name)
			assert.Equal(t, tt.want, u.Role)
			assert.Equal(t, 5, u.BadgeCount)
			assert.Equal(t, 24, u.VolunteerHours)
		})
	}
}

func TestAuthStore_Register(t *testing.T) {
	c := newTestClock()
	s := NewAuthStore(c)

	u := s.Register(model.User{
		ID:         "chosen",
		Name:       "Anita Verma",
		Email:      "anita@example.com",
		Role:       model.RoleAdmin,
		BadgeCount: 50,
	})

	assert.NotEqual(t, "chosen", u.ID)
	assert.Equal(t, "Anita Verma", u.Name)
	assert.Equal(t, model.RoleCitizen, u.Role)
	assert.Zero(t, u.BadgeCount)
	assert.Zero(t, u.VolunteerHours)
	assert.Equal(t, c.Now(), u.CreatedAt)
	assert.True(t, s.IsAuthenticated(u.ID))
}

func TestAuthStore_Logout(t *testing.T) {
	s := NewAuthStore(newTestClock())
	u := s.Login("a@b.c", "x", model.RoleCitizen)

	s.Logout(u.ID)

	assert.False(t, s.IsAuthenticated(u.ID))
	_, ok := s.Current(u.ID)
	assert.False(t, ok)

	s.Logout("never-logged-in")
}

func TestAuthStore_AuthenticateDropsPasswordHash(t *testing.T) {
	s := NewAuthStore(newTestClock())
	s.Authenticate(model.User{ID: "u1", PasswordHash: "secret"})

	got, ok := s.Current("u1")
	assert.True(t, ok)
	assert.Empty(t, got.PasswordHash)
}
