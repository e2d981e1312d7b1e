package store

import (
	"sync"
	"time"

	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
)

// Canned profile ids handed out by mock login.
const (
	MockAdminID   = "admin1"
	MockCitizenID = "1"
)

// AuthStore tracks which users are signed in. A session exists per user id;
// logging in again replaces the stored profile.
//
// MOCK LOGIN:
// Login accepts any credentials and hands back one of two canned profiles.
// Verifying real passwords is the job of the auth service in strict mode,
// which calls Authenticate after checking the hash.
type AuthStore struct {
	mu       sync.RWMutex
	clock    clock.Clock
	sessions map[string]model.User // user id -> profile
}

// NewAuthStore creates a store with nobody signed in.
func NewAuthStore(c clock.Clock) *AuthStore {
	return &AuthStore{clock: c, sessions: make(map[string]model.User)}
}

// Login signs in with a canned profile for role. Admin gets the admin
// profile; any other role gets the citizen profile with that role. The
// password is ignored.
func (s *AuthStore) Login(email, password string, role model.Role) model.User {
	var u model.User
	if role == model.RoleAdmin {
		u = adminProfile(email)
	} else {
		if !role.Valid() {
			role = model.RoleCitizen
		}
		u = citizenProfile(email, role)
	}
	s.Authenticate(u)
	return u
}

// Register signs in a brand-new citizen built from data. Id, role, counters
// and CreatedAt are always assigned here, whatever data carries.
func (s *AuthStore) Register(data model.User) model.User {
	u := model.User{
		ID:        newID(),
		Name:      data.Name,
		Email:     data.Email,
		Phone:     data.Phone,
		Address:   data.Address,
		Bio:       data.Bio,
		Avatar:    data.Avatar,
		Role:      model.RoleCitizen,
		CreatedAt: s.clock.Now(),
	}
	s.Authenticate(u)
	return u
}

// Authenticate opens (or replaces) the session for u.
func (s *AuthStore) Authenticate(u model.User) {
	u.PasswordHash = ""

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[u.ID] = u
}

// Logout ends the session for userID. Unknown ids are ignored.
func (s *AuthStore) Logout(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Current returns the signed-in profile for userID.
func (s *AuthStore) Current(userID string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.sessions[userID]
	return u, ok
}

// IsAuthenticated reports whether userID has an open session.
func (s *AuthStore) IsAuthenticated(userID string) bool {
	_, ok := s.Current(userID)
	return ok
}

const mockPhone = "+91 9876543210"

var mockCreatedAt = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

func adminProfile(email string) model.User {
	return model.User{
		ID:        MockAdminID,
		Name:      "Admin User",
		Email:     email,
		Phone:     mockPhone,
		Role:      model.RoleAdmin,
		Address:   "Municipal Corporation Office",
		Bio:       "Municipal Administrator",
		CreatedAt: mockCreatedAt,
	}
}

func citizenProfile(email string, role model.Role) model.User {
	return model.User{
		ID:             MockCitizenID,
		Name:           "Rahul Sharma",
		Email:          email,
		Phone:          mockPhone,
		Avatar:         "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg?auto=compress&cs=tinysrgb&w=150&h=150&dpr=2",
		Address:        "Arera Colony, Bhopal",
		Bio:            "Active citizen committed to making Bhopal better",
		Role:           role,
		BadgeCount:     5,
		VolunteerHours: 24,
		CreatedAt:      mockCreatedAt,
	}
}
