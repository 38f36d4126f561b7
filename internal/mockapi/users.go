package mockapi

import (
	"fmt"
	"slices"
	"sync"

	"github.com/jrsteele09/go-auth-client/sessions"
	"golang.org/x/crypto/bcrypt"
)

// User is an account of the mock API.
type User struct {
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string
	CompanyIDs   []string
}

func (u *User) Identity() sessions.Identity {
	return sessions.Identity{ID: u.ID, Username: u.Username, Email: u.Email, Name: u.Name}
}

func (u *User) HasCompany(companyID string) bool {
	return slices.Contains(u.CompanyIDs, companyID)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// userDirectory is an in-memory user store keyed by username.
type userDirectory struct {
	users map[string]*User
	ids   map[string]string // user ID to username
	lock  sync.RWMutex
}

func newUserDirectory() *userDirectory {
	return &userDirectory{
		users: make(map[string]*User),
		ids:   make(map[string]string),
	}
}

func (d *userDirectory) upsert(u *User) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.users[u.Username] = u
	d.ids[u.ID] = u.Username
}

func (d *userDirectory) byUsername(username string) (*User, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	u, ok := d.users[username]
	if !ok {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return u, nil
}

func (d *userDirectory) byID(id string) (*User, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	username, ok := d.ids[id]
	if !ok {
		return nil, fmt.Errorf("user id %q not found", id)
	}
	return d.users[username], nil
}
