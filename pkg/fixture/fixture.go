// Package fixture persists test user credentials between runs. Registration on
// a real storefront is one-shot per email, so suites register once, save the
// credentials, and reuse them until the account is discarded.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/storecheck/storecheck/pkg/store"
)

// DefaultPath is the conventional location of the credentials file,
// relative to the suite's working directory.
const DefaultPath = "testdata/user.json"

// ErrMissing is returned by Load when the fixture file does not exist.
var ErrMissing = errors.New("user fixture not found, run registration setup first")

// NewUser generates a user with a unique email so repeated registrations
// never collide on an account that already exists.
func NewUser() store.User {
	id := strings.Split(uuid.New().String(), "-")[0]
	return store.User{
		FirstName: "Check",
		LastName:  "Shopper",
		Email:     fmt.Sprintf("shopper-%s@storecheck.test", id),
		Password:  "pw-" + uuid.New().String(),
	}
}

// Save writes the user's credentials as JSON, creating parent directories.
func Save(path string, u store.User) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	data, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// Load reads previously saved credentials. Returns ErrMissing when the file
// is absent so callers can distinguish "not set up yet" from a broken file.
func Load(path string) (store.User, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path is suite-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return store.User{}, fmt.Errorf("%s: %w", path, ErrMissing)
		}
		return store.User{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var u store.User
	if err := json.Unmarshal(data, &u); err != nil {
		return store.User{}, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if u.Email == "" || u.Password == "" {
		return store.User{}, fmt.Errorf("fixture %s has no credentials", path)
	}
	return u, nil
}

// LoadOrCreate returns saved credentials, generating and saving a fresh user
// when none exist yet. The bool reports whether the user is newly created and
// still needs to be registered on the storefront.
func LoadOrCreate(path string) (u store.User, created bool, err error) {
	u, err = Load(path)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrMissing) {
		return store.User{}, false, err
	}
	u = NewUser()
	if err := Save(path, u); err != nil {
		return store.User{}, false, err
	}
	return u, true, nil
}
