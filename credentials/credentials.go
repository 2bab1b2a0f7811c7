// Package credentials provides the local profile store for uilingo
// API credentials.
//
// Profiles are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/uilingo/profiles.json  (default: ~/.local/share/uilingo/profiles.json)
//
// The file is a JSON object keyed by profile name, where each value holds
// the API key plus optional region and endpoint overrides. File
// permissions are 0600 (owner read/write only).
//
// Lookup order when resolving a profile's API key:
//  1. Explicit override (e.g. --api-key flag) — highest priority
//  2. UILINGO_API_KEY environment variable
//  3. This profile store
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "uilingo"
	fileName    = "profiles.json"

	// DefaultProfile is the profile name used when the caller does not
	// name one.
	DefaultProfile = "default"

	// EnvAPIKey is the environment variable consulted before the store.
	EnvAPIKey = "UILINGO_API_KEY"
)

// Profile holds the credentials and connection settings stored per
// profile name.
type Profile struct {
	// Key is the API key used to authenticate model invocations.
	Key string `json:"key"`
	// Region selects the service region (optional).
	Region string `json:"region,omitempty"`
	// BaseURL overrides the service endpoint (optional).
	BaseURL string `json:"baseUrl,omitempty"`
}

// Store holds all profiles, keyed by profile name.
type Store map[string]*Profile

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for uilingo.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the profiles.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the uilingo data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the profile store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return make(Store)
	}

	if store == nil {
		return make(Store)
	}

	return store
}

// Save writes the profile store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing profiles file: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the stored profile, or nil if not found.
func Get(name string) *Profile {
	store := Load()
	return store[name]
}

// Set stores a profile (upsert).
func Set(name string, p *Profile) error {
	store := Load()
	store[name] = p
	return Save(store)
}

// Remove deletes a profile.
func Remove(name string) error {
	store := Load()
	if _, ok := store[name]; !ok {
		return nil // Nothing to delete
	}
	delete(store, name)
	return Save(store)
}

// RemoveAll removes the whole profile store.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing profiles file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Resolve returns the credentials for a named profile, applying the
// documented lookup order: explicit override, then UILINGO_API_KEY,
// then the store. An empty name means DefaultProfile.
//
// The returned error means the profile is unusable: callers are expected
// to fail fast at session construction rather than per call.
func Resolve(name, override string) (*Profile, error) {
	if name == "" {
		name = DefaultProfile
	}

	stored := Get(name)

	if override != "" {
		p := &Profile{Key: override}
		if stored != nil {
			p.Region = stored.Region
			p.BaseURL = stored.BaseURL
		}
		return p, nil
	}

	if env := os.Getenv(EnvAPIKey); env != "" {
		p := &Profile{Key: env}
		if stored != nil {
			p.Region = stored.Region
			p.BaseURL = stored.BaseURL
		}
		return p, nil
	}

	if stored == nil {
		return nil, fmt.Errorf("profile %q not found in %s (run 'uilingo auth set %s' or set %s)",
			name, FilePath(), name, EnvAPIKey)
	}
	if stored.Key == "" {
		return nil, fmt.Errorf("profile %q has no API key", name)
	}
	return stored, nil
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
