package profile

import (
	"errors"

	"github.com/agusx1211/promptarena/internal/storage"
)

// ErrNoProfile is returned by Load before onboarding.
var ErrNoProfile = errors.New("no profile; run `promptarena profile create`")

// Store reads and writes the profile blob.
type Store struct {
	kv *storage.Store
}

// NewStore binds a Store to kv.
func NewStore(kv *storage.Store) *Store {
	return &Store{kv: kv}
}

// Load returns the saved profile.
func (s *Store) Load() (*Profile, error) {
	var p Profile
	if err := s.kv.Get(storage.KeyProfile, &p); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrUnavailable) {
			return nil, ErrNoProfile
		}
		return nil, err
	}
	p.normalize()
	return &p, nil
}

// Save persists p. It returns storage.ErrUnavailable when nothing persists.
func (s *Store) Save(p *Profile) error {
	return s.kv.Set(storage.KeyProfile, p)
}

// Reset deletes every stored key, profile included.
func (s *Store) Reset() error {
	return s.kv.Clear()
}
