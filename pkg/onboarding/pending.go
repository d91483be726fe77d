package onboarding

import (
	"github.com/vermimetrics/vermi-platform/pkg/localstore"
)

// PendingRegistration is the unconfirmed credential bundle held between the
// credential step and the resource selection step. At most one exists per
// device.
type PendingRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PendingStore persists the single pending registration slot. Get and Clear
// are deliberately separate so failure paths can leave the slot untouched and
// only full success consumes it.
type PendingStore struct {
	store *localstore.Store
}

// NewPendingStore constructs a PendingStore over the given local store.
func NewPendingStore(store *localstore.Store) *PendingStore {
	if store == nil {
		panic("local store is required")
	}
	return &PendingStore{store: store}
}

// Put writes the pending registration, replacing any previous one.
func (p *PendingStore) Put(registration PendingRegistration) error {
	return p.store.Set(localstore.KeyTempAuthData, registration)
}

// Get reads the pending registration without consuming it. It reports whether
// one exists.
func (p *PendingStore) Get() (PendingRegistration, bool, error) {
	var registration PendingRegistration
	found, err := p.store.Get(localstore.KeyTempAuthData, &registration)
	if err != nil {
		return PendingRegistration{}, false, err
	}
	return registration, found, nil
}

// Clear removes the pending registration.
func (p *PendingStore) Clear() error {
	return p.store.Delete(localstore.KeyTempAuthData)
}
