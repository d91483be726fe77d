package onboarding

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vermimetrics/vermi-platform/pkg/localstore"
	"github.com/vermimetrics/vermi-platform/pkg/vermisdk"
)

// Catalog is the slice of the platform API the selector reads.
type Catalog interface {
	ListLocations(ctx context.Context) ([]vermisdk.Location, error)
	ListSites(ctx context.Context, locationID int64) ([]vermisdk.Site, error)
	ListTanksBySite(ctx context.Context, siteID int64) ([]vermisdk.Tank, error)
}

// SubmitResult is the outcome of a selector submission.
type SubmitResult struct {
	// EmailConflict is set when the advisory pre-check found an existing
	// account. Email echoes the submitted address so sign-in can prefill it.
	EmailConflict bool
	Email         string
	// Provisioned is set on full success.
	Provisioned *ProvisionResult
}

// Selector drives the resource selection step: location choice, per-site tank
// fan-out, toggle selection, and the final provisioning submission.
type Selector struct {
	pending     *PendingStore
	catalog     Catalog
	accounts    AccountsAPI
	provisioner *Provisioner
	sessions    *localstore.Store

	mu         sync.Mutex
	locationID int64
	selected   map[int64]struct{}
}

// NewSelector constructs a Selector.
func NewSelector(pending *PendingStore, catalog Catalog, accounts AccountsAPI, provisioner *Provisioner, sessions *localstore.Store) *Selector {
	if pending == nil {
		panic("pending store is required")
	}
	if catalog == nil {
		panic("catalog is required")
	}
	if accounts == nil {
		panic("accounts api is required")
	}
	if provisioner == nil {
		panic("provisioner is required")
	}
	if sessions == nil {
		panic("session store is required")
	}
	return &Selector{
		pending:     pending,
		catalog:     catalog,
		accounts:    accounts,
		provisioner: provisioner,
		sessions:    sessions,
		selected:    map[int64]struct{}{},
	}
}

// Activate checks the precondition of this step: a pending registration must
// exist. Without one it returns ErrMissingRegistration and the flow aborts
// back to the credential step.
func (s *Selector) Activate() (PendingRegistration, error) {
	registration, found, err := s.pending.Get()
	if err != nil {
		return PendingRegistration{}, err
	}
	if !found {
		return PendingRegistration{}, ErrMissingRegistration
	}
	return registration, nil
}

// LoadLocations fetches the location catalog.
func (s *Selector) LoadLocations(ctx context.Context) ([]vermisdk.Location, error) {
	locations, err := s.catalog.ListLocations(ctx)
	if err != nil {
		return nil, &CatalogFetchError{Section: "locations", Err: err}
	}
	return locations, nil
}

// SelectLocation fetches the sites of the location and then the tanks of each
// site concurrently, merged into a site-keyed map. Selecting a location resets
// any previous tank selection.
func (s *Selector) SelectLocation(ctx context.Context, locationID int64) (map[int64][]vermisdk.Tank, error) {
	sites, err := s.catalog.ListSites(ctx, locationID)
	if err != nil {
		return nil, &CatalogFetchError{Section: "sites", Err: err}
	}

	var mu sync.Mutex
	tanksBySite := make(map[int64][]vermisdk.Tank, len(sites))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, site := range sites {
		group.Go(func() error {
			tanks, err := s.catalog.ListTanksBySite(groupCtx, site.ID)
			if err != nil {
				return &CatalogFetchError{Section: "tanks", Err: err}
			}
			mu.Lock()
			tanksBySite[site.ID] = tanks
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.locationID = locationID
	s.selected = map[int64]struct{}{}
	s.mu.Unlock()

	return tanksBySite, nil
}

// Toggle flips the selection state of a tank id.
func (s *Selector) Toggle(tankID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.selected[tankID]; ok {
		delete(s.selected, tankID)
		return
	}
	s.selected[tankID] = struct{}{}
}

// Selected returns the selected tank ids in ascending order.
func (s *Selector) Selected() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Submit runs the final step: selection validation, advisory email pre-check,
// provisioning, session persistence. The pending registration is cleared only
// after full success; every failure path leaves it in place.
func (s *Selector) Submit(ctx context.Context) (SubmitResult, error) {
	selected := s.Selected()
	if len(selected) == 0 {
		return SubmitResult{}, &ValidationError{Fields: FieldErrors{
			"tanks": {"Please select at least one tank"},
		}}
	}

	registration, found, err := s.pending.Get()
	if err != nil {
		return SubmitResult{}, err
	}
	if !found {
		return SubmitResult{}, ErrMissingRegistration
	}

	exists, err := s.accounts.AccountExists(ctx, registration.Email)
	if err != nil {
		return SubmitResult{}, err
	}
	if exists {
		return SubmitResult{EmailConflict: true, Email: registration.Email}, nil
	}

	s.mu.Lock()
	locationID := s.locationID
	s.mu.Unlock()

	result, err := s.provisioner.CreateAccountAndAssign(ctx, registration.Name, registration.Email, registration.Password, locationID, selected)
	if err != nil {
		return SubmitResult{}, err
	}

	if err := s.persistSession(result); err != nil {
		return SubmitResult{}, err
	}
	if err := s.pending.Clear(); err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{Provisioned: &result}, nil
}

func (s *Selector) persistSession(result ProvisionResult) error {
	if err := s.sessions.Set(localstore.KeyAccessToken, result.Session.IDToken); err != nil {
		return err
	}
	if err := s.sessions.Set(localstore.KeyUserID, result.UserID.String()); err != nil {
		return err
	}
	return s.sessions.Set(localstore.KeyEmail, result.Session.Email)
}
