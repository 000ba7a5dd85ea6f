package service

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Awaddd/bazaar-backend/internal/domain"
	"github.com/Awaddd/bazaar-backend/internal/repository"
	apperrors "github.com/Awaddd/bazaar-backend/pkg/errors"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, np *repository.NewProduct) error {
	args := m.Called(ctx, np)
	return args.Error(0)
}

func (m *mockProductRepo) GetView(ctx context.Context, id int64) (*domain.ProductView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductView), args.Error(1)
}

func (m *mockProductRepo) ListViews(ctx context.Context) ([]domain.ProductView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductView), args.Error(1)
}

func (m *mockProductRepo) GetViews(ctx context.Context, ids []int64) ([]domain.ProductView, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductView), args.Error(1)
}

type mockBrandRepo struct {
	mock.Mock
}

func (m *mockBrandRepo) ListAll(ctx context.Context) ([]domain.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Brand), args.Error(1)
}

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) ListAll(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

// fakeCartStore is an in-memory versioned cart store with the same
// compare-and-set semantics as the Redis repository. conflictsLeft forces
// that many SaveIfVersion calls to fail, to exercise the retry loop.
type fakeCartStore struct {
	mu            sync.Mutex
	carts         map[string]domain.Cart
	conflictsLeft int
	saveCalls     int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[string]domain.Cart)}
}

func (f *fakeCartStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.carts[sessionID]
	if !ok {
		return &domain.Cart{SessionID: sessionID, Items: []domain.CartLine{}}, nil
	}
	cp := stored
	cp.Items = append([]domain.CartLine(nil), stored.Items...)
	return &cp, nil
}

func (f *fakeCartStore) Save(_ context.Context, cart *domain.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart.Version++
	f.carts[cart.SessionID] = *cart
	return nil
}

func (f *fakeCartStore) SaveIfVersion(_ context.Context, cart *domain.Cart, expectedVersion int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saveCalls++
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return apperrors.Conflict("cart was modified concurrently")
	}

	current := 0
	if stored, ok := f.carts[cart.SessionID]; ok {
		current = stored.Version
	}
	if current != expectedVersion {
		return apperrors.Conflict("cart was modified concurrently")
	}

	cart.Version = expectedVersion + 1
	cp := *cart
	cp.Items = append([]domain.CartLine(nil), cart.Items...)
	f.carts[cart.SessionID] = cp
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.carts, sessionID)
	return nil
}

// recordingEvents captures published events for assertions.
type recordingEvents struct {
	mu              sync.Mutex
	productsCreated []int64
	cartUpdates     []string
	cartsCleared    []string
}

func (r *recordingEvents) ProductCreated(_ context.Context, view *domain.ProductView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productsCreated = append(r.productsCreated, view.ID)
}

func (r *recordingEvents) CartUpdated(_ context.Context, cart *domain.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cartUpdates = append(r.cartUpdates, cart.SessionID)
}

func (r *recordingEvents) CartCleared(_ context.Context, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cartsCleared = append(r.cartsCleared, sessionID)
}
