package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/customer-service/internal/errors"
	"github.com/unclebandit/customer-service/internal/model"
)

// MemoryCustomerRepository keeps customers in a map. Used by tests and by
// STORE_DRIVER=memory for local runs.
type MemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]model.Customer
}

var _ CustomerRepositoryInterface = (*MemoryCustomerRepository)(nil)

func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{customers: make(map[string]model.Customer)}
}

func (r *MemoryCustomerRepository) List(_ context.Context) ([]model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryCustomerRepository) GetByID(_ context.Context, id string) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	return &c, nil
}

func (r *MemoryCustomerRepository) Create(_ context.Context, c *model.Customer) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *c
	created.ID = uuid.NewString()
	r.customers[created.ID] = created
	return &created, nil
}

func (r *MemoryCustomerRepository) Update(_ context.Context, c *model.Customer) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[c.ID]; !ok {
		return nil, appErrors.NewCustomerNotFound(c.ID)
	}
	updated := *c
	r.customers[c.ID] = updated
	return &updated, nil
}

func (r *MemoryCustomerRepository) Delete(_ context.Context, id string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, appErrors.NewCustomerNotFound(id)
	}
	delete(r.customers, id)
	return &c, nil
}

func (r *MemoryCustomerRepository) Ping(context.Context) error { return nil }
