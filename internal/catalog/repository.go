package catalog

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("service not found")
)

type Repository interface {
	List() ([]Item, error)
	GetByID(id int) (Item, error)
	// GetByIDs returns the items found for ids; missing ids are skipped.
	GetByIDs(ids []int) ([]Item, error)
	Create(it Item) (Item, error)
	Update(id int, it Item) (Item, error)
	Delete(id int) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// running the API without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Item
	nextID  int
}

func NewInMemoryRepository(seed []Item) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Item, 0, len(seed)),
		nextID:  1,
	}

	maxID := 0
	for _, it := range seed {
		r.storage = append(r.storage, it)
		if it.ID > maxID {
			maxID = it.ID
		}
	}

	r.nextID = maxID + 1
	return r
}

func (r *InMemoryRepository) List() ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, len(r.storage))
	copy(out, r.storage)
	return out, nil
}

func (r *InMemoryRepository) GetByID(id int) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.storage {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

func (r *InMemoryRepository) GetByIDs(ids []int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		for _, it := range r.storage {
			if it.ID == id {
				out = append(out, it)
				break
			}
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(it Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it.ID == 0 {
		it.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, it)
	return it, nil
}

func (r *InMemoryRepository) Update(id int, it Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			it.ID = id
			r.storage[i] = it
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
