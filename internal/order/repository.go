package order

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("order not found")
)

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores ord and its items. A non-empty key is recorded so the
	// same submission can be recognised later through GetByKey.
	Create(ord Order, key string) (Order, error)
	GetByID(id int) (Order, error)
	GetByKey(key string) (Order, error)
	// List returns every order with its items, newest first.
	List() ([]Order, error)
}

// InMemoryRepository is used for tests and for running without a database.
type InMemoryRepository struct {
	mu         sync.RWMutex
	orders     []Order
	keys       map[string]int
	nextID     int
	nextItemID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{keys: map[string]int{}, nextID: 1, nextItemID: 1}
}

func (r *InMemoryRepository) Create(ord Order, key string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord.ID = r.nextID
	r.nextID++
	items := make([]Item, len(ord.Items))
	for i, it := range ord.Items {
		it.ID = r.nextItemID
		r.nextItemID++
		items[i] = it
	}
	ord.Items = items
	r.orders = append(r.orders, ord)
	if key != "" {
		r.keys[key] = ord.ID
	}
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.get(id)
}

func (r *InMemoryRepository) GetByKey(key string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.keys[key]
	if !ok {
		return Order{}, ErrNotFound
	}
	return r.get(id)
}

func (r *InMemoryRepository) get(id int) (Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) List() ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, len(r.orders))
	copy(out, r.orders)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
