package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wichananm65/laundry-pos/internal/pricing"
)

// ErrInvalid wraps validation failures on create/update payloads.
var ErrInvalid = errors.New("invalid service")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List() ([]Item, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id int) (Item, error) {
	return s.repo.GetByID(id)
}

func (s *Service) GetByIDs(ids []int) ([]Item, error) {
	if len(ids) == 0 {
		return []Item{}, nil
	}
	return s.repo.GetByIDs(ids)
}

func (s *Service) Create(it Item) (Item, error) {
	if err := normalize(&it); err != nil {
		return Item{}, err
	}
	it.ID = 0
	return s.repo.Create(it)
}

func (s *Service) Update(id int, it Item) (Item, error) {
	if err := normalize(&it); err != nil {
		return Item{}, err
	}
	return s.repo.Update(id, it)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

func normalize(it *Item) error {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if it.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base_price must be non-negative", ErrInvalid)
	}
	it.BasePrice = pricing.Round2(it.BasePrice)
	if strings.TrimSpace(it.Category) == "" {
		it.Category = DefaultCategory
	}
	if strings.TrimSpace(it.Unit) == "" {
		it.Unit = DefaultUnit
	}
	return nil
}
