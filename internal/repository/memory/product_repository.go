package memory

import (
	"sync"

	"tryon/internal/model"
	"tryon/internal/repository"
)

// DefaultProduct is the catalog entry every try-on page falls back to.
var DefaultProduct = model.Product{
	ID:           1,
	DisplayName:  "Premium Blue Eyeglasses",
	Price:        149.99,
	ThumbnailRef: "/static/img/glasses-1.svg",
}

// ProductRepository is a static in-memory product catalog.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int]model.Product
}

// NewProductRepository creates a catalog seeded with the given products.
func NewProductRepository(products ...model.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[int]model.Product, len(products))}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

// GetByID returns a copy of the product so callers cannot mutate the catalog.
func (r *ProductRepository) GetByID(id int) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
