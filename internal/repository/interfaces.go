package repository

import (
	"errors"
	"tryon/internal/dto"
	"tryon/internal/model"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// CaptureRepository defines the interface for capture data operations.
type CaptureRepository interface {
	// Create operations
	Insert(c *model.Capture) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Capture, error)
	GetByFilename(filename string) (*model.Capture, error)
	GetAll(filter *dto.CaptureFilters) ([]model.Capture, error)
	GetTotalCount(filter *dto.CaptureFilters) (int, error)

	// Delete operations
	Delete(id int64) error
	DeleteAll() error
}

// ProductRepository resolves the product summary shown on the try-on page.
type ProductRepository interface {
	GetByID(id int) (*model.Product, error)
}
