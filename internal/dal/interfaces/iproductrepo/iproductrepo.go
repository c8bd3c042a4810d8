package iproductrepo

import (
	"context"
	"errors"
	"time"

	"github.com/corray333/marketsync/internal/service/models/product"
)

// ErrNotFound is returned when no product mapping exists for the given id.
var ErrNotFound = errors.New("product mapping not found")

// IProductRepository defines the interface for product mapping storage.
type IProductRepository interface {
	Insert(ctx context.Context, p product.Product) (product.Product, error)
	Update(ctx context.Context, p product.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (product.Product, error)
	List(ctx context.Context) ([]product.Product, error)

	// ListEligible returns the active mappings that carry a marketplace SKU,
	// i.e. everything the offer sync pushes.
	ListEligible(ctx context.Context) ([]product.Product, error)

	MarkSynced(ctx context.Context, ids []int64, at time.Time) error
}
