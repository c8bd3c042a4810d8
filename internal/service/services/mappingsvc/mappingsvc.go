package mappingsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/corray333/marketsync/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/models/product"
)

// ErrNoOffer signals an inventory push for a mapping that has no live
// marketplace offer yet.
var ErrNoOffer = errors.New("product has no marketplace offer")

// marketplace is the part of the marketplace client the mapping surface
// consumes.
type marketplace interface {
	GetOfferBySKU(ctx context.Context, sku string) (*mirakl.Offer, error)
	UpdateInventory(ctx context.Context, offerID string, quantity int) (mirakl.SyncResult, error)
}

// MappingService owns the product mapping CRUD surface plus the per-SKU
// marketplace lookups built on top of it.
type MappingService struct {
	productRepo iproductrepo.IProductRepository
	client      marketplace
}

// option is a function that configures the MappingService.
type option func(*MappingService)

// MustNewMappingService creates a new MappingService.
func MustNewMappingService(opts ...option) *MappingService {
	s := &MappingService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithProductRepository sets the product repository for the MappingService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithProductRepository(repo iproductrepo.IProductRepository) option {
	return func(s *MappingService) {
		s.productRepo = repo
	}
}

// WithMarketplaceClient sets the marketplace client for the MappingService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMarketplaceClient(client marketplace) option {
	return func(s *MappingService) {
		s.client = client
	}
}

// CreateProduct validates and stores a new mapping.
func (s *MappingService) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if err := validate(p); err != nil {
		return product.Product{}, err
	}

	created, err := s.productRepo.Insert(ctx, p)
	if err != nil {
		return product.Product{}, fmt.Errorf("insert product mapping: %w", err)
	}

	slog.Info("Product mapping created",
		"product_id", created.ID,
		"internal_sku", created.InternalSKU,
	)

	return created, nil
}

// UpdateProduct replaces a mapping in place.
func (s *MappingService) UpdateProduct(ctx context.Context, p product.Product) error {
	if err := validate(p); err != nil {
		return err
	}

	return s.productRepo.Update(ctx, p)
}

// DeleteProduct removes a mapping.
func (s *MappingService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

// GetProduct returns one mapping by id.
func (s *MappingService) GetProduct(ctx context.Context, id int64) (product.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// ListProducts returns every mapping.
func (s *MappingService) ListProducts(ctx context.Context) ([]product.Product, error) {
	return s.productRepo.List(ctx)
}

// LookupOffer fetches the live marketplace listing for a mapping's SKU.
// A mapping whose SKU has no offer yet yields nil.
func (s *MappingService) LookupOffer(ctx context.Context, id int64) (*mirakl.Offer, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.MarketplaceSKU == "" {
		return nil, nil
	}

	return s.client.GetOfferBySKU(ctx, p.MarketplaceSKU)
}

// PushInventory sends the mapping's current quantity to its live offer,
// outside the regular offer sync cycle.
func (s *MappingService) PushInventory(ctx context.Context, id int64) (mirakl.SyncResult, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return mirakl.SyncResult{}, err
	}
	if p.MarketplaceOfferID == "" {
		return mirakl.SyncResult{}, fmt.Errorf("%w: product %d", ErrNoOffer, id)
	}

	result, err := s.client.UpdateInventory(ctx, p.MarketplaceOfferID, p.Quantity)
	if err != nil {
		return mirakl.SyncResult{}, err
	}

	slog.Info("Inventory pushed",
		"product_id", id,
		"offer_id", p.MarketplaceOfferID,
		"quantity", p.Quantity,
	)

	return result, nil
}

func validate(p product.Product) error {
	if p.InternalSKU == "" {
		return errors.New("internal sku is required")
	}
	if p.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	if p.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}

	return nil
}
