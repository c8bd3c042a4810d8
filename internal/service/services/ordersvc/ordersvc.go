package ordersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
)

var (
	// ErrNotAcceptable signals an acceptance attempt on an order that is not
	// waiting for acceptance.
	ErrNotAcceptable = errors.New("order is not waiting for acceptance")

	// ErrNotShippable signals a shipment attempt on an order that has not
	// been accepted yet or is already shipped.
	ErrNotShippable = errors.New("order is not ready for shipment")
)

// marketplace is the part of the marketplace client the order lifecycle
// consumes.
type marketplace interface {
	AcceptOrder(ctx context.Context, orderID string, lines []marketorder.OrderLine) (mirakl.AcceptResult, error)
	CreateShipment(ctx context.Context, orderID, trackingNumber, carrierCode string) (mirakl.ShipmentResult, error)
}

// OrderService drives the local side of the order lifecycle: accept and
// ship against the marketplace, then stamp the mirrored row.
type OrderService struct {
	orderRepo imarketorderrepo.IMarketOrderRepository
	client    marketplace
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithMarketOrderRepository sets the market order repository for the
// OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMarketOrderRepository(repo imarketorderrepo.IMarketOrderRepository) option {
	return func(s *OrderService) {
		s.orderRepo = repo
	}
}

// WithMarketplaceClient sets the marketplace client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMarketplaceClient(client marketplace) option {
	return func(s *OrderService) {
		s.client = client
	}
}

// GetOrders returns the mirrored orders matching the filter.
func (s *OrderService) GetOrders(ctx context.Context, filter *marketorder.QueryOrdersModel) ([]marketorder.MarketOrder, error) {
	orders, err := s.orderRepo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	return orders, nil
}

// GetOrder returns one mirrored order by its marketplace id.
func (s *OrderService) GetOrder(ctx context.Context, marketplaceOrderID string) (marketorder.MarketOrder, error) {
	return s.orderRepo.GetByMarketplaceID(ctx, marketplaceOrderID)
}

// AcceptOrder accepts every line of the order on the marketplace, then
// stamps the local row. The marketplace call comes first: if it fails the
// row stays untouched and the operation can be retried.
func (s *OrderService) AcceptOrder(ctx context.Context, marketplaceOrderID string) (mirakl.AcceptResult, error) {
	order, err := s.orderRepo.GetByMarketplaceID(ctx, marketplaceOrderID)
	if err != nil {
		return mirakl.AcceptResult{}, err
	}

	if order.State != marketorder.StateWaitingAcceptance {
		return mirakl.AcceptResult{}, fmt.Errorf("%w: order %s is %s", ErrNotAcceptable, marketplaceOrderID, order.State)
	}

	result, err := s.client.AcceptOrder(ctx, marketplaceOrderID, order.OrderLines)
	if err != nil {
		return mirakl.AcceptResult{}, err
	}

	if err := s.orderRepo.MarkAccepted(ctx, marketplaceOrderID, time.Now()); err != nil {
		// The marketplace already holds the acceptance; the next import
		// cycle reconciles the state, only the local timestamp is lost.
		slog.Error("Order accepted remotely but local stamp failed",
			"marketplace_order_id", marketplaceOrderID,
			"error", err,
		)

		return result, fmt.Errorf("mark order accepted: %w", err)
	}

	slog.Info("Order accepted",
		"marketplace_order_id", marketplaceOrderID,
		"lines", result.LinesAccepted,
	)

	return result, nil
}

// ShipOrder registers tracking and confirms shipment on the marketplace,
// then stamps the local row.
func (s *OrderService) ShipOrder(ctx context.Context, marketplaceOrderID, trackingNumber, carrierCode string) (mirakl.ShipmentResult, error) {
	order, err := s.orderRepo.GetByMarketplaceID(ctx, marketplaceOrderID)
	if err != nil {
		return mirakl.ShipmentResult{}, err
	}

	if order.State != marketorder.StateShipping {
		return mirakl.ShipmentResult{}, fmt.Errorf("%w: order %s is %s", ErrNotShippable, marketplaceOrderID, order.State)
	}

	result, err := s.client.CreateShipment(ctx, marketplaceOrderID, trackingNumber, carrierCode)
	if err != nil {
		return mirakl.ShipmentResult{}, err
	}

	if err := s.orderRepo.MarkShipped(ctx, marketplaceOrderID, time.Now()); err != nil {
		slog.Error("Order shipped remotely but local stamp failed",
			"marketplace_order_id", marketplaceOrderID,
			"error", err,
		)

		return result, fmt.Errorf("mark order shipped: %w", err)
	}

	slog.Info("Order shipped",
		"marketplace_order_id", marketplaceOrderID,
		"tracking_number", trackingNumber,
		"carrier", result.CarrierName,
	)

	return result, nil
}
