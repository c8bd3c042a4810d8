package ordersvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corray333/marketsync/internal/dal/interfaces/imarketorderrepo"
	"github.com/corray333/marketsync/internal/mirakl"
	"github.com/corray333/marketsync/internal/service/models/marketorder"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	rows     map[string]marketorder.MarketOrder
	accepted []string
	shipped  []string
}

func newFakeOrderRepo(orders ...marketorder.MarketOrder) *fakeOrderRepo {
	rows := map[string]marketorder.MarketOrder{}
	for _, o := range orders {
		rows[o.MarketplaceOrderID] = o
	}

	return &fakeOrderRepo{rows: rows}
}

func (f *fakeOrderRepo) Upsert(_ context.Context, o marketorder.MarketOrder) (marketorder.MarketOrder, bool, error) {
	f.rows[o.MarketplaceOrderID] = o

	return o, true, nil
}

func (f *fakeOrderRepo) Query(context.Context, *marketorder.QueryOrdersModel) ([]marketorder.MarketOrder, error) {
	result := make([]marketorder.MarketOrder, 0, len(f.rows))
	for _, o := range f.rows {
		result = append(result, o)
	}

	return result, nil
}

func (f *fakeOrderRepo) GetByMarketplaceID(_ context.Context, id string) (marketorder.MarketOrder, error) {
	o, ok := f.rows[id]
	if !ok {
		return marketorder.MarketOrder{}, imarketorderrepo.ErrNotFound
	}

	return o, nil
}

func (f *fakeOrderRepo) MarkAccepted(_ context.Context, id string, at time.Time) error {
	f.accepted = append(f.accepted, id)
	o := f.rows[id]
	o.State = marketorder.StateShipping
	o.AcceptedAt = &at
	f.rows[id] = o

	return nil
}

func (f *fakeOrderRepo) MarkShipped(_ context.Context, id string, at time.Time) error {
	f.shipped = append(f.shipped, id)
	o := f.rows[id]
	o.State = marketorder.StateShipped
	o.ShippedAt = &at
	f.rows[id] = o

	return nil
}

type fakeClient struct {
	acceptErr   error
	shipErr     error
	accepted    []string
	shipped     []string
	gotTracking string
	gotCarrier  string
}

func (f *fakeClient) AcceptOrder(_ context.Context, orderID string, lines []marketorder.OrderLine) (mirakl.AcceptResult, error) {
	if f.acceptErr != nil {
		return mirakl.AcceptResult{}, f.acceptErr
	}
	f.accepted = append(f.accepted, orderID)

	return mirakl.AcceptResult{OrderID: orderID, LinesAccepted: len(lines)}, nil
}

func (f *fakeClient) CreateShipment(_ context.Context, orderID, trackingNumber, carrierCode string) (mirakl.ShipmentResult, error) {
	if f.shipErr != nil {
		return mirakl.ShipmentResult{}, f.shipErr
	}
	f.shipped = append(f.shipped, orderID)
	f.gotTracking = trackingNumber
	f.gotCarrier = carrierCode

	return mirakl.ShipmentResult{OrderID: orderID, TrackingNumber: trackingNumber}, nil
}

func newService(repo *fakeOrderRepo, client *fakeClient) *OrderService {
	return MustNewOrderService(
		WithMarketOrderRepository(repo),
		WithMarketplaceClient(client),
	)
}

func waitingOrder(id string) marketorder.MarketOrder {
	return marketorder.MarketOrder{
		MarketplaceOrderID: id,
		State:              marketorder.StateWaitingAcceptance,
		OrderLines: []marketorder.OrderLine{
			{LineID: "L1", SKU: "SKU-1", Quantity: 1, PriceCents: 999},
			{LineID: "L2", SKU: "SKU-2", Quantity: 2, PriceCents: 500},
		},
	}
}

func TestAcceptOrder(t *testing.T) {
	repo := newFakeOrderRepo(waitingOrder("ORD-1"))
	client := &fakeClient{}
	svc := newService(repo, client)

	result, err := svc.AcceptOrder(context.Background(), "ORD-1")
	require.NoError(t, err)
	require.Equal(t, 2, result.LinesAccepted)
	require.Equal(t, []string{"ORD-1"}, client.accepted)
	require.Equal(t, []string{"ORD-1"}, repo.accepted)
	require.Equal(t, marketorder.StateShipping, repo.rows["ORD-1"].State)
}

func TestAcceptOrderUnknownOrder(t *testing.T) {
	svc := newService(newFakeOrderRepo(), &fakeClient{})

	_, err := svc.AcceptOrder(context.Background(), "ORD-MISSING")
	require.ErrorIs(t, err, imarketorderrepo.ErrNotFound)
}

func TestAcceptOrderWrongState(t *testing.T) {
	order := waitingOrder("ORD-1")
	order.State = marketorder.StateShipping
	repo := newFakeOrderRepo(order)
	client := &fakeClient{}
	svc := newService(repo, client)

	_, err := svc.AcceptOrder(context.Background(), "ORD-1")
	require.ErrorIs(t, err, ErrNotAcceptable)
	require.Empty(t, client.accepted)
}

func TestAcceptOrderRemoteFailureLeavesRowUntouched(t *testing.T) {
	repo := newFakeOrderRepo(waitingOrder("ORD-1"))
	client := &fakeClient{acceptErr: errors.New("marketplace down")}
	svc := newService(repo, client)

	_, err := svc.AcceptOrder(context.Background(), "ORD-1")
	require.Error(t, err)
	require.Empty(t, repo.accepted)
	require.Equal(t, marketorder.StateWaitingAcceptance, repo.rows["ORD-1"].State)
}

func TestShipOrder(t *testing.T) {
	order := waitingOrder("ORD-1")
	order.State = marketorder.StateShipping
	repo := newFakeOrderRepo(order)
	client := &fakeClient{}
	svc := newService(repo, client)

	result, err := svc.ShipOrder(context.Background(), "ORD-1", "1Z999", "UPS")
	require.NoError(t, err)
	require.Equal(t, "1Z999", result.TrackingNumber)
	require.Equal(t, "UPS", client.gotCarrier)
	require.Equal(t, []string{"ORD-1"}, repo.shipped)
	require.Equal(t, marketorder.StateShipped, repo.rows["ORD-1"].State)
}

func TestShipOrderRequiresAcceptedState(t *testing.T) {
	repo := newFakeOrderRepo(waitingOrder("ORD-1"))
	client := &fakeClient{}
	svc := newService(repo, client)

	_, err := svc.ShipOrder(context.Background(), "ORD-1", "1Z999", "UPS")
	require.ErrorIs(t, err, ErrNotShippable)
	require.Empty(t, client.shipped)
}

func TestShipOrderRemoteFailureLeavesRowUntouched(t *testing.T) {
	order := waitingOrder("ORD-1")
	order.State = marketorder.StateShipping
	repo := newFakeOrderRepo(order)
	client := &fakeClient{shipErr: errors.New("marketplace down")}
	svc := newService(repo, client)

	_, err := svc.ShipOrder(context.Background(), "ORD-1", "1Z999", "UPS")
	require.Error(t, err)
	require.Empty(t, repo.shipped)
	require.Equal(t, marketorder.StateShipping, repo.rows["ORD-1"].State)
}

func TestGetOrders(t *testing.T) {
	repo := newFakeOrderRepo(waitingOrder("ORD-1"), waitingOrder("ORD-2"))
	svc := newService(repo, &fakeClient{})

	orders, err := svc.GetOrders(context.Background(), &marketorder.QueryOrdersModel{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
}
