package httpx

import (
	"context"
	"encoding/json"
	"errors"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-shop-payments.git/internal/audit"
	"github.com/ariefcatur/go-shop-payments.git/internal/mercadopago"
	"github.com/ariefcatur/go-shop-payments.git/internal/orders"
	"github.com/ariefcatur/go-shop-payments.git/internal/products"
	"github.com/ariefcatur/go-shop-payments.git/internal/revert"
)

type mockProductStore struct {
	CreateFunc      func(ctx context.Context, in products.CreateInput, userID string) (*products.Product, error)
	GetFunc         func(ctx context.Context, id string) (*products.Product, error)
	ListFunc        func(ctx context.Context) ([]products.Product, error)
	UpdateFunc      func(ctx context.Context, id string, patch products.Snapshot, userID string) (*products.Product, error)
	DeleteFunc      func(ctx context.Context, id string, userID string) error
	AdjustStockFunc func(ctx context.Context, id string, delta int, userID string) (int, error)
}

func (m *mockProductStore) Create(ctx context.Context, in products.CreateInput, userID string) (*products.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in, userID)
	}
	return nil, errors.New("unexpected call")
}

func (m *mockProductStore) Get(ctx context.Context, id string) (*products.Product, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, products.ErrNotFound
}

func (m *mockProductStore) List(ctx context.Context) ([]products.Product, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockProductStore) Update(ctx context.Context, id string, patch products.Snapshot, userID string) (*products.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch, userID)
	}
	return nil, products.ErrNotFound
}

func (m *mockProductStore) Delete(ctx context.Context, id string, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return products.ErrNotFound
}

func (m *mockProductStore) AdjustStock(ctx context.Context, id string, delta int, userID string) (int, error) {
	if m.AdjustStockFunc != nil {
		return m.AdjustStockFunc(ctx, id, delta, userID)
	}
	return 0, products.ErrNotFound
}

type mockHistoryStore struct {
	HistoryFunc     func(ctx context.Context, productID string) ([]audit.HistoryRow, error)
	FullHistoryFunc func(ctx context.Context) ([]audit.HistoryRow, error)
}

func (m *mockHistoryStore) History(ctx context.Context, productID string) ([]audit.HistoryRow, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, productID)
	}
	return nil, nil
}

func (m *mockHistoryStore) FullHistory(ctx context.Context) ([]audit.HistoryRow, error) {
	if m.FullHistoryFunc != nil {
		return m.FullHistoryFunc(ctx)
	}
	return nil, nil
}

type mockReverter struct {
	RevertFunc func(ctx context.Context, historyID string) (*revert.Result, error)
}

func (m *mockReverter) Revert(ctx context.Context, historyID string) (*revert.Result, error) {
	if m.RevertFunc != nil {
		return m.RevertFunc(ctx, historyID)
	}
	return nil, audit.ErrEntryNotFound
}

type mockBroadcaster struct {
	changes []string
	stocks  []int
}

func (m *mockBroadcaster) StockChanged(productID string, newStock int) {
	m.changes = append(m.changes, productID)
	m.stocks = append(m.stocks, newStock)
}

type mockOrderStore struct {
	CreateOrderTxFunc  func(ctx context.Context, userID, productID string, qty int) (*orders.Order, int, error)
	GetForUserFunc     func(ctx context.Context, userID, id string) (*orders.Order, error)
	ListForUserFunc    func(ctx context.Context, userID string) ([]orders.Order, error)
	UpdateForUserFunc  func(ctx context.Context, userID, id string, qty *int) (*orders.Order, error)
	DeleteForUserFunc  func(ctx context.Context, userID, id string) error
	PreparePaymentFunc func(ctx context.Context, orderID string) (*orders.PaymentRequest, error)
}

func (m *mockOrderStore) CreateOrderTx(ctx context.Context, userID, productID string, qty int) (*orders.Order, int, error) {
	if m.CreateOrderTxFunc != nil {
		return m.CreateOrderTxFunc(ctx, userID, productID, qty)
	}
	return nil, 0, errors.New("unexpected call")
}

func (m *mockOrderStore) GetForUser(ctx context.Context, userID, id string) (*orders.Order, error) {
	if m.GetForUserFunc != nil {
		return m.GetForUserFunc(ctx, userID, id)
	}
	return nil, orders.ErrNotFound
}

func (m *mockOrderStore) ListForUser(ctx context.Context, userID string) ([]orders.Order, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockOrderStore) UpdateForUser(ctx context.Context, userID, id string, qty *int) (*orders.Order, error) {
	if m.UpdateForUserFunc != nil {
		return m.UpdateForUserFunc(ctx, userID, id, qty)
	}
	return nil, orders.ErrNotFound
}

func (m *mockOrderStore) DeleteForUser(ctx context.Context, userID, id string) error {
	if m.DeleteForUserFunc != nil {
		return m.DeleteForUserFunc(ctx, userID, id)
	}
	return orders.ErrNotFound
}

func (m *mockOrderStore) PreparePayment(ctx context.Context, orderID string) (*orders.PaymentRequest, error) {
	if m.PreparePaymentFunc != nil {
		return m.PreparePaymentFunc(ctx, orderID)
	}
	return nil, orders.ErrNotFound
}

type mockPublisher struct {
	published [][]byte
}

func (m *mockPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	m.published = append(m.published, value)
}

type mockPaymentService struct {
	CreatePaymentFunc func(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
	HandleWebhookFunc func(ctx context.Context, n mercadopago.Notification) error
}

func (m *mockPaymentService) CreatePayment(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, body)
	}
	return nil, errors.New("unexpected call")
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, n mercadopago.Notification) error {
	if m.HandleWebhookFunc != nil {
		return m.HandleWebhookFunc(ctx, n)
	}
	return nil
}

type mockGatewayProxy struct {
	IdentificationTypesFunc func(ctx context.Context) (json.RawMessage, error)
	InstallmentsFunc        func(ctx context.Context, bin string, amountCents int) (json.RawMessage, error)
	CreateCardTokenFunc     func(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
}

func (m *mockGatewayProxy) IdentificationTypes(ctx context.Context) (json.RawMessage, error) {
	if m.IdentificationTypesFunc != nil {
		return m.IdentificationTypesFunc(ctx)
	}
	return nil, errors.New("unexpected call")
}

func (m *mockGatewayProxy) Installments(ctx context.Context, bin string, amountCents int) (json.RawMessage, error) {
	if m.InstallmentsFunc != nil {
		return m.InstallmentsFunc(ctx, bin, amountCents)
	}
	return nil, errors.New("unexpected call")
}

func (m *mockGatewayProxy) CreateCardToken(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	if m.CreateCardTokenFunc != nil {
		return m.CreateCardTokenFunc(ctx, body)
	}
	return nil, errors.New("unexpected call")
}
