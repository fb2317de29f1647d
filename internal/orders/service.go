package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ANANDHURAI/Amart-Marketplace/internal/catalog"
	"github.com/ANANDHURAI/Amart-Marketplace/internal/wallet"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/metrics"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// itemStatusFlow is the admin progression for a line. Cancelled and
// returned are reached through the dedicated operations, never here.
var itemStatusFlow = map[enums.OrderItemStatus]enums.OrderItemStatus{
	enums.OrderItemStatusPending:   enums.OrderItemStatusConfirmed,
	enums.OrderItemStatusConfirmed: enums.OrderItemStatusShipped,
	enums.OrderItemStatusShipped:   enums.OrderItemStatusDelivered,
}

// Service owns the post-purchase order lifecycle.
type Service interface {
	List(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*OrderPage, error)
	Get(ctx context.Context, accountID, orderID uuid.UUID) (*OrderDetail, error)
	Cancel(ctx context.Context, accountID, orderID uuid.UUID) (*OrderDetail, error)
	CancelItem(ctx context.Context, accountID, orderID, itemID uuid.UUID) (*OrderDetail, error)
	Return(ctx context.Context, accountID, orderID uuid.UUID) (*OrderDetail, error)

	AdminList(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderPage, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	AdvanceItem(ctx context.Context, orderID, itemID uuid.UUID, status enums.OrderItemStatus) (*OrderDetail, error)
}

// ServiceParams bundles the dependencies required to build an order
// service. Stock and Wallet are rebound into the cancel and return
// transactions so restores and refunds commit with the status changes.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Stock   catalog.Stock
	Wallet  wallet.Payer
	Metrics *metrics.CheckoutMetrics
}

type service struct {
	repo    Repository
	tx      txRunner
	stock   catalog.Stock
	wallet  wallet.Payer
	metrics *metrics.CheckoutMetrics
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock restorer is required")
	}
	if params.Wallet == nil {
		return nil, fmt.Errorf("wallet creditor is required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		stock:   params.Stock,
		wallet:  params.Wallet,
		metrics: params.Metrics,
	}, nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	orders, next, err := s.repo.ListByAccount(ctx, accountID, params.Cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list orders")
	}
	return buildPage(orders, next), nil
}

func (s *service) Get(ctx context.Context, accountID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.ownedOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	detail := toDetail(order)
	return &detail, nil
}

// Cancel cancels every active line, restoring stock per line and crediting
// the wallet for paid non-COD orders. Replays on an already cancelled order
// are rejected.
func (s *service) Cancel(ctx context.Context, accountID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.ownedOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanCancel() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	refund := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.stock.WithTx(tx)
		for i := range order.Items {
			item := &order.Items[i]
			if item.Status == enums.OrderItemStatusCancelled || item.Status == enums.OrderItemStatusReturned {
				continue
			}
			if err := repo.UpdateItemStatus(ctx, item.ID, enums.OrderItemStatusCancelled); err != nil {
				return err
			}
			if err := stock.IncrementStock(ctx, item.InventoryID, item.Quantity); err != nil {
				return err
			}
			if order.IsPaid && order.PaymentMethod != enums.PaymentMethodCOD {
				refund += item.UnitPrice * item.Quantity
			}
		}
		if refund > 0 {
			if err := s.wallet.WithTx(tx).Credit(ctx, order.AccountID, refund, enums.WalletTxTypeRefund, order.ID.String()); err != nil {
				return err
			}
		}
		return repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to cancel order")
	}

	if refund > 0 {
		s.metrics.IncWalletRefund()
	}
	return s.reload(ctx, order.ID)
}

// CancelItem cancels one line. When it was the last active line the order
// cascades to cancelled. Cancelling an already cancelled line returns the
// order unchanged.
func (s *service) CancelItem(ctx context.Context, accountID, orderID, itemID uuid.UUID) (*OrderDetail, error) {
	order, err := s.ownedOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanCancel() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}
	item, err := s.repo.FindItem(ctx, orderID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order item")
	}
	if item.Status == enums.OrderItemStatusCancelled {
		// cancelling the same line twice changes nothing
		return s.reload(ctx, order.ID)
	}
	if item.Status == enums.OrderItemStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order item is already closed")
	}

	refund := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateItemStatus(ctx, item.ID, enums.OrderItemStatusCancelled); err != nil {
			return err
		}
		if err := s.stock.WithTx(tx).IncrementStock(ctx, item.InventoryID, item.Quantity); err != nil {
			return err
		}
		if order.IsPaid && order.PaymentMethod != enums.PaymentMethodCOD {
			refund = item.UnitPrice * item.Quantity
		}
		if refund > 0 {
			if err := s.wallet.WithTx(tx).Credit(ctx, order.AccountID, refund, enums.WalletTxTypeRefund, order.ID.String()); err != nil {
				return err
			}
		}
		active, err := repo.CountActiveItems(ctx, order.ID)
		if err != nil {
			return err
		}
		if active == 0 {
			return repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to cancel order item")
	}

	if refund > 0 {
		s.metrics.IncWalletRefund()
	}
	return s.reload(ctx, order.ID)
}

// Return reverses a delivered order: stock comes back and paid non-COD
// totals are credited to the wallet.
func (s *service) Return(ctx context.Context, accountID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.ownedOrder(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered orders can be returned")
	}

	refund := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		stock := s.stock.WithTx(tx)
		for i := range order.Items {
			item := &order.Items[i]
			if item.Status == enums.OrderItemStatusCancelled || item.Status == enums.OrderItemStatusReturned {
				continue
			}
			if err := repo.UpdateItemStatus(ctx, item.ID, enums.OrderItemStatusReturned); err != nil {
				return err
			}
			if err := stock.IncrementStock(ctx, item.InventoryID, item.Quantity); err != nil {
				return err
			}
			if order.IsPaid && order.PaymentMethod != enums.PaymentMethodCOD {
				refund += item.UnitPrice * item.Quantity
			}
		}
		if refund > 0 {
			if err := s.wallet.WithTx(tx).Credit(ctx, order.AccountID, refund, enums.WalletTxTypeRefund, order.ID.String()); err != nil {
				return err
			}
		}
		return repo.UpdateStatus(ctx, order.ID, enums.OrderStatusReturned)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to return order")
	}

	if refund > 0 {
		s.metrics.IncWalletRefund()
	}
	return s.reload(ctx, order.ID)
}

func (s *service) AdminList(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*OrderPage, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	orders, next, err := s.repo.ListAll(ctx, status, params.Cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list orders")
	}
	return buildPage(orders, next), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}
	detail := toDetail(order)
	return &detail, nil
}

// AdvanceItem moves one line a single step along the fulfilment chain. The
// order status follows once every active line agrees.
func (s *service) AdvanceItem(ctx context.Context, orderID, itemID uuid.UUID, status enums.OrderItemStatus) (*OrderDetail, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order item status")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed")
	}
	item, err := s.repo.FindItem(ctx, orderID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order item")
	}
	next, ok := itemStatusFlow[item.Status]
	if !ok || next != status {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move item from %s to %s", item.Status, status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateItemStatus(ctx, item.ID, status); err != nil {
			return err
		}
		return s.syncOrderStatus(ctx, repo, order.ID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to update order item")
	}
	return s.reload(ctx, order.ID)
}

// syncOrderStatus mirrors the slowest active line onto the order.
func (s *service) syncOrderStatus(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	rank := map[enums.OrderItemStatus]int{
		enums.OrderItemStatusPending:   0,
		enums.OrderItemStatusConfirmed: 1,
		enums.OrderItemStatusShipped:   2,
		enums.OrderItemStatusDelivered: 3,
	}
	slowest := -1
	for _, item := range order.Items {
		r, ok := rank[item.Status]
		if !ok {
			continue
		}
		if slowest == -1 || r < slowest {
			slowest = r
		}
	}
	if slowest == -1 {
		return nil
	}
	for status, r := range rank {
		if r == slowest {
			return repo.UpdateStatus(ctx, orderID, enums.OrderStatus(status))
		}
	}
	return nil
}

func (s *service) ownedOrder(ctx context.Context, accountID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load order")
	}
	if order.AccountID != accountID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to reload order")
	}
	detail := toDetail(order)
	return &detail, nil
}

func buildPage(orders []models.Order, next string) *OrderPage {
	page := &OrderPage{Items: make([]OrderSummary, 0, len(orders)), NextCursor: next}
	for i := range orders {
		page.Items = append(page.Items, toSummary(&orders[i]))
	}
	return page
}
