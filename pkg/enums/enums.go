package enums

// OrderStatus tracks the order-level lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusReturned
}

// CanCancel reports whether the order may still be cancelled.
func (s OrderStatus) CanCancel() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped:
		return true
	}
	return false
}

// OrderItemStatus tracks per-line status independent of the order.
type OrderItemStatus string

const (
	OrderItemStatusPending   OrderItemStatus = "pending"
	OrderItemStatusConfirmed OrderItemStatus = "confirmed"
	OrderItemStatusShipped   OrderItemStatus = "shipped"
	OrderItemStatusDelivered OrderItemStatus = "delivered"
	OrderItemStatusCancelled OrderItemStatus = "cancelled"
	OrderItemStatusReturned  OrderItemStatus = "returned"
)

func (s OrderItemStatus) IsValid() bool {
	switch s {
	case OrderItemStatusPending, OrderItemStatusConfirmed, OrderItemStatusShipped,
		OrderItemStatusDelivered, OrderItemStatusCancelled, OrderItemStatusReturned:
		return true
	}
	return false
}

// PaymentMethod identifies the settlement path chosen at checkout.
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "COD"
	PaymentMethodWallet   PaymentMethod = "wallet"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodWallet, PaymentMethodRazorpay:
		return true
	}
	return false
}

// Prepaid reports whether funds are collected before finalize.
func (m PaymentMethod) Prepaid() bool {
	return m == PaymentMethodWallet || m == PaymentMethodRazorpay
}

// WalletTxType classifies wallet ledger entries.
type WalletTxType string

const (
	WalletTxTypeRefund WalletTxType = "refund"
	WalletTxTypeTopup  WalletTxType = "topup"
	WalletTxTypeDebit  WalletTxType = "debit"
)

func (t WalletTxType) IsValid() bool {
	switch t {
	case WalletTxTypeRefund, WalletTxTypeTopup, WalletTxTypeDebit:
		return true
	}
	return false
}

// AccountRole separates storefront customers from console admins.
type AccountRole string

const (
	AccountRoleCustomer AccountRole = "customer"
	AccountRoleAdmin    AccountRole = "admin"
)

func (r AccountRole) IsValid() bool {
	return r == AccountRoleCustomer || r == AccountRoleAdmin
}
