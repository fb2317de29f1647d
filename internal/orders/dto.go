package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/ANANDHURAI/Amart-Marketplace/pkg/db/models"
	"github.com/ANANDHURAI/Amart-Marketplace/pkg/enums"
)

// ItemDTO is one snapshotted order line.
type ItemDTO struct {
	ID          uuid.UUID             `json:"id"`
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	Size        string                `json:"size"`
	UnitPrice   int                   `json:"unit_price"`
	Quantity    int                   `json:"quantity"`
	LineTotal   int                   `json:"line_total"`
	Status      enums.OrderItemStatus `json:"status"`
}

// OrderSummary is the listing row for customers and admins.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	IsPaid        bool                `json:"is_paid"`
	Total         int                 `json:"total"`
	ItemCount     int                 `json:"item_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderDetail is the invoice-style view of one order.
type OrderDetail struct {
	ID            uuid.UUID           `json:"id"`
	AccountID     uuid.UUID           `json:"account_id"`
	AddressText   string              `json:"address_text"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentID     *string             `json:"payment_id,omitempty"`
	Subtotal      int                 `json:"subtotal"`
	Discount      int                 `json:"discount"`
	Total         int                 `json:"total"`
	IsPaid        bool                `json:"is_paid"`
	Status        enums.OrderStatus   `json:"status"`
	Items         []ItemDTO           `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderPage is a cursor-paginated order listing.
type OrderPage struct {
	Items      []OrderSummary `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// UpdateItemStatusRequest is the admin payload for advancing one line.
type UpdateItemStatusRequest struct {
	Status enums.OrderItemStatus `json:"status" validate:"required"`
}

func toSummary(o *models.Order) OrderSummary {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return OrderSummary{
		ID:            o.ID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		IsPaid:        o.IsPaid,
		Total:         o.Total,
		ItemCount:     count,
		CreatedAt:     o.CreatedAt,
	}
}

func toDetail(o *models.Order) OrderDetail {
	detail := OrderDetail{
		ID:            o.ID,
		AccountID:     o.AccountID,
		AddressText:   o.AddressText,
		PaymentMethod: o.PaymentMethod,
		PaymentID:     o.PaymentID,
		Subtotal:      o.Subtotal,
		Discount:      o.Discount,
		Total:         o.Total,
		IsPaid:        o.IsPaid,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
		Items:         make([]ItemDTO, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		detail.Items = append(detail.Items, ItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.UnitPrice * item.Quantity,
			Status:      item.Status,
		})
	}
	return detail
}
