package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceStatus is the derived payment state of an invoice.
type InvoiceStatus string

const (
	StatusUnpaid  InvoiceStatus = "unpaid"
	StatusPartial InvoiceStatus = "partial"
	StatusPaid    InvoiceStatus = "paid"
)

// PaymentMethod is how the client pays an invoice.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentVisa     PaymentMethod = "visa"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether the payment method is one of the accepted values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentVisa, PaymentTransfer:
		return true
	}
	return false
}

// LineItem is a single position on an invoice. Subtotal is derived and
// recomputed on every persist; it is never accepted from caller input.
type LineItem struct {
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
}

// Invoice is an owner-scoped bill. Total, RemainingAmount, Status and the
// item subtotals are derived fields; InvoiceNumber is assigned once at first
// persist and never regenerated.
type Invoice struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	InvoiceNumber   string             `bson:"invoice_number" json:"invoiceNumber"`
	ClientPhone     string             `bson:"client_phone" json:"clientPhone"`
	Items           []LineItem         `bson:"items" json:"items"`
	Total           float64            `bson:"total" json:"total"`
	PaidAmount      float64            `bson:"paid_amount" json:"paidAmount"`
	RemainingAmount float64            `bson:"remaining_amount" json:"remainingAmount"`
	Status          InvoiceStatus      `bson:"status" json:"status"`
	PaymentMethod   PaymentMethod      `bson:"payment_method" json:"paymentMethod"`
	Note            string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}
