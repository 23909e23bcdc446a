package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fares12358/erb-system-backend/internal/config"
	"github.com/fares12358/erb-system-backend/internal/db"
	"github.com/fares12358/erb-system-backend/internal/models"
)

// ErrValidation is returned when a create/update request fails input
// validation before the valuation engine runs.
var ErrValidation = errors.New("validation failed")

const invoicesCollection = "invoices"

// CreateInvoiceInput carries the caller-settable fields of a new invoice.
// Derived fields are computed here, never accepted from the caller.
type CreateInvoiceInput struct {
	ClientPhone   string
	Items         []models.LineItem
	PaidAmount    float64
	PaymentMethod models.PaymentMethod
	Note          string
}

// UpdateInvoiceInput is a partial update of the whitelisted field set. Nil
// means "leave unchanged".
type UpdateInvoiceInput struct {
	ClientPhone   *string
	Items         []models.LineItem
	PaidAmount    *float64
	PaymentMethod *models.PaymentMethod
	Note          *string
}

// ListInvoicesFilter narrows an owner-scoped invoice listing.
type ListInvoicesFilter struct {
	Page          int
	Status        string
	PaymentMethod string
	ClientPhone   string // substring, case-insensitive
	InvoiceNumber string // substring, case-insensitive
	DateFilter    string // canonical date-window keyword
	Sort          string // "oldest" for ascending, anything else descending
}

// Pagination describes the page returned by List.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// IInvoiceService defines the interface for invoice operations. Every method
// is owner-scoped: the userID always comes from the authenticated caller,
// never from request input.
type IInvoiceService interface {
	Create(ctx context.Context, userID primitive.ObjectID, in CreateInvoiceInput) (*models.Invoice, error)
	List(ctx context.Context, userID primitive.ObjectID, filter ListInvoicesFilter) ([]models.Invoice, *Pagination, error)
	Update(ctx context.Context, userID, invoiceID primitive.ObjectID, in UpdateInvoiceInput) (*models.Invoice, error)
	Delete(ctx context.Context, userID, invoiceID primitive.ObjectID) error
}

// invoiceService implements IInvoiceService.
type invoiceService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(db *mongo.Database, cfg *config.Config) IInvoiceService {
	return &invoiceService{db: db, cfg: cfg}
}

// Create validates the input, runs the valuation engine, assigns an invoice
// number and persists the invoice. A duplicate invoice number is regenerated
// and the insert retried.
func (s *invoiceService) Create(ctx context.Context, userID primitive.ObjectID, in CreateInvoiceInput) (*models.Invoice, error) {
	if in.ClientPhone == "" {
		return nil, fmt.Errorf("%w: clientPhone is required", ErrValidation)
	}
	if in.Items == nil {
		return nil, fmt.Errorf("%w: items is required", ErrValidation)
	}
	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: paymentMethod must be cash, visa or transfer", ErrValidation)
	}
	if in.PaidAmount < 0 {
		return nil, fmt.Errorf("%w: paidAmount must not be negative", ErrValidation)
	}
	if err := ValidateItems(in.Items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	collection := s.db.Collection(invoicesCollection)
	now := time.Now().UTC()

	invoice := &models.Invoice{
		UserID:        userID,
		ClientPhone:   in.ClientPhone,
		Items:         in.Items,
		PaidAmount:    in.PaidAmount,
		PaymentMethod: in.PaymentMethod,
		Note:          in.Note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	Revalue(invoice)

	err := db.Try(func() error {
		// Fresh number per attempt so a collision resolves on retry.
		invoice.ID = primitive.NewObjectID()
		invoice.InvoiceNumber = NewInvoiceNumber(time.Now().UTC())
		_, insertErr := collection.InsertOne(ctx, invoice)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("error inserting invoice for user %s: %w", userID.Hex(), err)
	}

	return invoice, nil
}

// List returns one page of the owner's invoices plus pagination metadata.
func (s *invoiceService) List(ctx context.Context, userID primitive.ObjectID, f ListInvoicesFilter) ([]models.Invoice, *Pagination, error) {
	collection := s.db.Collection(invoicesCollection)

	filter := bson.M{"user_id": userID}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentMethod != "" {
		filter["payment_method"] = f.PaymentMethod
	}
	if f.ClientPhone != "" {
		filter["client_phone"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.ClientPhone), Options: "i"}
	}
	if f.InvoiceNumber != "" {
		filter["invoice_number"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.InvoiceNumber), Options: "i"}
	}
	if start, ok := WindowStart(f.DateFilter, time.Now()); ok {
		filter["created_at"] = bson.M{"$gte": start}
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := s.cfg.InvoicePageSize
	if limit <= 0 {
		limit = 20
	}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("error counting invoices for user %s: %w", userID.Hex(), err)
	}

	sortDir := -1
	if f.Sort == "oldest" {
		sortDir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: sortDir}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing invoices for user %s: %w", userID.Hex(), err)
	}
	defer cursor.Close(ctx)

	invoices := []models.Invoice{}
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, nil, fmt.Errorf("error decoding invoices for user %s: %w", userID.Hex(), err)
	}

	pagination := &Pagination{
		Total: total,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}
	return invoices, pagination, nil
}

// Update applies the whitelisted fields to an owner-matching invoice, re-runs
// the valuation engine against the merged state and persists the result.
// Returns mongo.ErrNoDocuments when no invoice matches the owner and id.
func (s *invoiceService) Update(ctx context.Context, userID, invoiceID primitive.ObjectID, in UpdateInvoiceInput) (*models.Invoice, error) {
	collection := s.db.Collection(invoicesCollection)

	var invoice models.Invoice
	err := collection.FindOne(ctx, bson.M{"_id": invoiceID, "user_id": userID}).Decode(&invoice)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding invoice %s: %w", invoiceID.Hex(), err)
	}

	if in.ClientPhone != nil {
		if *in.ClientPhone == "" {
			return nil, fmt.Errorf("%w: clientPhone must not be empty", ErrValidation)
		}
		invoice.ClientPhone = *in.ClientPhone
	}
	if in.Items != nil {
		if err := ValidateItems(in.Items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		invoice.Items = in.Items
	}
	if in.PaidAmount != nil {
		if *in.PaidAmount < 0 {
			return nil, fmt.Errorf("%w: paidAmount must not be negative", ErrValidation)
		}
		invoice.PaidAmount = *in.PaidAmount
	}
	if in.PaymentMethod != nil {
		if !in.PaymentMethod.Valid() {
			return nil, fmt.Errorf("%w: paymentMethod must be cash, visa or transfer", ErrValidation)
		}
		invoice.PaymentMethod = *in.PaymentMethod
	}
	if in.Note != nil {
		invoice.Note = *in.Note
	}

	// Full derivation on every persist. InvoiceNumber and CreatedAt are
	// immutable and left untouched.
	Revalue(&invoice)
	invoice.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"client_phone":     invoice.ClientPhone,
		"items":            invoice.Items,
		"paid_amount":      invoice.PaidAmount,
		"payment_method":   invoice.PaymentMethod,
		"note":             invoice.Note,
		"total":            invoice.Total,
		"remaining_amount": invoice.RemainingAmount,
		"status":           invoice.Status,
		"updated_at":       invoice.UpdatedAt,
	}}
	result, err := collection.UpdateOne(ctx, bson.M{"_id": invoiceID, "user_id": userID}, update)
	if err != nil {
		return nil, fmt.Errorf("error updating invoice %s: %w", invoiceID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}

	return &invoice, nil
}

// Delete removes an owner-matching invoice. Returns mongo.ErrNoDocuments
// when no invoice matches the owner and id.
func (s *invoiceService) Delete(ctx context.Context, userID, invoiceID primitive.ObjectID) error {
	collection := s.db.Collection(invoicesCollection)
	result, err := collection.DeleteOne(ctx, bson.M{"_id": invoiceID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("error deleting invoice %s: %w", invoiceID.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
