package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fares12358/erb-system-backend/internal/models"
)

const recentInvoicesLimit = 5

// StatusCounts holds per-status invoice counts.
type StatusCounts struct {
	Paid    int `json:"paid"`
	Partial int `json:"partial"`
	Unpaid  int `json:"unpaid"`
}

// DashboardStats summarizes an owner's invoices inside a time window.
type DashboardStats struct {
	TotalInvoices  int          `json:"totalInvoices"`
	Counts         StatusCounts `json:"counts"`
	StatusPercent  StatusCounts `json:"statusPercent"`
	TotalIncome    float64      `json:"totalIncome"`
	TotalRemaining float64      `json:"totalRemaining"`
}

// ChartData holds sparse per-day series, ascending by day. Days without
// invoices are omitted, not zero-filled.
type ChartData struct {
	Labels        []string  `json:"labels"`
	InvoiceCounts []int     `json:"invoiceCounts"`
	Incomes       []float64 `json:"incomes"`
}

// ProductStat is the rollup of one line-item name across the window.
type ProductStat struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// RecentInvoice is the trimmed projection shown on the dashboard.
type RecentInvoice struct {
	InvoiceNumber string               `bson:"invoice_number" json:"invoiceNumber"`
	ClientPhone   string               `bson:"client_phone" json:"clientPhone"`
	Total         float64              `bson:"total" json:"total"`
	Status        models.InvoiceStatus `bson:"status" json:"status"`
}

// Series is one labelled chart line.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// OverviewStats is the stats block of the combined dashboard.
type OverviewStats struct {
	TotalIncome   float64      `json:"totalIncome"`
	UnpaidBalance float64      `json:"unpaidBalance"`
	TotalInvoices int          `json:"totalInvoices"`
	Status        StatusCounts `json:"status"` // percentages
}

// OverviewCharts holds the two chart lines of the combined dashboard.
type OverviewCharts struct {
	Income   Series `json:"income"`
	Invoices Series `json:"invoices"`
}

// Overview is the combined dashboard payload: stats and charts over the
// selected range plus the most recent invoices regardless of range.
type Overview struct {
	Stats          OverviewStats   `json:"stats"`
	Charts         OverviewCharts  `json:"charts"`
	RecentInvoices []RecentInvoice `json:"recentInvoices"`
}

// IDashboardService defines the interface for reporting over an owner's
// invoices. All operations share one date-window resolver and bucket days
// in UTC.
type IDashboardService interface {
	Stats(ctx context.Context, userID primitive.ObjectID, dateFilter string) (*DashboardStats, error)
	ChartData(ctx context.Context, userID primitive.ObjectID, dateFilter string) (*ChartData, error)
	ProductStats(ctx context.Context, userID primitive.ObjectID, dateFilter string) ([]ProductStat, error)
	Overview(ctx context.Context, userID primitive.ObjectID, rng string) (*Overview, error)
}

// dashboardService implements IDashboardService.
type dashboardService struct {
	db *mongo.Database
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(db *mongo.Database) IDashboardService {
	return &dashboardService{db: db}
}

// fetchWindow loads the owner's invoices with the window's inclusive lower
// bound applied, sorted ascending by creation time.
func (s *dashboardService) fetchWindow(ctx context.Context, userID primitive.ObjectID, dateFilter string) ([]models.Invoice, error) {
	filter := bson.M{"user_id": userID}
	if start, ok := WindowStart(dateFilter, time.Now()); ok {
		filter["created_at"] = bson.M{"$gte": start}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.db.Collection(invoicesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices for user %s: %w", userID.Hex(), err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err = cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("error decoding invoices for user %s: %w", userID.Hex(), err)
	}
	return invoices, nil
}

// Stats returns summary statistics for the window.
func (s *dashboardService) Stats(ctx context.Context, userID primitive.ObjectID, dateFilter string) (*DashboardStats, error) {
	invoices, err := s.fetchWindow(ctx, userID, dateFilter)
	if err != nil {
		return nil, err
	}
	stats := computeStats(invoices)
	return &stats, nil
}

// ChartData returns the sparse per-day invoice count and income series.
func (s *dashboardService) ChartData(ctx context.Context, userID primitive.ObjectID, dateFilter string) (*ChartData, error) {
	invoices, err := s.fetchWindow(ctx, userID, dateFilter)
	if err != nil {
		return nil, err
	}
	charts := bucketByDay(invoices)
	return &charts, nil
}

// ProductStats returns per-product quantity and revenue rollups.
func (s *dashboardService) ProductStats(ctx context.Context, userID primitive.ObjectID, dateFilter string) ([]ProductStat, error) {
	invoices, err := s.fetchWindow(ctx, userID, dateFilter)
	if err != nil {
		return nil, err
	}
	return rollupProducts(invoices), nil
}

// Overview returns the combined dashboard: stats and charts for the range
// (defaulting to the current month) plus the most recent invoices.
func (s *dashboardService) Overview(ctx context.Context, userID primitive.ObjectID, rng string) (*Overview, error) {
	invoices, err := s.fetchWindow(ctx, userID, NormalizeRange(rng))
	if err != nil {
		return nil, err
	}

	stats := computeStats(invoices)
	charts := bucketByDay(invoices)

	counts := make([]float64, len(charts.InvoiceCounts))
	for i, c := range charts.InvoiceCounts {
		counts[i] = float64(c)
	}

	recent, err := s.recentInvoices(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Stats: OverviewStats{
			TotalIncome:   stats.TotalIncome,
			UnpaidBalance: stats.TotalRemaining,
			TotalInvoices: stats.TotalInvoices,
			Status:        stats.StatusPercent,
		},
		Charts: OverviewCharts{
			Income:   Series{Labels: charts.Labels, Values: charts.Incomes},
			Invoices: Series{Labels: charts.Labels, Values: counts},
		},
		RecentInvoices: recent,
	}, nil
}

// recentInvoices returns the owner's newest invoices, trimmed for display.
// The recency list deliberately ignores the dashboard's date window.
func (s *dashboardService) recentInvoices(ctx context.Context, userID primitive.ObjectID) ([]RecentInvoice, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(recentInvoicesLimit).
		SetProjection(bson.M{"invoice_number": 1, "client_phone": 1, "total": 1, "status": 1})

	cursor, err := s.db.Collection(invoicesCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error querying recent invoices for user %s: %w", userID.Hex(), err)
	}
	defer cursor.Close(ctx)

	recent := []RecentInvoice{}
	if err = cursor.All(ctx, &recent); err != nil {
		return nil, fmt.Errorf("error decoding recent invoices for user %s: %w", userID.Hex(), err)
	}
	return recent, nil
}

// computeStats derives counts, totals and zero-safe percentages from a
// window of invoices.
func computeStats(invoices []models.Invoice) DashboardStats {
	stats := DashboardStats{TotalInvoices: len(invoices)}
	for _, inv := range invoices {
		stats.TotalIncome += inv.PaidAmount
		stats.TotalRemaining += inv.RemainingAmount
		switch inv.Status {
		case models.StatusPaid:
			stats.Counts.Paid++
		case models.StatusPartial:
			stats.Counts.Partial++
		case models.StatusUnpaid:
			stats.Counts.Unpaid++
		}
	}
	if stats.TotalInvoices > 0 {
		total := float64(stats.TotalInvoices)
		stats.StatusPercent = StatusCounts{
			Paid:    int(math.Round(float64(stats.Counts.Paid) / total * 100)),
			Partial: int(math.Round(float64(stats.Counts.Partial) / total * 100)),
			Unpaid:  int(math.Round(float64(stats.Counts.Unpaid) / total * 100)),
		}
	}
	return stats
}

// bucketByDay groups invoices by UTC calendar day of creation. The series is
// sparse and ascending; labels use the ISO date form.
func bucketByDay(invoices []models.Invoice) ChartData {
	type bucket struct {
		count  int
		income float64
	}
	buckets := map[string]*bucket{}
	for _, inv := range invoices {
		day := inv.CreatedAt.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.count++
		b.income += inv.PaidAmount
	}

	labels := make([]string, 0, len(buckets))
	for day := range buckets {
		labels = append(labels, day)
	}
	sort.Strings(labels)

	charts := ChartData{
		Labels:        labels,
		InvoiceCounts: make([]int, len(labels)),
		Incomes:       make([]float64, len(labels)),
	}
	for i, day := range labels {
		charts.InvoiceCounts[i] = buckets[day].count
		charts.Incomes[i] = buckets[day].income
	}
	return charts
}

// rollupProducts groups line items by exact name, summing quantity and
// revenue. Output is sorted by name for stable responses.
func rollupProducts(invoices []models.Invoice) []ProductStat {
	byName := map[string]*ProductStat{}
	for _, inv := range invoices {
		for _, item := range inv.Items {
			p, ok := byName[item.Name]
			if !ok {
				p = &ProductStat{Name: item.Name}
				byName[item.Name] = p
			}
			p.Quantity += item.Quantity
			p.Revenue += item.Subtotal
		}
	}

	products := make([]ProductStat, 0, len(byName))
	for _, p := range byName {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products
}
