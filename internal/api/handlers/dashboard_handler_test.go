package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fares12358/erb-system-backend/internal/api/handlers"
	"github.com/fares12358/erb-system-backend/internal/api/middleware"
	"github.com/fares12358/erb-system-backend/internal/services"
)

func newDashboardRouter(svc services.IDashboardService, userID primitive.ObjectID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewDashboardHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.ContextKeyUserID, userID) })
	r.GET("/api/dashboard", handler.Overview)
	r.GET("/api/dashboard/stats", handler.Stats)
	r.GET("/api/dashboard/charts", handler.Charts)
	r.GET("/api/dashboard/products", handler.Products)
	return r
}

func TestDashboardHandler_Stats(t *testing.T) {
	mockSvc := new(MockDashboardService)
	userID := primitive.NewObjectID()
	r := newDashboardRouter(mockSvc, userID)

	stats := &services.DashboardStats{
		TotalInvoices:  3,
		Counts:         services.StatusCounts{Paid: 1, Partial: 1, Unpaid: 1},
		StatusPercent:  services.StatusCounts{Paid: 33, Partial: 33, Unpaid: 33},
		TotalIncome:    150,
		TotalRemaining: 40,
	}
	mockSvc.On("Stats", mock.Anything, userID, "thisWeek").Return(stats, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard/stats?dateFilter=thisWeek", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var respBody struct {
		Success bool                     `json:"success"`
		Data    services.DashboardStats `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.True(t, respBody.Success)
	assert.Equal(t, 3, respBody.Data.TotalInvoices)
	assert.Equal(t, float64(150), respBody.Data.TotalIncome)
	mockSvc.AssertExpectations(t)
}

func TestDashboardHandler_Charts(t *testing.T) {
	mockSvc := new(MockDashboardService)
	userID := primitive.NewObjectID()
	r := newDashboardRouter(mockSvc, userID)

	charts := &services.ChartData{
		Labels:        []string{"2026-08-01", "2026-08-03"},
		InvoiceCounts: []int{2, 1},
		Incomes:       []float64{100, 25},
	}
	mockSvc.On("ChartData", mock.Anything, userID, "").Return(charts, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard/charts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026-08-01")
	mockSvc.AssertExpectations(t)
}

func TestDashboardHandler_Products(t *testing.T) {
	mockSvc := new(MockDashboardService)
	userID := primitive.NewObjectID()
	r := newDashboardRouter(mockSvc, userID)

	products := []services.ProductStat{
		{Name: "Gadget", Quantity: 1, Revenue: 5},
		{Name: "Widget", Quantity: 4, Revenue: 40},
	}
	mockSvc.On("ProductStats", mock.Anything, userID, "thisMonth").Return(products, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard/products?dateFilter=thisMonth", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var respBody struct {
		Data []services.ProductStat `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Len(t, respBody.Data, 2)
	assert.Equal(t, "Gadget", respBody.Data[0].Name)
	mockSvc.AssertExpectations(t)
}

func TestDashboardHandler_Overview(t *testing.T) {
	mockSvc := new(MockDashboardService)
	userID := primitive.NewObjectID()
	r := newDashboardRouter(mockSvc, userID)

	overview := &services.Overview{
		Stats: services.OverviewStats{TotalIncome: 150, UnpaidBalance: 40, TotalInvoices: 3},
		Charts: services.OverviewCharts{
			Income:   services.Series{Labels: []string{"2026-08-01"}, Values: []float64{150}},
			Invoices: services.Series{Labels: []string{"2026-08-01"}, Values: []float64{3}},
		},
		RecentInvoices: []services.RecentInvoice{{InvoiceNumber: "INV-1-AAAA", Total: 25}},
	}
	mockSvc.On("Overview", mock.Anything, userID, "week").Return(overview, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard?range=week", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "INV-1-AAAA")
	mockSvc.AssertExpectations(t)
}

func TestDashboardHandler_Stats_ServiceError(t *testing.T) {
	mockSvc := new(MockDashboardService)
	userID := primitive.NewObjectID()
	r := newDashboardRouter(mockSvc, userID)

	mockSvc.On("Stats", mock.Anything, userID, "").Return(nil, errors.New("mongo down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/dashboard/stats", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to compute stats")
}
