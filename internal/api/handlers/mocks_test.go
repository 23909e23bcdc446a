package handlers_test

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fares12358/erb-system-backend/internal/models"
	"github.com/fares12358/erb-system-backend/internal/services"
)

// --- Mocks ---

// MockUserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) BeginRegistration(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) CompleteRegistration(ctx context.Context, name, email, password, otp string) (*models.User, error) {
	args := m.Called(ctx, name, email, password, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) CreateResetToken(ctx context.Context, email string) (string, *models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

func (m *MockUserService) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockInvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, userID primitive.ObjectID, in services.CreateInvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, userID primitive.ObjectID, filter services.ListInvoicesFilter) ([]models.Invoice, *services.Pagination, error) {
	args := m.Called(ctx, userID, filter)
	var invoices []models.Invoice
	if args.Get(0) != nil {
		invoices = args.Get(0).([]models.Invoice)
	}
	var pagination *services.Pagination
	if args.Get(1) != nil {
		pagination = args.Get(1).(*services.Pagination)
	}
	return invoices, pagination, args.Error(2)
}

func (m *MockInvoiceService) Update(ctx context.Context, userID, invoiceID primitive.ObjectID, in services.UpdateInvoiceInput) (*models.Invoice, error) {
	args := m.Called(ctx, userID, invoiceID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, userID, invoiceID primitive.ObjectID) error {
	args := m.Called(ctx, userID, invoiceID)
	return args.Error(0)
}

// MockDashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Stats(ctx context.Context, userID primitive.ObjectID, dateFilter string) (*services.DashboardStats, error) {
	args := m.Called(ctx, userID, dateFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DashboardStats), args.Error(1)
}

func (m *MockDashboardService) ChartData(ctx context.Context, userID primitive.ObjectID, dateFilter string) (*services.ChartData, error) {
	args := m.Called(ctx, userID, dateFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ChartData), args.Error(1)
}

func (m *MockDashboardService) ProductStats(ctx context.Context, userID primitive.ObjectID, dateFilter string) ([]services.ProductStat, error) {
	args := m.Called(ctx, userID, dateFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ProductStat), args.Error(1)
}

func (m *MockDashboardService) Overview(ctx context.Context, userID primitive.ObjectID, rng string) (*services.Overview, error) {
	args := m.Called(ctx, userID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Overview), args.Error(1)
}

// MockAsynqClient
type MockAsynqClient struct {
	mock.Mock
}

func (m *MockAsynqClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
