package services

import (
	"context"
	"time"

	"toolcare/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock repositories and services shared by the service test suites.

type MockToolRepository struct {
	mock.Mock
}

func (m *MockToolRepository) Create(ctx context.Context, tool *models.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

func (m *MockToolRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tool), args.Error(1)
}

func (m *MockToolRepository) GetBySerial(ctx context.Context, serial string) (*models.Tool, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tool), args.Error(1)
}

func (m *MockToolRepository) Update(ctx context.Context, tool *models.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

func (m *MockToolRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockToolRepository) List(ctx context.Context, filter *models.ToolSearchFilter) ([]*models.Tool, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Tool), args.Error(1)
}

func (m *MockToolRepository) UpdateStateFrom(ctx context.Context, id uuid.UUID, expected, next models.ToolState) (bool, error) {
	args := m.Called(ctx, id, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *MockToolRepository) BranchID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockToolRepository) ListBlockingByBranch(ctx context.Context, branchID uuid.UUID) ([]models.ToolRef, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]models.ToolRef), args.Error(1)
}

func (m *MockToolRepository) ListBlockingByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]models.ToolRef, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).([]models.ToolRef), args.Error(1)
}

func (m *MockToolRepository) DeactivateByBranch(ctx context.Context, branchID uuid.UUID) error {
	args := m.Called(ctx, branchID)
	return args.Error(0)
}

func (m *MockToolRepository) DeactivateByWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	args := m.Called(ctx, warehouseID)
	return args.Error(0)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) SetName(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockLoanRepository) Close(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLoanRepository) List(ctx context.Context, filter *models.LoanSearchFilter) ([]*models.Loan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) CountActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (int, error) {
	args := m.Called(ctx, employeeID)
	return args.Int(0), args.Error(1)
}

type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) Create(ctx context.Context, maintenance *models.Maintenance) error {
	args := m.Called(ctx, maintenance)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Maintenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Maintenance), args.Error(1)
}

func (m *MockMaintenanceRepository) SetName(ctx context.Context, id uuid.UUID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) Close(ctx context.Context, maintenance *models.Maintenance) error {
	args := m.Called(ctx, maintenance)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) UpdateNotes(ctx context.Context, id uuid.UUID, notes *string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) List(ctx context.Context, filter *models.MaintenanceSearchFilter) ([]*models.Maintenance, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Maintenance), args.Error(1)
}

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetByBadge(ctx context.Context, badge string) (*models.Employee, error) {
	args := m.Called(ctx, badge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) List(ctx context.Context, limit, offset int) ([]*models.Employee, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) GetBranchIDs(ctx context.Context, employeeID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockEmployeeRepository) SetBranches(ctx context.Context, employeeID uuid.UUID, branchIDs []uuid.UUID) error {
	args := m.Called(ctx, employeeID, branchIDs)
	return args.Error(0)
}

func (m *MockEmployeeRepository) RemoveBranchAssociations(ctx context.Context, branchID uuid.UUID) error {
	args := m.Called(ctx, branchID)
	return args.Error(0)
}

type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branch), args.Error(1)
}

func (m *MockBranchRepository) GetByName(ctx context.Context, name string) (*models.Branch, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branch), args.Error(1)
}

func (m *MockBranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBranchRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*models.Branch, error) {
	args := m.Called(ctx, activeOnly, limit, offset)
	return args.Get(0).([]*models.Branch), args.Error(1)
}

type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) Create(ctx context.Context, warehouse *models.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockWarehouseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Update(ctx context.Context, warehouse *models.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

func (m *MockWarehouseRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockWarehouseRepository) DeactivateByBranch(ctx context.Context, branchID uuid.UUID) error {
	args := m.Called(ctx, branchID)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWarehouseRepository) List(ctx context.Context, limit, offset int) ([]*models.Warehouse, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) ListByBranch(ctx context.Context, branchID uuid.UUID, limit, offset int) ([]*models.Warehouse, error) {
	args := m.Called(ctx, branchID, limit, offset)
	return args.Get(0).([]*models.Warehouse), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetBranchIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) SetBranches(ctx context.Context, userID uuid.UUID, branchIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, branchIDs)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveBranchAssociations(ctx context.Context, branchID uuid.UUID) error {
	args := m.Called(ctx, branchID)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTool(ctx context.Context, toolID uuid.UUID) (*models.Tool, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tool), args.Error(1)
}

func (m *MockCacheService) SetTool(ctx context.Context, tool *models.Tool, ttl time.Duration) error {
	args := m.Called(ctx, tool, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTool(ctx context.Context, toolID uuid.UUID) error {
	args := m.Called(ctx, toolID)
	return args.Error(0)
}

func (m *MockCacheService) GetBranch(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Branch), args.Error(1)
}

func (m *MockCacheService) SetBranch(ctx context.Context, branch *models.Branch, ttl time.Duration) error {
	args := m.Called(ctx, branch, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteBranch(ctx context.Context, branchID uuid.UUID) error {
	args := m.Called(ctx, branchID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAllCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, entity, recordID, action string, detail *string) {
	m.Called(ctx, entity, recordID, action, detail)
}

func (m *MockAuditService) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

// passthroughTx runs the callback directly, without a real transaction.
type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingTx counts WithinTx invocations so tests can assert a write
// sequence actually went through the transaction manager.
type recordingTx struct {
	calls int
}

func (t *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
