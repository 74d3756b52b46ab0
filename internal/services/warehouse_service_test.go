package services

import (
	"context"
	"testing"

	"toolcare/internal/auth"
	"toolcare/internal/common"
	"toolcare/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WarehouseServiceTestSuite struct {
	suite.Suite
	mockWarehouseRepo *MockWarehouseRepository
	mockBranchRepo    *MockBranchRepository
	mockToolRepo      *MockToolRepository
	mockAuditSvc      *MockAuditService
	service           WarehouseService
	maximoScope       auth.AccessScope
}

func (suite *WarehouseServiceTestSuite) SetupTest() {
	suite.mockWarehouseRepo = &MockWarehouseRepository{}
	suite.mockBranchRepo = &MockBranchRepository{}
	suite.mockToolRepo = &MockToolRepository{}
	suite.mockAuditSvc = &MockAuditService{}
	suite.service = NewWarehouseService(suite.mockWarehouseRepo, suite.mockBranchRepo, suite.mockToolRepo, passthroughTx{}, suite.mockAuditSvc)
	suite.maximoScope = auth.GlobalScope(models.RoleMaximo)
}

func (suite *WarehouseServiceTestSuite) TearDownTest() {
	suite.mockWarehouseRepo.AssertExpectations(suite.T())
	suite.mockBranchRepo.AssertExpectations(suite.T())
	suite.mockToolRepo.AssertExpectations(suite.T())
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func TestWarehouseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WarehouseServiceTestSuite))
}

func (suite *WarehouseServiceTestSuite) TestCreate_Success() {
	branchID := uuid.New()
	suite.mockBranchRepo.On("GetByID", mock.Anything, branchID).Return(&models.Branch{ID: branchID, Name: "Matriz", Active: true}, nil).Once()
	suite.mockWarehouseRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Warehouse")).Return(nil).Once()

	warehouse, err := suite.service.Create(context.Background(), suite.maximoScope, &CreateWarehouseRequest{
		BranchID: branchID,
		Name:     "  Almoxarifado Central  ",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Almoxarifado Central", warehouse.Name)
	assert.Equal(suite.T(), branchID, warehouse.BranchID)
	assert.True(suite.T(), warehouse.Active)
}

func (suite *WarehouseServiceTestSuite) TestCreate_InactiveBranch() {
	branchID := uuid.New()
	suite.mockBranchRepo.On("GetByID", mock.Anything, branchID).Return(&models.Branch{ID: branchID, Name: "Matriz", Active: false}, nil).Once()

	warehouse, err := suite.service.Create(context.Background(), suite.maximoScope, &CreateWarehouseRequest{
		BranchID: branchID,
		Name:     "Almoxarifado",
	})

	assert.Nil(suite.T(), warehouse)
	_, ok := common.AsValidationError(err)
	assert.True(suite.T(), ok)
}

func (suite *WarehouseServiceTestSuite) TestCreate_OutOfScope() {
	restricted := auth.BranchScope(models.RoleAdministrador, []uuid.UUID{uuid.New()})

	warehouse, err := suite.service.Create(context.Background(), restricted, &CreateWarehouseRequest{
		BranchID: uuid.New(),
		Name:     "Almoxarifado",
	})

	assert.Nil(suite.T(), warehouse)
	assert.ErrorIs(suite.T(), err, common.ErrOutOfScope)
}

func (suite *WarehouseServiceTestSuite) TestList_RestrictedScopeFansOut() {
	branchA := uuid.New()
	branchB := uuid.New()
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{branchA, branchB})
	suite.mockWarehouseRepo.On("ListByBranch", mock.Anything, branchA, 50, 0).Return([]*models.Warehouse{{ID: uuid.New(), BranchID: branchA}}, nil).Once()
	suite.mockWarehouseRepo.On("ListByBranch", mock.Anything, branchB, 50, 0).Return([]*models.Warehouse{{ID: uuid.New(), BranchID: branchB}}, nil).Once()

	warehouses, err := suite.service.List(context.Background(), restricted, nil, 0, 0)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), warehouses, 2)
}

func (suite *WarehouseServiceTestSuite) TestDeactivate_DryRunReportsBlockers() {
	warehouseID := uuid.New()
	branchID := uuid.New()
	blockers := []models.ToolRef{{ID: uuid.New(), Name: "Furadeira", State: models.ToolStateLoaned}}
	suite.mockWarehouseRepo.On("GetByID", mock.Anything, warehouseID).Return(&models.Warehouse{ID: warehouseID, BranchID: branchID, Name: "Central", Active: true}, nil).Once()
	suite.mockToolRepo.On("ListBlockingByWarehouse", mock.Anything, warehouseID).Return(blockers, nil).Once()

	report, err := suite.service.Deactivate(context.Background(), suite.maximoScope, warehouseID, true)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), report.DryRun)
	assert.False(suite.T(), report.CanProceed)
	assert.Len(suite.T(), report.Blockers, 1)
}

func (suite *WarehouseServiceTestSuite) TestDeactivate_BlockedInTx() {
	warehouseID := uuid.New()
	branchID := uuid.New()
	blockers := []models.ToolRef{{ID: uuid.New(), Name: "Serra", State: models.ToolStateInMaintenance}}
	suite.mockWarehouseRepo.On("GetByID", mock.Anything, warehouseID).Return(&models.Warehouse{ID: warehouseID, BranchID: branchID, Name: "Central", Active: true}, nil).Once()
	suite.mockToolRepo.On("ListBlockingByWarehouse", mock.Anything, warehouseID).Return(blockers, nil).Once()

	report, err := suite.service.Deactivate(context.Background(), suite.maximoScope, warehouseID, false)

	assert.Nil(suite.T(), report)
	blocked, ok := common.AsBlockedError(err)
	assert.True(suite.T(), ok)
	assert.Len(suite.T(), blocked.Blockers, 1)
}

func (suite *WarehouseServiceTestSuite) TestDeactivate_CascadesToTools() {
	warehouseID := uuid.New()
	branchID := uuid.New()
	suite.mockWarehouseRepo.On("GetByID", mock.Anything, warehouseID).Return(&models.Warehouse{ID: warehouseID, BranchID: branchID, Name: "Central", Active: true}, nil).Once()
	suite.mockToolRepo.On("ListBlockingByWarehouse", mock.Anything, warehouseID).Return([]models.ToolRef{}, nil).Once()
	suite.mockWarehouseRepo.On("SetActive", mock.Anything, warehouseID, false).Return(nil).Once()
	suite.mockToolRepo.On("DeactivateByWarehouse", mock.Anything, warehouseID).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "warehouse", warehouseID.String(), models.ActionWarehouseDeactivated, mock.Anything).Once()

	report, err := suite.service.Deactivate(context.Background(), suite.maximoScope, warehouseID, false)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), report.CanProceed)
}

func (suite *WarehouseServiceTestSuite) TestReactivate_InactiveBranchRefused() {
	warehouseID := uuid.New()
	branchID := uuid.New()
	suite.mockWarehouseRepo.On("GetByID", mock.Anything, warehouseID).Return(&models.Warehouse{ID: warehouseID, BranchID: branchID, Name: "Central", Active: false}, nil).Once()
	suite.mockBranchRepo.On("GetByID", mock.Anything, branchID).Return(&models.Branch{ID: branchID, Name: "Matriz", Active: false}, nil).Once()

	err := suite.service.Reactivate(context.Background(), suite.maximoScope, warehouseID)

	_, ok := common.AsValidationError(err)
	assert.True(suite.T(), ok)
}

func (suite *WarehouseServiceTestSuite) TestReactivate_Success() {
	warehouseID := uuid.New()
	branchID := uuid.New()
	suite.mockWarehouseRepo.On("GetByID", mock.Anything, warehouseID).Return(&models.Warehouse{ID: warehouseID, BranchID: branchID, Name: "Central", Active: false}, nil).Once()
	suite.mockBranchRepo.On("GetByID", mock.Anything, branchID).Return(&models.Branch{ID: branchID, Name: "Matriz", Active: true}, nil).Once()
	suite.mockWarehouseRepo.On("SetActive", mock.Anything, warehouseID, true).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "warehouse", warehouseID.String(), models.ActionWarehouseReactivated, mock.Anything).Once()

	err := suite.service.Reactivate(context.Background(), suite.maximoScope, warehouseID)

	assert.NoError(suite.T(), err)
}
