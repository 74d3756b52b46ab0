package repositories

import (
	"context"
	"testing"
	"time"

	"toolcare/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ToolRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ToolRepository
	toolID  uuid.UUID
	context context.Context
}

func (suite *ToolRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewToolRepository(mock)
	suite.toolID = uuid.New()
	suite.context = context.Background()
}

func (suite *ToolRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestToolRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ToolRepoTestSuite))
}

func (suite *ToolRepoTestSuite) TestUpdateStateFrom_GuardMatches() {
	suite.mock.ExpectExec(`UPDATE tools`).
		WithArgs(models.ToolStateLoaned, suite.toolID, models.ToolStateAvailable).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := suite.repo.UpdateStateFrom(suite.context, suite.toolID, models.ToolStateAvailable, models.ToolStateLoaned)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
}

func (suite *ToolRepoTestSuite) TestUpdateStateFrom_IllegalPairRejectedWithoutWrite() {
	ok, err := suite.repo.UpdateStateFrom(suite.context, suite.toolID, models.ToolStateLoaned, models.ToolStateInactive)

	assert.False(suite.T(), ok)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "illegal tool state transition")
}

func (suite *ToolRepoTestSuite) TestUpdateStateFrom_GuardMisses() {
	suite.mock.ExpectExec(`UPDATE tools`).
		WithArgs(models.ToolStateLoaned, suite.toolID, models.ToolStateAvailable).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := suite.repo.UpdateStateFrom(suite.context, suite.toolID, models.ToolStateAvailable, models.ToolStateLoaned)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func (suite *ToolRepoTestSuite) TestCreate_DuplicateSerialRejected() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tools WHERE serial_number = \$1`).
		WithArgs("SN-001").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	err := suite.repo.Create(suite.context, &models.Tool{
		ID:           suite.toolID,
		Name:         "Impact Drill",
		SerialNumber: "SN-001",
	})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "already exists")
}

func (suite *ToolRepoTestSuite) TestCreate_Success() {
	tool := &models.Tool{
		ID:              suite.toolID,
		WarehouseID:     uuid.New(),
		Name:            "Impact Drill",
		SerialNumber:    "SN-001",
		AcquisitionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		State:           models.ToolStateAvailable,
	}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tools WHERE serial_number = \$1`).
		WithArgs(tool.SerialNumber).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	suite.mock.ExpectExec(`INSERT INTO tools`).
		WithArgs(tool.ID, tool.WarehouseID, tool.Name, tool.SerialNumber, tool.Description, tool.PhotoKey, tool.AcquisitionDate, tool.State).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, tool)

	assert.NoError(suite.T(), err)
}

func (suite *ToolRepoTestSuite) TestGetByID_Success() {
	now := time.Now()
	warehouseID := uuid.New()

	suite.mock.ExpectQuery(`SELECT id, warehouse_id, name, serial_number`).
		WithArgs(suite.toolID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "warehouse_id", "name", "serial_number", "description", "photo_key", "acquisition_date", "state", "created_at", "updated_at",
		}).AddRow(suite.toolID, warehouseID, "Impact Drill", "SN-001", (*string)(nil), (*string)(nil), now, models.ToolStateAvailable, now, now))

	tool, err := suite.repo.GetByID(suite.context, suite.toolID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Impact Drill", tool.Name)
	assert.Equal(suite.T(), models.ToolStateAvailable, tool.State)
}

func (suite *ToolRepoTestSuite) TestBranchID_ResolvesThroughWarehouse() {
	branchID := uuid.New()

	suite.mock.ExpectQuery(`SELECT w\.branch_id`).
		WithArgs(suite.toolID).
		WillReturnRows(pgxmock.NewRows([]string{"branch_id"}).AddRow(branchID))

	got, err := suite.repo.BranchID(suite.context, suite.toolID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), branchID, got)
}

func (suite *ToolRepoTestSuite) TestListBlockingByBranch() {
	branchID := uuid.New()
	blockedID := uuid.New()

	suite.mock.ExpectQuery(`SELECT t\.id, t\.name, t\.serial_number, t\.state`).
		WithArgs(branchID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "serial_number", "state"}).
			AddRow(blockedID, "Impact Drill", "SN-001", models.ToolStateLoaned))

	refs, err := suite.repo.ListBlockingByBranch(suite.context, branchID)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), refs, 1)
	assert.Equal(suite.T(), blockedID, refs[0].ID)
	assert.Equal(suite.T(), models.ToolStateLoaned, refs[0].State)
}

func (suite *ToolRepoTestSuite) TestDeactivateByWarehouse() {
	warehouseID := uuid.New()

	suite.mock.ExpectExec(`UPDATE tools`).
		WithArgs(warehouseID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := suite.repo.DeactivateByWarehouse(suite.context, warehouseID)

	assert.NoError(suite.T(), err)
}
