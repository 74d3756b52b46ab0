package services

import (
	"context"
	"testing"
	"time"

	"toolcare/internal/auth"
	"toolcare/internal/common"
	"toolcare/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LoanServiceTestSuite struct {
	suite.Suite
	mockLoanRepo     *MockLoanRepository
	mockToolRepo     *MockToolRepository
	mockEmployeeRepo *MockEmployeeRepository
	mockCacheSvc     *MockCacheService
	mockAuditSvc     *MockAuditService
	service          LoanService
	branchID         uuid.UUID
	scope            auth.AccessScope
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = &MockLoanRepository{}
	suite.mockToolRepo = &MockToolRepository{}
	suite.mockEmployeeRepo = &MockEmployeeRepository{}
	suite.mockCacheSvc = &MockCacheService{}
	suite.mockAuditSvc = &MockAuditService{}
	suite.service = NewLoanService(suite.mockLoanRepo, suite.mockToolRepo, suite.mockEmployeeRepo, passthroughTx{}, suite.mockCacheSvc, suite.mockAuditSvc)
	suite.branchID = uuid.New()
	suite.scope = auth.GlobalScope(models.RoleMaximo)
}

func (suite *LoanServiceTestSuite) TearDownTest() {
	suite.mockLoanRepo.AssertExpectations(suite.T())
	suite.mockToolRepo.AssertExpectations(suite.T())
	suite.mockEmployeeRepo.AssertExpectations(suite.T())
	suite.mockCacheSvc.AssertExpectations(suite.T())
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}

func (suite *LoanServiceTestSuite) availableTool() *models.Tool {
	return &models.Tool{
		ID:           uuid.New(),
		Name:         "Impact Drill",
		SerialNumber: "SN-001",
		State:        models.ToolStateAvailable,
	}
}

func (suite *LoanServiceTestSuite) activeEmployee(branchIDs ...uuid.UUID) *models.Employee {
	return &models.Employee{
		ID:        uuid.New(),
		Name:      "Maria Silva",
		Badge:     "4521",
		Active:    true,
		BranchIDs: append([]uuid.UUID{}, branchIDs...),
	}
}

func (suite *LoanServiceTestSuite) TestOpen_Success() {
	tool := suite.availableTool()
	employee := suite.activeEmployee(suite.branchID)

	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()
	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockEmployeeRepo.On("GetBranchIDs", mock.Anything, employee.ID).Return([]uuid.UUID{suite.branchID}, nil).Once()
	suite.mockToolRepo.On("UpdateStateFrom", mock.Anything, tool.ID, models.ToolStateAvailable, models.ToolStateLoaned).Return(true, nil).Once()
	suite.mockLoanRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Loan")).Return(nil).Once()
	suite.mockLoanRepo.On("SetName", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("string")).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "loan", mock.AnythingOfType("string"), models.ActionLoanOpened, mock.Anything).Once()
	suite.mockCacheSvc.On("DeleteTool", mock.Anything, tool.ID).Return(nil).Once()

	loan, err := suite.service.Open(context.Background(), suite.scope, &OpenLoanRequest{
		ToolID:     tool.ID,
		EmployeeID: employee.ID,
		StartDate:  time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), loan)
	assert.True(suite.T(), loan.Active)
	assert.NotNil(suite.T(), loan.Name)
	assert.Contains(suite.T(), *loan.Name, "EMP-")
	assert.Equal(suite.T(), tool.ID, *loan.ToolID)
	assert.Equal(suite.T(), employee.ID, *loan.EmployeeID)
}

func (suite *LoanServiceTestSuite) TestOpen_ToolNotAvailable() {
	tool := suite.availableTool()
	tool.State = models.ToolStateInMaintenance

	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()

	loan, err := suite.service.Open(context.Background(), suite.scope, &OpenLoanRequest{
		ToolID:     tool.ID,
		EmployeeID: uuid.New(),
	})

	assert.Nil(suite.T(), loan)
	assert.Error(suite.T(), err)
	_, ok := common.AsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Contains(suite.T(), err.Error(), "cannot be loaned")
}

func (suite *LoanServiceTestSuite) TestOpen_ConcurrentOpenLoses() {
	tool := suite.availableTool()
	employee := suite.activeEmployee(suite.branchID)

	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()
	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockEmployeeRepo.On("GetBranchIDs", mock.Anything, employee.ID).Return([]uuid.UUID{suite.branchID}, nil).Once()
	// Another open won the guarded update between the read and the write.
	suite.mockToolRepo.On("UpdateStateFrom", mock.Anything, tool.ID, models.ToolStateAvailable, models.ToolStateLoaned).Return(false, nil).Once()

	loan, err := suite.service.Open(context.Background(), suite.scope, &OpenLoanRequest{
		ToolID:     tool.ID,
		EmployeeID: employee.ID,
	})

	assert.Nil(suite.T(), loan)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "no longer available")
}

func (suite *LoanServiceTestSuite) TestOpen_EmployeeOutsideToolBranch() {
	tool := suite.availableTool()
	otherBranch := uuid.New()
	employee := suite.activeEmployee(otherBranch)

	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()
	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockEmployeeRepo.On("GetBranchIDs", mock.Anything, employee.ID).Return([]uuid.UUID{otherBranch}, nil).Once()

	loan, err := suite.service.Open(context.Background(), suite.scope, &OpenLoanRequest{
		ToolID:     tool.ID,
		EmployeeID: employee.ID,
	})

	assert.Nil(suite.T(), loan)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "does not belong to the branch")
}

func (suite *LoanServiceTestSuite) TestOpen_InactiveEmployee() {
	tool := suite.availableTool()
	employee := suite.activeEmployee(suite.branchID)
	employee.Active = false

	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()
	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()

	loan, err := suite.service.Open(context.Background(), suite.scope, &OpenLoanRequest{
		ToolID:     tool.ID,
		EmployeeID: employee.ID,
	})

	assert.Nil(suite.T(), loan)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "inactive")
}

func (suite *LoanServiceTestSuite) TestOpen_OutOfScope() {
	tool := suite.availableTool()
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{uuid.New()})

	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()

	loan, err := suite.service.Open(context.Background(), restricted, &OpenLoanRequest{
		ToolID:     tool.ID,
		EmployeeID: uuid.New(),
	})

	assert.Nil(suite.T(), loan)
	assert.ErrorIs(suite.T(), err, common.ErrOutOfScope)
}

func (suite *LoanServiceTestSuite) TestClose_SnapshotsToolAndEmployee() {
	tool := suite.availableTool()
	tool.State = models.ToolStateLoaned
	employee := suite.activeEmployee(suite.branchID)
	loanID := uuid.New()
	name := "EMP-1a2b3c4d"
	loan := &models.Loan{
		ID:         loanID,
		Name:       &name,
		ToolID:     &tool.ID,
		EmployeeID: &employee.ID,
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, tool.ID).Return(suite.branchID, nil).Once()
	suite.mockToolRepo.On("GetByID", mock.Anything, tool.ID).Return(tool, nil).Once()
	suite.mockToolRepo.On("UpdateStateFrom", mock.Anything, tool.ID, models.ToolStateLoaned, models.ToolStateAvailable).Return(true, nil).Once()
	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockLoanRepo.On("Close", mock.Anything, loan).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "loan", loanID.String(), models.ActionLoanClosed, mock.Anything).Once()
	suite.mockCacheSvc.On("DeleteTool", mock.Anything, tool.ID).Return(nil).Once()

	closed, err := suite.service.Close(context.Background(), suite.scope, loanID, &CloseLoanRequest{
		EndDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), closed.Active)
	assert.Nil(suite.T(), closed.ToolID)
	assert.Nil(suite.T(), closed.EmployeeID)
	assert.Equal(suite.T(), "Impact Drill", *closed.ToolName)
	assert.Equal(suite.T(), "SN-001", *closed.ToolSerial)
	assert.Equal(suite.T(), "Maria Silva", *closed.EmployeeName)
	assert.Equal(suite.T(), "4521", *closed.EmployeeBadge)
}

func (suite *LoanServiceTestSuite) TestClose_AlreadyClosed() {
	loanID := uuid.New()
	name := "EMP-1a2b3c4d"
	loan := &models.Loan{
		ID:        loanID,
		Name:      &name,
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:    false,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()

	closed, err := suite.service.Close(context.Background(), suite.scope, loanID, &CloseLoanRequest{
		EndDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.Nil(suite.T(), closed)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "already closed and cannot be reopened")
}

func (suite *LoanServiceTestSuite) TestClose_EndDateBeforeStart() {
	loanID := uuid.New()
	toolID := uuid.New()
	loan := &models.Loan{
		ID:        loanID,
		ToolID:    &toolID,
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Active:    true,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()

	closed, err := suite.service.Close(context.Background(), suite.scope, loanID, &CloseLoanRequest{
		EndDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	})

	assert.Nil(suite.T(), closed)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "before start date")
}

func (suite *LoanServiceTestSuite) TestClose_ToolAlreadyDeleted() {
	loanID := uuid.New()
	toolID := uuid.New()
	employee := suite.activeEmployee(suite.branchID)
	loan := &models.Loan{
		ID:         loanID,
		ToolID:     &toolID,
		EmployeeID: &employee.ID,
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()
	suite.mockToolRepo.On("BranchID", mock.Anything, toolID).Return(uuid.Nil, pgx.ErrNoRows).Once()
	suite.mockToolRepo.On("GetByID", mock.Anything, toolID).Return(nil, pgx.ErrNoRows).Once()
	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockLoanRepo.On("Close", mock.Anything, loan).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "loan", loanID.String(), models.ActionLoanClosed, mock.Anything).Once()
	suite.mockCacheSvc.On("DeleteTool", mock.Anything, toolID).Return(nil).Once()

	closed, err := suite.service.Close(context.Background(), suite.scope, loanID, &CloseLoanRequest{
		EndDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), closed.Active)
	assert.Nil(suite.T(), closed.ToolName)
	assert.Equal(suite.T(), "Maria Silva", *closed.EmployeeName)
}

func (suite *LoanServiceTestSuite) TestUpdateNotes_Success() {
	loanID := uuid.New()
	toolID := uuid.New()
	loan := &models.Loan{
		ID:     loanID,
		ToolID: &toolID,
		Active: true,
	}
	notes := "returned with worn bit"

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()
	suite.mockLoanRepo.On("UpdateNotes", mock.Anything, loanID, &notes).Return(nil).Once()

	updated, err := suite.service.UpdateNotes(context.Background(), suite.scope, loanID, &notes)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), &notes, updated.Notes)
}

func (suite *LoanServiceTestSuite) TestUpdateNotes_NilLeavesExistingNotes() {
	loanID := uuid.New()
	toolID := uuid.New()
	existing := "picked up at the counter"
	loan := &models.Loan{
		ID:     loanID,
		ToolID: &toolID,
		Notes:  &existing,
		Active: true,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()

	updated, err := suite.service.UpdateNotes(context.Background(), suite.scope, loanID, nil)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), &existing, updated.Notes)
	suite.mockLoanRepo.AssertNotCalled(suite.T(), "UpdateNotes", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestGetByID_NotFound() {
	loanID := uuid.New()

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(nil, pgx.ErrNoRows).Once()

	loan, err := suite.service.GetByID(context.Background(), suite.scope, loanID)

	assert.Nil(suite.T(), loan)
	assert.ErrorIs(suite.T(), err, common.ErrLoanNotFound)
}

func (suite *LoanServiceTestSuite) TestList_BranchScopeFansOut() {
	branchA := uuid.New()
	branchB := uuid.New()
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{branchA, branchB})

	loanA := &models.Loan{ID: uuid.New()}
	loanB := &models.Loan{ID: uuid.New()}

	suite.mockLoanRepo.On("List", mock.Anything, mock.MatchedBy(func(f *models.LoanSearchFilter) bool {
		return f.BranchID != nil && *f.BranchID == branchA
	})).Return([]*models.Loan{loanA}, nil).Once()
	suite.mockLoanRepo.On("List", mock.Anything, mock.MatchedBy(func(f *models.LoanSearchFilter) bool {
		return f.BranchID != nil && *f.BranchID == branchB
	})).Return([]*models.Loan{loanB}, nil).Once()

	loans, err := suite.service.List(context.Background(), restricted, &models.LoanSearchFilter{})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), loans, 2)
}

func (suite *LoanServiceTestSuite) TestList_ExplicitBranchOutsideScope() {
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{uuid.New()})
	other := uuid.New()

	loans, err := suite.service.List(context.Background(), restricted, &models.LoanSearchFilter{BranchID: &other})

	assert.Nil(suite.T(), loans)
	assert.ErrorIs(suite.T(), err, common.ErrOutOfScope)
}

func (suite *LoanServiceTestSuite) TestDelete_ReleasesToolForOpenLoan() {
	loanID := uuid.New()
	toolID := uuid.New()
	loan := &models.Loan{
		ID:     loanID,
		ToolID: &toolID,
		Active: true,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()
	suite.mockToolRepo.On("UpdateStateFrom", mock.Anything, toolID, models.ToolStateLoaned, models.ToolStateAvailable).Return(true, nil).Once()
	suite.mockLoanRepo.On("Delete", mock.Anything, loanID).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "loan", loanID.String(), models.ActionLoanDeleted, mock.Anything).Once()
	suite.mockCacheSvc.On("DeleteTool", mock.Anything, toolID).Return(nil).Once()

	err := suite.service.Delete(context.Background(), suite.scope, loanID)

	assert.NoError(suite.T(), err)
}

func (suite *LoanServiceTestSuite) TestDelete_ClosedLoanLeavesToolAlone() {
	loanID := uuid.New()
	loan := &models.Loan{
		ID:     loanID,
		Active: false,
	}

	suite.mockLoanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil).Once()
	suite.mockLoanRepo.On("Delete", mock.Anything, loanID).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "loan", loanID.String(), models.ActionLoanDeleted, mock.Anything).Once()

	err := suite.service.Delete(context.Background(), suite.scope, loanID)

	assert.NoError(suite.T(), err)
	suite.mockToolRepo.AssertNotCalled(suite.T(), "UpdateStateFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
