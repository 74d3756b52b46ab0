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

type EmployeeServiceTestSuite struct {
	suite.Suite
	mockEmployeeRepo *MockEmployeeRepository
	mockLoanRepo     *MockLoanRepository
	mockAuditSvc     *MockAuditService
	tx               *recordingTx
	service          EmployeeService
	branchID         uuid.UUID
	scope            auth.AccessScope
}

func (suite *EmployeeServiceTestSuite) SetupTest() {
	suite.mockEmployeeRepo = &MockEmployeeRepository{}
	suite.mockLoanRepo = &MockLoanRepository{}
	suite.mockAuditSvc = &MockAuditService{}
	suite.tx = &recordingTx{}
	suite.service = NewEmployeeService(suite.mockEmployeeRepo, suite.mockLoanRepo, suite.tx, suite.mockAuditSvc)
	suite.branchID = uuid.New()
	suite.scope = auth.GlobalScope(models.RoleMaximo)
}

func (suite *EmployeeServiceTestSuite) TearDownTest() {
	suite.mockEmployeeRepo.AssertExpectations(suite.T())
	suite.mockLoanRepo.AssertExpectations(suite.T())
	suite.mockAuditSvc.AssertExpectations(suite.T())
}

func TestEmployeeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(EmployeeServiceTestSuite))
}

func (suite *EmployeeServiceTestSuite) TestCreate_Success() {
	suite.mockEmployeeRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Employee")).Return(nil).Once()
	suite.mockEmployeeRepo.On("SetBranches", mock.Anything, mock.AnythingOfType("uuid.UUID"), []uuid.UUID{suite.branchID}).Return(nil).Once()

	employee, err := suite.service.Create(context.Background(), suite.scope, &CreateEmployeeRequest{
		Name:      "Maria Silva",
		Badge:     "4521",
		CPF:       "529.982.247-25",
		BranchIDs: []uuid.UUID{suite.branchID},
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "52998224725", employee.CPF)
	assert.True(suite.T(), employee.Active)
	assert.Equal(suite.T(), 1, suite.tx.calls)
}

func (suite *EmployeeServiceTestSuite) TestCreate_BranchWriteFailureAbortsTx() {
	suite.mockEmployeeRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Employee")).Return(nil).Once()
	suite.mockEmployeeRepo.On("SetBranches", mock.Anything, mock.AnythingOfType("uuid.UUID"), []uuid.UUID{suite.branchID}).Return(assert.AnError).Once()

	employee, err := suite.service.Create(context.Background(), suite.scope, &CreateEmployeeRequest{
		Name:      "Maria Silva",
		Badge:     "4521",
		CPF:       "529.982.247-25",
		BranchIDs: []uuid.UUID{suite.branchID},
	})

	assert.Nil(suite.T(), employee)
	assert.ErrorIs(suite.T(), err, assert.AnError)
	// Both writes ran inside the one transaction, so the failed branch
	// write takes the employee row down with it.
	assert.Equal(suite.T(), 1, suite.tx.calls)
}

func (suite *EmployeeServiceTestSuite) TestCreate_InvalidCPF() {
	employee, err := suite.service.Create(context.Background(), suite.scope, &CreateEmployeeRequest{
		Name:      "Maria Silva",
		Badge:     "4521",
		CPF:       "111.111.111-11",
		BranchIDs: []uuid.UUID{suite.branchID},
	})

	assert.Nil(suite.T(), employee)
	assert.Error(suite.T(), err)
	_, ok := common.AsValidationError(err)
	assert.True(suite.T(), ok)
}

func (suite *EmployeeServiceTestSuite) TestCreate_NonDigitBadge() {
	employee, err := suite.service.Create(context.Background(), suite.scope, &CreateEmployeeRequest{
		Name:      "Maria Silva",
		Badge:     "AB-12",
		CPF:       "529.982.247-25",
		BranchIDs: []uuid.UUID{suite.branchID},
	})

	assert.Nil(suite.T(), employee)
	assert.Error(suite.T(), err)
}

func (suite *EmployeeServiceTestSuite) TestCreate_RequiresBranch() {
	employee, err := suite.service.Create(context.Background(), suite.scope, &CreateEmployeeRequest{
		Name:  "Maria Silva",
		Badge: "4521",
		CPF:   "529.982.247-25",
	})

	assert.Nil(suite.T(), employee)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "at least one branch")
}

func (suite *EmployeeServiceTestSuite) TestCreate_BranchOutsideScope() {
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{uuid.New()})

	employee, err := suite.service.Create(context.Background(), restricted, &CreateEmployeeRequest{
		Name:      "Maria Silva",
		Badge:     "4521",
		CPF:       "529.982.247-25",
		BranchIDs: []uuid.UUID{suite.branchID},
	})

	assert.Nil(suite.T(), employee)
	assert.ErrorIs(suite.T(), err, common.ErrOutOfScope)
}

func (suite *EmployeeServiceTestSuite) TestDeactivate_BlockedByOpenLoans() {
	employee := &models.Employee{
		ID:     uuid.New(),
		Name:   "Maria Silva",
		Badge:  "4521",
		Active: true,
	}

	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockLoanRepo.On("CountActiveByEmployee", mock.Anything, employee.ID).Return(2, nil).Once()

	err := suite.service.Deactivate(context.Background(), suite.scope, employee.ID)

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "holds 2 open loan(s)")
	suite.mockEmployeeRepo.AssertNotCalled(suite.T(), "SetActive", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EmployeeServiceTestSuite) TestDeactivate_Success() {
	employee := &models.Employee{
		ID:     uuid.New(),
		Name:   "Maria Silva",
		Badge:  "4521",
		Active: true,
	}

	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()
	suite.mockLoanRepo.On("CountActiveByEmployee", mock.Anything, employee.ID).Return(0, nil).Once()
	suite.mockEmployeeRepo.On("SetActive", mock.Anything, employee.ID, false).Return(nil).Once()
	suite.mockAuditSvc.On("Record", mock.Anything, "employee", employee.ID.String(), models.ActionEmployeeDeactivated, mock.Anything).Once()

	err := suite.service.Deactivate(context.Background(), suite.scope, employee.ID)

	assert.NoError(suite.T(), err)
}

func (suite *EmployeeServiceTestSuite) TestGetByID_OutOfScope() {
	employee := &models.Employee{
		ID:        uuid.New(),
		Name:      "Maria Silva",
		Badge:     "4521",
		Active:    true,
		BranchIDs: []uuid.UUID{uuid.New()},
	}
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{uuid.New()})

	suite.mockEmployeeRepo.On("GetByID", mock.Anything, employee.ID).Return(employee, nil).Once()

	got, err := suite.service.GetByID(context.Background(), restricted, employee.ID)

	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, common.ErrOutOfScope)
}

func (suite *EmployeeServiceTestSuite) TestList_FiltersByScope() {
	visible := &models.Employee{ID: uuid.New(), BranchIDs: []uuid.UUID{suite.branchID}}
	hidden := &models.Employee{ID: uuid.New(), BranchIDs: []uuid.UUID{uuid.New()}}
	restricted := auth.BranchScope(models.RoleCoordenador, []uuid.UUID{suite.branchID})

	suite.mockEmployeeRepo.On("List", mock.Anything, 50, 0).Return([]*models.Employee{visible, hidden}, nil).Once()

	employees, err := suite.service.List(context.Background(), restricted, 0, 0)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), employees, 1)
	assert.Equal(suite.T(), visible.ID, employees[0].ID)
}

func (suite *EmployeeServiceTestSuite) TestSetBranches_Empty() {
	err := suite.service.SetBranches(context.Background(), suite.scope, uuid.New(), nil)

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "at least one branch")
}
