package services

import (
	"context"
	"errors"
	"strings"

	"toolcare/internal/auth"
	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateUserRequest struct {
	Name      string      `json:"name"`
	CPF       string      `json:"cpf"`
	Password  string      `json:"password"`
	Role      models.Role `json:"role"`
	BranchIDs []uuid.UUID `json:"branch_ids"`
}

type UpdateUserRequest struct {
	Name     *string      `json:"name,omitempty"`
	Password *string      `json:"password,omitempty"`
	Role     *models.Role `json:"role,omitempty"`
}

// UserService enforces account management rules: only MAXIMO lists
// users; COORDENADOR cannot create accounts; ADMINISTRADOR manages
// COORDENADOR accounts; everyone may read and update themselves.
type UserService interface {
	Create(ctx context.Context, scope auth.AccessScope, callerID uuid.UUID, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, scope auth.AccessScope, callerID, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, scope auth.AccessScope, callerID, id uuid.UUID, req *UpdateUserRequest) (*models.User, error)
	SetBranches(ctx context.Context, scope auth.AccessScope, id uuid.UUID, branchIDs []uuid.UUID) error
	Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error
	List(ctx context.Context, scope auth.AccessScope, limit, offset int) ([]*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	tx       repositories.Transactor
	authSvc  AuthService
}

func NewUserService(userRepo repositories.UserRepository, tx repositories.Transactor, authSvc AuthService) UserService {
	return &userService{
		userRepo: userRepo,
		tx:       tx,
		authSvc:  authSvc,
	}
}

func (s *userService) Create(ctx context.Context, scope auth.AccessScope, callerID uuid.UUID, req *CreateUserRequest) (*models.User, error) {
	if scope.Role == models.RoleCoordenador {
		return nil, common.ErrPermissionDenied
	}
	// ADMINISTRADOR may only create COORDENADOR accounts.
	if scope.Role == models.RoleAdministrador && req.Role != models.RoleCoordenador {
		return nil, common.ErrPermissionDenied
	}

	name := strings.TrimSpace(req.Name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.NewValidationError("name", "%v", err)
	}
	if !req.Role.Valid() {
		return nil, common.NewValidationError("role", "role must be MAXIMO, ADMINISTRADOR or COORDENADOR")
	}
	cpf := common.NormalizeCPF(req.CPF)
	if err := common.ValidateCPF(cpf); err != nil {
		return nil, common.NewValidationError("cpf", "%s", err.Error())
	}
	if req.Role == models.RoleCoordenador && len(req.BranchIDs) == 0 {
		return nil, common.NewValidationError("branch_ids", "COORDENADOR must be assigned to at least one branch")
	}

	passwordHash, err := s.authSvc.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		CPF:          cpf,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Active:       true,
		BranchIDs:    req.BranchIDs,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if len(req.BranchIDs) == 0 {
			return nil
		}
		return s.userRepo.SetBranches(ctx, user.ID, req.BranchIDs)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, scope auth.AccessScope, callerID, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	if !canManageUser(scope, callerID, user) {
		return nil, common.ErrPermissionDenied
	}

	branchIDs, err := s.userRepo.GetBranchIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	user.BranchIDs = branchIDs
	return user, nil
}

func (s *userService) Update(ctx context.Context, scope auth.AccessScope, callerID, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, scope, callerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := common.ValidateRequiredString(name, "name"); err != nil {
			return nil, common.NewValidationError("name", "%v", err)
		}
		user.Name = name
	}
	if req.Password != nil {
		passwordHash, err := s.authSvc.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = passwordHash
	}
	if req.Role != nil && *req.Role != user.Role {
		// Only MAXIMO changes roles.
		if !scope.IsMaximo() {
			return nil, common.ErrPermissionDenied
		}
		if !req.Role.Valid() {
			return nil, common.NewValidationError("role", "role must be MAXIMO, ADMINISTRADOR or COORDENADOR")
		}
		user.Role = *req.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SetBranches(ctx context.Context, scope auth.AccessScope, id uuid.UUID, branchIDs []uuid.UUID) error {
	if !scope.IsMaximo() && scope.Role != models.RoleAdministrador {
		return common.ErrPermissionDenied
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrUserNotFound
		}
		return err
	}
	if user.Role == models.RoleCoordenador && len(branchIDs) == 0 {
		return common.NewValidationError("branch_ids", "COORDENADOR must be assigned to at least one branch")
	}
	return s.userRepo.SetBranches(ctx, id, branchIDs)
}

func (s *userService) Deactivate(ctx context.Context, scope auth.AccessScope, id uuid.UUID) error {
	if !scope.IsMaximo() {
		return common.ErrPermissionDenied
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.ErrUserNotFound
		}
		return err
	}
	if !user.Active {
		return common.NewValidationError("active", "user '%s' is already inactive", user.Name)
	}

	if err := s.userRepo.SetActive(ctx, id, false); err != nil {
		return err
	}
	// Open sessions die with the account.
	return s.authSvc.RevokeAllForUser(ctx, id)
}

func (s *userService) List(ctx context.Context, scope auth.AccessScope, limit, offset int) ([]*models.User, error) {
	if !scope.IsMaximo() {
		return nil, common.ErrPermissionDenied
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.userRepo.List(ctx, limit, offset)
}

func canManageUser(scope auth.AccessScope, callerID uuid.UUID, target *models.User) bool {
	if scope.IsMaximo() {
		return true
	}
	if scope.Role == models.RoleAdministrador && target.Role == models.RoleCoordenador {
		return true
	}
	return callerID == target.ID
}
