package repositories

import (
	"context"
	"fmt"

	"toolcare/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByCPF(ctx context.Context, cpf string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	GetBranchIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	SetBranches(ctx context.Context, userID uuid.UUID, branchIDs []uuid.UUID) error
	RemoveBranchAssociations(ctx context.Context, branchID uuid.UUID) error
}

type userRepo struct {
	db Database
}

func NewUserRepository(db Database) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	// CPF is unique across users and employees.
	var count int
	cpfCheck := `
		SELECT (SELECT COUNT(*) FROM users WHERE cpf = $1)
		     + (SELECT COUNT(*) FROM employees WHERE cpf = $1)
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, cpfCheck, user.CPF).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check CPF uniqueness: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("CPF '%s' is already registered", user.CPF)
	}

	query := `
		INSERT INTO users (id, name, cpf, password_hash, role, photo_key, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err = dbFrom(ctx, r.db).Exec(ctx, query, user.ID, user.Name, user.CPF, user.PasswordHash, user.Role, user.PhotoKey, user.Active)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, cpf, password_hash, role, photo_key, active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, id).Scan(&user.ID, &user.Name, &user.CPF, &user.PasswordHash, &user.Role, &user.PhotoKey, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, cpf, password_hash, role, photo_key, active, created_at, updated_at
		FROM users
		WHERE cpf = $1
	`
	err := dbFrom(ctx, r.db).QueryRow(ctx, query, cpf).Scan(&user.ID, &user.Name, &user.CPF, &user.PasswordHash, &user.Role, &user.PhotoKey, &user.Active, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, role = $2, photo_key = $3, password_hash = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, user.Name, user.Role, user.PhotoKey, user.PasswordHash, user.ID)
	return err
}

func (r *userRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, active, id)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, id)
	return err
}

func (r *userRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT id, name, cpf, password_hash, role, photo_key, active, created_at, updated_at
		FROM users
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.CPF, &user.PasswordHash, &user.Role, &user.PhotoKey, &user.Active, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) GetBranchIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT branch_id FROM user_branches WHERE user_id = $1`
	rows, err := dbFrom(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branchIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		branchIDs = append(branchIDs, id)
	}
	return branchIDs, rows.Err()
}

func (r *userRepo) SetBranches(ctx context.Context, userID uuid.UUID, branchIDs []uuid.UUID) error {
	deleteQuery := `DELETE FROM user_branches WHERE user_id = $1`
	if _, err := dbFrom(ctx, r.db).Exec(ctx, deleteQuery, userID); err != nil {
		return err
	}

	insertQuery := `INSERT INTO user_branches (user_id, branch_id) VALUES ($1, $2)`
	for _, branchID := range branchIDs {
		if _, err := dbFrom(ctx, r.db).Exec(ctx, insertQuery, userID, branchID); err != nil {
			return err
		}
	}
	return nil
}

func (r *userRepo) RemoveBranchAssociations(ctx context.Context, branchID uuid.UUID) error {
	query := `DELETE FROM user_branches WHERE branch_id = $1`
	_, err := dbFrom(ctx, r.db).Exec(ctx, query, branchID)
	return err
}
