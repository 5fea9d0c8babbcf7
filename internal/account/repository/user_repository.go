package repository

import (
	"context"
	"database/sql"
	"fmt"

	"foodhub/internal/domain"
	"foodhub/internal/errors"
	"foodhub/internal/infrastructure/mysql"
)

type MySQLUserRepository struct {
	db *sql.DB
}

func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

func (r *MySQLUserRepository) Insert(ctx context.Context, exec mysql.Execer, user domain.User) error {
	query := `
		INSERT INTO Users (id, name, email, passwordHash, role, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := exec.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
	if mysql.IsDuplicateKey(err) {
		return errors.NewConflictError("email is already registered")
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func (r *MySQLUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, passwordHash, role, createdAt
		FROM Users
		WHERE email = ?
	`

	var (
		user domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	user.Role = domain.Role(role)
	return &user, nil
}
