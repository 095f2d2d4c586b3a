package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/mdsetiawan/facility-directory/internal/domain/entities"
	"github.com/mdsetiawan/facility-directory/internal/domain/repositories"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/mdsetiawan/facility-directory/pkg/errors"
)

// UserAdapter implements the UserRepository interface
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new user
func (a *UserAdapter) Create(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"photo":         nullString(user.Photo),
		"role":          string(user.Role),
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("user with email %q already exists", user.Email))
		}
		return apperrors.NewInternalError("failed to create user", err)
	}

	return nil
}

var userColumns = []interface{}{
	"id", "username", "email", "password_hash", "photo", "role",
	"created_at", "updated_at",
}

func scanUser(row rowScanner) (*entities.User, error) {
	user := &entities.User{}
	var photo sql.NullString
	var role string

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&photo,
		&role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if photo.Valid {
		value := photo.String
		user.Photo = &value
	}
	user.Role = entities.Role(role)

	return user, nil
}

// GetByID retrieves a user by ID
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"id": id}, fmt.Sprintf("user with id %s not found", id))
}

// GetByEmail retrieves a user by email
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return a.getOne(ctx, goqu.Ex{"email": email}, fmt.Sprintf("user with email %q not found", email))
}

func (a *UserAdapter) getOne(ctx context.Context, where goqu.Ex, notFoundMsg string) (*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Where(where).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	user, err := scanUser(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(notFoundMsg)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return user, nil
}

// Update updates a user
func (a *UserAdapter) Update(ctx context.Context, user *entities.User) error {
	record := goqu.Record{
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"photo":         nullString(user.Photo),
		"role":          string(user.Role),
		"updated_at":    user.UpdatedAt,
	}

	query, args, err := a.db.Update("users").
		Set(record).
		Where(goqu.Ex{"id": user.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf("user with email %q already exists", user.Email))
		}
		return apperrors.NewInternalError("failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check update result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", user.ID))
	}

	return nil
}

// Delete deletes a user
func (a *UserAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("users").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to check delete result", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("user with id %s not found", id))
	}

	return nil
}

// List retrieves all users ordered by username
func (a *UserAdapter) List(ctx context.Context) ([]*entities.User, error) {
	query, args, err := a.db.Select(userColumns...).
		From("users").
		Order(goqu.I("username").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read users", err)
	}

	return users, nil
}
