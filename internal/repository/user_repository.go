package repository

import (
	"context"

	"event-ticketing/internal/model"
	apperrors "event-ticketing/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (name, phone, role)
		VALUES ($1, $2, $3)
		RETURNING id, name, phone, role, created_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.Name, user.Phone, user.Role,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, name, phone, role, created_at
		FROM users
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		var user model.User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Phone,
			&user.Role,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int) (*model.User, error) {
	query := `
		SELECT id, name, phone, role, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	query := `
		SELECT id, name, phone, role, created_at
		FROM users
		WHERE phone = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, phone).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE phone = $1)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, phone).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
