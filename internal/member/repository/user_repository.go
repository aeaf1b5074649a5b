package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"social_network_service/internal/member/domain"
)

// UserRepository definition get user identity info
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.User, error)
}

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository create a UserRepository
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, login_id, user_name, profile_image_path FROM users WHERE id = $1", id)

	var user domain.User
	err := row.Scan(&user.ID, &user.LoginID, &user.UserName, &user.ProfileImagePath)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New("no user found with given id")
		}
		return nil, err
	}

	return &user, nil
}

// FindByIDs resolves identity records for all requested ids. Missing ids
// simply do not appear in the result, callers compare cardinality.
func (r *userRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(ids))
	params := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		params = append(params, id)
	}

	queryStr := fmt.Sprintf(
		"SELECT id, login_id, user_name, profile_image_path FROM users WHERE id IN (%s)",
		strings.Join(placeholders, ","))

	rows, err := r.db.Query(ctx, queryStr, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.LoginID, &user.UserName, &user.ProfileImagePath); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
