package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, full_name, password_hash, google_id, profile_image)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, created_at, updated_at
	`, u.Username, u.FullName, u.PasswordHash, u.GoogleID, u.ProfileImage)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, `username = $1`, username)
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	return r.getBy(ctx, `google_id = $1`, googleID)
}

func (r *UserRepository) getBy(ctx context.Context, cond string, arg any) (*entity.User, error) {
	u := &entity.User{}
	var passwordHash, googleID, profileImage *string

	row := r.pool.QueryRow(ctx, `
		SELECT id, username, full_name, password_hash, google_id, profile_image, created_at, updated_at
		FROM users
		WHERE `+cond, arg)

	if err := row.Scan(&u.ID, &u.Username, &u.FullName, &passwordHash, &googleID,
		&profileImage, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if googleID != nil {
		u.GoogleID = *googleID
	}
	if profileImage != nil {
		u.ProfileImage = *profileImage
	}
	return u, nil
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, username, image string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET profile_image = $1, updated_at = now()
		WHERE username = $2
	`, image, username)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
