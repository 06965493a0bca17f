package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"malpot/internal/platform/postgres"
	"malpot/internal/users/models"
	id "malpot/pkg/domain"
	"malpot/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(user.ID), user.Name, user.Email, user.Phone, user.Role, user.CreatedAt)
	return postgres.Classify(err, "insert user")
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		u   models.User
		uid uuid.UUID
	)
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, created_at
		FROM users WHERE id = $1
	`, uuid.UUID(userID)).Scan(&uid, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, postgres.Classify(err, "find user")
	}
	u.ID = id.UserID(uid)
	return &u, nil
}
