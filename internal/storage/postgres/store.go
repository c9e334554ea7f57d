package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GovarthanahariN/CartProjectBE/internal/models"
	"github.com/GovarthanahariN/CartProjectBE/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for carts and users.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects, pings and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases database resources.
func (s *Store) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS carts (
			id TEXT PRIMARY KEY,
			cart_id TEXT UNIQUE NOT NULL,
			status TEXT NOT NULL DEFAULT 'available'
				CHECK (status IN ('available', 'in-use', 'maintenance')),
			battery_level INTEGER NOT NULL DEFAULT 100
				CHECK (battery_level BETWEEN 0 AND 100),
			last_maintenance TIMESTAMPTZ,
			location_row TEXT NOT NULL,
			location_position INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS carts_status_idx ON carts (status);`,
		`CREATE INDEX IF NOT EXISTS carts_location_row_idx ON carts (location_row);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			mobilenum TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			otp TEXT,
			otp_expires_at TIMESTAMPTZ
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const cartColumns = `id, cart_id, status, battery_level, last_maintenance, location_row, location_position, created_at, updated_at`

// ListCarts returns carts matching every non-empty filter field.
func (s *Store) ListCarts(ctx context.Context, filter storage.CartFilter) ([]models.Cart, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Row != "" {
		args = append(args, filter.Row)
		where = append(where, fmt.Sprintf("location_row = $%d", len(args)))
	}
	query := `SELECT ` + cartColumns + ` FROM carts`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, cart_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	defer rows.Close()

	carts := []models.Cart{}
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, err
		}
		carts = append(carts, cart)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	return carts, nil
}

// FindCartByID fetches a cart by its primary key.
func (s *Store) FindCartByID(ctx context.Context, id string) (models.Cart, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id)
	return scanCart(row)
}

// InsertCarts inserts every cart in one transaction.
func (s *Store) InsertCarts(ctx context.Context, carts []models.Cart) ([]models.Cart, error) {
	const query = `
		INSERT INTO carts (id, cart_id, status, battery_level, last_maintenance, location_row, location_position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + cartColumns

	created := make([]models.Cart, 0, len(carts))
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, c := range carts {
			row := tx.QueryRow(ctx, query,
				uuid.NewString(), c.CartID, string(c.Status), c.BatteryLevel, c.LastMaintenance,
				c.Location.Row, c.Location.Position, c.CreatedAt, c.UpdatedAt)
			cart, err := scanCart(row)
			if err != nil {
				return err
			}
			created = append(created, cart)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, storage.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert carts: %w", err)
	}
	return created, nil
}

// UpdateCart applies update and returns the stored row.
func (s *Store) UpdateCart(ctx context.Context, id string, update storage.CartUpdate) (models.Cart, error) {
	const query = `
		UPDATE carts SET
			status = COALESCE($2, status),
			battery_level = COALESCE($3, battery_level),
			updated_at = $4
		WHERE id = $1
		RETURNING ` + cartColumns

	var status *string
	if update.Status != nil {
		v := string(*update.Status)
		status = &v
	}
	row := s.pool.QueryRow(ctx, query, id, status, update.BatteryLevel, update.UpdatedAt)
	return scanCart(row)
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (id, username, mobilenum, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, mobilenum, password, otp, otp_expires_at`
	row := s.pool.QueryRow(ctx, query, uuid.NewString(), user.Username, user.Mobile, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByMobile fetches a user by canonical mobile number.
func (s *Store) FindByMobile(ctx context.Context, mobile string) (models.User, error) {
	const query = `SELECT id, username, mobilenum, password, otp, otp_expires_at FROM users WHERE mobilenum = $1`
	return scanUser(s.pool.QueryRow(ctx, query, mobile))
}

// UpdatePassword overwrites the stored hash and returns the updated user.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string) (models.User, error) {
	const query = `
		UPDATE users SET password = $2 WHERE id = $1
		RETURNING id, username, mobilenum, password, otp, otp_expires_at`
	return scanUser(s.pool.QueryRow(ctx, query, id, passwordHash))
}

func scanCart(row pgx.Row) (models.Cart, error) {
	var (
		cart   models.Cart
		status string
	)
	err := row.Scan(&cart.ID, &cart.CartID, &status, &cart.BatteryLevel, &cart.LastMaintenance,
		&cart.Location.Row, &cart.Location.Position, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Cart{}, storage.ErrNotFound
		}
		return models.Cart{}, err
	}
	cart.Status = models.CartStatus(status)
	return cart, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user models.User
		otp  *string
	)
	if err := row.Scan(&user.ID, &user.Username, &user.Mobile, &user.PasswordHash, &otp, &user.OTPExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	if otp != nil {
		user.OTP = *otp
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
