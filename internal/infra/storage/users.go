package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/duskfall-games/salem/server/internal/auth"
)

var (
	// ErrBanned refuses a banned account at the door.
	ErrBanned = errors.New("user is banned")
	// ErrBadCredentials refuses a known name with the wrong password.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrNotFound reports a missing user row.
	ErrNotFound = errors.New("user not found")
)

// User is one account row. Setups holds the saved setup blobs by slot.
type User struct {
	ID         int64                   `json:"id"`
	Name       string                  `json:"name"`
	Permission int                     `json:"permission"`
	Banned     bool                    `json:"banned"`
	Since      time.Time               `json:"since"`
	Setups     map[int]json.RawMessage `json:"setups"`
}

// UsersRepo reads and writes the users table.
type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

// Authenticate verifies name/password against the users table. Unknown
// names are registered on the spot; banned accounts are refused no matter
// what they present.
func (r *UsersRepo) Authenticate(ctx context.Context, name, password string) error {
	var hash string
	var banned bool
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash, banned FROM users WHERE name = ?`, name,
	).Scan(&hash, &banned)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return r.register(ctx, name, password)
	case err != nil:
		return fmt.Errorf("failed to look up user %s: %w", name, err)
	}
	if banned {
		return ErrBanned
	}
	if !auth.CheckPassword(hash, password) {
		return ErrBadCredentials
	}
	return nil
}

func (r *UsersRepo) register(ctx context.Context, name, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password for %s: %w", name, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (name, password_hash, since) VALUES (?, ?, ?)`,
		name, hash, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to register user %s: %w", name, err)
	}
	return nil
}

// SaveSetup stores a validated setup blob in one of the user's ten slots.
func (r *UsersRepo) SaveSetup(name string, slot int, setup []byte) error {
	if slot < 1 || slot > 10 {
		return fmt.Errorf("setup slot %d out of range", slot)
	}
	column := fmt.Sprintf("setup_%d", slot)
	_, err := r.db.Exec(
		`UPDATE users SET `+column+` = ? WHERE name = ?`,
		string(setup), name,
	)
	if err != nil {
		return fmt.Errorf("failed to save setup for %s: %w", name, err)
	}
	return nil
}

// GetUser returns one account row with its saved setups.
func (r *UsersRepo) GetUser(ctx context.Context, name string) (User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, permission, banned, since,
		        setup_1, setup_2, setup_3, setup_4, setup_5,
		        setup_6, setup_7, setup_8, setup_9, setup_10
		 FROM users WHERE name = ?`, name)

	var u User
	slots := make([]sql.NullString, 10)
	err := row.Scan(
		&u.ID, &u.Name, &u.Permission, &u.Banned, &u.Since,
		&slots[0], &slots[1], &slots[2], &slots[3], &slots[4],
		&slots[5], &slots[6], &slots[7], &slots[8], &slots[9],
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return User{}, ErrNotFound
	case err != nil:
		return User{}, fmt.Errorf("failed to read user %s: %w", name, err)
	}

	u.Setups = make(map[int]json.RawMessage)
	for i, s := range slots {
		if s.Valid {
			u.Setups[i+1] = json.RawMessage(s.String)
		}
	}
	return u, nil
}
