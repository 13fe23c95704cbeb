package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/utils"
)

// UserRecord mirrors the 'users' table.  PasswordHash never leaves the
// repository layer except to be verified.
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	Role         model.Role
	IsActive     bool
	CreatedAt    time.Time
}

// User returns the public view of the record.
func (u UserRecord) User() model.User {
	return model.User{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrUserNotFound = errors.New("user not found")
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserRepo reads and writes operator accounts in MySQL.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes password and inserts the user.  It returns the new record.
func (r *UserRepo) Create(ctx context.Context, email, password string, role model.Role, cost int) (UserRecord, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return UserRecord{}, err
	}
	u := UserRecord{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, role, is_active, created_at) VALUES (?,?,?,?,?,?)",
		u.ID, u.Email, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return UserRecord{}, ErrEmailExists
		}
		return UserRecord{}, err
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	var (
		u    UserRecord
		role string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,is_active,created_at FROM users WHERE email=? LIMIT 1",
		normalizeEmail(email)).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, ErrUserNotFound
	}
	u.Role = model.Role(role)
	return u, err
}

// MemoryUsers is an in-process user directory for the memory and bolt
// storage drivers.  It is safe for concurrent use.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]UserRecord
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: map[string]UserRecord{}}
}

// Create mirrors UserRepo.Create.
func (m *MemoryUsers) Create(_ context.Context, email, password string, role model.Role, cost int) (UserRecord, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return UserRecord{}, err
	}
	email = normalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return UserRecord{}, ErrEmailExists
	}
	u := UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[email] = u
	return u, nil
}

// GetByEmail mirrors UserRepo.GetByEmail.
func (m *MemoryUsers) GetByEmail(_ context.Context, email string) (UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[normalizeEmail(email)]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return u, nil
}
