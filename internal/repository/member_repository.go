package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/brian/tmov-booking/internal/model"
    "github.com/brian/tmov-booking/internal/utils"
)

// MemberStore resolves member identities for the booking service and
// the auth handlers. The booking service only needs GetByID; the
// auth handlers additionally create members and look them up by
// email at login.
type MemberStore interface {
    Create(ctx context.Context, email, displayName, password string, cost int) (uint64, error)
    GetByEmail(ctx context.Context, email string) (model.Member, error)
    GetByID(ctx context.Context, id uint64) (model.Member, error)
}

// MemberRepo provides access to the `members` table.
type MemberRepo struct{ DB *sql.DB }

// NewMemberRepo returns a MemberRepo bound to the given database.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// Create inserts a member and returns its ID. The password is hashed
// with bcrypt before it touches the database. Duplicate emails map
// to ErrEmailExists via the MySQL duplicate-key error code (1062).
func (r *MemberRepo) Create(ctx context.Context, email, displayName, password string, cost int) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO members (email, display_name, password_hash) VALUES (?,?,?)",
        email, displayName, hash)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrEmailExists
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var m model.Member
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,email,display_name,password_hash,created_at,updated_at FROM members WHERE email=? LIMIT 1",
        email).Scan(&m.ID, &m.Email, &m.DisplayName, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Member{}, ErrMemberNotFound
    }
    return m, err
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
    var m model.Member
    err := r.DB.QueryRowContext(ctx,
        "SELECT id,email,display_name,password_hash,created_at,updated_at FROM members WHERE id=? LIMIT 1",
        id).Scan(&m.ID, &m.Email, &m.DisplayName, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return model.Member{}, ErrMemberNotFound
    }
    return m, err
}
