package auth

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BumpTokenVersionSQL advances the revocation counter only when the
// caller still holds the current version. A concurrent bump makes the
// guard fail and the statement returns no rows; callers treat that as
// "rotation lost the race" rather than an error.
var BumpTokenVersionSQL = `UPDATE "users" AS "usr"
SET
	"token_version" = "token_version" + 1,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."id" = ?
AND "usr"."token_version" = ?
RETURNING *;`

// Users is the account store. The generic repository stays an internal
// detail of the implementation, its Get and List take SelectCriteria and
// would collide with the uuid-keyed lookups declared here.
type Users interface {
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	GetByProviderID(ctx context.Context, provider, providerUserID string) (*User, error)

	LinkProvider(ctx context.Context, id uuid.UUID, provider, providerUserID string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	BumpTokenVersion(ctx context.Context, id uuid.UUID, fromVersion int) (*User, error)
	BumpTokenVersionTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fromVersion int) (*User, error)

	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	ClearResetTokenAndSetPassword(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	UpdateRoles(ctx context.Context, id uuid.UUID, roles []UserRole) (*User, error)
	Remove(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.selectOne(ctx, a.db, "id", id.String())
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.selectOne(ctx, tx, "email", normalizeEmail(email))
}

func (a *users) GetByResetToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, repository.NewRecordNotFound()
	}
	return a.selectOne(ctx, a.db, "reset_password_token", token)
}

func (a *users) GetByProviderID(ctx context.Context, provider, providerUserID string) (*User, error) {
	var column string
	switch provider {
	case ProviderFacebook:
		column = "facebook_id"
	case ProviderGoogle:
		column = "google_id"
	default:
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"provider": provider})
	}

	return a.selectOne(ctx, a.db, column, providerUserID)
}

// LinkProvider binds an external identity to an existing account
func (a *users) LinkProvider(ctx context.Context, id uuid.UUID, provider, providerUserID string) (*User, error) {
	var column string
	switch provider {
	case ProviderFacebook:
		column = "facebook_id"
	case ProviderGoogle:
		column = "google_id"
	default:
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"provider": provider})
	}

	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set(column+" = ?", providerUserID).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	return a.Get(ctx, id)
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) BumpTokenVersion(ctx context.Context, id uuid.UUID, fromVersion int) (*User, error) {
	return a.BumpTokenVersionTx(ctx, a.db, id, fromVersion)
}

func (a *users) BumpTokenVersionTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fromVersion int) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, BumpTokenVersionSQL, id.String(), fromVersion)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id":           id.String(),
				"from_version": fromVersion,
			})
	}

	return res[0], nil
}

func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("reset_password_token = ?", token).
		Set("reset_password_expiry = ?", expiry).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)

	return err
}

// ClearResetTokenAndSetPassword swaps the password hash and consumes the
// reset token in a single statement. The revocation counter is left
// untouched, sessions opened before the reset stay valid.
func (a *users) ClearResetTokenAndSetPassword(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	if tx == nil {
		tx = a.db
	}

	_, err := tx.NewUpdate().
		Model((*User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_password_token = NULL").
		Set("reset_password_expiry = NULL").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)

	return err
}

// UpdateRoles overwrites the role set and nothing else. A whole-record
// update here would zero out email, password hash and the revocation
// counter, so the statement is pinned to the roles column.
func (a *users) UpdateRoles(ctx context.Context, id uuid.UUID, roles []UserRole) (*User, error) {
	now := time.Now()
	record := &User{
		ID:        id,
		Roles:     roles,
		UpdatedAt: &now,
	}

	res, err := a.db.NewUpdate().
		Model(record).
		Column("roles", "updated_at").
		WherePK().
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return a.Get(ctx, id)
}

func (a *users) Remove(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)

	return records, err
}

func (a *users) selectOne(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if len(record.Roles) == 0 {
		record.Roles = DefaultRoles()
	}

	record.Email = normalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
