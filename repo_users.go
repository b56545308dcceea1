package account

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var markUserVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE,
	"verification_token" = ''
WHERE
	"usr"."id" = ?
RETURNING *;`

var storeSessionTokenSQL = `UPDATE "users" AS "usr"
SET
	"session_token" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

var updateAvatarURLSQL = `UPDATE "users" AS "usr"
SET
	"avatar_url" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users exposes the account repository. The narrow single-field updates run
// raw SQL so each mutation is one atomic statement against the record.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error)

	MarkVerified(ctx context.Context, id string) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id string) error
	StoreSessionToken(ctx context.Context, id, token string) error
	StoreSessionTokenTx(ctx context.Context, tx bun.IDB, id, token string) error
	ClearSessionToken(ctx context.Context, id string) error
	ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id string) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	UpdateAvatarURLTx(ctx context.Context, tx bun.IDB, id, avatarURL string) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users     = (*users)(nil)
	_ UserStore = (*users)(nil)
)

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

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) FindByID(ctx context.Context, id string) (*User, error) {
	return a.FindByIDTx(ctx, a.db, id)
}

func (a *users) FindByIDTx(ctx context.Context, tx bun.IDB, id string) (*User, error) {
	return a.selectOne(ctx, tx, `?TableAlias."id" = ?`, id, map[string]any{"id": id})
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.selectOne(ctx, tx, `?TableAlias."email" = ?`, email, map[string]any{"email": email})
}

func (a *users) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	return a.GetByVerificationTokenTx(ctx, a.db, token)
}

func (a *users) GetByVerificationTokenTx(ctx context.Context, tx bun.IDB, token string) (*User, error) {
	// verified rows store an empty token; an empty lookup must never match them
	if token == "" {
		return nil, recordNotFound(map[string]any{"verification_token": token})
	}
	return a.selectOne(ctx, tx, `?TableAlias."verification_token" = ?`, token, map[string]any{"verification_token": token})
}

func (a *users) MarkVerified(ctx context.Context, id string) error {
	return a.MarkVerifiedTx(ctx, a.db, id)
}

func (a *users) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id string) error {
	return a.execOne(ctx, tx, markUserVerifiedSQL, map[string]any{"id": id}, id)
}

func (a *users) StoreSessionToken(ctx context.Context, id, token string) error {
	return a.StoreSessionTokenTx(ctx, a.db, id, token)
}

func (a *users) StoreSessionTokenTx(ctx context.Context, tx bun.IDB, id, token string) error {
	return a.execOne(ctx, tx, storeSessionTokenSQL, map[string]any{"id": id}, token, id)
}

func (a *users) ClearSessionToken(ctx context.Context, id string) error {
	return a.ClearSessionTokenTx(ctx, a.db, id)
}

func (a *users) ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id string) error {
	return a.execOne(ctx, tx, storeSessionTokenSQL, map[string]any{"id": id}, "", id)
}

func (a *users) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	return a.UpdateAvatarURLTx(ctx, a.db, id, avatarURL)
}

func (a *users) UpdateAvatarURLTx(ctx context.Context, tx bun.IDB, id, avatarURL string) error {
	return a.execOne(ctx, tx, updateAvatarURLSQL, map[string]any{"id": id}, avatarURL, id)
}

func (a *users) selectOne(ctx context.Context, tx bun.IDB, where string, value any, meta map[string]any) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where(where, value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, recordNotFound(meta)
		}
		return nil, err
	}

	return record, nil
}

func (a *users) execOne(ctx context.Context, tx bun.IDB, query string, meta map[string]any, args ...any) error {
	res, err := a.Repository.RawTx(ctx, tx, query, args...)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return recordNotFound(meta)
	}

	return nil
}

// recordNotFound maps a repository miss into this package's error taxonomy,
// so callers can classify it with goerrors.IsNotFound.
func recordNotFound(meta map[string]any) *goerrors.Error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(meta)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Subscription == "" {
		record.Subscription = SubscriptionStarter
	}

	if record.AvatarURL == "" {
		record.AvatarURL = PlaceholderAvatarURL(record.Email)
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
