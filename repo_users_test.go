package account_test

import (
	"context"
	"database/sql"
	"io/fs"
	"path"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	account "github.com/goliatone/go-account"
)

func setupUsersRepo(t *testing.T) account.Users {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = bunDB.Close()
		_ = sqldb.Close()
	})

	migrations := account.GetMigrationsFS()
	entries, err := fs.ReadDir(migrations, "data/sql/migrations")
	require.NoError(t, err)

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		ddl, err := fs.ReadFile(migrations, path.Join("data/sql/migrations", entry.Name()))
		require.NoError(t, err)
		_, err = bunDB.Exec(string(ddl))
		require.NoError(t, err)
	}

	return account.NewUsersRepository(bunDB)
}

func seedUser(t *testing.T, repo account.Users, email, token string) *account.User {
	t.Helper()

	user, err := repo.Register(context.Background(), &account.User{
		Email:             email,
		PasswordHash:      "hash",
		VerificationToken: token,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}

func TestUsersRepositoryRegister(t *testing.T) {
	ctx := context.Background()
	repo := setupUsersRepo(t)

	t.Run("fills defaults on create", func(t *testing.T) {
		user := seedUser(t, repo, "ada@example.com", "tok-ada")

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, account.SubscriptionStarter, user.Subscription)
		assert.Equal(t, account.PlaceholderAvatarURL("ada@example.com"), user.AvatarURL)
		assert.False(t, user.EmailVerified)
	})

	t.Run("enforces unique emails", func(t *testing.T) {
		_, err := repo.Register(ctx, &account.User{
			Email:        "ada@example.com",
			PasswordHash: "hash",
		})
		require.Error(t, err)
	})
}

func TestUsersRepositoryLookups(t *testing.T) {
	ctx := context.Background()
	repo := setupUsersRepo(t)
	user := seedUser(t, repo, "ada@example.com", "tok-ada")

	t.Run("finds by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("finds by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("email lookup is exact string match", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "ADA@example.com")
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("finds by verification token", func(t *testing.T) {
		got, err := repo.GetByVerificationToken(ctx, "tok-ada")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown lookups are not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.NewString())
		assert.True(t, goerrors.IsNotFound(err))

		_, err = repo.GetByEmail(ctx, "nobody@example.com")
		assert.True(t, goerrors.IsNotFound(err))

		_, err = repo.GetByVerificationToken(ctx, "no-such-token")
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("a miss carries the package not found classification", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryNotFound, richErr.Category)
		assert.Equal(t, goerrors.CodeNotFound, richErr.Code)
	})
}

func TestUsersRepositoryMarkVerified(t *testing.T) {
	ctx := context.Background()
	repo := setupUsersRepo(t)
	user := seedUser(t, repo, "ada@example.com", "tok-ada")

	t.Run("marks verified and consumes the token", func(t *testing.T) {
		require.NoError(t, repo.MarkVerified(ctx, user.ID.String()))

		got, err := repo.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.True(t, got.EmailVerified)
		assert.Empty(t, got.VerificationToken)

		_, err = repo.GetByVerificationToken(ctx, "tok-ada")
		assert.True(t, goerrors.IsNotFound(err), "a consumed token must not resolve")
	})

	t.Run("an empty token never matches verified rows", func(t *testing.T) {
		_, err := repo.GetByVerificationToken(ctx, "")
		assert.True(t, goerrors.IsNotFound(err))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := repo.MarkVerified(ctx, uuid.NewString())
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestUsersRepositorySessionToken(t *testing.T) {
	ctx := context.Background()
	repo := setupUsersRepo(t)
	user := seedUser(t, repo, "ada@example.com", "tok-ada")

	t.Run("stores and overwrites the session token", func(t *testing.T) {
		require.NoError(t, repo.StoreSessionToken(ctx, user.ID.String(), "first-token"))

		got, err := repo.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "first-token", got.SessionToken)

		// a later login replaces the previous session
		require.NoError(t, repo.StoreSessionToken(ctx, user.ID.String(), "second-token"))

		got, err = repo.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "second-token", got.SessionToken)
	})

	t.Run("clears the session token", func(t *testing.T) {
		require.NoError(t, repo.ClearSessionToken(ctx, user.ID.String()))

		got, err := repo.FindByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.Empty(t, got.SessionToken)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := repo.StoreSessionToken(ctx, uuid.NewString(), "token")
		assert.True(t, goerrors.IsNotFound(err))
	})
}

func TestUsersRepositoryUpdateAvatarURL(t *testing.T) {
	ctx := context.Background()
	repo := setupUsersRepo(t)
	user := seedUser(t, repo, "ada@example.com", "tok-ada")

	require.NoError(t, repo.UpdateAvatarURL(ctx, user.ID.String(), "public/avatars/new.png"))

	got, err := repo.FindByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "public/avatars/new.png", got.AvatarURL)
}
