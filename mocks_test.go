package account_test

import (
	"context"

	account "github.com/goliatone/go-account"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements account.UserStore
type MockUserStore struct {
	mock.Mock
}

// Register echoes the record back when configured with a nil return, which
// matches how the repository hands the created row to callers.
func (m *MockUserStore) Register(ctx context.Context, user *account.User) (*account.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		if args.Error(1) == nil {
			return user, nil
		}
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *MockUserStore) FindByID(ctx context.Context, id string) (*account.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *MockUserStore) GetByVerificationToken(ctx context.Context, token string) (*account.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *MockUserStore) MarkVerified(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) StoreSessionToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserStore) ClearSessionToken(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

// MockNotifier implements account.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerification(ctx context.Context, email, token string) error {
	args := m.Called(ctx, email, token)
	return args.Error(0)
}

// MockAvatarProcessor implements account.AvatarProcessor
type MockAvatarProcessor struct {
	mock.Mock
}

func (m *MockAvatarProcessor) Process(ctx context.Context, tempPath, fileName string) (string, error) {
	args := m.Called(ctx, tempPath, fileName)
	return args.String(0), args.Error(1)
}

// MockTokenService implements account.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) SignClaims(claims *account.JWTClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(raw string) (account.AuthClaims, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(account.AuthClaims), args.Error(1)
}
