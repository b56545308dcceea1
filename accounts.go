package account

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Accounts is the account lifecycle engine. It owns no state beyond its
// collaborators; all mutations go through the UserStore.
type Accounts struct {
	store    UserStore
	tokens   TokenService
	notifier Notifier
	avatars  AvatarProcessor
	logger   Logger
}

// NewAccounts returns a new lifecycle engine
func NewAccounts(store UserStore, cfg Config) *Accounts {
	tokens := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Accounts{
		store:    store,
		tokens:   tokens,
		notifier: &LogNotifier{logger: defLogger{}},
		avatars:  noopAvatarProcessor{},
		logger:   defLogger{},
	}
}

func (s *Accounts) WithLogger(logger Logger) *Accounts {
	s.logger = logger
	return s
}

func (s *Accounts) WithNotifier(notifier Notifier) *Accounts {
	if notifier != nil {
		s.notifier = notifier
	}
	return s
}

func (s *Accounts) WithAvatarProcessor(processor AvatarProcessor) *Accounts {
	if processor != nil {
		s.avatars = processor
	}
	return s
}

func (s *Accounts) WithTokenService(tokens TokenService) *Accounts {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this engine
func (s *Accounts) TokenService() TokenService {
	return s.tokens
}

// Register creates an unverified account and fires the verification email.
// Notifier failure is logged but does not undo the registration; the user
// can recover through ResendVerification.
func (s *Accounts) Register(ctx context.Context, email, password string) (*User, error) {
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
	}

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:             email,
		PasswordHash:      hash,
		AvatarURL:         PlaceholderAvatarURL(email),
		Subscription:      SubscriptionStarter,
		VerificationToken: uuid.NewString(),
	}

	created, err := s.store.Register(ctx, user)
	if err != nil {
		// the unique email constraint can still fire between the
		// pre-check and the insert
		if IsDuplicateRecordError(err) {
			return nil, ErrEmailInUse
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	if err := s.notifier.SendVerification(ctx, created.Email, created.VerificationToken); err != nil {
		s.logger.Warn("verification email delivery failed", "email", created.Email, "error", err)
	}

	return created, nil
}

// Login verifies credentials and issues a session token. The password check
// runs before the verification check so an unverified account is
// indistinguishable from a bad password until the credentials are right.
func (s *Accounts) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.tokens.Generate(user.ID.String())
	if err != nil {
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	if err := s.store.StoreSessionToken(ctx, user.ID.String(), token); err != nil {
		return "", nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session token")
	}

	user.SessionToken = token

	return token, user, nil
}

// CurrentUser returns the account behind an authenticated id.
func (s *Accounts) CurrentUser(ctx context.Context, id string) (*User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
	}
	return user, nil
}

// Logout clears the stored session token. Logging out twice is not an error.
func (s *Accounts) Logout(ctx context.Context, id string) error {
	if _, err := s.CurrentUser(ctx, id); err != nil {
		return err
	}

	if err := s.store.ClearSessionToken(ctx, id); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session token")
	}

	return nil
}

// VerifyEmail consumes a verification token. Clearing the token on success
// is what makes a second call with the same token fail.
func (s *Accounts) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrVerificationNotFound
	}

	user, err := s.store.GetByVerificationToken(ctx, token)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrVerificationNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for verification")
	}

	if err := s.store.MarkVerified(ctx, user.ID.String()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark account verified")
	}

	return nil
}

// ResendVerification re-sends the stored token. The token is deliberately
// not rotated: it is single-use and cleared on verification, so older links
// stay valid only until the first one is consumed.
func (s *Accounts) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingEmail
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for resend")
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	// Wrap would keep the notifier error's own category, so build the
	// Internal classification fresh
	if err := s.notifier.SendVerification(ctx, user.Email, user.VerificationToken); err != nil {
		return goerrors.New("failed to send verification email", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithMetadata(map[string]any{"email": user.Email, "cause": err.Error()})
	}

	return nil
}

// UpdateAvatar processes an uploaded image and points the account at the
// stored copy. The processor owns the temp file and removes it on every
// exit path; avatar_url only changes after the image is safely stored.
func (s *Accounts) UpdateAvatar(ctx context.Context, id, tempPath, originalName string) (string, error) {
	user, err := s.CurrentUser(ctx, id)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("%s_%s", user.ID.String(), originalName)

	avatarURL, err := s.avatars.Process(ctx, tempPath, fileName)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to process avatar upload")
	}

	if err := s.store.UpdateAvatarURL(ctx, user.ID.String(), avatarURL); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist avatar")
	}

	return avatarURL, nil
}

// Authenticate resolves a presented bearer token to its account. The token
// must validate and still match the stored session token, so a replaced or
// logged-out session is rejected even before its expiry.
func (s *Accounts) Authenticate(ctx context.Context, raw string) (*User, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.store.FindByID(ctx, claims.UserID())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve session account")
	}

	if user.SessionToken != raw {
		return nil, ErrSessionRevoked
	}

	return user, nil
}

// SessionFromToken validates a raw token and returns its session view.
func (s *Accounts) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}
