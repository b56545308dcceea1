package account

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// UserStore is the persistence surface the lifecycle engine needs. The Bun
// repository implements it; tests swap in a mock.
type UserStore interface {
	Register(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	MarkVerified(ctx context.Context, id string) error
	StoreSessionToken(ctx context.Context, id, token string) error
	ClearSessionToken(ctx context.Context, id string) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
}

// Notifier delivers the verification link for an account. Implementations
// must not retry; the engine decides per operation whether a delivery
// failure is fatal.
type Notifier interface {
	SendVerification(ctx context.Context, email, token string) error
}

// AvatarProcessor turns an uploaded temp file into a stored avatar and
// returns its public URL. Implementations own the temp file once called and
// must remove it on every exit path.
type AvatarProcessor interface {
	Process(ctx context.Context, tempPath, fileName string) (string, error)
}

// TokenService signs and validates bearer tokens
type TokenService interface {
	Generate(userID string) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(raw string) (AuthClaims, error)
}

// Config holds token options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Print("[ERR] ACCOUNT " + newline(formatLogMessage(format, args...)))
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Print("[WRN] ACCOUNT " + newline(formatLogMessage(format, args...)))
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Print("[INF] ACCOUNT " + newline(formatLogMessage(format, args...)))
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Print("[DBG] ACCOUNT " + newline(formatLogMessage(format, args...)))
}

// formatLogMessage accepts both printf-style calls and message plus
// key-value pairs; a format without verbs gets its args rendered as
// key=value.
func formatLogMessage(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}

	if strings.Contains(format, "%") {
		return fmt.Sprintf(format, args...)
	}

	var b strings.Builder
	b.WriteString(format)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&b, " %v", args[len(args)-1])
	}
	return b.String()
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
