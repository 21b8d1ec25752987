package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/savoria-catering/apiserver/internal/store"
	"github.com/savoria-catering/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// Business errors surfaced by AuthService. Handlers translate these into the
// HTTP taxonomy; storage errors pass through untranslated and are treated as
// internal failures.
var (
	// ErrMissingFields is returned when a required sign-up or sign-in
	// field is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and password
	// mismatch. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when the account's active flag is
	// false. The HTTP layer renders it identically to
	// ErrInvalidCredentials so the wire never reveals which check failed.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrInvalidToken covers every way a bearer token can fail: bad
	// signature, expired claims, no live session, inactive owner.
	ErrInvalidToken = errors.New("invalid token")

	// ErrNoValidFields is returned when a profile update touches none of
	// the allow-listed fields.
	ErrNoValidFields = errors.New("no valid fields to update")

	// ErrUserNotFound is returned when the target user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPassword is returned when the current password presented
	// to a password change does not verify.
	ErrInvalidPassword = errors.New("invalid current password")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	GetByToken(ctx context.Context, token string) (types.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// SignUpParams carries the fields accepted at registration.
type SignUpParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// ProfileUpdate carries the allow-listed profile fields. A nil field is left
// unchanged; an update with every field nil is rejected.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
}

// AuthService orchestrates sign-up, sign-in, sign-out, principal resolution,
// profile updates, and password changes.
//
// The session row is the source of truth: the signed token is an
// anti-tampering wrapper, never an independent trust root. A token with a
// valid signature whose session row is gone does not authenticate.
type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	secret     []byte
	sessionTTL time.Duration
	bcryptCost int
	adminEmail string
}

const (
	defaultSessionTTL = 7 * 24 * time.Hour
	defaultBcryptCost = 10
)

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithSessionTTL overrides the default 7-day session lifetime.
func WithSessionTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithBcryptCost overrides the default hashing cost factor.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithAdminEmail sets the reserved address that receives the admin role at
// sign-up. Comparison is exact; emails are case-sensitive as stored.
func WithAdminEmail(email string) AuthOption {
	return func(s *AuthService) {
		s.adminEmail = email
	}
}

func NewAuthService(users UserRepository, sessions SessionRepository, jwtSecret string, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:      users,
		sessions:   sessions,
		secret:     []byte(jwtSecret),
		sessionTTL: defaultSessionTTL,
		bcryptCost: defaultBcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp registers a new account and signs it in. The email pre-check is a
// fast path only; the unique constraint on users.email is the authoritative
// duplicate signal, so concurrent sign-ups with the same address cannot both
// succeed.
func (s *AuthService) SignUp(ctx context.Context, params SignUpParams) (types.User, types.Session, error) {
	email := strings.TrimSpace(params.Email)
	if email == "" || params.Password == "" {
		return types.User{}, types.Session{}, ErrMissingFields
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return types.User{}, types.Session{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, types.Session{}, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return types.User{}, types.Session{}, fmt.Errorf("hash password: %w", err)
	}

	role := types.RoleClient
	if s.adminEmail != "" && email == s.adminEmail {
		role = types.RoleAdmin
	}

	user, err := s.users.Create(ctx, types.User{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(params.FirstName),
		LastName:     strings.TrimSpace(params.LastName),
		Phone:        strings.TrimSpace(params.Phone),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, types.Session{}, ErrDuplicateEmail
		}
		return types.User{}, types.Session{}, fmt.Errorf("create user: %w", err)
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return types.User{}, types.Session{}, err
	}
	return sanitize(user), session, nil
}

// SignIn verifies credentials and issues a new session. Unknown email and
// wrong password collapse into ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (types.User, types.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return types.User{}, types.Session{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, types.Session{}, ErrInvalidCredentials
		}
		return types.User{}, types.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return types.User{}, types.Session{}, ErrInvalidCredentials
	}

	if !user.Active {
		return types.User{}, types.Session{}, ErrAccountDisabled
	}

	session, err := s.createSession(ctx, user)
	if err != nil {
		return types.User{}, types.Session{}, err
	}
	return sanitize(user), session, nil
}

// SignOut deletes the session bound to the token. Signing out an unknown
// token is not an error.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

// Principal resolves the bearer token to a sanitized user. The token must
// carry a valid unexpired signature AND match a live session row whose owner
// is still active; every failure mode collapses into ErrInvalidToken.
func (s *AuthService) Principal(ctx context.Context, token string) (types.User, error) {
	if _, err := s.parseToken(token); err != nil {
		return types.User{}, ErrInvalidToken
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidToken
		}
		return types.User{}, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidToken
		}
		return types.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Active {
		return types.User{}, ErrInvalidToken
	}

	return sanitize(user), nil
}

// UpdateProfile applies the allow-listed fields and bumps updated_at.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int, update ProfileUpdate) (types.User, error) {
	if update.FirstName == nil && update.LastName == nil && update.Phone == nil && update.AvatarURL == nil {
		return types.User{}, ErrNoValidFields
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if update.FirstName != nil {
		user.FirstName = strings.TrimSpace(*update.FirstName)
	}
	if update.LastName != nil {
		user.LastName = strings.TrimSpace(*update.LastName)
	}
	if update.Phone != nil {
		user.Phone = strings.TrimSpace(*update.Phone)
	}
	if update.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*update.AvatarURL)
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return types.User{}, fmt.Errorf("update user: %w", err)
	}
	return sanitize(updated), nil
}

// ChangePassword replaces the stored hash after verifying the current
// password, and clears the must-change-password flag.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrMissingFields
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	user.MustChangePassword = false
	if _, err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// SweepExpiredSessions purges expired session rows. Query-time filtering in
// the session store keeps expired sessions invalid regardless; the sweep is
// storage hygiene.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx)
}

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) createSession(ctx context.Context, user types.User) (types.Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)
	sessionID := uuid.NewString()

	// The session ID as jti makes every issued token unique, so concurrent
	// sign-ins by the same user never collide on the token column.
	claims := sessionClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return types.Session{}, fmt.Errorf("sign token: %w", err)
	}

	session, err := s.sessions.Create(ctx, types.Session{
		ID:        sessionID,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return types.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *AuthService) parseToken(tokenString string) (sessionClaims, error) {
	claims := sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return sessionClaims{}, err
	}
	if !token.Valid {
		return sessionClaims{}, errors.New("invalid token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return sessionClaims{}, errors.New("missing subject")
	}
	return claims, nil
}

// sanitize strips secrets from a user before it leaves the service.
func sanitize(user types.User) types.User {
	user.PasswordHash = ""
	return user
}
