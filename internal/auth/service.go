package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const (
	loginGuardPurpose  = "password_login"
	guardPruneInterval = time.Minute
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrAdminSignupDisabled = errors.New("admin registration is disabled")
	ErrUserNotFound        = errors.New("user not found")
	ErrRateLimited         = errors.New("too many attempts")
	ErrMissingToken        = errors.New("missing bearer token")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
)

type credentialStore interface {
	CreateUser(ctx context.Context, u User, passwordHash string) error
	FindByRollNumber(ctx context.Context, rollNumber string) (*credentialRow, error)
	FindByID(ctx context.Context, id string) (*credentialRow, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	IsGuardLocked(ctx context.Context, purpose, subjectKey string, now time.Time) (bool, error)
	RegisterFailure(ctx context.Context, purpose, subjectKey string, maxFailures int, lockDuration time.Duration, now time.Time) error
	ClearGuard(ctx context.Context, purpose, subjectKey string) error
	PruneGuards(ctx context.Context, purpose string, staleBefore, now time.Time) (int64, error)
}

type Service struct {
	store                  credentialStore
	tokens                 *Tokens
	bcryptCost             int
	loginMaxFailures       int
	loginLockDuration      time.Duration
	allowAdminRegistration bool
	now                    func() time.Time

	// dummyHash is compared on unknown roll numbers so both login failures
	// cost one bcrypt compare.
	dummyHash []byte
	compare   func(hash, password []byte) error

	pruneMu   sync.Mutex
	lastPrune time.Time
}

type ServiceConfig struct {
	BcryptCost             int
	LoginMaxFailures       int
	LoginLockDuration      time.Duration
	AllowAdminRegistration bool
}

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RollNumber string    `json:"rollNumber"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
}

type RegisterInput struct {
	Name       string
	RollNumber string
	Password   string
	Role       string
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

func NewService(store credentialStore, tokens *Tokens, cfg ServiceConfig) *Service {
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.LoginMaxFailures <= 0 {
		cfg.LoginMaxFailures = 5
	}
	if cfg.LoginLockDuration <= 0 {
		cfg.LoginLockDuration = 15 * time.Minute
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("mocktest-dummy-password"), cfg.BcryptCost)
	if err != nil {
		log.Printf("auth dummy hash err=%v", err)
	}

	return &Service{
		store:                  store,
		tokens:                 tokens,
		bcryptCost:             cfg.BcryptCost,
		loginMaxFailures:       cfg.LoginMaxFailures,
		loginLockDuration:      cfg.LoginLockDuration,
		allowAdminRegistration: cfg.AllowAdminRegistration,
		now:                    time.Now,
		dummyHash:              dummyHash,
		compare:                bcrypt.CompareHashAndPassword,
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	rollNumber := normalizeRollNumber(in.RollNumber)
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = RoleStudent
	}
	if name == "" || rollNumber == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, rollNumber and password are required", ErrInvalidInput)
	}
	if !isValidRole(role) {
		return nil, fmt.Errorf("%w: role must be student or admin", ErrInvalidInput)
	}
	if role == RoleAdmin && !s.allowAdminRegistration {
		return nil, ErrAdminSignupDisabled
	}

	if _, err := s.store.FindByRollNumber(ctx, rollNumber); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := User{
		ID:         uuid.NewString(),
		Name:       name,
		RollNumber: rollNumber,
		Role:       role,
		CreatedAt:  s.now().UTC().Truncate(time.Millisecond),
	}
	// A concurrent register of the same roll number surfaces here as ErrDuplicateUser.
	if err := s.store.CreateUser(ctx, u, string(hash)); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login never distinguishes an unknown roll number from a wrong password.
func (s *Service) Login(ctx context.Context, rollNumber, password string) (*LoginResult, error) {
	rollNumber = normalizeRollNumber(rollNumber)
	if rollNumber == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	guardKey := strings.ToLower(rollNumber)
	locked, err := s.store.IsGuardLocked(ctx, loginGuardPurpose, guardKey, s.now())
	if err != nil {
		return nil, fmt.Errorf("check login guard: %w", err)
	}
	if locked {
		return nil, ErrRateLimited
	}

	row, err := s.store.FindByRollNumber(ctx, rollNumber)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = s.compare(s.dummyHash, []byte(password))
			s.registerFailure(ctx, guardKey)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.compare([]byte(row.PasswordHash), []byte(password)); err != nil {
		s.registerFailure(ctx, guardKey)
		return nil, ErrInvalidCredentials
	}

	if err := s.store.ClearGuard(ctx, loginGuardPurpose, guardKey); err != nil {
		log.Printf("clear login guard roll=%s err=%v", rollNumber, err)
	}

	user := row.User
	token, expiresAt, err := s.tokens.Issue(&user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

// Authenticate verifies a bearer token and returns the identity it carries.
// Name and CreatedAt are not part of the token and stay empty.
func (s *Service) Authenticate(token string) (*User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if !isValidRole(claims.Role) {
		return nil, ErrInvalidToken
	}
	return &User{ID: claims.Subject, Role: claims.Role, RollNumber: claims.RollNumber}, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	row, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u := row.User
	return &u, nil
}

func (s *Service) CountStudents(ctx context.Context) (int64, error) {
	return s.store.CountByRole(ctx, RoleStudent)
}

func (s *Service) registerFailure(ctx context.Context, guardKey string) {
	now := s.now()
	if err := s.store.RegisterFailure(ctx, loginGuardPurpose, guardKey, s.loginMaxFailures, s.loginLockDuration, now); err != nil {
		log.Printf("register login failure key=%s err=%v", guardKey, err)
	}
	s.pruneGuards(ctx, now)
}

// pruneGuards forgets failure counters idle for longer than the lock
// duration. It runs at most once per guardPruneInterval.
func (s *Service) pruneGuards(ctx context.Context, now time.Time) {
	s.pruneMu.Lock()
	if !s.lastPrune.IsZero() && now.Sub(s.lastPrune) < guardPruneInterval {
		s.pruneMu.Unlock()
		return
	}
	s.lastPrune = now
	s.pruneMu.Unlock()

	if _, err := s.store.PruneGuards(ctx, loginGuardPurpose, now.Add(-s.loginLockDuration), now); err != nil {
		log.Printf("prune login guards err=%v", err)
	}
}

func isValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}

func normalizeRollNumber(s string) string {
	return strings.TrimSpace(s)
}
