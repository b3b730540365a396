package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/vacationflow/vacation"
)

// RegisterInput is a self-service registration.
type RegisterInput struct {
	Login        string
	Password     string
	Role         string
	FullName     string
	Email        string
	DepartmentID string
	ManagerID    string
}

// Service registers and authenticates users.
type Service struct {
	Store  vacation.TxStore
	Issuer *JWTIssuer
	Now    func() time.Time

	// AllowRoleSelection lets public registration pick manager or hr.
	// Otherwise every self-registered user is an employee.
	AllowRoleSelection bool
}

func NewService(store vacation.TxStore, issuer *JWTIssuer) *Service {
	return &Service{Store: store, Issuer: issuer, Now: time.Now}
}

// Register creates the user together with a default balance for the
// current year. A taken login is ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*vacation.User, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, fmt.Errorf("%w: login, password and full_name are required", vacation.ErrValidation)
	}
	role := vacation.RoleEmployee
	if in.Role != "" {
		role = vacation.Role(in.Role)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", vacation.ErrValidation, in.Role)
	}
	if role != vacation.RoleEmployee && !s.AllowRoleSelection {
		return nil, fmt.Errorf("%w: self-registration cannot assign role %q", vacation.ErrForbidden, role)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Now().UTC()
	user := vacation.User{
		ID:           uuid.NewString(),
		Login:        login,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(in.FullName),
		Email:        in.Email,
		DepartmentID: in.DepartmentID,
		ManagerID:    in.ManagerID,
		CreatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx vacation.Store) error {
		existing, err := tx.GetUserByLogin(ctx, login)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: login %q already registered", vacation.ErrConflict, login)
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		ledger := &vacation.Ledger{Store: tx, Now: s.Now}
		_, err = ledger.GetOrCreate(ctx, user.ID, now.Year())
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks credentials and returns a fresh token. Unknown login and
// wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, login, password string) (string, *vacation.User, error) {
	user, err := s.Store.GetUserByLogin(ctx, login)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return "", nil, fmt.Errorf("%w: invalid login or password", ErrUnauthenticated)
	}

	token, err := s.Issuer.Issue(Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Me returns the user a token was issued to.
func (s *Service) Me(ctx context.Context, userID string) (*vacation.User, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, &vacation.NotFoundError{Kind: "user", ID: userID}
	}
	return user, nil
}

// Authenticate resolves a bearer token to the current user record. The
// role and department come from storage, not from the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*vacation.User, error) {
	id, err := s.Issuer.Resolve(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Store.GetUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
	}
	return user, nil
}
