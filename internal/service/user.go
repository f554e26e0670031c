package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/policy"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const (
	minPasswordLen  = 6
	tempPasswordLen = 12
)

type UserService struct {
	Users   UserStore
	Hasher  *hash.Hasher
	Tokens  *tokens.Service
	Mailer  Mailer
	Events  EventPublisher
	Effects SideEffects

	// IsAdminEmail decides which registrations start with the admin role.
	IsAdminEmail func(email string) bool
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	hashed, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         s.roleFor(email),
		Active:       true,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Username:     strings.TrimSpace(req.Username),
		Address:      strings.TrimSpace(req.Address),
		Avatar:       strings.TrimSpace(req.Avatar),
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		return nil, fromStore(err, "email")
	}

	s.afterRegister(ctx, *u, "")
	return u, nil
}

// CheckEmail returns nil when the address is free to register.
func (s *UserService) CheckEmail(ctx context.Context, raw string) error {
	email, err := normalizeEmail(raw)
	if err != nil {
		return err
	}
	_, err = s.Users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return fmt.Errorf("%w: the email is already in use", ErrValidation)
	case errors.Is(fromStore(err, "user"), ErrNotFound):
		return nil
	}
	return fromStore(err, "user")
}

func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*transport.AuthResponse, error) {
	u, err := s.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(fromStore(err, "user"), ErrNotFound) {
			return nil, fmt.Errorf("%w: wrong email or password", ErrUnauthorized)
		}
		return nil, fromStore(err, "user")
	}
	if !s.Hasher.Verify(req.Password, u.PasswordHash) {
		return nil, fmt.Errorf("%w: wrong email or password", ErrUnauthorized)
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	return s.issue(u)
}

// GoogleLogin finds or creates the account behind a Google id token.
func (s *UserService) GoogleLogin(ctx context.Context, idToken string) (*transport.AuthResponse, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: id_token is required", ErrValidation)
	}
	profile, err := s.Tokens.VerifyExternal(ctx, idToken, "google")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: provider returned a bad email", ErrUnauthorized)
	}

	u, err := s.Users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !u.Active {
			return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
		}
		return s.issue(u)
	case !errors.Is(fromStore(err, "user"), ErrNotFound):
		return nil, fromStore(err, "user")
	}

	// nobody knows this password; forget-password issues a usable one
	unusable, err := hash.RandomPassword(32)
	if err != nil {
		return nil, err
	}
	hashed, err := s.Hasher.Hash(unusable)
	if err != nil {
		return nil, err
	}
	first, last := splitName(profile.DisplayName)
	u = &models.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         s.roleFor(email),
		Active:       true,
		FirstName:    first,
		LastName:     last,
		Username:     profile.DisplayName,
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(fromStore(err, "email"), ErrConflict) {
			// lost a race with a concurrent sign-in for the same address
			if existing, gerr := s.Users.GetUserByEmail(ctx, email); gerr == nil {
				if !existing.Active {
					return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
				}
				return s.issue(existing)
			}
		}
		return nil, fromStore(err, "email")
	}

	s.afterRegister(ctx, *u, "")
	return s.issue(u)
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*transport.AuthResponse, error) {
	id, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	u, err := s.Users.GetUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(fromStore(err, "user"), ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, fromStore(err, "user")
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	return s.issue(u)
}

func (s *UserService) ForgetPassword(ctx context.Context, raw string) error {
	email, err := normalizeEmail(raw)
	if err != nil {
		return err
	}
	u, err := s.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return fromStore(err, "user")
	}

	temp, err := hash.RandomPassword(tempPasswordLen)
	if err != nil {
		return err
	}
	hashed, err := s.Hasher.Hash(temp)
	if err != nil {
		return err
	}
	u.PasswordHash = hashed
	if err := s.Users.SaveUser(ctx, u); err != nil {
		return fromStore(err, "user")
	}

	s.Effects.Run(ctx, "email.password_reset", func(ctx context.Context) error {
		return s.Mailer.SendPasswordReset(ctx, *u, temp)
	})
	logging.FromContext(ctx).Info("password_reset_issued", "user_id", u.ID.String())
	return nil
}

func (s *UserService) UpdatePassword(ctx context.Context, actor tokens.Identity, req transport.UpdatePasswordRequest) (*models.User, error) {
	if len(req.NewPassword) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	u, err := s.Users.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	if !s.Hasher.Verify(req.OldPassword, u.PasswordHash) {
		return nil, fmt.Errorf("%w: the password does not match", ErrValidation)
	}
	hashed, err := s.Hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hashed
	if err := s.Users.SaveUser(ctx, u); err != nil {
		return nil, fromStore(err, "user")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	total, items, err := s.Users.ListUsers(ctx, offset, limit)
	if err != nil {
		return 0, nil, fromStore(err, "users")
	}
	if total == 0 {
		return 0, nil, fmt.Errorf("%w: no users", ErrNotFound)
	}
	return total, items, nil
}

func (s *UserService) Get(ctx context.Context, actor tokens.Identity, id uuid.UUID) (*models.User, error) {
	if !policy.CanActOnUser(actor, id) {
		return nil, fmt.Errorf("%w: cannot read another user", ErrForbidden)
	}
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, actor tokens.Identity, id uuid.UUID, req transport.UpdateUserRequest) (*models.User, error) {
	if !policy.CanActOnUser(actor, id) {
		return nil, fmt.Errorf("%w: cannot update another user", ErrForbidden)
	}
	manage := policy.Allows(models.Role(actor.Role), policy.UsersManage)
	if (req.Role != nil || req.Active != nil) && !manage {
		return nil, fmt.Errorf("%w: only admins can change role or status", ErrForbidden)
	}

	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, fromStore(err, "user")
	}

	if req.Email != nil {
		email, err := normalizeEmail(*req.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	setTrimmed(&u.FirstName, req.FirstName)
	setTrimmed(&u.LastName, req.LastName)
	setTrimmed(&u.Username, req.Username)
	setTrimmed(&u.Address, req.Address)
	setTrimmed(&u.Avatar, req.Avatar)
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, *req.Role)
		}
		u.Role = *req.Role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	if err := s.Users.SaveUser(ctx, u); err != nil {
		return nil, fromStore(err, "email")
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actor tokens.Identity, id uuid.UUID) error {
	if !policy.CanActOnUser(actor, id) {
		return fmt.Errorf("%w: cannot delete another user", ErrForbidden)
	}
	if err := s.Users.DeleteUser(ctx, id); err != nil {
		return fromStore(err, "user")
	}
	s.Effects.Run(ctx, "event.user_deleted", func(ctx context.Context) error {
		return s.events().PublishEvent(ctx, events.TopicUsers, id.String(), "user_deleted", map[string]string{"user_id": id.String()})
	})
	return nil
}

func (s *UserService) issue(u *models.User) (*transport.AuthResponse, error) {
	pair, err := s.Tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &transport.AuthResponse{Tokens: pair, User: u}, nil
}

func (s *UserService) afterRegister(ctx context.Context, u models.User, tempPassword string) {
	s.Effects.Run(ctx, "email.welcome", func(ctx context.Context) error {
		return s.Mailer.SendWelcome(ctx, u, tempPassword)
	})
	s.Effects.Run(ctx, "event.user_registered", func(ctx context.Context) error {
		return s.events().PublishEvent(ctx, events.TopicUsers, u.ID.String(), "user_registered", map[string]string{
			"user_id": u.ID.String(),
			"email":   u.Email,
			"role":    string(u.Role),
		})
	})
}

func (s *UserService) roleFor(email string) models.Role {
	if s.IsAdminEmail != nil && s.IsAdminEmail(email) {
		return models.RoleAdmin
	}
	return models.RoleCustomer
}

func (s *UserService) events() EventPublisher {
	if s.Events == nil {
		return NoopPublisher
	}
	return s.Events
}

func normalizeEmail(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return e, nil
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
