// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/account-service/internal/auth"
	"github.com/carterperez-dev/templates/account-service/internal/core"
	"github.com/carterperez-dev/templates/account-service/internal/notify"
)

const tracerName = "account-service/user"

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Service struct {
	repo     Repository
	sender   notify.Sender
	hasher   PasswordHasher
	logger   *slog.Logger
	loginURL string
}

func NewService(
	repo Repository,
	sender notify.Sender,
	hasher PasswordHasher,
	logger *slog.Logger,
	loginURL string,
) *Service {
	return &Service{
		repo:     repo,
		sender:   sender,
		hasher:   hasher,
		logger:   logger,
		loginURL: loginURL,
	}
}

// CreateUser checks permission and email uniqueness, persists the account
// and sends the welcome email. When the email cannot be sent the created
// user is returned together with a KindEmailDispatchFailure error; the
// account is not rolled back.
func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
	actor Actor,
) (*User, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.CreateUser",
		attribute.Int64("actor.id", actor.ID),
		attribute.String("actor.role", string(actor.Role)),
	)
	defer span.End()

	if !CanCreate(actor.Role) {
		return nil, forbidden(MsgNotAllowedCreate)
	}

	role := RoleUser
	if req.Role != nil {
		parsed, ok := ParseRole(*req.Role)
		if !ok {
			return nil, fmt.Errorf(
				"create user: invalid role %q: %w",
				*req.Role,
				core.ErrInvalidInput,
			)
		}
		role = parsed
	}

	if !CanAssignRole(actor.Role, role) {
		return nil, forbidden(MsgNotAllowedAssignRole)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	email := strings.TrimSpace(req.Email)

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if exists {
		return nil, duplicateEmail()
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       active,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, duplicateEmail()
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	s.logger.InfoContext(ctx, "user created",
		"user_id", user.ID,
		"role", user.Role,
		"actor_id", actor.ID,
	)

	if err := s.sendWelcome(ctx, user); err != nil {
		return user, emailDispatch(MsgEmailDispatch, err)
	}

	return user, nil
}

// UpdateUser applies a partial update. Existence is checked before
// permission so an unknown id always reports KindEntityNotFound.
func (s *Service) UpdateUser(
	ctx context.Context,
	targetID int64,
	req UpdateUserRequest,
	actor Actor,
) (*User, error) {
	ctx, span := core.StartSpan(ctx, tracerName, "user.UpdateUser",
		attribute.Int64("actor.id", actor.ID),
		attribute.Int64("user.id", targetID),
	)
	defer span.End()

	target, err := s.lookup(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !CanEdit(actor.Role, target.Role, actor.ID == target.ID) {
		return nil, forbidden(MsgNotAllowedEdit)
	}

	revokeSessions := false

	if req.Role != nil {
		role, ok := ParseRole(*req.Role)
		if !ok {
			return nil, fmt.Errorf(
				"update user: invalid role %q: %w",
				*req.Role,
				core.ErrInvalidInput,
			)
		}
		if role != target.Role {
			if !CanAssignRole(actor.Role, role) {
				return nil, forbidden(MsgNotAllowedAssignRole)
			}
			target.Role = role
			revokeSessions = true
		}
	}

	if req.Name != nil {
		target.Name = *req.Name
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if NormalizeEmail(email) != NormalizeEmail(target.Email) {
			exists, err := s.repo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}
			if exists {
				return nil, duplicateEmail()
			}
		}
		target.Email = email
	}

	if req.Password != nil {
		passwordHash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		target.PasswordHash = passwordHash
		revokeSessions = true
	}

	if req.Active != nil {
		if target.Active && !*req.Active {
			revokeSessions = true
		}
		target.Active = *req.Active
	}

	if revokeSessions {
		target.TokenVersion++
	}

	if err := s.repo.Update(ctx, target); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, duplicateEmail()
		case errors.Is(err, core.ErrNotFound):
			return nil, notFound(err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated",
		"user_id", target.ID,
		"actor_id", actor.ID,
		"sessions_revoked", revokeSessions,
	)

	return target, nil
}

// ResendWelcome re-sends the welcome email, typically after CreateUser
// reported a dispatch failure.
func (s *Service) ResendWelcome(
	ctx context.Context,
	targetID int64,
	actor Actor,
) error {
	target, err := s.lookup(ctx, targetID)
	if err != nil {
		return err
	}

	if !CanCreate(actor.Role) ||
		!CanEdit(actor.Role, target.Role, actor.ID == target.ID) {
		return forbidden(MsgNotAllowedEdit)
	}

	if err := s.sendWelcome(ctx, target); err != nil {
		return emailDispatch(MsgEmailResend, err)
	}

	return nil
}

func (s *Service) GetUser(
	ctx context.Context,
	targetID int64,
	actor Actor,
) (*User, error) {
	target, err := s.lookup(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if !CanView(actor.Role, actor.ID == target.ID) {
		return nil, forbidden(MsgNotAllowedView)
	}

	return target, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
	actor Actor,
) ([]User, int, error) {
	if !CanCreate(actor.Role) {
		return nil, 0, forbidden(MsgNotAllowedList)
	}

	return s.repo.List(ctx, params)
}

// ResolveActor loads the caller behind an access token. Inactive accounts
// and tokens issued before the last session revocation are rejected.
func (s *Service) ResolveActor(
	ctx context.Context,
	userID int64,
	tokenVersion int,
) (Actor, error) {
	if userID == 0 {
		return Actor{}, fmt.Errorf("resolve actor: %w", core.ErrUnauthorized)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Actor{}, fmt.Errorf("resolve actor: %w", core.ErrUnauthorized)
		}
		return Actor{}, err
	}

	if !u.Active {
		return Actor{}, fmt.Errorf("resolve actor: inactive: %w", core.ErrUnauthorized)
	}

	if tokenVersion < u.TokenVersion {
		return Actor{}, fmt.Errorf("resolve actor: %w", core.ErrTokenRevoked)
	}

	return Actor{ID: u.ID, Role: u.Role}, nil
}

func (s *Service) lookup(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) sendWelcome(ctx context.Context, u *User) error {
	err := s.sender.SendWelcome(ctx, u.Email, notify.Welcome{
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		LoginURL: s.loginURL,
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		s.logger.ErrorContext(ctx, "welcome email dispatch failed",
			"user_id", u.ID,
			"type", notify.Classify(err),
			"error", err,
		)
		return err
	}

	core.AddSpanEvent(ctx, "welcome_email_sent")
	return nil
}

// The methods below let the auth package read and maintain credentials
// without depending on this package.

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, id int64) error {
	return s.repo.IncrementTokenVersion(ctx, id)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// CountByRole serves the admin account statistics.
func (s *Service) CountByRole(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(counts))
	for role, n := range counts {
		out[string(role)] = n
	}
	return out, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Active:       u.Active,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
