package service

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserStore is the persistence collaborator for the user directory.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// UserService manages the user directory. Role identifiers are validated at
// this boundary; nothing downstream trusts a free-form role string.
type UserService struct {
	users  UserStore
	audit  *AuditService
	logger *zap.Logger
}

func NewUserService(users UserStore, audit *AuditService, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		audit:  audit,
		logger: logger,
	}
}

// Create adds a user with a validated role.
func (s *UserService) Create(ctx context.Context, actorID, name, email, role string) (*model.User, error) {
	roleID, ok := model.ParseRoleID(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
	}
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", model.ErrInvalidInput)
	}

	user := &model.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  roleID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, model.NewStorageError("create user", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	if s.audit != nil {
		s.audit.Record(ctx, actorID, "User Created",
			fmt.Sprintf("Created user %s (%s) with role %s", user.Name, user.Email, user.Role),
			model.AuditLevelInfo)
	}

	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, model.NewStorageError("get user", err)
	}
	if user == nil {
		return nil, model.ErrNotFound
	}
	return user, nil
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, model.NewStorageError("list users", err)
	}
	return users, nil
}

// Update changes name, email and role. Identity is immutable.
func (s *UserService) Update(ctx context.Context, actorID, id, name, email, role string) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if role != "" {
		roleID, ok := model.ParseRoleID(role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", model.ErrInvalidInput, role)
		}
		if roleID != user.Role && s.audit != nil {
			// Role changes are the interesting entries for the audit trail.
			s.audit.Record(ctx, actorID, "Permission Change",
				fmt.Sprintf("Changed role of %s from %s to %s", user.Email, user.Role, roleID),
				model.AuditLevelWarning)
		}
		user.Role = roleID
	}

	if err := s.users.Update(ctx, user); err != nil {
		if err == model.ErrNotFound {
			return nil, model.ErrNotFound
		}
		return nil, model.NewStorageError("update user", err)
	}

	return user, nil
}

// Delete removes a user from the directory.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if err == model.ErrNotFound {
			return model.ErrNotFound
		}
		return model.NewStorageError("delete user", err)
	}

	if s.audit != nil {
		s.audit.Record(ctx, actorID, "User Deletion",
			fmt.Sprintf("Deleted user %s", user.Email), model.AuditLevelWarning)
	}

	return nil
}
