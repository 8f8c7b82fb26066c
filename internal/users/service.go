package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vhovsepyan/storefront-backend/internal/access"
	"github.com/vhovsepyan/storefront-backend/pkg/config"
	"github.com/vhovsepyan/storefront-backend/pkg/db"
	"github.com/vhovsepyan/storefront-backend/pkg/db/models"
	"github.com/vhovsepyan/storefront-backend/pkg/enums"
	pkgerrors "github.com/vhovsepyan/storefront-backend/pkg/errors"
	"github.com/vhovsepyan/storefront-backend/pkg/security"
)

// Service exposes registration and role lifecycle operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	CurrentUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
	RequestSupplier(ctx context.Context, userID uuid.UUID, age int) (*UserDTO, error)
	RegisterWorker(ctx context.Context, input RegisterInput) (*UserDTO, error)
	ReviewWorker(ctx context.Context, targetID uuid.UUID, approve bool) (*UserDTO, error)
	ListUsers(ctx context.Context, cursor string, limit int) (*UserListResult, error)
	DeleteUser(ctx context.Context, targetID uuid.UUID) error
	LoadActor(ctx context.Context, userID uuid.UUID) (access.Actor, error)
}

// RegisterInput holds the validated payload to create an account.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateProfileInput holds optional self-service profile mutations.
type UpdateProfileInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Age       *int
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	passwordCfg config.PasswordConfig
}

// NewService constructs the user service.
func NewService(repo *Repository, dbClient *db.Client, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, passwordCfg: passwordCfg}, nil
}

// Register creates a Client account. New clients are approved immediately.
func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	user, err := s.createAccount(ctx, input, enums.RoleClient, true)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// RegisterWorker creates a Supplier account that stays unapproved until an
// admin reviews it. The account is deliberately not granted the staff flag.
func (s *service) RegisterWorker(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	user, err := s.createAccount(ctx, input, enums.RoleSupplier, false)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

func (s *service) createAccount(ctx context.Context, input RegisterInput, role enums.Role, approved bool) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
	}
	profile := &models.Profile{
		ID:         uuid.New(),
		Role:       role,
		IsApproved: approved,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateWithProfile(ctx, user, profile)
	})
	if err != nil {
		// Concurrent registration can slip past the pre-check; the unique
		// index has the last word.
		if db.IsUniqueViolation(err, "idx_users_username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	user.Profile = profile
	return user, nil
}

// CurrentUser returns the serialized user for the authenticated principal.
func (s *service) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

// UpdateProfile applies self-service mutations to the user and profile.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}

	if input.Age != nil && user.Profile != nil {
		user.Profile.Age = input.Age
		if err := s.repo.SaveProfile(ctx, user.Profile); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
		}
	}
	return toUserDTO(user), nil
}

// ChangePassword verifies the old password before storing the new hash.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(oldPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "wrong password")
	}
	if newPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password is required")
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return nil
}

// RequestSupplier promotes a client to a pending supplier. Calling it again
// once the role is Supplier is a no-op so retries stay safe.
func (s *service) RequestSupplier(ctx context.Context, userID uuid.UUID, age int) (*UserDTO, error) {
	if age <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "age is required for supplier request")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		profile := &models.Profile{ID: uuid.New(), UserID: user.ID, Role: enums.RoleClient}
		if err := s.repo.db.WithContext(ctx).Create(profile).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		user.Profile = profile
	}

	switch user.Profile.Role {
	case enums.RoleSupplier:
		return toUserDTO(user), nil
	case enums.RoleAdmin:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admins cannot request supplier status")
	}

	user.Profile.Role = enums.RoleSupplier
	user.Profile.IsApproved = false
	user.Profile.Age = &age
	if err := s.repo.SaveProfile(ctx, user.Profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return toUserDTO(user), nil
}

// ReviewWorker approves or rejects a pending supplier account.
func (s *service) ReviewWorker(ctx context.Context, targetID uuid.UUID, approve bool) (*UserDTO, error) {
	user, err := s.loadUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Profile == nil || user.Profile.Role != enums.RoleSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user is not a supplier")
	}

	user.Profile.IsApproved = approve
	if err := s.repo.SaveProfile(ctx, user.Profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save profile")
	}
	return toUserDTO(user), nil
}

// ListUsers returns a cursor page of all accounts.
func (s *service) ListUsers(ctx context.Context, cursor string, limit int) (*UserListResult, error) {
	records, next, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	result := &UserListResult{Users: make([]UserDTO, 0, len(records)), NextCursor: next}
	for i := range records {
		result.Users = append(result.Users, *toUserDTO(&records[i]))
	}
	return result, nil
}

// DeleteUser removes an account. Superusers cannot be deleted.
func (s *service) DeleteUser(ctx context.Context, targetID uuid.UUID) error {
	user, err := s.loadUser(ctx, targetID)
	if err != nil {
		return err
	}
	if user.IsSuperuser {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete superuser account")
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

// LoadActor resolves the live role and approval state for enforcement.
// Approval can be toggled mid-session so claims are never trusted for this.
func (s *service) LoadActor(ctx context.Context, userID uuid.UUID) (access.Actor, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return access.Actor{}, err
	}
	actor := access.Actor{UserID: user.ID, IsStaff: user.IsStaff}
	if user.Profile != nil {
		actor.Role = user.Profile.Role
		actor.IsApproved = user.Profile.IsApproved
	}
	return actor, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
