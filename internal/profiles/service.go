package profiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventhub/backend/internal/access"
	"github.com/eventhub/backend/internal/models"
	"github.com/eventhub/backend/internal/notify"
	"github.com/eventhub/backend/pkg/apperr"
	"github.com/eventhub/backend/pkg/validate"
)

// CategoryGetter checks that a category exists.
type CategoryGetter interface {
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
}

// Service implements onboarding, directories and verification.
type Service struct {
	store      Store
	categories CategoryGetter
	notifier   notify.Notifier
	logger     *zap.Logger
}

// NewService creates a profile service.
func NewService(store Store, categories CategoryGetter, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, categories: categories, notifier: notifier, logger: logger}
}

// OnboardInput is the body of POST /profile.
type OnboardInput struct {
	FullName    string      `json:"full_name" validate:"notblank,max=160"`
	Role        models.Role `json:"role" validate:"required,oneof=client employee manager sponsor"`
	CategoryID  *int64      `json:"category_id" validate:"omitempty,gt=0"`
	CompanyName string      `json:"company_name" validate:"max=160"`
}

// Onboard creates the profile for an authenticated identity. Clients start
// verified; every other role waits for approval.
func (s *Service) Onboard(ctx context.Context, id uuid.UUID, email string, in OnboardInput) (*models.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	p := &models.Profile{
		ID:                 id,
		Email:              email,
		FullName:           strings.TrimSpace(in.FullName),
		Role:               in.Role,
		VerificationStatus: models.VerificationPending,
	}
	switch {
	case in.Role == models.RoleClient:
		p.VerificationStatus = models.VerificationVerified
	case in.Role.NeedsCategory():
		if in.CategoryID == nil {
			return nil, apperr.Validation("category_id is required for " + string(in.Role) + "s")
		}
		if _, err := s.categories.GetCategory(ctx, *in.CategoryID); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.Validation("category does not exist")
			}
			return nil, err
		}
		p.CategoryID = in.CategoryID
	case in.Role == models.RoleSponsor:
		p.CompanyName = strings.TrimSpace(in.CompanyName)
		if p.CompanyName == "" {
			return nil, apperr.Validation("company_name is required for sponsors")
		}
	}

	if _, err := s.store.GetProfile(ctx, id); err == nil {
		return nil, apperr.Conflict("profile already exists")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("profile created", zap.String("user_id", id.String()), zap.String("role", string(p.Role)))
	return p, nil
}

// EnsureCoordinator creates a verified chief coordinator profile unless one
// with that id already exists. Coordinators cannot onboard themselves.
func (s *Service) EnsureCoordinator(ctx context.Context, id uuid.UUID, email, name string) error {
	existing, err := s.store.GetProfile(ctx, id)
	switch {
	case err == nil:
		if existing.Role != models.RoleChiefCoordinator {
			return fmt.Errorf("bootstrap coordinator %s already has role %s", id, existing.Role)
		}
		return nil
	case !apperr.Is(err, apperr.KindNotFound):
		return err
	}
	p := &models.Profile{
		ID:                 id,
		Email:              email,
		FullName:           strings.TrimSpace(name),
		Role:               models.RoleChiefCoordinator,
		VerificationStatus: models.VerificationVerified,
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return err
	}
	s.logger.Info("bootstrap coordinator created", zap.String("user_id", id.String()))
	return nil
}

// Me is the caller's profile and what they may do.
type Me struct {
	Profile     models.Profile     `json:"profile"`
	Permissions []access.Operation `json:"permissions"`
}

// Me returns the caller's profile with their permissions.
func (s *Service) Me(caller *models.Profile) *Me {
	return &Me{Profile: *caller, Permissions: access.Permissions(caller.Role)}
}

// PendingEmployees lists employees of the calling manager's category awaiting
// approval. A manager without a category sees nothing.
func (s *Service) PendingEmployees(ctx context.Context, caller *models.Profile) ([]models.Profile, error) {
	if caller.CategoryID == nil {
		return []models.Profile{}, nil
	}
	pending := models.VerificationPending
	return s.store.ListProfiles(ctx, models.ProfileFilter{
		Roles:      []models.Role{models.RoleEmployee},
		Status:     &pending,
		CategoryID: caller.CategoryID,
	})
}

// Employees lists verified employees of the calling manager's category.
func (s *Service) Employees(ctx context.Context, caller *models.Profile) ([]models.Profile, error) {
	if caller.CategoryID == nil {
		return []models.Profile{}, nil
	}
	verified := models.VerificationVerified
	return s.store.ListProfiles(ctx, models.ProfileFilter{
		Roles:      []models.Role{models.RoleEmployee},
		Status:     &verified,
		CategoryID: caller.CategoryID,
	})
}

// Sponsors lists verified sponsors.
func (s *Service) Sponsors(ctx context.Context) ([]models.Profile, error) {
	verified := models.VerificationVerified
	return s.store.ListProfiles(ctx, models.ProfileFilter{Roles: []models.Role{models.RoleSponsor}, Status: &verified})
}

// ListUsers lists every profile, optionally of one role.
func (s *Service) ListUsers(ctx context.Context, role models.Role) ([]models.Profile, error) {
	var f models.ProfileFilter
	if role != "" {
		if !role.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("unknown role %q", role))
		}
		f.Roles = []models.Role{role}
	}
	return s.store.ListProfiles(ctx, f)
}

// PendingUsers lists profiles awaiting approval.
func (s *Service) PendingUsers(ctx context.Context) ([]models.Profile, error) {
	pending := models.VerificationPending
	return s.store.ListProfiles(ctx, models.ProfileFilter{Status: &pending})
}

// VerifyInput is the body of the verification endpoints.
type VerifyInput struct {
	UserID uuid.UUID                 `json:"user_id" validate:"required"`
	Status models.VerificationStatus `json:"status" validate:"required,oneof=verified rejected"`
}

// VerifyEmployee approves or rejects an employee of the calling manager's
// category. Any other target is Forbidden and left untouched.
func (s *Service) VerifyEmployee(ctx context.Context, caller *models.Profile, in VerifyInput) (*models.Profile, error) {
	return s.verify(ctx, in, func(target *models.Profile) error {
		if target.Role != models.RoleEmployee {
			return apperr.Forbidden("managers can only verify employees")
		}
		if !caller.SameCategory(target) {
			return apperr.Forbidden("employee belongs to another category")
		}
		return nil
	})
}

// VerifyUser approves or rejects a manager or sponsor. Employees are verified
// by the managers of their category.
func (s *Service) VerifyUser(ctx context.Context, in VerifyInput) (*models.Profile, error) {
	return s.verify(ctx, in, func(target *models.Profile) error {
		if target.Role != models.RoleManager && target.Role != models.RoleSponsor {
			return apperr.Forbidden("only managers and sponsors are verified by the coordinator")
		}
		return nil
	})
}

func (s *Service) verify(ctx context.Context, in VerifyInput, allowed func(*models.Profile) error) (*models.Profile, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	target, err := s.store.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := allowed(target); err != nil {
		return nil, err
	}
	if !target.VerificationStatus.CanTransition(in.Status) {
		return nil, apperr.InvalidState("user is already " + string(target.VerificationStatus))
	}
	if err := s.store.UpdateVerification(ctx, target.ID, target.VerificationStatus, in.Status); err != nil {
		return nil, err
	}
	target.VerificationStatus = in.Status
	s.logger.Info("verification changed", zap.String("user_id", target.ID.String()), zap.String("status", string(in.Status)))

	if in.Status == models.VerificationVerified {
		s.notifier.ApprovalNotice(*target)
	}
	s.notifier.Push(target.ID, notify.VerificationChanged, target)
	return target, nil
}
