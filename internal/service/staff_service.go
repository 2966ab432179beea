package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// StaffService manages admin and gate operator accounts.
type StaffService struct {
	repo      staffRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService creates an instance of StaffService.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated accounts.
func (s *StaffService) List(ctx context.Context, query dto.StaffQuery) ([]models.User, *models.Pagination, error) {
	filter := models.StaffFilter{
		Active:   query.Active,
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Role != "" {
		role := models.UserRole(strings.ToUpper(query.Role))
		if role != models.RoleAdmin && role != models.RoleGatekeeper {
			return nil, nil, appErrors.Invalid("role", "role must be ADMIN or GATEKEEPER")
		}
		filter.Role = &role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, storeError(err, "failed to list staff")
	}
	return users, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Create adds an account; emails are unique case-insensitively.
func (s *StaffService) Create(ctx context.Context, req dto.CreateStaffRequest, actor *models.JWTClaims) (*models.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid staff payload")
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError(err, "failed to check email uniqueness")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         models.UserRole(req.Role),
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeError(err, "failed to create staff account")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"email": user.Email, "role": user.Role})
	s.audit(ctx, actor, models.AuditActionStaffCreate, user.ID, nil, newPayload)
	return user, nil
}

// Update edits an account. Admins cannot deactivate or demote themselves.
func (s *StaffService) Update(ctx context.Context, id string, req dto.UpdateStaffRequest, actor *models.JWTClaims) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid staff payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff account not found")
		}
		return nil, storeError(err, "failed to load staff account")
	}

	if actor != nil && actor.UserID == user.ID {
		if req.Active != nil && !*req.Active {
			return nil, appErrors.Invalid("active", "you cannot deactivate your own account")
		}
		if req.Role != nil && models.UserRole(*req.Role) != user.Role {
			return nil, appErrors.Invalid("role", "you cannot change your own role")
		}
	}

	oldPayload, _ := json.Marshal(map[string]interface{}{"fullName": user.FullName, "role": user.Role, "active": user.Active})

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	passwordChanged := false
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
		passwordChanged = true
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, storeError(err, "failed to update staff account")
	}

	newPayload, _ := json.Marshal(map[string]interface{}{"fullName": user.FullName, "role": user.Role, "active": user.Active, "passwordChanged": passwordChanged})
	s.audit(ctx, actor, models.AuditActionStaffUpdate, user.ID, oldPayload, newPayload)
	return user, nil
}

func (s *StaffService) audit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, oldValues, newValues []byte) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "staff",
		ResourceID: &resourceID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if actor != nil {
		entry.UserID = &actor.UserID
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record staff audit log", zap.String("action", action), zap.Error(err))
	}
}
