package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"docflow/internal/domain"
	models "docflow/internal/domain/models/workflow"
	wfRepo "docflow/internal/domain/repositories/workflow"
	wfSvc "docflow/internal/domain/services/workflow"
)

var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,11}$`)

// documentTypeService implements the DocumentTypeService interface
type documentTypeService struct {
	typeRepo wfRepo.DocumentTypeRepository
	logger   *slog.Logger
}

// NewDocumentTypeService creates a new document type service
func NewDocumentTypeService(typeRepo wfRepo.DocumentTypeRepository, logger *slog.Logger) wfSvc.DocumentTypeService {
	return &documentTypeService{
		typeRepo: typeRepo,
		logger:   logger,
	}
}

// CreateDocumentType registers a new numbering prefix. Admin only.
func (s *documentTypeService) CreateDocumentType(ctx context.Context, actor models.Actor, req *wfSvc.CreateDocumentTypeRequest) (*models.DocumentType, error) {
	if err := requireAdmin(actor, "create document type"); err != nil {
		return nil, err
	}
	if err := validateCreateDocumentType(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	dt := &models.DocumentType{
		ID:         uuid.New().String(),
		TenantID:   actor.TenantID,
		Prefix:     req.Prefix,
		Name:       req.Name,
		NextNumber: 1,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.typeRepo.Create(ctx, dt); err != nil {
		return nil, err
	}

	s.logger.Info("document type created",
		"prefix", dt.Prefix,
		"tenant_id", actor.TenantID,
		"created_by", actor.UserID,
	)
	return dt, nil
}

// ListDocumentTypes returns the tenant's catalog, active and not
func (s *documentTypeService) ListDocumentTypes(ctx context.Context, actor models.Actor) ([]models.DocumentType, error) {
	return s.typeRepo.ListByTenant(ctx, actor.TenantID)
}

// SetDocumentTypeActive hides or restores a type in creation flows
func (s *documentTypeService) SetDocumentTypeActive(ctx context.Context, actor models.Actor, id string, active bool) (*models.DocumentType, error) {
	if err := requireAdmin(actor, "change document type"); err != nil {
		return nil, err
	}

	if err := s.typeRepo.SetActive(ctx, id, actor.TenantID, active); err != nil {
		return nil, err
	}
	return s.typeRepo.GetByID(ctx, id, actor.TenantID)
}

func validateCreateDocumentType(req *wfSvc.CreateDocumentTypeRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Prefix,
			validation.Required,
			validation.Match(prefixPattern).Error("prefix must be an uppercase token"),
		),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, 100),
		),
	)
}
