package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/models"
	"folio/internal/pagination"
)

// registryService handles security registration and lookup.
type registryService struct {
	db      *gorm.DB
	catalog CatalogServicer
}

// NewRegistryService creates a new RegistryServicer.
func NewRegistryService(db *gorm.DB, catalog CatalogServicer) RegistryServicer {
	return &registryService{db: db, catalog: catalog}
}

// Register resolves the classification codes and creates the security unless
// the symbol is already known. Registration is get-or-create, never an update
// path: an existing record is returned unchanged regardless of the supplied
// codes. With Strict set, a known symbol is rejected instead.
func (s *registryService) Register(input RegisterInput) (*models.Security, error) {
	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Symbol is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Name is required")
	}

	if existing, err := s.Find(symbol); err == nil {
		if input.Strict {
			return nil, apperrors.ErrDuplicateSymbol
		}
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrSecurityNotFound) {
		return nil, err
	}

	industry, err := s.resolveCode(models.CategoryIndustry, input.IndustryCode)
	if err != nil {
		return nil, err
	}
	secType, err := s.resolveCode(models.CategorySecurityType, input.SecurityTypeCode)
	if err != nil {
		return nil, err
	}
	tier, err := s.resolveCode(models.CategoryVarianceTier, input.VarianceTierCode)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(input.Currency)
	if currency == "" {
		currency = "USD"
	}

	security := &models.Security{
		Symbol:         symbol,
		Name:           input.Name,
		IndustryID:     industry.ID,
		SecurityTypeID: secType.ID,
		VarianceTierID: tier.ID,
		Currency:       currency,
	}

	if err := s.db.Create(security).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a create race; honor get-or-create semantics.
			if input.Strict {
				return nil, apperrors.ErrDuplicateSymbol
			}
			return s.Find(symbol)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetByID(security.ID)
}

// Find returns a security by symbol with its catalog links preloaded.
func (s *registryService) Find(symbol string) (*models.Security, error) {
	var security models.Security
	err := s.db.Preload("Industry").Preload("SecurityType").Preload("VarianceTier").
		Where("symbol = ?", strings.ToUpper(strings.TrimSpace(symbol))).
		First(&security).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSecurityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &security, nil
}

// GetByID returns a security by ID with its catalog links preloaded.
func (s *registryService) GetByID(id string) (*models.Security, error) {
	var security models.Security
	err := s.db.Preload("Industry").Preload("SecurityType").Preload("VarianceTier").
		Where("id = ?", id).First(&security).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSecurityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &security, nil
}

// List returns a paginated list of securities ordered by symbol, optionally
// filtered by a case-insensitive search over symbol and name.
func (s *registryService) List(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Security], error) {
	page.Defaults()

	base := s.db.Model(&models.Security{})
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		base = base.Where("LOWER(symbol) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var securities []models.Security
	if err := base.Preload("Industry").Preload("SecurityType").Preload("VarianceTier").
		Order("symbol ASC").Scopes(pagination.Paginate(page)).Find(&securities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(securities, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// resolveCode maps a catalog code onto its row, translating a missing code
// into the registry's invalid-reference error.
func (s *registryService) resolveCode(category models.CatalogCategory, code string) (*models.CatalogEntry, error) {
	entry, err := s.catalog.Get(category, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, apperrors.ErrCatalogEntryNotFound) || errors.Is(err, apperrors.ErrUnknownCategory) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidReference,
				"Unknown "+string(category)+" code: "+code)
		}
		return nil, err
	}
	return entry, nil
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
