package pricing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "folio/internal/errors"
	"folio/internal/logger"
	"folio/internal/models"
)

// Service couples a Resolver with quote persistence: every resolution is
// appended to the price_quotes log, which is the system of record for
// "current price". The append is best effort: a failed write is logged and
// the resolved price is returned regardless.
type Service struct {
	resolver *Resolver
	db       *gorm.DB
}

// NewService creates a new pricing Service.
func NewService(resolver *Resolver, db *gorm.DB) *Service {
	return &Service{resolver: resolver, db: db}
}

// Resolve resolves a current price for the security and records the quote.
// It never fails.
func (s *Service) Resolve(ctx context.Context, securityID, symbol string) Resolution {
	res := s.resolver.Resolve(ctx, symbol)

	quote := models.PriceQuote{
		SecurityID: securityID,
		Price:      res.Price,
		Currency:   res.Currency,
		Source:     res.Source,
		ObservedAt: res.ObservedAt,
	}
	if err := s.db.Create(&quote).Error; err != nil {
		logger.Get().Warnw("failed to record price quote",
			"symbol", symbol, "security_id", securityID, "error", err)
	}

	return res
}

// Latest returns the most recent quote for a security by observation time.
func (s *Service) Latest(securityID string) (*models.PriceQuote, error) {
	var quote models.PriceQuote
	err := s.db.Where("security_id = ?", securityID).
		Order("observed_at DESC").First(&quote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &quote, nil
}

// QuoteInput is one externally supplied quote for bulk ingestion.
type QuoteInput struct {
	SecurityID string
	Price      int64
	Currency   string
	ObservedAt time.Time
}

// RecordQuotes bulk-appends externally observed quotes, skipping entries
// already recorded at the same observation time. Ingested quotes are tagged
// live: the pipeline only pushes prices it actually observed upstream.
func (s *Service) RecordQuotes(quotes []QuoteInput) (int, error) {
	if len(quotes) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quotes array is empty")
	}

	count := 0
	for _, q := range quotes {
		if q.Price <= 0 {
			return count, apperrors.WithMessage(apperrors.ErrInvalidInput, "Price must be positive")
		}
		quote := models.PriceQuote{
			SecurityID: q.SecurityID,
			Price:      q.Price,
			Currency:   q.Currency,
			Source:     models.QuoteSourceLive,
			ObservedAt: q.ObservedAt,
		}
		result := s.db.Where("security_id = ? AND observed_at = ?", quote.SecurityID, quote.ObservedAt).
			FirstOrCreate(&quote)
		if result.Error != nil {
			return count, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
		}
		if result.RowsAffected > 0 {
			count++
		}
	}

	return count, nil
}

// History returns quotes for a security within a time range, newest first.
func (s *Service) History(securityID string, from, to time.Time, limit, offset int) ([]models.PriceQuote, int64, error) {
	base := s.db.Model(&models.PriceQuote{}).
		Where("security_id = ? AND observed_at >= ? AND observed_at <= ?", securityID, from, to)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var quotes []models.PriceQuote
	if err := base.Order("observed_at DESC").Limit(limit).Offset(offset).Find(&quotes).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return quotes, totalItems, nil
}
