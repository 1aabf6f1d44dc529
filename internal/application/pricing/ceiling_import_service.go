package pricing

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/pricing"
	"github.com/opas/backend/internal/domain/shared"
	csvimport "github.com/opas/backend/internal/infrastructure/import"
)

// Expected CSV columns for a ceiling import file.
const (
	importColProductCode   = "product_code"
	importColProductName   = "product_name"
	importColCategory      = "category"
	importColCeilingPrice  = "ceiling_price"
	importColUnit          = "unit"
	importColEffectiveFrom = "effective_from"
)

const importDateFormat = "2006-01-02"

// CeilingImportService imports price ceilings from an uploaded CSV file.
// The file is validated row by row; a file with any invalid row is rejected
// as a whole so a price schedule is never published half-applied.
type CeilingImportService struct {
	ceilingRepo pricing.CeilingRepository
	sessions    csvimport.SessionStore
	logger      *zap.Logger
}

// NewCeilingImportService creates a new ceiling import service
func NewCeilingImportService(
	ceilingRepo pricing.CeilingRepository,
	sessions csvimport.SessionStore,
	logger *zap.Logger,
) *CeilingImportService {
	return &CeilingImportService{
		ceilingRepo: ceilingRepo,
		sessions:    sessions,
		logger:      logger,
	}
}

// ImportCeilingsInput contains the input for a ceiling import
type ImportCeilingsInput struct {
	UserID   uuid.UUID
	FileName string
	FileSize int64
	Reader   io.Reader

	// DryRun validates the file without creating any ceilings
	DryRun bool
}

// ImportCeilingsResult contains the outcome of a ceiling import
type ImportCeilingsResult struct {
	SessionID uuid.UUID
	State     csvimport.ImportState
	TotalRows int
	ValidRows int
	ErrorRows int
	Created   int
	Errors    []csvimport.RowError
	Preview   []map[string]any
}

// ceilingFieldRules returns the validation rules for a ceiling import file.
// product_code is marked unique so rows for products that already carry an
// active ceiling fail validation instead of silently stacking ceilings.
func ceilingFieldRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field(importColProductCode).Required().String().MaxLength(50).Unique().Build(),
		csvimport.Field(importColProductName).Required().String().MaxLength(200).Build(),
		csvimport.Field(importColCategory).Required().String().MaxLength(50).Build(),
		csvimport.Field(importColCeilingPrice).Required().Decimal().
			MinValue(decimal.NewFromFloat(0.01)).Build(),
		csvimport.Field(importColUnit).Required().String().MaxLength(20).Build(),
		csvimport.Field(importColEffectiveFrom).Date().DateFormat(importDateFormat).Build(),
	}
}

// Import validates the uploaded CSV and, unless DryRun is set, creates a
// ceiling for every row. Products that already have an active ceiling are
// reported as row errors during validation.
func (s *CeilingImportService) Import(ctx context.Context, input ImportCeilingsInput) (*ImportCeilingsResult, error) {
	session := csvimport.NewImportSession(
		input.UserID, csvimport.EntityPriceCeilings, input.FileName, input.FileSize)
	if err := s.sessions.Save(session); err != nil {
		return nil, err
	}

	processor := csvimport.NewImportProcessor(
		csvimport.WithUniqueLookup(s.activeCeilingExists(ctx)),
	)

	result, rows, err := processor.ValidateAndCollect(ctx, session, input.Reader, ceilingFieldRules())
	if err != nil {
		s.logger.Error("Ceiling import failed to parse",
			zap.String("session_id", session.ID.String()),
			zap.String("file_name", input.FileName),
			zap.Error(err))
		_ = s.sessions.Save(session)
		return nil, shared.NewDomainError("IMPORT_PARSE_FAILED", err.Error())
	}

	out := &ImportCeilingsResult{
		SessionID: session.ID,
		State:     session.State,
		TotalRows: result.TotalRows,
		ValidRows: result.ValidRows,
		ErrorRows: result.ErrorRows,
		Errors:    result.Errors,
		Preview:   result.Preview,
	}

	if result.ErrorRows > 0 || input.DryRun {
		_ = s.sessions.Save(session)
		return out, nil
	}

	session.UpdateState(csvimport.StateImporting)
	_ = s.sessions.Save(session)

	created := 0
	for _, row := range rows {
		ceiling, err := s.ceilingFromRow(row)
		if err != nil {
			session.UpdateState(csvimport.StateFailed)
			_ = s.sessions.Save(session)
			return nil, err
		}
		if err := s.ceilingRepo.Create(ctx, ceiling); err != nil {
			session.UpdateState(csvimport.StateFailed)
			_ = s.sessions.Save(session)
			return nil, err
		}
		created++
	}

	session.UpdateState(csvimport.StateCompleted)
	_ = s.sessions.Save(session)

	out.State = session.State
	out.Created = created

	s.logger.Info("Ceiling import completed",
		zap.String("session_id", session.ID.String()),
		zap.String("file_name", input.FileName),
		zap.Int("created", created))

	return out, nil
}

// GetSession returns a previously created import session
func (s *CeilingImportService) GetSession(ctx context.Context, sessionID uuid.UUID) (*csvimport.ImportSession, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

// ListSessions returns recent import sessions created by the given admin
func (s *CeilingImportService) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]*csvimport.ImportSession, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.sessions.GetByUser(userID, limit)
}

// activeCeilingExists reports whether a product already has an active ceiling
func (s *CeilingImportService) activeCeilingExists(ctx context.Context) func(entityType, field, value string) (bool, error) {
	return func(entityType, field, value string) (bool, error) {
		if field != importColProductCode {
			return false, nil
		}
		_, err := s.ceilingRepo.FindActiveByProductCode(ctx, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
}

// ceilingFromRow builds a ceiling aggregate from a validated CSV row
func (s *CeilingImportService) ceilingFromRow(row *csvimport.Row) (*pricing.Ceiling, error) {
	price, err := decimal.NewFromString(row.Get(importColCeilingPrice))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "Ceiling price is not a valid number")
	}

	effectiveFrom := time.Now()
	if raw := row.Get(importColEffectiveFrom); raw != "" {
		effectiveFrom, err = time.Parse(importDateFormat, raw)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_DATE", "Effective date is not a valid date")
		}
	}

	return pricing.NewCeiling(
		row.Get(importColProductCode),
		row.Get(importColProductName),
		row.Get(importColCategory),
		price,
		row.Get(importColUnit),
		effectiveFrom,
	)
}
