package csvimport

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EntityType names a bulk-importable data set.
type EntityType string

const (
	EntityPriceCeilings  EntityType = "price_ceilings"
	EntityInventoryItems EntityType = "inventory_items"
)

// ValidEntityTypes lists every importable entity type.
func ValidEntityTypes() []EntityType {
	return []EntityType{
		EntityPriceCeilings,
		EntityInventoryItems,
	}
}

// IsValidEntityType reports whether t names an importable entity type.
func IsValidEntityType(t string) bool {
	for _, valid := range ValidEntityTypes() {
		if string(valid) == t {
			return true
		}
	}
	return false
}

// ImportState tracks an import session through its lifecycle.
type ImportState string

const (
	StateCreated    ImportState = "created"
	StateValidating ImportState = "validating"
	StateValidated  ImportState = "validated"
	StateImporting  ImportState = "importing"
	StateCompleted  ImportState = "completed"
	StateFailed     ImportState = "failed"
	StateCancelled  ImportState = "cancelled"
)

func (s ImportState) terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// ImportSession records one upload: who sent which file, how far
// processing got and what validation found.
type ImportSession struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	EntityType  EntityType       `json:"entity_type"`
	FileName    string           `json:"file_name"`
	FileSize    int64            `json:"file_size"`
	State       ImportState      `json:"state"`
	TotalRows   int              `json:"total_rows"`
	ValidRows   int              `json:"valid_rows"`
	ErrorRows   int              `json:"error_rows"`
	Errors      []RowError       `json:"errors,omitempty"`
	Preview     []map[string]any `json:"preview,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// NewImportSession starts a session in the created state.
func NewImportSession(userID uuid.UUID, entityType EntityType, fileName string, fileSize int64) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:         uuid.New(),
		UserID:     userID,
		EntityType: entityType,
		FileName:   fileName,
		FileSize:   fileSize,
		State:      StateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
		Preview:    make([]map[string]any, 0),
		Errors:     make([]RowError, 0),
	}
}

// UpdateState moves the session to state, stamping CompletedAt when the
// state is terminal.
func (s *ImportSession) UpdateState(state ImportState) {
	now := time.Now()
	s.State = state
	s.UpdatedAt = now
	if state.terminal() {
		s.CompletedAt = &now
	}
}

// SetValidationResult copies the validation outcome onto the session.
func (s *ImportSession) SetValidationResult(result *ValidationResult) {
	s.TotalRows = result.TotalRows
	s.ValidRows = result.ValidRows
	s.ErrorRows = result.ErrorRows
	s.Errors = result.Errors
	s.Preview = result.Preview
	s.UpdatedAt = time.Now()
}

// IsValid reports whether validation found no bad rows.
func (s *ImportSession) IsValid() bool {
	return s.ErrorRows == 0
}

// ImportContext bundles the moving parts of one import run: parser,
// validators, the rows that passed and the rows that failed.
type ImportContext struct {
	ctx             context.Context
	cancel          context.CancelFunc
	session         *ImportSession
	parser          *CSVParser
	fieldValidator  *FieldValidator
	refValidator    *ReferenceValidator
	uniqueValidator *UniquenessValidator
	errors          *ErrorCollection
	validRows       []*Row
	errorRowNums    map[int]bool
	mu              sync.RWMutex
}

// ImportContextOption configures an ImportContext.
type ImportContextOption func(*ImportContext)

// WithFieldValidator sets the per-field validator.
func WithFieldValidator(v *FieldValidator) ImportContextOption {
	return func(ic *ImportContext) {
		ic.fieldValidator = v
	}
}

// WithReferenceValidator sets the foreign-reference validator.
func WithReferenceValidator(v *ReferenceValidator) ImportContextOption {
	return func(ic *ImportContext) {
		ic.refValidator = v
	}
}

// WithUniquenessValidator sets the uniqueness validator.
func WithUniquenessValidator(v *UniquenessValidator) ImportContextOption {
	return func(ic *ImportContext) {
		ic.uniqueValidator = v
	}
}

// NewImportContext creates a context for one import run.
func NewImportContext(ctx context.Context, session *ImportSession, opts ...ImportContextOption) *ImportContext {
	runCtx, cancel := context.WithCancel(ctx)

	ic := &ImportContext{
		ctx:          runCtx,
		cancel:       cancel,
		session:      session,
		errors:       NewErrorCollection(100),
		validRows:    make([]*Row, 0),
		errorRowNums: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

// Context returns the run's cancellable context.
func (ic *ImportContext) Context() context.Context {
	return ic.ctx
}

// Cancel aborts the run and marks the session cancelled.
func (ic *ImportContext) Cancel() {
	ic.cancel()
	ic.session.UpdateState(StateCancelled)
}

// Session returns the session this run belongs to.
func (ic *ImportContext) Session() *ImportSession {
	return ic.session
}

// Parser returns the CSV parser.
func (ic *ImportContext) Parser() *CSVParser {
	return ic.parser
}

// SetParser sets the CSV parser.
func (ic *ImportContext) SetParser(p *CSVParser) {
	ic.parser = p
}

// ValidRows returns the rows that passed every validator.
func (ic *ImportContext) ValidRows() []*Row {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.validRows
}

// AddValidRow records a row that passed validation.
func (ic *ImportContext) AddValidRow(row *Row) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.validRows = append(ic.validRows, row)
}

// MarkRowError records that a row failed validation.
func (ic *ImportContext) MarkRowError(rowNum int) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	ic.errorRowNums[rowNum] = true
}

// HasRowError reports whether a row failed validation.
func (ic *ImportContext) HasRowError(rowNum int) bool {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.errorRowNums[rowNum]
}

// ErrorCount returns how many distinct rows failed.
func (ic *ImportContext) ErrorCount() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return len(ic.errorRowNums)
}

// Errors returns the run-level error collection.
func (ic *ImportContext) Errors() *ErrorCollection {
	return ic.errors
}

// Processing limits applied when no option overrides them.
const (
	defaultMaxFileSize = 10 * 1024 * 1024
	defaultMaxRows     = 100000
	defaultMaxErrors   = 100
	defaultPreviewRows = 5
)

// ImportProcessor validates CSV uploads against field rules and
// optional reference and uniqueness lookups.
type ImportProcessor struct {
	maxFileSize     int64
	maxRows         int
	maxErrors       int
	previewRows     int
	referenceLookup func(refType, value string) (bool, error)
	uniqueLookup    func(entityType, field, value string) (bool, error)
}

// ProcessorOption configures an ImportProcessor.
type ProcessorOption func(*ImportProcessor)

// WithMaxFileSize caps the accepted upload size.
func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxFileSize = size
	}
}

// WithMaxRows caps the number of data rows processed.
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxRows = rows
	}
}

// WithMaxErrors caps how many row errors are collected.
func WithMaxErrors(errors int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxErrors = errors
	}
}

// WithPreviewRows sets how many valid rows land in the preview.
func WithPreviewRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.previewRows = rows
	}
}

// WithReferenceLookup enables reference validation through fn.
func WithReferenceLookup(fn func(refType, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) {
		p.referenceLookup = fn
	}
}

// WithUniqueLookup enables uniqueness validation through fn.
func WithUniqueLookup(fn func(entityType, field, value string) (bool, error)) ProcessorOption {
	return func(p *ImportProcessor) {
		p.uniqueLookup = fn
	}
}

// NewImportProcessor creates a processor with the default limits.
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: defaultMaxFileSize,
		maxRows:     defaultMaxRows,
		maxErrors:   defaultMaxErrors,
		previewRows: defaultPreviewRows,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks a CSV file without keeping the valid rows.
func (p *ImportProcessor) Validate(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule) (*ValidationResult, error) {
	result, _, err := p.ValidateAndCollect(ctx, session, reader, rules)
	return result, err
}

// ValidateAndCollect checks a CSV file and also returns the rows that
// passed, for callers that go on to import them. The session moves to
// validated or failed depending on the outcome.
func (p *ImportProcessor) ValidateAndCollect(ctx context.Context, session *ImportSession, reader io.Reader, rules []FieldRule) (*ValidationResult, []*Row, error) {
	session.UpdateState(StateValidating)

	parser, err := NewCSVParser(reader)
	if err != nil {
		session.UpdateState(StateFailed)
		return nil, nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		session.UpdateState(StateFailed)
		return nil, nil, err
	}

	importCtx := p.newRunContext(ctx, session, rules)
	importCtx.SetParser(parser)

	result := NewValidationResult(session.ID.String())
	counts, err := p.scanRows(ctx, session, parser, rules, importCtx, result)
	if err != nil {
		return nil, nil, err
	}

	result.SetCounts(counts.total, counts.valid, counts.errored)
	result.SetErrors(p.gatherErrors(importCtx))

	session.SetValidationResult(result)
	if counts.errored > 0 {
		session.UpdateState(StateFailed)
	} else {
		session.UpdateState(StateValidated)
	}

	return result, importCtx.ValidRows(), nil
}

func (p *ImportProcessor) newRunContext(ctx context.Context, session *ImportSession, rules []FieldRule) *ImportContext {
	var refValidator *ReferenceValidator
	if p.referenceLookup != nil {
		refValidator = NewReferenceValidator(p.referenceLookup, p.maxErrors)
	}

	var uniqueValidator *UniquenessValidator
	if p.uniqueLookup != nil {
		uniqueValidator = NewUniquenessValidator(p.uniqueLookup, p.maxErrors)
	}

	return NewImportContext(ctx, session,
		WithFieldValidator(NewFieldValidator(rules, p.maxErrors)),
		WithReferenceValidator(refValidator),
		WithUniquenessValidator(uniqueValidator),
	)
}

type rowCounts struct {
	total   int
	valid   int
	errored int
}

// scanRows walks the file row by row, validating each and keeping the
// first previewRows valid rows for the preview.
func (p *ImportProcessor) scanRows(ctx context.Context, session *ImportSession, parser *CSVParser, rules []FieldRule, importCtx *ImportContext, result *ValidationResult) (rowCounts, error) {
	var counts rowCounts

	for {
		select {
		case <-ctx.Done():
			session.UpdateState(StateCancelled)
			return counts, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			importCtx.Errors().Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			counts.errored++
			continue
		}
		if row.IsEmpty() {
			continue
		}

		counts.total++
		if counts.total > p.maxRows {
			importCtx.Errors().Add(NewRowError(row.LineNumber, "", ErrCodeImportValidation,
				"exceeded maximum number of rows"))
			return counts, nil
		}

		if p.rowFails(row, rules, importCtx, session) {
			counts.errored++
			importCtx.MarkRowError(row.LineNumber)
			continue
		}

		counts.valid++
		importCtx.AddValidRow(row)
		if len(result.Preview) < p.previewRows {
			result.Preview = append(result.Preview, previewOf(row))
		}
	}
}

// rowFails runs every configured validator over the row. All validators
// run even after one fails, so the report covers every problem at once.
func (p *ImportProcessor) rowFails(row *Row, rules []FieldRule, importCtx *ImportContext, session *ImportSession) bool {
	failed := !importCtx.fieldValidator.ValidateRow(row)

	if importCtx.refValidator != nil {
		for _, rule := range rules {
			if rule.Reference == "" {
				continue
			}
			if !importCtx.refValidator.ValidateReference(row.LineNumber, rule.Column, rule.Reference, row.Get(rule.Column)) {
				failed = true
			}
		}
	}

	if importCtx.uniqueValidator != nil {
		for _, rule := range rules {
			if !rule.Unique {
				continue
			}
			if !importCtx.uniqueValidator.ValidateUnique(row.LineNumber, rule.Column, string(session.EntityType), row.Get(rule.Column)) {
				failed = true
			}
		}
	}

	return failed
}

// gatherErrors merges the run-level and per-validator error lists,
// still capped at maxErrors.
func (p *ImportProcessor) gatherErrors(importCtx *ImportContext) *ErrorCollection {
	merged := NewErrorCollection(p.maxErrors)
	for _, e := range importCtx.Errors().Errors() {
		merged.Add(e)
	}
	for _, e := range importCtx.fieldValidator.Errors().Errors() {
		merged.Add(e)
	}
	if importCtx.refValidator != nil {
		for _, e := range importCtx.refValidator.Errors().Errors() {
			merged.Add(e)
		}
	}
	if importCtx.uniqueValidator != nil {
		for _, e := range importCtx.uniqueValidator.Errors().Errors() {
			merged.Add(e)
		}
	}
	return merged
}

func previewOf(row *Row) map[string]any {
	preview := make(map[string]any, len(row.Data))
	for k, v := range row.Data {
		preview[k] = v
	}
	return preview
}

// SessionStore persists import sessions between the upload, preview and
// confirm requests.
type SessionStore interface {
	Save(session *ImportSession) error
	Get(id uuid.UUID) (*ImportSession, error)
	GetByUser(userID uuid.UUID, limit int) ([]*ImportSession, error)
	Delete(id uuid.UUID) error
}

// InMemorySessionStore keeps sessions in process memory with a TTL.
type InMemorySessionStore struct {
	sessions map[uuid.UUID]*ImportSession
	mu       sync.RWMutex
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewInMemorySessionStore creates a store whose sessions expire after
// ttl. A background goroutine sweeps expired entries until Stop.
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		sessions: make(map[uuid.UUID]*ImportSession),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go store.sweepLoop()
	return store
}

func (s *InMemorySessionStore) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Stop ends the background sweep.
func (s *InMemorySessionStore) Stop() {
	close(s.stopCh)
}

func (s *InMemorySessionStore) expired(session *ImportSession) bool {
	return time.Since(session.CreatedAt) > s.ttl
}

// Save stores or replaces a session.
func (s *InMemorySessionStore) Save(session *ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// Get returns the session with the given ID, or nil when it does not
// exist or has expired.
func (s *InMemorySessionStore) Get(id uuid.UUID) (*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil, nil
	}
	return session, nil
}

// GetByUser returns up to limit unexpired sessions created by the user.
func (s *InMemorySessionStore) GetByUser(userID uuid.UUID, limit int) ([]*ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ImportSession
	for _, session := range s.sessions {
		if session.UserID != userID || s.expired(session) {
			continue
		}
		result = append(result, session)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Delete removes a session.
func (s *InMemorySessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Cleanup removes every expired session.
func (s *InMemorySessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}
