package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReceivingSessionRepository implements ReceivingSessionRepository using GORM.
// Lines live in their own table and are written together with the session.
type GormReceivingSessionRepository struct {
	db *gorm.DB
}

// NewGormReceivingSessionRepository creates a new GormReceivingSessionRepository
func NewGormReceivingSessionRepository(db *gorm.DB) *GormReceivingSessionRepository {
	return &GormReceivingSessionRepository{db: db}
}

// FindByID loads a session with its lines in line order
func (r *GormReceivingSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*receiving.ReceivingSession, error) {
	return r.load(ctx, false, "id = ?", id)
}

// FindByIDForUpdate loads a session and, on PostgreSQL, holds its row lock until the transaction ends
func (r *GormReceivingSessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*receiving.ReceivingSession, error) {
	return r.load(ctx, true, "id = ?", id)
}

// FindBySupplierAndInvoice finds the session of an invoice
func (r *GormReceivingSessionRepository) FindBySupplierAndInvoice(ctx context.Context, supplierID uuid.UUID, invoiceNumber string) (*receiving.ReceivingSession, error) {
	return r.load(ctx, false, "supplier_id = ? AND invoice_number = ?", supplierID, invoiceNumber)
}

func (r *GormReceivingSessionRepository) load(ctx context.Context, lock bool, query string, args ...any) (*receiving.ReceivingSession, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = forUpdate(db)
	}
	var model models.ReceivingSessionModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err, "Receiving session")
	}

	var lines []models.ReceivingLineModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", model.ID).
		Order("line_number ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(lines), nil
}

// FindAll lists sessions matching the filter with their lines, and the total count
func (r *GormReceivingSessionRepository) FindAll(ctx context.Context, filter receiving.SessionFilter) ([]receiving.ReceivingSession, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ReceivingSessionModel{})
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(source_file) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ReceivingSessionSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var sessionModels []models.ReceivingSessionModel
	if err := applyPagination(query, filter.Filter).Find(&sessionModels).Error; err != nil {
		return nil, 0, err
	}
	if len(sessionModels) == 0 {
		return []receiving.ReceivingSession{}, total, nil
	}

	ids := make([]uuid.UUID, len(sessionModels))
	for i := range sessionModels {
		ids[i] = sessionModels[i].ID
	}
	var lineModels []models.ReceivingLineModel
	if err := r.db.WithContext(ctx).
		Where("session_id IN ?", ids).
		Order("line_number ASC").
		Find(&lineModels).Error; err != nil {
		return nil, 0, err
	}
	linesBySession := make(map[uuid.UUID][]models.ReceivingLineModel, len(sessionModels))
	for _, line := range lineModels {
		linesBySession[line.SessionID] = append(linesBySession[line.SessionID], line)
	}

	sessions := make([]receiving.ReceivingSession, len(sessionModels))
	for i := range sessionModels {
		sessions[i] = *sessionModels[i].ToDomain(linesBySession[sessionModels[i].ID])
	}
	return sessions, total, nil
}

// Create inserts a new session and all of its lines.
// A second session for the same supplier invoice fails with ALREADY_EXISTS.
func (r *GormReceivingSessionRepository) Create(ctx context.Context, session *receiving.ReceivingSession) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.ReceivingSessionModelFromDomain(session)).Error; err != nil {
		return translateError(err, "Receiving session")
	}
	if len(session.Lines) == 0 {
		return nil
	}
	lines := make([]*models.ReceivingLineModel, len(session.Lines))
	for i := range session.Lines {
		lines[i] = models.ReceivingLineModelFromDomain(&session.Lines[i])
	}
	return translateError(db.CreateInBatches(lines, 200).Error, "Receiving line")
}

// SaveWithLines writes the session header under an optimistic version check,
// then rewrites every line. Lines are never added or removed after creation.
func (r *GormReceivingSessionRepository) SaveWithLines(ctx context.Context, session *receiving.ReceivingSession) error {
	db := r.db.WithContext(ctx)
	model := models.ReceivingSessionModelFromDomain(session)
	if err := saveVersioned(db, model, model.ID, session.Version); err != nil {
		return err
	}

	for i := range session.Lines {
		line := models.ReceivingLineModelFromDomain(&session.Lines[i])
		err := db.Model(line).
			Where("id = ? AND session_id = ?", line.ID, session.ID).
			Select("product_id", "received_qty", "status", "match_method", "updated_at").
			Updates(line).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the session, its lines and its scan events
func (r *GormReceivingSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("session_id = ?", id).Delete(&models.ScanEventModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("session_id = ?", id).Delete(&models.ReceivingLineModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.ReceivingSessionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Receiving session")
	}
	return nil
}

// Ensure GormReceivingSessionRepository implements ReceivingSessionRepository
var _ receiving.ReceivingSessionRepository = (*GormReceivingSessionRepository)(nil)
