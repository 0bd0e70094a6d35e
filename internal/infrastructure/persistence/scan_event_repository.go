package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/receiving"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"github.com/inventory-hub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScanEventRepository implements ScanEventRepository using GORM.
// Rows are only ever inserted.
type GormScanEventRepository struct {
	db *gorm.DB
}

// NewGormScanEventRepository creates a new GormScanEventRepository
func NewGormScanEventRepository(db *gorm.DB) *GormScanEventRepository {
	return &GormScanEventRepository{db: db}
}

// Append stores new events
func (r *GormScanEventRepository) Append(ctx context.Context, events ...receiving.ScanEvent) error {
	if len(events) == 0 {
		return nil
	}
	eventModels := make([]*models.ScanEventModel, len(events))
	for i := range events {
		eventModels[i] = models.ScanEventModelFromDomain(&events[i])
	}
	return r.db.WithContext(ctx).CreateInBatches(eventModels, 200).Error
}

// FindBySession lists a session's events in the filter's order, oldest first by default
func (r *GormScanEventRepository) FindBySession(ctx context.Context, sessionID uuid.UUID, filter shared.Filter) ([]receiving.ScanEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ScanEventModel{}).Where("session_id = ?", sessionID)
	if kind, ok := filter.Filters["kind"]; ok && kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ScanEventSortFields, "scanned_at")
	orderDir := "ASC"
	if filter.OrderDir != "" {
		orderDir = ValidateSortOrder(filter.OrderDir)
	}

	var eventModels []models.ScanEventModel
	if err := applyPagination(query.Order(orderBy+" "+orderDir).Order("id ASC"), filter).
		Find(&eventModels).Error; err != nil {
		return nil, 0, err
	}

	events := make([]receiving.ScanEvent, len(eventModels))
	for i := range eventModels {
		events[i] = eventModels[i].ToDomain()
	}
	return events, total, nil
}

// Tally counts scans and unexpected scans (scans that matched no line) of a session
func (r *GormScanEventRepository) Tally(ctx context.Context, sessionID uuid.UUID) (receiving.ScanTally, error) {
	var row struct {
		TotalScans      int
		UnexpectedScans int
	}
	err := r.db.WithContext(ctx).Model(&models.ScanEventModel{}).
		Select(
			"COUNT(*) AS total_scans, "+
				"COALESCE(SUM(CASE WHEN line_id IS NULL THEN 1 ELSE 0 END), 0) AS unexpected_scans",
		).
		Where("session_id = ? AND kind = ?", sessionID, receiving.ScanEventKindScan).
		Scan(&row).Error
	if err != nil {
		return receiving.ScanTally{}, err
	}
	return receiving.ScanTally{TotalScans: row.TotalScans, UnexpectedScans: row.UnexpectedScans}, nil
}

// Ensure GormScanEventRepository implements ScanEventRepository
var _ receiving.ScanEventRepository = (*GormScanEventRepository)(nil)
