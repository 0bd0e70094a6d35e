// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - catalog.go: Product and ProductIdentifier
// - partner.go: Supplier
// - receiving.go: ReceivingSession, ReceivingLine, ScanEvent
// - inventory.go: StockMovement, StockBalance
//
// The column layout matches migrations/*.sql; AllModels feeds AutoMigrate in
// development and tests.
package models

// AllModels returns every persistence model in dependency order
func AllModels() []any {
	return []any{
		&SupplierModel{},
		&ProductModel{},
		&ProductIdentifierModel{},
		&ReceivingSessionModel{},
		&ReceivingLineModel{},
		&ScanEventModel{},
		&StockMovementModel{},
		&StockBalanceModel{},
	}
}
