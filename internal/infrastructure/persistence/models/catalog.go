package models

import (
	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product aggregate.
type ProductModel struct {
	AggregateModel
	SKU        string                `gorm:"type:varchar(100);not null;uniqueIndex:idx_products_sku"`
	Name       string                `gorm:"type:varchar(300);not null"`
	SupplierID *uuid.UUID            `gorm:"type:uuid;index"`
	Status     catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.Root(),
		SKU:               m.SKU,
		Name:              m.Name,
		SupplierID:        m.SupplierID,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.SetRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.SupplierID = p.SupplierID
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// ProductIdentifierModel is the persistence model for ProductIdentifier.
// ScopeKey and PrimaryScope are derived columns carrying the uniqueness rules:
// one owner per scope key and at most one primary per slot.
type ProductIdentifierModel struct {
	BaseModel
	ProductID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type         catalog.IdentifierType `gorm:"type:varchar(30);not null"`
	Value        string                 `gorm:"type:varchar(200);not null;index"`
	SupplierID   *uuid.UUID             `gorm:"type:uuid;index"`
	IsPrimary    bool                   `gorm:"not null;default:false"`
	Notes        string                 `gorm:"type:text"`
	ScopeKey     string                 `gorm:"type:varchar(300);not null;uniqueIndex:idx_product_identifiers_scope_key"`
	PrimaryScope *string                `gorm:"type:varchar(100);uniqueIndex:idx_product_identifiers_primary_scope"`
}

// TableName returns the table name for GORM
func (ProductIdentifierModel) TableName() string {
	return "product_identifiers"
}

// ToDomain converts the persistence model to a domain ProductIdentifier.
func (m *ProductIdentifierModel) ToDomain() *catalog.ProductIdentifier {
	return &catalog.ProductIdentifier{
		BaseEntity: m.Entity(),
		ProductID:  m.ProductID,
		Type:       m.Type,
		Value:      m.Value,
		SupplierID: m.SupplierID,
		IsPrimary:  m.IsPrimary,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain ProductIdentifier.
func (m *ProductIdentifierModel) FromDomain(i *catalog.ProductIdentifier) {
	m.SetEntity(i.BaseEntity)
	m.ProductID = i.ProductID
	m.Type = i.Type
	m.Value = i.Value
	m.SupplierID = i.SupplierID
	m.IsPrimary = i.IsPrimary
	m.Notes = i.Notes
	m.ScopeKey = i.ScopeKey()
	m.PrimaryScope = i.PrimaryScopeKey()
}

// ProductIdentifierModelFromDomain creates a new persistence model from a domain ProductIdentifier.
func ProductIdentifierModelFromDomain(i *catalog.ProductIdentifier) *ProductIdentifierModel {
	m := &ProductIdentifierModel{}
	m.FromDomain(i)
	return m
}
