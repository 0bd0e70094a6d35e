package models

import (
	"github.com/inventory-hub/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier domain entity.
type SupplierModel struct {
	AggregateModel
	Code              string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_suppliers_code"`
	Name              string                 `gorm:"type:varchar(200);not null"`
	ProductCodePrefix string                 `gorm:"type:varchar(20);not null;default:''"`
	Status            partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier entity.
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		Name:              m.Name,
		ProductCodePrefix: m.ProductCodePrefix,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Supplier entity.
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.SetRoot(s.BaseAggregateRoot)
	m.Code = s.Code
	m.Name = s.Name
	m.ProductCodePrefix = s.ProductCodePrefix
	m.Status = s.Status
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier entity.
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}
