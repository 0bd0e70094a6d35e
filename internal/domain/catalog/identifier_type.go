package catalog

// IdentifierType is the kind of a product identifier
type IdentifierType string

const (
	IdentifierTypeEAN               IdentifierType = "ean"
	IdentifierTypeUPC               IdentifierType = "upc"
	IdentifierTypeUnverifiedBarcode IdentifierType = "unverified_barcode"
	IdentifierTypeSupplierSKU       IdentifierType = "supplier_sku"
	IdentifierTypeInternalSKU       IdentifierType = "internal_sku"
	IdentifierTypeManufacturer      IdentifierType = "manufacturer"
	IdentifierTypeCustom            IdentifierType = "custom"
)

// AllIdentifierTypes returns every identifier type in declaration order
func AllIdentifierTypes() []IdentifierType {
	return []IdentifierType{
		IdentifierTypeEAN,
		IdentifierTypeUPC,
		IdentifierTypeUnverifiedBarcode,
		IdentifierTypeSupplierSKU,
		IdentifierTypeInternalSKU,
		IdentifierTypeManufacturer,
		IdentifierTypeCustom,
	}
}

// BarcodeGroup returns the identifier types that share one primary slot per product
func BarcodeGroup() []IdentifierType {
	return []IdentifierType{IdentifierTypeEAN, IdentifierTypeUPC, IdentifierTypeUnverifiedBarcode}
}

// IsValid checks if the identifier type is known
func (t IdentifierType) IsValid() bool {
	switch t {
	case IdentifierTypeEAN, IdentifierTypeUPC, IdentifierTypeUnverifiedBarcode,
		IdentifierTypeSupplierSKU, IdentifierTypeInternalSKU,
		IdentifierTypeManufacturer, IdentifierTypeCustom:
		return true
	}
	return false
}

// String returns the string representation
func (t IdentifierType) String() string {
	return string(t)
}

// IsBarcode reports whether the type belongs to the barcode group
func (t IdentifierType) IsBarcode() bool {
	return t == IdentifierTypeEAN || t == IdentifierTypeUPC || t == IdentifierTypeUnverifiedBarcode
}

// IsGloballyUnique reports whether values of this type are unique across all products
func (t IdentifierType) IsGloballyUnique() bool {
	return t == IdentifierTypeEAN || t == IdentifierTypeUPC || t == IdentifierTypeInternalSKU
}

// Priority orders types when electing a primary from a compound value.
// Lower wins: ean, upc, unverified_barcode, then everything else.
func (t IdentifierType) Priority() int {
	switch t {
	case IdentifierTypeEAN:
		return 0
	case IdentifierTypeUPC:
		return 1
	case IdentifierTypeUnverifiedBarcode:
		return 2
	default:
		return 3
	}
}
