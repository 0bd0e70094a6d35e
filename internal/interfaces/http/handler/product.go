package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/inventory-hub/backend/internal/application/catalog"
)

// ProductHandler handles product and identifier API endpoints
type ProductHandler struct {
	BaseHandler
	productService    *catalogapp.ProductService
	identifierService *catalogapp.IdentifierService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, identifierService *catalogapp.IdentifierService) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		identifierService: identifierService,
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID handles GET /products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Deactivate handles POST /products/:id/deactivate
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /products/:id. Identifiers go with the product.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.productService.Delete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AddIdentifier handles POST /products/:id/identifiers
func (h *ProductHandler) AddIdentifier(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AddIdentifierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	identifier, err := h.identifierService.Add(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, identifier)
}

// AddCompound handles POST /products/:id/identifiers/compound
func (h *ProductHandler) AddCompound(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.AddCompoundRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.identifierService.AddCompound(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListIdentifiers handles GET /products/:id/identifiers
func (h *ProductHandler) ListIdentifiers(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	identifiers, err := h.identifierService.ListIdentifiers(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, identifiers)
}

// Barcodes handles GET /products/:id/barcodes
func (h *ProductHandler) Barcodes(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	barcodes, err := h.identifierService.AllBarcodes(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, barcodes)
}

// Lookup handles GET /identifiers/lookup.
// ?code= is a barcode lookup; ?value=&type=&supplier_id= searches every identifier.
func (h *ProductHandler) Lookup(c *gin.Context) {
	var req catalogapp.LookupRequest
	if !h.bindQuery(c, &req) {
		return
	}
	supplierID, ok := h.optionalUUIDQuery(c, "supplier_id")
	if !ok {
		return
	}
	req.SupplierID = supplierID
	if req.Code == "" && req.Value == "" {
		h.BadRequest(c, "Either code or value is required")
		return
	}

	product, err := h.identifierService.Lookup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Classify handles GET /identifiers/classify
func (h *ProductHandler) Classify(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.BadRequest(c, "code is required")
		return
	}
	h.Success(c, h.identifierService.Classify(code))
}
