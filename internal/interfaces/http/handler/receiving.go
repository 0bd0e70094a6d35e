package handler

import (
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	inventoryapp "github.com/inventory-hub/backend/internal/application/inventory"
	receivingapp "github.com/inventory-hub/backend/internal/application/receiving"
	"github.com/inventory-hub/backend/internal/interfaces/http/dto"
	"github.com/inventory-hub/backend/internal/interfaces/http/middleware"
)

// DefaultMaxUploadSize bounds uploaded invoice files when no limit is configured
const DefaultMaxUploadSize int64 = 10 << 20

// ReceivingHandler handles receiving session API endpoints
type ReceivingHandler struct {
	BaseHandler
	receivingService *receivingapp.ReceivingService
	ledgerService    *inventoryapp.StockLedgerService
	maxUploadSize    int64
}

// NewReceivingHandler creates a new ReceivingHandler
func NewReceivingHandler(
	receivingService *receivingapp.ReceivingService,
	ledgerService *inventoryapp.StockLedgerService,
	maxUploadSize int64,
) *ReceivingHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &ReceivingHandler{
		receivingService: receivingService,
		ledgerService:    ledgerService,
		maxUploadSize:    maxUploadSize,
	}
}

// Create handles POST /receiving/sessions
func (h *ReceivingHandler) Create(c *gin.Context) {
	var req receivingapp.CreateSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.receivingService.Create(c.Request.Context(), req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// Import handles POST /receiving/sessions/import, a multipart upload of a CSV or XLSX invoice
func (h *ReceivingHandler) Import(c *gin.Context) {
	header, ok := h.importHeader(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	if file.Size > h.maxUploadSize {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Invoice file exceeds maximum allowed size")
		return
	}

	f, err := file.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadSize+1))
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		h.Error(c, dto.ErrCodeRequestTooLarge, "Invoice file exceeds maximum allowed size")
		return
	}

	result, err := h.receivingService.Import(c.Request.Context(), header, file.Filename, data, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// importHeader reads the session fields of a multipart import form
func (h *ReceivingHandler) importHeader(c *gin.Context) (receivingapp.SessionHeader, bool) {
	var header receivingapp.SessionHeader

	supplierID, err := uuid.Parse(strings.TrimSpace(c.PostForm("supplier_id")))
	if err != nil {
		h.BadRequest(c, "supplier_id is required and must be a UUID")
		return header, false
	}
	header.SupplierID = supplierID
	header.InvoiceNumber = strings.TrimSpace(c.PostForm("invoice_number"))
	header.Notes = c.PostForm("notes")

	if raw := strings.TrimSpace(c.PostForm("warehouse_id")); raw != "" {
		warehouseID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "warehouse_id must be a UUID")
			return header, false
		}
		header.WarehouseID = &warehouseID
	}
	if raw := strings.TrimSpace(c.PostForm("invoice_date")); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			h.BadRequest(c, "invoice_date must be formatted as YYYY-MM-DD")
			return header, false
		}
		header.InvoiceDate = &date
	}

	if err := binding.Validator.ValidateStruct(&header); err != nil {
		middleware.HandleValidationError(c, err)
		return header, false
	}
	return header, true
}

// List handles GET /receiving/sessions
func (h *ReceivingHandler) List(c *gin.Context) {
	var filter receivingapp.SessionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	supplierID, ok := h.optionalUUIDQuery(c, "supplier_id")
	if !ok {
		return
	}
	filter.SupplierID = supplierID

	sessions, total, err := h.receivingService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, sessions, total, filter.Page, filter.PageSize)
}

// Get handles GET /receiving/sessions/:id
func (h *ReceivingHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	session, err := h.receivingService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Delete handles DELETE /receiving/sessions/:id
func (h *ReceivingHandler) Delete(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.receivingService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Scan handles POST /receiving/sessions/:id/scan
func (h *ReceivingHandler) Scan(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req receivingapp.ScanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.receivingService.Scan(c.Request.Context(), id, req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SetQuantity handles PUT /receiving/sessions/:id/lines/:line/quantity
func (h *ReceivingHandler) SetQuantity(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	line, ok := h.lineParam(c)
	if !ok {
		return
	}
	var req receivingapp.SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.receivingService.SetQuantity(c.Request.Context(), id, line, req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AssignProduct handles PUT /receiving/sessions/:id/lines/:line/product
func (h *ReceivingHandler) AssignProduct(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	line, ok := h.lineParam(c)
	if !ok {
		return
	}
	var req receivingapp.AssignProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.receivingService.AssignProduct(c.Request.Context(), id, line, req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AcceptAll handles POST /receiving/sessions/:id/accept-all
func (h *ReceivingHandler) AcceptAll(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req receivingapp.AcceptAllRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.receivingService.AcceptAll(c.Request.Context(), id, req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reset handles POST /receiving/sessions/:id/reset
func (h *ReceivingHandler) Reset(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req receivingapp.ResetRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.receivingService.ResetAll(c.Request.Context(), id, req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Pause handles POST /receiving/sessions/:id/pause
func (h *ReceivingHandler) Pause(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	session, err := h.receivingService.Pause(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Resume handles POST /receiving/sessions/:id/resume
func (h *ReceivingHandler) Resume(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	session, err := h.receivingService.Resume(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Cancel handles POST /receiving/sessions/:id/cancel
func (h *ReceivingHandler) Cancel(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req receivingapp.CancelRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	session, err := h.receivingService.Cancel(c.Request.Context(), id, req, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Finalize handles POST /receiving/sessions/:id/finalize
func (h *ReceivingHandler) Finalize(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.receivingService.Finalize(c.Request.Context(), id, h.operator(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Summary handles GET /receiving/sessions/:id/summary
func (h *ReceivingHandler) Summary(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.receivingService.Summary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Receipt handles GET /receiving/sessions/:id/receipt
func (h *ReceivingHandler) Receipt(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receivingService.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// Events handles GET /receiving/sessions/:id/events
func (h *ReceivingHandler) Events(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var filter receivingapp.EventListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	events, total, err := h.receivingService.Events(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	pageSize := filter.PageSize
	if pageSize == 0 {
		pageSize = 100
	}
	h.SuccessWithMeta(c, events, total, filter.Page, pageSize)
}

// ApplyToLedger handles POST /receiving/sessions/:id/ledger.
// Applying the same receipt again only reports duplicates.
func (h *ReceivingHandler) ApplyToLedger(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receivingService.Receipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.ledgerService.ApplyReceipt(c.Request.Context(), receipt)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Movements handles GET /receiving/sessions/:id/movements
func (h *ReceivingHandler) Movements(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	movements, err := h.ledgerService.Movements(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Balance handles GET /inventory/balance?product_id=&warehouse_id=
func (h *ReceivingHandler) Balance(c *gin.Context) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "product_id is required and must be a UUID")
		return
	}
	warehouseID, ok := h.optionalUUIDQuery(c, "warehouse_id")
	if !ok {
		return
	}
	if warehouseID == nil {
		warehouseID = &uuid.Nil
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), productID, *warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}
