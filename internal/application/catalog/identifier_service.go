package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// IdentifierService manages product identifiers and resolves codes to products
type IdentifierService struct {
	txScope        TransactionScope
	identifierRepo catalog.IdentifierRepository
	logger         *zap.Logger
}

// NewIdentifierService creates a new IdentifierService
func NewIdentifierService(
	txScope TransactionScope,
	identifierRepo catalog.IdentifierRepository,
	logger *zap.Logger,
) *IdentifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentifierService{
		txScope:        txScope,
		identifierRepo: identifierRepo,
		logger:         logger,
	}
}

// Add registers one identifier for a product. When IsPrimary is set the
// current primary of the same slot is cleared in the same transaction.
func (s *IdentifierService) Add(ctx context.Context, productID uuid.UUID, req AddIdentifierRequest) (*IdentifierResponse, error) {
	value := strings.TrimSpace(req.Value)
	if value == "" {
		return nil, shared.NewValidationError("Identifier value cannot be empty")
	}
	idType := catalog.IdentifierType(req.Type)
	if idType == "" {
		idType = catalog.Classify(value)
	}
	if idType == catalog.IdentifierTypeSupplierSKU && req.SupplierID == nil {
		return nil, shared.NewValidationError("supplier_sku identifier requires a supplier")
	}

	var created *catalog.ProductIdentifier
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.ProductRepo().FindByID(ctx, productID); err != nil {
			return err
		}
		identifier, err := catalog.NewProductIdentifier(productID, value, idType, req.SupplierID, req.IsPrimary, req.Notes)
		if err != nil {
			return err
		}
		if err := insertIdentifier(ctx, repos.IdentifierRepo(), identifier); err != nil {
			return err
		}
		created = identifier
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("identifier added",
		zap.String("product_id", productID.String()),
		zap.String("type", created.Type.String()),
		zap.String("value", created.Value),
		zap.Bool("primary", created.IsPrimary),
	)
	response := ToIdentifierResponse(created)
	return &response, nil
}

// insertIdentifier checks both uniqueness scopes and writes the identifier.
// It must run inside a transaction.
func insertIdentifier(ctx context.Context, repo catalog.IdentifierRepository, identifier *catalog.ProductIdentifier) error {
	existing, err := repo.FindByScopeKey(ctx, identifier.ScopeKey())
	if err == nil {
		return shared.NewDuplicateIdentifierError("Identifier %s %q already registered for product %s",
			existing.Type, existing.Value, existing.ProductID)
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if identifier.IsPrimary {
		if _, err := repo.ClearPrimary(ctx, identifier.PrimaryScope()); err != nil {
			return err
		}
	}
	return repo.Create(ctx, identifier)
}

// AddCompound splits a compound value and adds every code. Codes are tried in
// primary-priority order; duplicates are skipped, not failed. With
// SetFirstAsPrimary the first barcode-group code that is actually stored
// becomes the primary barcode.
func (s *IdentifierService) AddCompound(ctx context.Context, productID uuid.UUID, req AddCompoundRequest) (*AddCompoundResponse, error) {
	codes := catalog.SplitCompound(req.Value)
	if len(codes) == 0 {
		return nil, shared.NewValidationError("No codes found in %q", req.Value)
	}

	result := &AddCompoundResponse{
		Added:   make([]IdentifierResponse, 0, len(codes)),
		Skipped: make([]SkippedCode, 0),
	}
	wantPrimary := req.SetFirstAsPrimary
	for _, code := range catalog.OrderByPriority(codes) {
		makePrimary := wantPrimary && code.Type.IsBarcode()
		added, err := s.Add(ctx, productID, AddIdentifierRequest{
			Value:     code.Value,
			Type:      code.Type.String(),
			IsPrimary: makePrimary,
			Notes:     req.Notes,
		})
		if err != nil {
			if errors.Is(err, shared.ErrDuplicateIdentifier) {
				result.Skipped = append(result.Skipped, SkippedCode{
					Value:  code.Value,
					Type:   code.Type.String(),
					Reason: err.Error(),
				})
				continue
			}
			return nil, err
		}
		result.Added = append(result.Added, *added)
		if makePrimary {
			wantPrimary = false
			primary := *added
			result.Primary = &primary
		}
	}
	return result, nil
}

// FindProductByBarcode resolves an exact code among barcodes of active products
func (s *IdentifierService) FindProductByBarcode(ctx context.Context, code string) (*ProductResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("Barcode cannot be empty")
	}
	product, err := s.identifierRepo.FindProductByBarcode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// FindProductByIdentifier resolves any identifier value, optionally by type and supplier
func (s *IdentifierService) FindProductByIdentifier(ctx context.Context, value, idType string, supplierID *uuid.UUID) (*ProductResponse, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, shared.NewValidationError("Identifier value cannot be empty")
	}
	t := catalog.IdentifierType(idType)
	if t != "" && !t.IsValid() {
		return nil, shared.NewValidationError("Unknown identifier type: %s", idType)
	}
	product, err := s.identifierRepo.FindProductByIdentifier(ctx, value, t, supplierID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Lookup dispatches a LookupRequest to the barcode or generic lookup
func (s *IdentifierService) Lookup(ctx context.Context, req LookupRequest) (*ProductResponse, error) {
	if req.Code != "" && req.Value == "" {
		return s.FindProductByBarcode(ctx, req.Code)
	}
	return s.FindProductByIdentifier(ctx, req.Value, req.Type, req.SupplierID)
}

// PrimaryBarcode returns the primary barcode-group identifier of a product, or nil when there is none
func (s *IdentifierService) PrimaryBarcode(ctx context.Context, productID uuid.UUID) (*IdentifierResponse, error) {
	barcodes, err := s.identifierRepo.FindBarcodes(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range barcodes {
		if barcodes[i].IsPrimary {
			response := ToIdentifierResponse(&barcodes[i])
			return &response, nil
		}
	}
	return nil, nil
}

// AllBarcodes returns the barcode-group identifiers of a product, primary first
func (s *IdentifierService) AllBarcodes(ctx context.Context, productID uuid.UUID) (*BarcodesResponse, error) {
	barcodes, err := s.identifierRepo.FindBarcodes(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := &BarcodesResponse{
		ProductID: productID,
		Barcodes:  ToIdentifierResponses(barcodes),
	}
	for i := range response.Barcodes {
		if response.Barcodes[i].IsPrimary {
			primary := response.Barcodes[i]
			response.Primary = &primary
			break
		}
	}
	return response, nil
}

// ListIdentifiers returns every identifier of a product, primary first
func (s *IdentifierService) ListIdentifiers(ctx context.Context, productID uuid.UUID) ([]IdentifierResponse, error) {
	ids, err := s.identifierRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ToIdentifierResponses(ids), nil
}

// Classify previews how a raw value would be classified and split
func (s *IdentifierService) Classify(raw string) ClassifyResponse {
	trimmed := strings.TrimSpace(raw)
	codes := catalog.SplitCompound(trimmed)
	response := ClassifyResponse{
		Input: trimmed,
		Type:  catalog.Classify(trimmed).String(),
		Codes: codes,
	}
	if primary, ok := catalog.PrimaryCandidate(codes); ok {
		response.Primary = &primary
	}
	return response
}
