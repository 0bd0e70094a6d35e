package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/inventory-hub/backend/internal/domain/catalog"
	"github.com/inventory-hub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	txScope     TransactionScope
	productRepo catalog.ProductRepository
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	txScope TransactionScope,
	productRepo catalog.ProductRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		txScope:     txScope,
		productRepo: productRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// Deactivate hides a product from barcode lookups
func (s *ProductService) Deactivate(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product and every identifier it owns in one transaction
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) (*DeleteProductResponse, error) {
	var product *catalog.Product
	var removed int64
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		removed, err = repos.ProductRepo().Delete(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	product.AddDomainEvent(catalog.NewProductDeletedEvent(product, removed))
	s.publishEvents(ctx, product)
	s.logger.Info("product deleted",
		zap.String("product_id", productID.String()),
		zap.Int64("identifiers_removed", removed),
	)
	return &DeleteProductResponse{ProductID: productID, IdentifiersRemoved: removed}, nil
}

func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventBus == nil {
		product.ClearDomainEvents()
		return
	}
	for _, event := range product.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish product event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	product.ClearDomainEvents()
}
