package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nordmart/storefront/internal/repositories"
)

var (
	// ErrCatalogInvalidInput signals the caller provided invalid product data.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrProductNotFound indicates the product could not be located.
	ErrProductNotFound = errors.New("catalog: product not found")
)

// CatalogServiceDeps bundles collaborators required to construct the catalog service.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
	Clock    func() time.Time
	Logger   func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	products repositories.ProductRepository
	clock    func() time.Time
	logger   func(context.Context, string, map[string]any)
}

var _ CatalogService = (*catalogService)(nil)

// NewCatalogService wires dependencies into a concrete CatalogService implementation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		products: deps.Products,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (Product, error) {
	if err := validateProductFields(cmd.Name, cmd.Price, cmd.Stock); err != nil {
		return Product{}, err
	}

	product, err := s.products.Insert(ctx, Product{
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		Image:       cmd.Image,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
	})
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "catalog.product.created", map[string]any{
		"productId": product.ID,
		"price":     product.Price,
	})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID int64, cmd UpdateProductCommand) (Product, error) {
	if productID <= 0 {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := validateProductFields(cmd.Name, cmd.Price, cmd.Stock); err != nil {
		return Product{}, err
	}

	product, err := s.products.Update(ctx, Product{
		ID:          productID,
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		Image:       cmd.Image,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
	})
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID int64) (Product, error) {
	if productID <= 0 {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Product{}, s.mapRepositoryError(err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return products, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "catalog.product.deleted", map[string]any{"productId": productID})
	return nil
}

func validateProductFields(name string, price int64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrCatalogInvalidInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrCatalogInvalidInput)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrCatalogInvalidInput)
	}
	return nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("catalog: repository unavailable: %w", err)
		}
	}
	return err
}
