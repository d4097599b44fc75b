package service

import (
	"context"
	"strings"

	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
)

const (
	msgProductNotFound   = "product not found"
	msgProductReferenced = "product is referenced by plans"
)

// CreateProduct validates and stores a new product. Omitted bounds take the
// policy floors.
func (s *Service) CreateProduct(ctx context.Context, fields models.ProductFields) (*models.Product, error) {
	ctx, m := s.begin(ctx, models.KindProduct, models.ActionCreate)
	m.step(nil)
	m.step(nil)

	var product *models.Product
	err := s.validate(m, func() (err error) {
		product, err = s.engine.PrepareProduct(fields)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Products.CreateProduct(ctx, product); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgProductNotFound, msgProductReferenced, "create product"))
	}
	return product, s.finish(ctx, m, product.ID.String(), nil)
}

// UpdateProduct merges fields onto the stored product and re-validates.
// Existing plans are not re-checked; the plan rules re-check the product the
// next time one of its plans changes.
func (s *Service) UpdateProduct(ctx context.Context, productID id.ProductID, fields models.ProductFields) (*models.Product, error) {
	ctx, m := s.begin(ctx, models.KindProduct, models.ActionUpdate)
	m.step(nil)

	var existing *models.Product
	err := s.resolve(m, func() (err error) {
		existing, err = s.stores.Products.FindProduct(ctx, productID)
		return storeErr(err, msgProductNotFound, msgProductReferenced, "load product")
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}

	var product *models.Product
	err = s.validate(m, func() (err error) {
		product, err = s.engine.PrepareProductUpdate(*existing, fields)
		return err
	})
	if err != nil {
		return nil, s.finish(ctx, m, "", err)
	}
	if err := s.stores.Products.UpdateProduct(ctx, product); err != nil {
		return nil, s.finish(ctx, m, "", storeErr(err, msgProductNotFound, msgProductReferenced, "update product"))
	}
	return product, s.finish(ctx, m, product.ID.String(), nil)
}

func (s *Service) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	ctx, m := s.begin(ctx, models.KindProduct, models.ActionDelete)
	err := s.stores.Products.DeleteProduct(ctx, productID)
	return s.finish(ctx, m, productID.String(), storeErr(err, msgProductNotFound, msgProductReferenced, "delete product"))
}

func (s *Service) GetProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	product, err := s.stores.Products.FindProduct(ctx, productID)
	if err != nil {
		return nil, storeErr(err, msgProductNotFound, msgProductReferenced, "load product")
	}
	return product, nil
}

// ListProductsByName returns every product with exactly this name.
func (s *Service) ListProductsByName(ctx context.Context, name string) ([]*models.Product, error) {
	products, err := s.stores.Products.FindProductsByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, storeErr(err, msgProductNotFound, msgProductReferenced, "list products")
	}
	return products, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]*models.Product, error) {
	products, err := s.stores.Products.ListProducts(ctx)
	if err != nil {
		return nil, storeErr(err, msgProductNotFound, msgProductReferenced, "list products")
	}
	return products, nil
}
