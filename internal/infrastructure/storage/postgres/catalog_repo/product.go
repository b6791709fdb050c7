package catalog_repo

import (
	"fakturo/internal/domain/catalogs/product"
	"fakturo/internal/infrastructure/storage/postgres"
)

var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo is the PostgreSQL repository for the Product catalog.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"cat_products",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}
