package repository

import (
	"context"

	"pricebook-backend/internal/domains/catalog/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store - điểm vào duy nhất để ghi catalog của một tenant.
// Mọi thao tác ghi chạy trong WithTenantTx, được serialize theo tenant.
type Store interface {
	// WithTenantTx chạy fn trong một transaction giữ khóa của tenant.
	// fn trả về error => rollback toàn bộ.
	WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error
	SetImportRunArchiveKey(ctx context.Context, tenantID string, runID uuid.UUID, key string) error
	Counts(ctx context.Context, tenantID string) (*model.Counts, error)
	Ping(ctx context.Context) error
}

// Tx - các thao tác trong transaction, đã gắn tenant
type Tx interface {
	TenantID() string

	// WipeCatalog xóa price entries, products, suppliers và categories không mặc định
	WipeCatalog(ctx context.Context) (*model.WipeResult, error)

	FindCategoryByName(ctx context.Context, normalizedName string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error

	FindSupplierByName(ctx context.Context, normalizedName string) (*model.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *model.Supplier) error

	// FindProduct: sku so sánh sau khi normalize (như tên). sku != "" => khớp (name, sku),
	// nếu không có thì sản phẩm cùng tên chưa có SKU. sku == "" => sản phẩm cùng tên, ưu tiên SKU rỗng.
	FindProduct(ctx context.Context, normalizedName, sku string) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error

	PriceEntryExists(ctx context.Context, productID, supplierID uuid.UUID, price, discount decimal.Decimal) (bool, error)
	CreatePriceEntry(ctx context.Context, entry *model.PriceEntry) error

	RecordImportRun(ctx context.Context, run *model.ImportRun) error
}
