package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategoryName là danh mục mặc định cho sản phẩm không có category.
// Danh mục này không bị xóa khi overwrite.
const DefaultCategoryName = "כללי"

// DefaultCurrency áp dụng khi file không có cột currency
const DefaultCurrency = "ILS"

type Category struct {
	ID             uuid.UUID `json:"id"`
	TenantID       string    `json:"tenantId"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"-"`
	IsDefault      bool      `json:"isDefault"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Supplier struct {
	ID             uuid.UUID `json:"id"`
	TenantID       string    `json:"tenantId"`
	Name           string    `json:"name"`
	NormalizedName string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Product struct {
	ID              uuid.UUID        `json:"id"`
	TenantID        string           `json:"tenantId"`
	Name            string           `json:"name"`
	NormalizedName  string           `json:"-"`
	SKU             string           `json:"sku,omitempty"`
	NormalizedSKU   string           `json:"-"`
	Barcode         string           `json:"barcode,omitempty"`
	CategoryID      *uuid.UUID       `json:"categoryId,omitempty"`
	PricingUnit     string           `json:"pricingUnit,omitempty"`
	PackageQuantity *decimal.Decimal `json:"packageQuantity,omitempty"`
	PackageType     string           `json:"packageType,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// PriceEntry là một báo giá của supplier cho product. Import chỉ append, không sửa giá cũ.
type PriceEntry struct {
	ID               uuid.UUID        `json:"id"`
	TenantID         string           `json:"tenantId"`
	ProductID        uuid.UUID        `json:"productId"`
	SupplierID       uuid.UUID        `json:"supplierId"`
	Price            decimal.Decimal  `json:"price"`
	DiscountPercent  decimal.Decimal  `json:"discountPercent"`
	Currency         string           `json:"currency"`
	PriceIncludesVAT bool             `json:"priceIncludesVat"`
	VATRate          *decimal.Decimal `json:"vatRate,omitempty"`
	SourceRow        *int             `json:"sourceRow,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// ImportRun ghi lại mỗi lần apply thành công
type ImportRun struct {
	ID          uuid.UUID   `json:"id"`
	TenantID    string      `json:"tenantId"`
	Mode        string      `json:"mode"`
	FileName    string      `json:"fileName"`
	FileSHA256  string      `json:"fileSha256"`
	Stats       interface{} `json:"stats"`
	Diagnostics interface{} `json:"diagnostics"`
	ArchiveKey  string      `json:"archiveKey,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Counts là số lượng bản ghi catalog của một tenant
type Counts struct {
	Products     int `json:"products"`
	Suppliers    int `json:"suppliers"`
	Categories   int `json:"categories"`
	PriceEntries int `json:"priceEntries"`
	ImportRuns   int `json:"importRuns"`
}

// WipeResult là số bản ghi bị xóa bởi overwrite
type WipeResult struct {
	PriceEntries int64 `json:"priceEntries"`
	Products     int64 `json:"products"`
	Suppliers    int64 `json:"suppliers"`
	Categories   int64 `json:"categories"`
}
