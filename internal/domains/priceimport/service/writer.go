package service

import (
	"context"
	"errors"
	"fmt"

	catalogModel "pricebook-backend/internal/domains/catalog/model"
	"pricebook-backend/internal/domains/catalog/repository"
	"pricebook-backend/internal/domains/priceimport/derive"
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/shared/utils"

	"github.com/google/uuid"
)

// entityCache giữ ID category/supplier đã tìm hoặc tạo trong transaction hiện tại
type entityCache struct {
	categories map[string]uuid.UUID // normalized name -> ID
	suppliers  map[string]uuid.UUID
	updated    map[uuid.UUID]bool // products đã đếm vào ProductsUpdated
	created    map[uuid.UUID]bool
}

// catalogWriter ghi các dòng đã derive vào catalog trong một transaction
type catalogWriter struct {
	tx    repository.Tx
	stats *model.ApplyStats
	cache entityCache
}

func newCatalogWriter(tx repository.Tx, stats *model.ApplyStats) *catalogWriter {
	return &catalogWriter{
		tx:    tx,
		stats: stats,
		cache: entityCache{
			categories: make(map[string]uuid.UUID),
			suppliers:  make(map[string]uuid.UUID),
			updated:    make(map[uuid.UUID]bool),
			created:    make(map[uuid.UUID]bool),
		},
	}
}

func (w *catalogWriter) writeRow(ctx context.Context, row derive.Row) error {
	categoryID, err := w.findOrCreateCategory(ctx, row.Category)
	if err != nil {
		return fmt.Errorf("category: %w", err)
	}

	product, err := w.upsertProduct(ctx, row, categoryID)
	if err != nil {
		return fmt.Errorf("product: %w", err)
	}

	currency := row.Currency
	if currency == "" {
		currency = catalogModel.DefaultCurrency
	}
	sourceRow := row.SheetRow

	for _, pair := range row.Pairs {
		supplierID, err := w.findOrCreateSupplier(ctx, pair.Supplier)
		if err != nil {
			return fmt.Errorf("supplier %q: %w", pair.Supplier, err)
		}

		// Import chỉ append giá: entry giống hệt đã có thì bỏ qua
		exists, err := w.tx.PriceEntryExists(ctx, product.ID, supplierID, pair.Price, pair.DiscountPercent)
		if err != nil {
			return fmt.Errorf("price lookup: %w", err)
		}
		if exists {
			w.stats.PricesSkipped++
			continue
		}

		entry := &catalogModel.PriceEntry{
			ProductID:        product.ID,
			SupplierID:       supplierID,
			Price:            pair.Price,
			DiscountPercent:  pair.DiscountPercent,
			Currency:         currency,
			PriceIncludesVAT: row.PriceIncludesVAT,
			VATRate:          row.VATRate,
			SourceRow:        &sourceRow,
		}
		if err := w.tx.CreatePriceEntry(ctx, entry); err != nil {
			return fmt.Errorf("create price entry: %w", err)
		}
		w.stats.PricesInserted++
	}
	return nil
}

// findOrCreateCategory: tên rỗng => danh mục mặc định
func (w *catalogWriter) findOrCreateCategory(ctx context.Context, name string) (uuid.UUID, error) {
	if name == "" {
		name = catalogModel.DefaultCategoryName
	}
	normalized := utils.NormalizeName(name)
	if id, ok := w.cache.categories[normalized]; ok {
		return id, nil
	}

	existing, err := w.tx.FindCategoryByName(ctx, normalized)
	switch {
	case err == nil:
		w.cache.categories[normalized] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, catalogModel.ErrNotFound):
		return uuid.Nil, err
	}

	category := &catalogModel.Category{
		Name:           name,
		NormalizedName: normalized,
		IsDefault:      normalized == utils.NormalizeName(catalogModel.DefaultCategoryName),
	}
	if err := w.tx.CreateCategory(ctx, category); err != nil {
		return uuid.Nil, err
	}
	w.stats.CategoriesCreated++
	w.cache.categories[normalized] = category.ID
	return category.ID, nil
}

func (w *catalogWriter) findOrCreateSupplier(ctx context.Context, name string) (uuid.UUID, error) {
	normalized := utils.NormalizeName(name)
	if id, ok := w.cache.suppliers[normalized]; ok {
		return id, nil
	}

	existing, err := w.tx.FindSupplierByName(ctx, normalized)
	switch {
	case err == nil:
		w.cache.suppliers[normalized] = existing.ID
		return existing.ID, nil
	case !errors.Is(err, catalogModel.ErrNotFound):
		return uuid.Nil, err
	}

	supplier := &catalogModel.Supplier{Name: name, NormalizedName: normalized}
	if err := w.tx.CreateSupplier(ctx, supplier); err != nil {
		return uuid.Nil, err
	}
	w.stats.SuppliersCreated++
	w.cache.suppliers[normalized] = supplier.ID
	return supplier.ID, nil
}

// upsertProduct tìm theo (tên, SKU); nếu có thì cập nhật các thuộc tính không rỗng
func (w *catalogWriter) upsertProduct(ctx context.Context, row derive.Row, categoryID uuid.UUID) (*catalogModel.Product, error) {
	existing, err := w.tx.FindProduct(ctx, row.NormalizedName, row.SKU)
	if err != nil && !errors.Is(err, catalogModel.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		product := &catalogModel.Product{
			Name:            row.ProductName,
			NormalizedName:  row.NormalizedName,
			SKU:             row.SKU,
			Barcode:         row.Barcode,
			CategoryID:      &categoryID,
			PricingUnit:     row.PricingUnit,
			PackageQuantity: row.PackageQuantity,
			PackageType:     row.PackageType,
		}
		if err := w.tx.CreateProduct(ctx, product); err != nil {
			return nil, err
		}
		w.stats.ProductsCreated++
		w.cache.created[product.ID] = true
		return product, nil
	}

	if !applyProductChanges(existing, row, categoryID) {
		return existing, nil
	}
	if err := w.tx.UpdateProduct(ctx, existing); err != nil {
		return nil, err
	}
	// Product vừa tạo trong lần import này không tính là "updated"
	if !w.cache.created[existing.ID] && !w.cache.updated[existing.ID] {
		w.cache.updated[existing.ID] = true
		w.stats.ProductsUpdated++
	}
	return existing, nil
}

// applyProductChanges chép thuộc tính không rỗng của row vào p; trả về true nếu có thay đổi.
// Category chỉ đổi khi dòng có category riêng.
func applyProductChanges(p *catalogModel.Product, row derive.Row, categoryID uuid.UUID) bool {
	changed := false
	setString := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}

	// SKU chỉ khác hoa/thường hay khoảng trắng thì giữ nguyên bản đang lưu
	if row.SKU != "" && utils.NormalizeName(row.SKU) != utils.NormalizeName(p.SKU) {
		p.SKU = row.SKU
		changed = true
	}
	setString(&p.Barcode, row.Barcode)
	setString(&p.PricingUnit, row.PricingUnit)
	setString(&p.PackageType, row.PackageType)

	if row.PackageQuantity != nil && (p.PackageQuantity == nil || !p.PackageQuantity.Equal(*row.PackageQuantity)) {
		q := *row.PackageQuantity
		p.PackageQuantity = &q
		changed = true
	}
	if row.Category != "" && (p.CategoryID == nil || *p.CategoryID != categoryID) {
		id := categoryID
		p.CategoryID = &id
		changed = true
	}
	return changed
}
