package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pricebook-backend/internal/domains/catalog/model"
	"pricebook-backend/internal/shared/utils"
	"pricebook-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore tạo Store dùng PostgreSQL
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error {
	if tenantID == "" {
		return model.ErrTenantMissing
	}

	return database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		// Serialize apply theo tenant; lock tự nhả khi commit/rollback
		if err := database.LockTenant(ctx, tx, tenantID); err != nil {
			return err
		}
		return fn(&postgresTx{tx: tx, tenantID: tenantID})
	})
}

func (s *postgresStore) SetImportRunArchiveKey(ctx context.Context, tenantID string, runID uuid.UUID, key string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE import_runs SET archive_key = $3 WHERE tenant_id = $1 AND id = $2`,
		tenantID, runID, key)
	if err != nil {
		return fmt.Errorf("update import run archive key: %w", err)
	}
	return nil
}

func (s *postgresStore) Counts(ctx context.Context, tenantID string) (*model.Counts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products      WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM suppliers     WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM categories    WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM price_entries WHERE tenant_id = $1),
			(SELECT COUNT(*) FROM import_runs   WHERE tenant_id = $1)
	`
	var c model.Counts
	err := s.pool.QueryRow(ctx, query, tenantID).Scan(
		&c.Products, &c.Suppliers, &c.Categories, &c.PriceEntries, &c.ImportRuns,
	)
	if err != nil {
		return nil, fmt.Errorf("count catalog: %w", err)
	}
	return &c, nil
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ========================================
// TRANSACTION
// ========================================

type postgresTx struct {
	tx       pgx.Tx
	tenantID string
}

func (t *postgresTx) TenantID() string { return t.tenantID }

func (t *postgresTx) WipeCatalog(ctx context.Context) (*model.WipeResult, error) {
	var res model.WipeResult

	steps := []struct {
		query string
		count *int64
	}{
		{`DELETE FROM price_entries WHERE tenant_id = $1`, &res.PriceEntries},
		{`DELETE FROM products WHERE tenant_id = $1`, &res.Products},
		{`DELETE FROM suppliers WHERE tenant_id = $1`, &res.Suppliers},
		{`DELETE FROM categories WHERE tenant_id = $1 AND NOT is_default`, &res.Categories},
	}
	for _, step := range steps {
		tag, err := t.tx.Exec(ctx, step.query, t.tenantID)
		if err != nil {
			return nil, fmt.Errorf("wipe catalog: %w", err)
		}
		*step.count = tag.RowsAffected()
	}

	return &res, nil
}

func (t *postgresTx) FindCategoryByName(ctx context.Context, normalizedName string) (*model.Category, error) {
	query := `
		SELECT id, tenant_id, name, normalized_name, is_default, created_at
		FROM categories
		WHERE tenant_id = $1 AND normalized_name = $2
	`
	var c model.Category
	err := t.tx.QueryRow(ctx, query, t.tenantID, normalizedName).Scan(
		&c.ID, &c.TenantID, &c.Name, &c.NormalizedName, &c.IsDefault, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (t *postgresTx) CreateCategory(ctx context.Context, c *model.Category) error {
	prepareNew(&c.ID, &c.CreatedAt)
	c.TenantID = t.tenantID

	_, err := t.tx.Exec(ctx, `
		INSERT INTO categories (id, tenant_id, name, normalized_name, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, c.ID, c.TenantID, c.Name, c.NormalizedName, c.IsDefault, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (t *postgresTx) FindSupplierByName(ctx context.Context, normalizedName string) (*model.Supplier, error) {
	query := `
		SELECT id, tenant_id, name, normalized_name, created_at
		FROM suppliers
		WHERE tenant_id = $1 AND normalized_name = $2
	`
	var s model.Supplier
	err := t.tx.QueryRow(ctx, query, t.tenantID, normalizedName).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.NormalizedName, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return &s, nil
}

func (t *postgresTx) CreateSupplier(ctx context.Context, s *model.Supplier) error {
	prepareNew(&s.ID, &s.CreatedAt)
	s.TenantID = t.tenantID

	_, err := t.tx.Exec(ctx, `
		INSERT INTO suppliers (id, tenant_id, name, normalized_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, s.ID, s.TenantID, s.Name, s.NormalizedName, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

const productColumns = `id, tenant_id, name, normalized_name, sku, normalized_sku, barcode, category_id,
	pricing_unit, package_quantity, package_type, created_at, updated_at`

func (t *postgresTx) FindProduct(ctx context.Context, normalizedName, sku string) (*model.Product, error) {
	var query string
	args := []any{t.tenantID, normalizedName}

	if sku = utils.NormalizeName(sku); sku != "" {
		query = `SELECT ` + productColumns + ` FROM products
			WHERE tenant_id = $1 AND normalized_name = $2 AND (normalized_sku = $3 OR normalized_sku = '')
			ORDER BY (normalized_sku = $3) DESC, created_at
			LIMIT 1`
		args = append(args, sku)
	} else {
		query = `SELECT ` + productColumns + ` FROM products
			WHERE tenant_id = $1 AND normalized_name = $2
			ORDER BY (normalized_sku = '') DESC, created_at
			LIMIT 1`
	}

	p, err := scanProduct(t.tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p          model.Product
		categoryID *uuid.UUID
		packageQty decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.NormalizedName, &p.SKU, &p.NormalizedSKU, &p.Barcode, &categoryID,
		&p.PricingUnit, &packageQty, &p.PackageType, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CategoryID = categoryID
	if packageQty.Valid {
		p.PackageQuantity = &packageQty.Decimal
	}
	return &p, nil
}

func (t *postgresTx) CreateProduct(ctx context.Context, p *model.Product) error {
	prepareNew(&p.ID, &p.CreatedAt)
	p.TenantID = t.tenantID
	p.NormalizedSKU = utils.NormalizeName(p.SKU)
	p.UpdatedAt = p.CreatedAt

	_, err := t.tx.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, p.ID, p.TenantID, p.Name, p.NormalizedName, p.SKU, p.NormalizedSKU, p.Barcode, p.CategoryID,
		p.PricingUnit, nullDecimal(p.PackageQuantity), p.PackageType, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (t *postgresTx) UpdateProduct(ctx context.Context, p *model.Product) error {
	p.NormalizedSKU = utils.NormalizeName(p.SKU)
	p.UpdatedAt = time.Now().UTC()

	tag, err := t.tx.Exec(ctx, `
		UPDATE products
		SET sku = $3, normalized_sku = $4, barcode = $5, category_id = $6, pricing_unit = $7,
			package_quantity = $8, package_type = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2
	`, t.tenantID, p.ID, p.SKU, p.NormalizedSKU, p.Barcode, p.CategoryID, p.PricingUnit,
		nullDecimal(p.PackageQuantity), p.PackageType, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (t *postgresTx) PriceEntryExists(ctx context.Context, productID, supplierID uuid.UUID, price, discount decimal.Decimal) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM price_entries
			WHERE tenant_id = $1 AND product_id = $2 AND supplier_id = $3
			  AND price = $4 AND discount_percent = $5
		)
	`, t.tenantID, productID, supplierID, price, discount).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check price entry: %w", err)
	}
	return exists, nil
}

func (t *postgresTx) CreatePriceEntry(ctx context.Context, e *model.PriceEntry) error {
	prepareNew(&e.ID, &e.CreatedAt)
	e.TenantID = t.tenantID

	_, err := t.tx.Exec(ctx, `
		INSERT INTO price_entries (
			id, tenant_id, product_id, supplier_id, price, discount_percent,
			currency, price_includes_vat, vat_rate, source_row, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.TenantID, e.ProductID, e.SupplierID, e.Price, e.DiscountPercent,
		e.Currency, e.PriceIncludesVAT, nullDecimal(e.VATRate), e.SourceRow, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create price entry: %w", err)
	}
	return nil
}

func (t *postgresTx) RecordImportRun(ctx context.Context, run *model.ImportRun) error {
	prepareNew(&run.ID, &run.CreatedAt)
	run.TenantID = t.tenantID

	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("marshal import stats: %w", err)
	}
	diagnostics, err := json.Marshal(run.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshal import diagnostics: %w", err)
	}

	_, err = t.tx.Exec(ctx, `
		INSERT INTO import_runs (id, tenant_id, mode, file_name, file_sha256, stats, diagnostics, archive_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.ID, run.TenantID, run.Mode, run.FileName, run.FileSHA256, stats, diagnostics, run.ArchiveKey, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record import run: %w", err)
	}
	return nil
}

// ========================================
// HELPERS
// ========================================

func prepareNew(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
