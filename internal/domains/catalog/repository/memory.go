package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"pricebook-backend/internal/domains/catalog/model"
	"pricebook-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore là Store trong bộ nhớ, dùng cho dev (STORE_DRIVER=memory) và tests.
// Mỗi transaction làm việc trên bản copy của dữ liệu tenant và chỉ thay thế khi commit.
type MemoryStore struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	tenants map[string]*tenantData
}

type tenantData struct {
	categories   map[uuid.UUID]model.Category
	suppliers    map[uuid.UUID]model.Supplier
	products     map[uuid.UUID]model.Product
	priceEntries []model.PriceEntry
	importRuns   []model.ImportRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:   make(map[string]*sync.Mutex),
		tenants: make(map[string]*tenantData),
	}
}

func newTenantData() *tenantData {
	return &tenantData{
		categories: make(map[uuid.UUID]model.Category),
		suppliers:  make(map[uuid.UUID]model.Supplier),
		products:   make(map[uuid.UUID]model.Product),
	}
}

func (d *tenantData) clone() *tenantData {
	c := newTenantData()
	for k, v := range d.categories {
		c.categories[k] = v
	}
	for k, v := range d.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	c.priceEntries = append([]model.PriceEntry(nil), d.priceEntries...)
	c.importRuns = append([]model.ImportRun(nil), d.importRuns...)
	return c
}

func (s *MemoryStore) tenantLock(tenantID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tenantID] = l
	}
	return l
}

func (s *MemoryStore) snapshot(tenantID string) *tenantData {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return newTenantData()
	}
	return d.clone()
}

func (s *MemoryStore) WithTenantTx(ctx context.Context, tenantID string, fn func(tx Tx) error) error {
	if tenantID == "" {
		return model.ErrTenantMissing
	}

	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.snapshot(tenantID)
	if err := fn(&memoryTx{tenantID: tenantID, data: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.tenants[tenantID] = work
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SetImportRunArchiveKey(_ context.Context, tenantID string, runID uuid.UUID, key string) error {
	// Chờ transaction đang chạy của tenant, nếu không commit của nó sẽ ghi đè key
	lock := s.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return model.ErrNotFound
	}
	for i := range d.importRuns {
		if d.importRuns[i].ID == runID {
			d.importRuns[i].ArchiveKey = key
			return nil
		}
	}
	return model.ErrNotFound
}

func (s *MemoryStore) Counts(_ context.Context, tenantID string) (*model.Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return &model.Counts{}, nil
	}
	return &model.Counts{
		Products:     len(d.products),
		Suppliers:    len(d.suppliers),
		Categories:   len(d.categories),
		PriceEntries: len(d.priceEntries),
		ImportRuns:   len(d.importRuns),
	}, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// ImportRuns trả về lịch sử import của tenant (dùng trong tests)
func (s *MemoryStore) ImportRuns(tenantID string) []model.ImportRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	return append([]model.ImportRun(nil), d.importRuns...)
}

// PriceEntries trả về price entries của tenant (dùng trong tests)
func (s *MemoryStore) PriceEntries(tenantID string) []model.PriceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.tenants[tenantID]
	if !ok {
		return nil
	}
	return append([]model.PriceEntry(nil), d.priceEntries...)
}

// ========================================
// TRANSACTION
// ========================================

type memoryTx struct {
	tenantID string
	data     *tenantData
}

func (t *memoryTx) TenantID() string { return t.tenantID }

func (t *memoryTx) WipeCatalog(context.Context) (*model.WipeResult, error) {
	res := &model.WipeResult{
		PriceEntries: int64(len(t.data.priceEntries)),
		Products:     int64(len(t.data.products)),
		Suppliers:    int64(len(t.data.suppliers)),
	}
	t.data.priceEntries = nil
	t.data.products = make(map[uuid.UUID]model.Product)
	t.data.suppliers = make(map[uuid.UUID]model.Supplier)

	for id, c := range t.data.categories {
		if !c.IsDefault {
			delete(t.data.categories, id)
			res.Categories++
		}
	}
	return res, nil
}

func (t *memoryTx) FindCategoryByName(_ context.Context, normalizedName string) (*model.Category, error) {
	for _, c := range t.data.categories {
		if c.NormalizedName == normalizedName {
			c := c
			return &c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (t *memoryTx) CreateCategory(_ context.Context, c *model.Category) error {
	prepareNew(&c.ID, &c.CreatedAt)
	c.TenantID = t.tenantID
	t.data.categories[c.ID] = *c
	return nil
}

func (t *memoryTx) FindSupplierByName(_ context.Context, normalizedName string) (*model.Supplier, error) {
	for _, s := range t.data.suppliers {
		if s.NormalizedName == normalizedName {
			s := s
			return &s, nil
		}
	}
	return nil, model.ErrNotFound
}

func (t *memoryTx) CreateSupplier(_ context.Context, s *model.Supplier) error {
	prepareNew(&s.ID, &s.CreatedAt)
	s.TenantID = t.tenantID
	t.data.suppliers[s.ID] = *s
	return nil
}

func (t *memoryTx) FindProduct(_ context.Context, normalizedName, sku string) (*model.Product, error) {
	sku = utils.NormalizeName(sku)
	var candidates []model.Product
	for _, p := range t.data.products {
		if p.NormalizedName != normalizedName {
			continue
		}
		if sku != "" && p.NormalizedSKU != sku && p.NormalizedSKU != "" {
			continue
		}
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil, model.ErrNotFound
	}

	// Cùng thứ tự ưu tiên với bản PostgreSQL
	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := productRank(candidates[i], sku), productRank(candidates[j], sku)
		if ri != rj {
			return ri < rj
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	p := candidates[0]
	return &p, nil
}

func productRank(p model.Product, sku string) int {
	if p.NormalizedSKU == sku {
		return 0
	}
	return 1
}

func (t *memoryTx) CreateProduct(_ context.Context, p *model.Product) error {
	prepareNew(&p.ID, &p.CreatedAt)
	p.TenantID = t.tenantID
	p.NormalizedSKU = utils.NormalizeName(p.SKU)
	p.UpdatedAt = p.CreatedAt
	t.data.products[p.ID] = *p
	return nil
}

func (t *memoryTx) UpdateProduct(_ context.Context, p *model.Product) error {
	if _, ok := t.data.products[p.ID]; !ok {
		return model.ErrNotFound
	}
	p.NormalizedSKU = utils.NormalizeName(p.SKU)
	p.UpdatedAt = time.Now().UTC()
	t.data.products[p.ID] = *p
	return nil
}

func (t *memoryTx) PriceEntryExists(_ context.Context, productID, supplierID uuid.UUID, price, discount decimal.Decimal) (bool, error) {
	for _, e := range t.data.priceEntries {
		if e.ProductID == productID && e.SupplierID == supplierID &&
			e.Price.Equal(price) && e.DiscountPercent.Equal(discount) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) CreatePriceEntry(_ context.Context, e *model.PriceEntry) error {
	prepareNew(&e.ID, &e.CreatedAt)
	e.TenantID = t.tenantID
	t.data.priceEntries = append(t.data.priceEntries, *e)
	return nil
}

func (t *memoryTx) RecordImportRun(_ context.Context, run *model.ImportRun) error {
	prepareNew(&run.ID, &run.CreatedAt)
	run.TenantID = t.tenantID
	t.data.importRuns = append(t.data.importRuns, *run)
	return nil
}
