package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	catalogModel "pricebook-backend/internal/domains/catalog/model"
	"pricebook-backend/internal/domains/catalog/repository"
	"pricebook-backend/internal/domains/priceimport/derive"
	"pricebook-backend/internal/domains/priceimport/mapping"
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/domains/priceimport/source"
	"pricebook-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Options cấu hình service
type Options struct {
	PreviewPageSize int
}

type importService struct {
	reader   source.Reader
	store    repository.Store
	archiver Archiver // nil => không lưu file gốc
	pageSize int
}

// NewImportService creates a new import service
func NewImportService(reader source.Reader, store repository.Store, archiver Archiver, opts Options) ServiceInterface {
	if opts.PreviewPageSize <= 0 {
		opts.PreviewPageSize = 50
	}
	return &importService{
		reader:   reader,
		store:    store,
		archiver: archiver,
		pageSize: opts.PreviewPageSize,
	}
}

// ========================================
// PREVIEW
// ========================================

func (s *importService) Preview(ctx context.Context, file File, req model.PreviewRequest) (*model.PreviewResponse, error) {
	log.Info().
		Str("file_name", file.Name).
		Int("file_size", len(file.Data)).
		Str("source_type", string(req.SourceType)).
		Msg("Starting import preview")

	doc, err := s.reader.Read(ctx, file.Data, req.ReadOptions)
	if err != nil {
		return nil, err
	}

	suggested := mapping.Infer(doc.Table.Columns)
	page := source.Paginate(doc.Table.Rows, req.PreviewPage, s.pageSize)

	resp := &model.PreviewResponse{
		FileName:          file.Name,
		Kind:              doc.Kind,
		SourceType:        doc.Kind.SourceType(),
		Sheets:            doc.Sheets,
		SelectedSheet:     doc.SelectedSheet,
		Tables:            doc.Tables,
		SelectedTable:     doc.SelectedTable,
		PageCount:         doc.PageCount,
		Columns:           doc.Table.Columns,
		SampleRows:        page.Rows,
		SuggestedMapping:  suggested,
		PairCount:         suggested.PairCount(),
		AutoHiddenColumns: mapping.AutoHidden(doc.Table.Columns, doc.Table.Rows, suggested),
		PreviewPage:       page.Page,
		PreviewPageSize:   page.PageSize,
		PreviewTotalRows:  page.TotalRows,
		PreviewTotalPages: page.TotalPages,
		SampleRowOffset:   page.Offset,
		Warnings:          doc.Warnings,
	}
	if resp.Columns == nil {
		resp.Columns = []model.SourceColumn{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	log.Info().
		Str("file_name", file.Name).
		Str("kind", string(doc.Kind)).
		Int("columns", len(resp.Columns)).
		Int("rows", page.TotalRows).
		Msg("Import preview completed")

	return resp, nil
}

// ========================================
// VALIDATE
// ========================================

func (s *importService) Validate(ctx context.Context, tenantID string, file File, req model.ValidateRequest) (*model.ValidateResponse, error) {
	log.Info().
		Str("tenant_id", tenantID).
		Str("file_name", file.Name).
		Int("file_size", len(file.Data)).
		Str("source_type", string(req.SourceType)).
		Msg("Starting import validation")

	_, res, err := s.derive(ctx, file, req)
	if err != nil {
		return nil, err
	}

	stats := res.StatsEstimate()
	log.Info().
		Str("tenant_id", tenantID).
		Int("total_input_rows", stats.TotalInputRows).
		Int("mapped_rows", stats.MappedRows).
		Int("row_errors", len(res.RowErrors)).
		Msg("Import validation completed")

	return &model.ValidateResponse{
		FieldErrors:        []string{},
		RowErrors:          res.RowErrors,
		UnimportedProducts: res.UnimportedProducts,
		StatsEstimate:      stats,
		ImportDiagnostics:  res.Diagnostics,
	}, nil
}

// derive đọc file và chạy derivation; Validate và Apply dùng chung
func (s *importService) derive(ctx context.Context, file File, req model.ValidateRequest) (*model.Document, *derive.Result, error) {
	doc, err := s.reader.Read(ctx, file.Data, req.ReadOptions)
	if err != nil {
		return nil, nil, err
	}

	res, err := derive.Derive(doc.Table, req.Mapping, req.Overrides)
	if err != nil {
		return nil, nil, err
	}
	return doc, res, nil
}

// ========================================
// APPLY
// ========================================

func (s *importService) Apply(ctx context.Context, tenantID string, file File, req model.ApplyRequest) (*model.ApplyResponse, error) {
	if tenantID == "" {
		return nil, catalogModel.ErrTenantMissing
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("file_name", file.Name).
		Int("file_size", len(file.Data)).
		Str("mode", string(req.Mode)).
		Msg("Starting import apply")

	// Kiểm tra xác nhận trước mọi thao tác
	if req.Mode == model.ModeOverwrite && req.Confirmation != model.OverwriteConfirmation {
		return nil, &model.ConfirmationError{}
	}

	doc, res, err := s.derive(ctx, file, req.ValidateRequest)
	if err != nil {
		return nil, err
	}

	// Overwrite với 0 dòng sẽ xóa sạch catalog => từ chối
	if req.Mode == model.ModeOverwrite && len(res.Rows) == 0 {
		return nil, model.ErrNothingToImport
	}

	run := &catalogModel.ImportRun{
		ID:         uuid.New(),
		Mode:       string(req.Mode),
		FileName:   file.Name,
		FileSHA256: fileDigest(file.Data),
	}
	var stats model.ApplyStats

	err = s.store.WithTenantTx(ctx, tenantID, func(tx repository.Tx) error {
		stats = model.ApplyStats{}

		if req.Mode == model.ModeOverwrite {
			wiped, err := tx.WipeCatalog(ctx)
			if err != nil {
				return fmt.Errorf("failed to wipe catalog: %w", err)
			}
			log.Info().
				Str("tenant_id", tenantID).
				Int64("price_entries", wiped.PriceEntries).
				Int64("products", wiped.Products).
				Int64("suppliers", wiped.Suppliers).
				Int64("categories", wiped.Categories).
				Msg("Catalog wiped for overwrite")
		}

		w := newCatalogWriter(tx, &stats)
		for _, row := range res.Rows {
			if err := w.writeRow(ctx, row); err != nil {
				return fmt.Errorf("failed to import row %d: %w", row.SheetRow, err)
			}
		}

		run.Stats = stats
		run.Diagnostics = res.Diagnostics
		if err := tx.RecordImportRun(ctx, run); err != nil {
			return fmt.Errorf("failed to record import run: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("Import apply rolled back")
		return nil, err
	}

	resp := &model.ApplyResponse{
		ImportRunID:        run.ID.String(),
		Mode:               req.Mode,
		Stats:              stats,
		RowErrors:          res.RowErrors,
		UnimportedProducts: res.UnimportedProducts,
		ImportDiagnostics:  res.Diagnostics,
	}
	resp.ArchiveKey = s.archive(ctx, tenantID, run, doc.Kind, file)

	log.Info().
		Str("tenant_id", tenantID).
		Str("import_run_id", resp.ImportRunID).
		Int("suppliers_created", stats.SuppliersCreated).
		Int("categories_created", stats.CategoriesCreated).
		Int("products_created", stats.ProductsCreated).
		Int("products_updated", stats.ProductsUpdated).
		Int("prices_inserted", stats.PricesInserted).
		Int("prices_skipped", stats.PricesSkipped).
		Msg("Import apply completed")

	return resp, nil
}

// archive lưu file gốc sau commit. Lỗi chỉ được log, không làm hỏng request.
func (s *importService) archive(ctx context.Context, tenantID string, run *catalogModel.ImportRun, kind model.FileKind, file File) string {
	if s.archiver == nil {
		return ""
	}

	key := ArchiveKey(tenantID, run.ID, file.Name, time.Now().UTC())
	if _, err := s.archiver.Upload(ctx, key, file.Data, contentType(kind)); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Str("key", key).Msg("Failed to archive import file")
		return ""
	}
	if err := s.store.SetImportRunArchiveKey(ctx, tenantID, run.ID, key); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Str("key", key).Msg("Failed to save archive key")
	}
	return key
}

// ArchiveKey = imports/<tenant>/<yyyy>/<mm>/<run_id>-<file name>
func ArchiveKey(tenantID string, runID uuid.UUID, fileName string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("%s%s/%04d/%02d/%s-%s", shared.ArchivePrefix, tenantID, at.Year(), int(at.Month()), runID, name)
}

func contentType(kind model.FileKind) string {
	switch kind {
	case model.KindXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case model.KindXLS:
		return "application/vnd.ms-excel"
	case model.KindPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

func fileDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ========================================
// MAPPING / SUMMARY
// ========================================

func (s *importService) EditMapping(_ context.Context, req model.MappingEditRequest) (*model.MappingEditResponse, error) {
	return mapping.Edit(req)
}

func (s *importService) EditOverrides(_ context.Context, req model.OverridesEditRequest) (*model.Overrides, error) {
	return mapping.EditOverrides(req)
}

func (s *importService) Summary(ctx context.Context, tenantID string) (*catalogModel.Counts, error) {
	if tenantID == "" {
		return nil, catalogModel.ErrTenantMissing
	}
	return s.store.Counts(ctx, tenantID)
}
