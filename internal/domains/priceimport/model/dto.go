package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ========================================
// PREVIEW
// ========================================

type PreviewRequest struct {
	ReadOptions
	PreviewPage int `json:"previewPage"`
}

func (r PreviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PreviewPage, validation.Min(0)),
		validation.Field(&r.ReadOptions),
	)
}

func (o ReadOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.SourceType,
			validation.In(SourceExcel, SourcePDF).Error("sourceType must be excel or pdf"),
		),
		validation.Field(&o.SheetIndex, validation.Min(AutoSheet)),
		validation.Field(&o.TableIndex, validation.Min(MergedTables)),
		validation.Field(&o.PageFrom, validation.Min(0)),
		validation.Field(&o.PageTo,
			validation.Min(0),
			validation.When(o.PageFrom > 0 && o.PageTo > 0,
				validation.Min(o.PageFrom).Error("pageTo must not be before pageFrom"),
			),
		),
	)
}

type PreviewResponse struct {
	FileName          string         `json:"fileName"`
	Kind              FileKind       `json:"kind"`
	SourceType        SourceType     `json:"sourceType"`
	Sheets            []SheetInfo    `json:"sheets,omitempty"`
	SelectedSheet     int            `json:"selectedSheet"`
	Tables            []SourceTable  `json:"tables,omitempty"`
	SelectedTable     int            `json:"selectedTable"`
	PageCount         int            `json:"pageCount,omitempty"`
	Columns           []SourceColumn `json:"columns"`
	SampleRows        []Row          `json:"sampleRows"`
	SuggestedMapping  *ImportMapping `json:"suggestedMapping"`
	PairCount         int            `json:"pairCount"`
	AutoHiddenColumns []int          `json:"autoHiddenColumns"`
	PreviewPage       int            `json:"previewPage"`
	PreviewPageSize   int            `json:"previewPageSize"`
	PreviewTotalRows  int            `json:"previewTotalRows"`
	PreviewTotalPages int            `json:"previewTotalPages"`
	SampleRowOffset   int            `json:"sampleRowOffset"`
	Warnings          []string       `json:"warnings"`
}

// ========================================
// VALIDATE
// ========================================

type ValidateRequest struct {
	ReadOptions
	Mapping *ImportMapping `json:"mapping"`
	Overrides
}

func (r ValidateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReadOptions),
		validation.Field(&r.Mapping, validation.NotNil.Error("mapping is required")),
		validation.Field(&r.IgnoredRows, validation.Each(validation.Min(0))),
	)
}

// RowError - lỗi của một dòng/cặp; dòng vẫn có thể import các cặp khác
type RowError struct {
	Row      int      `json:"row"`
	SheetRow int      `json:"sheetRow"`
	Field    FieldKey `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// UnimportedProduct - dòng không đóng góp price entry nào, kèm lý do
type UnimportedProduct struct {
	Row         int    `json:"row"`
	SheetRow    int    `json:"sheetRow"`
	ProductName string `json:"productName"`
	Reason      string `json:"reason"`
}

type StatsEstimate struct {
	TotalInputRows int `json:"totalInputRows"`
	MappedRows     int `json:"mappedRows"`
	SkippedRows    int `json:"skippedRows"`
}

type ImportDiagnostics struct {
	RowsBeforeIgnored      int `json:"rowsBeforeIgnored"`
	IgnoredRowsCount       int `json:"ignoredRowsCount"`
	SourceRows             int `json:"sourceRows"`
	MappedRowsBeforeDedupe int `json:"mappedRowsBeforeDedupe"`
	RowsAfterDedupe        int `json:"rowsAfterDedupe"`
	DroppedInValidation    int `json:"droppedInValidation"`
	DroppedAsDuplicates    int `json:"droppedAsDuplicates"`
}

type ValidateResponse struct {
	FieldErrors        []string            `json:"fieldErrors"`
	RowErrors          []RowError          `json:"rowErrors"`
	UnimportedProducts []UnimportedProduct `json:"unimportedProducts"`
	StatsEstimate      StatsEstimate       `json:"statsEstimate"`
	ImportDiagnostics  ImportDiagnostics   `json:"importDiagnostics"`
}

// ========================================
// APPLY
// ========================================

type ImportMode string

const (
	ModeMerge     ImportMode = "merge"
	ModeOverwrite ImportMode = "overwrite"
)

type ApplyRequest struct {
	ValidateRequest
	Mode         ImportMode `json:"mode"`
	Confirmation string     `json:"confirmation,omitempty"`
}

func (r ApplyRequest) Validate() error {
	if err := r.ValidateRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode,
			validation.Required.Error("mode is required"),
			validation.In(ModeMerge, ModeOverwrite).Error("mode must be merge or overwrite"),
		),
	)
}

type ApplyStats struct {
	SuppliersCreated  int `json:"suppliersCreated"`
	CategoriesCreated int `json:"categoriesCreated"`
	ProductsCreated   int `json:"productsCreated"`
	ProductsUpdated   int `json:"productsUpdated"`
	PricesInserted    int `json:"pricesInserted"`
	PricesSkipped     int `json:"pricesSkipped"`
}

type ApplyResponse struct {
	ImportRunID        string              `json:"importRunId"`
	Mode               ImportMode          `json:"mode"`
	Stats              ApplyStats          `json:"stats"`
	RowErrors          []RowError          `json:"rowErrors"`
	UnimportedProducts []UnimportedProduct `json:"unimportedProducts"`
	ImportDiagnostics  ImportDiagnostics   `json:"importDiagnostics"`
	ArchiveKey         string              `json:"archiveKey,omitempty"`
}

// ========================================
// MAPPING EDIT
// ========================================

type MappingOp string

const (
	OpAssign        MappingOp = "assign"
	OpUnmap         MappingOp = "unmap"
	OpClear         MappingOp = "clear"
	OpSetPairCount  MappingOp = "setPairCount"
	OpHideColumn    MappingOp = "hideColumn"
	OpRestoreColumn MappingOp = "restoreColumn"
)

type MappingEditRequest struct {
	Mapping       *ImportMapping `json:"mapping"`
	HiddenColumns []int          `json:"hiddenColumns"`
	Op            MappingOp      `json:"op"`
	FieldKey      FieldKey       `json:"fieldKey,omitempty"`
	Column        *int           `json:"column,omitempty"`
	Count         int            `json:"count,omitempty"`
}

func (r MappingEditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Op,
			validation.Required,
			validation.In(OpAssign, OpUnmap, OpClear, OpSetPairCount, OpHideColumn, OpRestoreColumn),
		),
		validation.Field(&r.FieldKey,
			validation.When(r.Op == OpAssign || r.Op == OpUnmap || r.Op == OpClear, validation.Required),
		),
		validation.Field(&r.Column,
			validation.When(r.Op == OpAssign || r.Op == OpHideColumn || r.Op == OpRestoreColumn,
				validation.NotNil.Error("column is required"),
			),
		),
		validation.Field(&r.Count,
			validation.When(r.Op == OpSetPairCount, validation.Required, validation.Min(1), validation.Max(MaxPairCount)),
		),
		validation.Field(&r.HiddenColumns, validation.Each(validation.Min(0))),
	)
}

type MappingEditResponse struct {
	Mapping       *ImportMapping `json:"mapping"`
	PairCount     int            `json:"pairCount"`
	HiddenColumns []int          `json:"hiddenColumns"`
}

// ========================================
// OVERRIDES EDIT
// ========================================

type OverridesOp string

// OpApplyToAll ghi một giá trị cho mọi dòng đang hiển thị và vào manualGlobalValues
const OpApplyToAll OverridesOp = "applyToAll"

type OverridesEditRequest struct {
	Overrides Overrides   `json:"overrides"`
	Op        OverridesOp `json:"op"`
	FieldKey  FieldKey    `json:"fieldKey"`
	Value     string      `json:"value"`
	Rows      []int       `json:"rows"`
}

func (r OverridesEditRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Op, validation.Required, validation.In(OpApplyToAll)),
		validation.Field(&r.FieldKey, validation.Required),
		validation.Field(&r.Rows, validation.Each(validation.Min(0))),
	)
}
