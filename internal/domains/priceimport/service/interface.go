package service

import (
	"context"

	catalogModel "pricebook-backend/internal/domains/catalog/model"
	"pricebook-backend/internal/domains/priceimport/model"
)

// File là file người dùng upload; client gửi lại file ở mỗi bước
type File struct {
	Name string
	Data []byte
}

// ServiceInterface - pipeline import bảng giá: preview -> validate -> apply
type ServiceInterface interface {
	Preview(ctx context.Context, file File, req model.PreviewRequest) (*model.PreviewResponse, error)
	Validate(ctx context.Context, tenantID string, file File, req model.ValidateRequest) (*model.ValidateResponse, error)
	Apply(ctx context.Context, tenantID string, file File, req model.ApplyRequest) (*model.ApplyResponse, error)
	EditMapping(ctx context.Context, req model.MappingEditRequest) (*model.MappingEditResponse, error)
	EditOverrides(ctx context.Context, req model.OverridesEditRequest) (*model.Overrides, error)
	Template(format TemplateFormat) (*TemplateFile, error)
	Summary(ctx context.Context, tenantID string) (*catalogModel.Counts, error)
}

// Archiver lưu file gốc sau khi apply thành công
type Archiver interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
