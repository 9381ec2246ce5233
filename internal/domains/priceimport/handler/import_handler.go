package handler

import (
	"errors"
	"fmt"
	"net/http"

	catalogModel "pricebook-backend/internal/domains/catalog/model"
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/domains/priceimport/service"
	"pricebook-backend/internal/shared/middleware"
	"pricebook-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
)

type ImportHandler struct {
	service      service.ServiceInterface
	maxFileBytes int64
}

// NewImportHandler tạo handler mới. maxFileBytes <= 0 => không giới hạn.
func NewImportHandler(service service.ServiceInterface, maxFileBytes int64) *ImportHandler {
	return &ImportHandler{
		service:      service,
		maxFileBytes: maxFileBytes,
	}
}

// RegisterRoutes gắn các route import vào group đã qua TenantAuth
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/imports")
	{
		imports.POST("/preview", h.Preview)
		imports.POST("/validate", h.Validate)
		imports.POST("/apply", h.Apply)
		imports.POST("/mapping", h.EditMapping)
		imports.POST("/overrides", h.EditOverrides)
		imports.GET("/template", h.Template)
	}
	rg.GET("/catalog/summary", h.Summary)
}

// Preview - POST /api/v1/imports/preview
func (h *ImportHandler) Preview(c *gin.Context) {
	file, form, ok := h.bindUpload(c)
	if !ok {
		return
	}

	req := model.PreviewRequest{ReadOptions: form.readOptions(), PreviewPage: form.PreviewPage}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.Preview(c.Request.Context(), file, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Validate - POST /api/v1/imports/validate. Không ghi gì vào catalog.
func (h *ImportHandler) Validate(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	file, form, ok := h.bindUpload(c)
	if !ok {
		return
	}

	req, err := form.validateRequest()
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.Validate(c.Request.Context(), tenantID, file, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Apply - POST /api/v1/imports/apply
func (h *ImportHandler) Apply(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	file, form, ok := h.bindUpload(c)
	if !ok {
		return
	}

	validateReq, err := form.validateRequest()
	if err != nil {
		h.handleError(c, err)
		return
	}
	req := model.ApplyRequest{
		ValidateRequest: validateReq,
		Mode:            model.ImportMode(form.Mode),
		Confirmation:    form.Confirmation,
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	log.Info().
		Str("tenant_id", tenantID).
		Str("file_name", file.Name).
		Str("mode", form.Mode).
		Msg("[ImportHandler] Received apply request")

	result, err := h.service.Apply(c.Request.Context(), tenantID, file, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// EditMapping - POST /api/v1/imports/mapping (JSON body, không cần file)
func (h *ImportHandler) EditMapping(c *gin.Context) {
	var req model.MappingEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var mErr *model.MappingError
		if errors.As(err, &mErr) {
			h.handleError(c, mErr)
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	if req.Mapping == nil {
		req.Mapping = model.NewImportMapping()
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.EditMapping(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// EditOverrides - POST /api/v1/imports/overrides (JSON body, không cần file)
func (h *ImportHandler) EditOverrides(c *gin.Context) {
	var req model.OverridesEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.EditOverrides(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Template - GET /api/v1/imports/template?format=csv|xlsx
func (h *ImportHandler) Template(c *gin.Context) {
	tpl, err := h.service.Template(service.TemplateFormat(c.DefaultQuery("format", string(service.TemplateCSV))))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, tpl.FileName))
	c.Data(http.StatusOK, tpl.ContentType, tpl.Data)
}

// Summary - GET /api/v1/catalog/summary
func (h *ImportHandler) Summary(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		response.Unauthorized(c, "tenant not found in context")
		return
	}

	counts, err := h.service.Summary(c.Request.Context(), tenantID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

// bindUpload đọc file + form; đã tự trả lỗi khi ok = false
func (h *ImportHandler) bindUpload(c *gin.Context) (service.File, importForm, bool) {
	var form importForm

	file, err := readUpload(c, h.maxFileBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			response.RequestTooLarge(c, fmt.Sprintf("file exceeds the %d MB limit", h.maxFileBytes>>20))
			return file, form, false
		}
		response.BadRequest(c, err.Error())
		return file, form, false
	}

	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return file, form, false
	}
	return file, form, true
}

// handleError map lỗi domain sang HTTP status
func (h *ImportHandler) handleError(c *gin.Context, err error) {
	var (
		parseErr   *model.ParseError
		mappingErr *model.MappingError
		confirmErr *model.ConfirmationError
		validErrs  validation.Errors
		reqErr     *requestError
	)

	switch {
	case errors.As(err, &parseErr):
		response.ErrorResponse(c, http.StatusBadRequest, "PARSE_ERROR", parseErr.Error())
	case errors.As(err, &mappingErr):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "MAPPING_ERROR", "mapping cannot be used",
			gin.H{"fieldErrors": mappingErr.Messages})
	case errors.As(err, &confirmErr):
		response.ErrorResponse(c, http.StatusBadRequest, "CONFIRMATION_REQUIRED",
			fmt.Sprintf("overwrite requires confirmation %q", model.OverwriteConfirmation))
	case errors.Is(err, model.ErrNothingToImport):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "NOTHING_TO_IMPORT", err.Error())
	case errors.As(err, &validErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "BAD_REQUEST", "invalid request", validErrs)
	case errors.Is(err, catalogModel.ErrTenantMissing):
		response.Unauthorized(c, err.Error())
	case errors.As(err, &reqErr):
		response.BadRequest(c, reqErr.Error())
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Import request failed")
		response.InternalServerError(c, "import failed")
	}
}
