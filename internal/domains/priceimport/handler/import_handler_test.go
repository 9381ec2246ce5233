package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricebook-backend/internal/domains/catalog/repository"
	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/internal/domains/priceimport/service"
	"pricebook-backend/internal/domains/priceimport/source"
	"pricebook-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricesCSV = "name,price,supplier\nCola,10,Acme\nFanta,abc,Acme\n"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newRouter(t *testing.T, tenantID string, maxFileBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewImportService(source.NewFileReader(nil, 1), repository.NewMemoryStore(), nil, service.Options{})
	h := NewImportHandler(svc, maxFileBytes)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if tenantID != "" {
			c.Set(middleware.ContextTenantID, tenantID)
		}
		c.Next()
	})
	h.RegisterRoutes(api)
	return r
}

func multipartRequest(t *testing.T, path, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

const basicMappingJSON = `{"product_name":0,"price_1":1,"supplier_1":2}`

func TestPreview(t *testing.T) {
	r := newRouter(t, "t1", 0)
	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/preview", "prices.csv", pricesCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data model.PreviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, model.KindCSV, data.Kind)
	assert.Len(t, data.Columns, 3)
	assert.Equal(t, 2, data.PreviewTotalRows)
	assert.Equal(t, 50, data.PreviewPageSize)

	col, ok := data.SuggestedMapping.Column(model.PairKey(model.SlotPrice, 1))
	require.True(t, ok)
	assert.Equal(t, 1, col)
}

func TestPreview_Errors(t *testing.T) {
	r := newRouter(t, "t1", 16)

	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/preview", "big.csv", pricesCSV, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE_TOO_LARGE", env.Error.Code)

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/preview", "empty.csv", "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PARSE_ERROR", env.Error.Code)

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/preview", "a.csv", "a,b\n1,2\n", map[string]string{"sourceType": "word"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/preview", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec, _ = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate(t *testing.T) {
	r := newRouter(t, "t1", 0)
	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/validate", "prices.csv", pricesCSV, map[string]string{
		"mapping": basicMappingJSON,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data model.ValidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, model.StatsEstimate{TotalInputRows: 2, MappedRows: 1, SkippedRows: 1}, data.StatsEstimate)
	require.Len(t, data.RowErrors, 1)
	assert.Equal(t, 3, data.RowErrors[0].SheetRow)
}

func TestValidate_MappingErrors(t *testing.T) {
	r := newRouter(t, "t1", 0)

	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/validate", "prices.csv", pricesCSV, map[string]string{
		"mapping": `{"product_name":0}`,
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MAPPING_ERROR", env.Error.Code)
	assert.NotEmpty(t, env.Error.Details["fieldErrors"])

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/validate", "prices.csv", pricesCSV, map[string]string{
		"mapping": `{"product_name":0,"price_1":0}`,
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MAPPING_ERROR", env.Error.Code)

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/validate", "prices.csv", pricesCSV, map[string]string{
		"mapping":     basicMappingJSON,
		"ignoredRows": `[1,`,
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	rec, _ = serve(r, multipartRequest(t, "/api/v1/imports/validate", "prices.csv", pricesCSV, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate_RequiresTenant(t *testing.T) {
	r := newRouter(t, "", 0)
	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/validate", "prices.csv", pricesCSV, map[string]string{
		"mapping": basicMappingJSON,
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestApply(t *testing.T) {
	r := newRouter(t, "t1", 0)
	fields := map[string]string{
		"mapping":            basicMappingJSON,
		"mode":               "merge",
		"manualValuesByRow":  `{"1":{"price_1":"9"}}`,
		"manualGlobalValues": `{"currency":"ILS"}`,
	}

	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/apply", "prices.csv", pricesCSV, fields))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data model.ApplyResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, model.ApplyStats{SuppliersCreated: 1, CategoriesCreated: 1, ProductsCreated: 2, PricesInserted: 2}, data.Stats)
	assert.NotEmpty(t, data.ImportRunID)

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/apply", "prices.csv", pricesCSV, fields))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, model.ApplyStats{PricesSkipped: 2}, data.Stats)

	rec, env = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":2,"suppliers":1,"categories":1,"priceEntries":2,"importRuns":2}`, string(env.Data))
}

func TestApply_Errors(t *testing.T) {
	r := newRouter(t, "t1", 0)

	rec, env := serve(r, multipartRequest(t, "/api/v1/imports/apply", "prices.csv", pricesCSV, map[string]string{
		"mapping":      basicMappingJSON,
		"mode":         "overwrite",
		"confirmation": "overwrite",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", env.Error.Code)

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/apply", "prices.csv", "name,price,supplier\nCola,x,Acme\n", map[string]string{
		"mapping":      basicMappingJSON,
		"mode":         "overwrite",
		"confirmation": model.OverwriteConfirmation,
	}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NOTHING_TO_IMPORT", env.Error.Code)

	rec, env = serve(r, multipartRequest(t, "/api/v1/imports/apply", "prices.csv", pricesCSV, map[string]string{
		"mapping": basicMappingJSON,
		"mode":    "replace",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func TestEditMapping(t *testing.T) {
	r := newRouter(t, "t1", 0)

	body := `{"mapping":{"product_name":0,"price_1":1},"op":"setPairCount","count":4}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/mapping", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec, env := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data model.MappingEditResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 4, data.PairCount)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/imports/mapping", strings.NewReader(`{"mapping":{"nope":1},"op":"clear","fieldKey":"sku"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, env = serve(r, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MAPPING_ERROR", env.Error.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/imports/mapping", strings.NewReader(`{"op":"assign","fieldKey":"sku"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, _ = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditOverrides_ApplyToAll(t *testing.T) {
	r := newRouter(t, "t1", 0)

	body := `{
		"overrides": {"manualValuesByRow": {"1": {"sku": "A-1"}}, "ignoredRows": [2]},
		"op": "applyToAll", "fieldKey": "category", "value": "משקאות", "rows": [0, 1, 2]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/overrides", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec, env := serve(r, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data model.Overrides
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "משקאות", data.Global[model.FieldCategory])
	assert.Equal(t, map[model.FieldKey]string{model.FieldCategory: "משקאות"}, data.ByRow[0])
	assert.Equal(t, map[model.FieldKey]string{model.FieldSKU: "A-1", model.FieldCategory: "משקאות"}, data.ByRow[1])
	assert.NotContains(t, data.ByRow, 2)
	assert.Equal(t, []int{2}, data.IgnoredRows)
}

func TestEditOverrides_Errors(t *testing.T) {
	r := newRouter(t, "t1", 0)

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown field key", `{"op":"applyToAll","fieldKey":"colour","value":"x"}`, http.StatusUnprocessableEntity},
		{"unknown op", `{"op":"wipe","fieldKey":"sku"}`, http.StatusBadRequest},
		{"negative row", `{"op":"applyToAll","fieldKey":"sku","rows":[-1]}`, http.StatusBadRequest},
		{"not json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/overrides", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec, _ := serve(r, req)
			assert.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestTemplate(t *testing.T) {
	r := newRouter(t, "t1", 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "price-import-template.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffproduct_name,sku,package_quantity,supplier,price,discount_percent,category"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/template?format=xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.KindXLSX, source.DetectKind(rec.Body.Bytes()))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/imports/template?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
