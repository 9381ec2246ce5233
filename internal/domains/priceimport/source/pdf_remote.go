package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// RemotePDFExtractor gửi PDF tới dịch vụ tách bảng bên ngoài qua multipart
type RemotePDFExtractor struct {
	url    string
	client *http.Client
}

func NewRemotePDFExtractor(url string, timeout time.Duration) *RemotePDFExtractor {
	return &RemotePDFExtractor{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type remoteResponse struct {
	Status    string     `json:"status"`
	Error     string     `json:"error"`
	PageCount int        `json:"pageCount"`
	Tables    []RawTable `json:"tables"`
}

func (e *RemotePDFExtractor) Extract(ctx context.Context, data []byte, pageFrom, pageTo int) (*PDFResult, error) {
	// Build multipart request
	var b bytes.Buffer
	mw := multipart.NewWriter(&b)
	fw, err := mw.CreateFormFile("pdf", "upload.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if pageFrom > 0 {
		_ = mw.WriteField("page_from", strconv.Itoa(pageFrom))
	}
	if pageTo > 0 {
		_ = mw.WriteField("page_to", strconv.Itoa(pageTo))
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call pdf extractor: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extractor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf extractor returned %d", resp.StatusCode)
	}

	var parsed remoteResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extractor response: %w", err)
	}
	if parsed.Status == "error" {
		msg := parsed.Error
		if msg == "" {
			msg = "unknown error from pdf extractor"
		}
		return nil, fmt.Errorf("pdf extractor error: %s", msg)
	}

	// Dịch vụ ngoài có thể không trả pages theo dòng
	for i := range parsed.Tables {
		t := &parsed.Tables[i]
		if len(t.Pages) != len(t.Rows) {
			t.Pages = make([]int, len(t.Rows))
			for j := range t.Pages {
				t.Pages[j] = t.Page
			}
		}
	}

	return &PDFResult{PageCount: parsed.PageCount, Tables: parsed.Tables}, nil
}
