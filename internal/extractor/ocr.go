package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clauselens/internal/config"
)

// OCR recognizes text in an image. The engine itself is an external
// collaborator; the pipeline's contract starts at "text in hand".
type OCR interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

// HTTPOCRClient talks to a tesseract-style OCR sidecar over HTTP.
type HTTPOCRClient struct {
	endpoint    string
	defaultLang string
	httpClient  *http.Client
}

// NewHTTPOCRClient creates an OCR client for the configured endpoint.
func NewHTTPOCRClient(cfg config.OCRConfig) (*HTTPOCRClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("OCR endpoint is not configured")
	}
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	return &HTTPOCRClient{
		endpoint:    cfg.Endpoint,
		defaultLang: lang,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// NormalizeLang turns user input like "eng, spa" or "eng+spa" into the
// canonical "eng+spa" form the engine expects, falling back to the
// configured default for empty input.
func (c *HTTPOCRClient) NormalizeLang(input string) string {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '+'
	})
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			langs = append(langs, p)
		}
	}
	if len(langs) == 0 {
		return c.defaultLang
	}
	return strings.Join(langs, "+")
}

type ocrRequest struct {
	Image string `json:"image"` // base64-encoded image bytes
	Lang  string `json:"lang"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// Recognize sends the image to the OCR engine and returns the recognized
// text.
func (c *HTTPOCRClient) Recognize(ctx context.Context, image []byte, lang string) (string, error) {
	payload, err := json.Marshal(ocrRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Lang:  c.NormalizeLang(lang),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR engine returned status %d", resp.StatusCode)
	}

	var decoded ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}
	return decoded.Text, nil
}

var _ OCR = (*HTTPOCRClient)(nil)
