package extractor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clauselens/internal/config"
)

func TestNormalizeLang(t *testing.T) {
	client := &HTTPOCRClient{defaultLang: "eng"}

	cases := []struct {
		in   string
		want string
	}{
		{"", "eng"},
		{"spa", "spa"},
		{"eng, spa", "eng+spa"},
		{" eng ,spa , fra ", "eng+spa+fra"},
		{"eng+spa", "eng+spa"},
	}
	for _, c := range cases {
		if got := client.NormalizeLang(c.in); got != c.want {
			t.Errorf("NormalizeLang(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRecognizePostsImageAndLang(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4E, 0x47}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image string `json:"image"`
			Lang  string `json:"lang"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || string(decoded) != string(image) {
			t.Errorf("Expected the image base64-encoded, got %q", req.Image)
		}
		if req.Lang != "eng+spa" {
			t.Errorf("Expected lang eng+spa, got %q", req.Lang)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "recognized text"})
	}))
	defer server.Close()

	client, err := NewHTTPOCRClient(config.OCRConfig{Endpoint: server.URL, Language: "eng"})
	if err != nil {
		t.Fatalf("NewHTTPOCRClient() error = %v", err)
	}

	got, err := client.Recognize(context.Background(), image, "eng, spa")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got != "recognized text" {
		t.Errorf("Expected the recognized text, got %q", got)
	}
}

func TestRecognizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewHTTPOCRClient(config.OCRConfig{Endpoint: server.URL})
	if err != nil {
		t.Fatalf("NewHTTPOCRClient() error = %v", err)
	}
	if _, err := client.Recognize(context.Background(), []byte{1}, ""); err == nil {
		t.Fatal("Expected an error from a failing OCR engine")
	}
}
