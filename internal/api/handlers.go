package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clauselens/internal/analyzer"
	"clauselens/internal/extractor"
	"clauselens/internal/models"
	"clauselens/internal/storage"
	"clauselens/pkg/logger"
)

// Minimum extracted-text lengths. Below these, no useful analysis is
// possible and the caller must fix the input.
const (
	minDocumentChars = 50
	minTextChars     = 30
	maxImageBytes    = 8 << 20
)

// Analyzer runs the document analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text, docTypeHint string) *models.Analysis
}

// Chatter answers grounded questions about an analysis.
type Chatter interface {
	Answer(ctx context.Context, message string, analysis *models.Analysis, history []models.ChatTurn) (*models.ChatReply, error)
}

// DocumentStore keeps raw uploaded documents keyed by docId.
type DocumentStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, docID string) ([]byte, error)
}

// AnalysisStore keeps finished analyses keyed by docId.
type AnalysisStore interface {
	Save(ctx context.Context, docID string, analysis *models.Analysis) error
	Get(ctx context.Context, docID string) (*models.Analysis, error)
}

// FeedbackSink records chat feedback.
type FeedbackSink interface {
	Save(ctx context.Context, fb *models.Feedback) error
}

// Handler wires the HTTP endpoints to the injected services.
type Handler struct {
	analyzer  Analyzer
	chat      Chatter
	documents DocumentStore
	analyses  AnalysisStore
	feedback  FeedbackSink
	ocr       extractor.OCR
	log       *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(a Analyzer, c Chatter, documents DocumentStore, analyses AnalysisStore, feedback FeedbackSink, ocr extractor.OCR, log *logger.Logger) *Handler {
	return &Handler{
		analyzer:  a,
		chat:      c,
		documents: documents,
		analyses:  analyses,
		feedback:  feedback,
		ocr:       ocr,
		log:       log,
	}
}

// Upload stores a document and returns its generated docId.
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded file"})
		return
	}

	docID, err := h.documents.Put(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.log.Error(fmt.Sprintf("Upload failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"docId": docID, "originalName": fileHeader.Filename})
}

// AnalyzeRequest is the analyze-by-reference payload.
type AnalyzeRequest struct {
	DocID   string `json:"docId"`
	DocType string `json:"docType"`
}

// Analyze fetches a previously uploaded document by docId, extracts its
// text, and runs the analysis pipeline. The finished analysis is persisted
// under the same docId.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "docId is required"})
		return
	}

	data, err := h.documents.Get(c.Request.Context(), req.DocID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "File not found"})
		return
	}

	result, err := extractor.FromBytes(data)
	if err != nil || len(result.Text) < minDocumentChars {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not extract readable text from the document"})
		return
	}

	analysis := h.analyzer.Analyze(c.Request.Context(), result.Text, req.DocType)

	if err := h.analyses.Save(c.Request.Context(), req.DocID, analysis); err != nil {
		// Best effort: the analysis is still returned even if caching fails.
		h.log.Warn(fmt.Sprintf("Failed to persist analysis for %s: %v", req.DocID, err))
	}

	c.JSON(http.StatusOK, analysis)
}

// AnalyzeTextRequest is the analyze-pasted-text payload.
type AnalyzeTextRequest struct {
	Text    string `json:"text"`
	DocType string `json:"docType"`
}

// AnalyzeText runs the pipeline on pasted text.
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	clean := strings.TrimSpace(req.Text)
	if len(clean) < minTextChars {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide at least ~30 characters of text."})
		return
	}

	analysis := h.analyzer.Analyze(c.Request.Context(), clean, req.DocType)
	c.JSON(http.StatusOK, analysis)
}

// AnalyzeImage OCRs an uploaded image and runs the pipeline on the
// recognized text.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image provided"})
		return
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image too large"})
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" && !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only image uploads are allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not read uploaded image"})
		return
	}

	text, err := h.ocr.Recognize(c.Request.Context(), data, c.PostForm("lang"))
	if err != nil {
		h.log.Error(fmt.Sprintf("OCR failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Analysis failed"})
		return
	}
	text = strings.TrimSpace(analyzer.Normalize(text))
	if len(text) < minTextChars {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not extract enough text from the image"})
		return
	}

	analysis := h.analyzer.Analyze(c.Request.Context(), text, c.PostForm("docType"))
	c.JSON(http.StatusOK, analysis)
}

// GetAnalysis returns a previously stored analysis by docId.
func (h *Handler) GetAnalysis(c *gin.Context) {
	docID := c.Param("docId")
	analysis, err := h.analyses.Get(c.Request.Context(), docID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "No analysis found for this document"})
		return
	}
	if err != nil {
		h.log.Error(fmt.Sprintf("Failed to fetch analysis for %s: %v", docID, err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch analysis"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// ChatRequest is one chat turn from the client.
type ChatRequest struct {
	Message             string            `json:"message"`
	DocumentContext     *models.Analysis  `json:"documentContext"`
	ConversationHistory []models.ChatTurn `json:"conversationHistory"`
}

// Chat answers one grounded question about an analysis.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing message"})
		return
	}

	reply, err := h.chat.Answer(c.Request.Context(), req.Message, req.DocumentContext, req.ConversationHistory)
	if err != nil {
		h.log.Error(fmt.Sprintf("Chat failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to get a response from the model."})
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Feedback records a thumbs-up/down on a chat answer.
func (h *Handler) Feedback(c *gin.Context) {
	var fb models.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if fb.Feedback != "positive" && fb.Feedback != "negative" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "feedback must be positive or negative"})
		return
	}
	if err := h.feedback.Save(c.Request.Context(), &fb); err != nil {
		h.log.Error(fmt.Sprintf("Failed to record feedback: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
