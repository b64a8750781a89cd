package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"devisflow/internal/domain"
	"devisflow/internal/middleware"
	"devisflow/internal/port"
	"devisflow/internal/service"
)

// ExtractionHandler handles the batch extraction and single-file summary
// endpoints.
type ExtractionHandler struct {
	sessions    *service.SessionRegistry
	svc         service.ExtractionService
	prefs       port.PreferenceStore
	maxFileSize int64
}

// NewExtractionHandler creates a new ExtractionHandler. maxFileSize is in
// bytes; zero disables the limit. prefs may be nil.
func NewExtractionHandler(sessions *service.SessionRegistry, svc service.ExtractionService, prefs port.PreferenceStore, maxFileSize int64) *ExtractionHandler {
	return &ExtractionHandler{sessions: sessions, svc: svc, prefs: prefs, maxFileSize: maxFileSize}
}

// Extract handles POST /api/v1/extract
func (h *ExtractionHandler) Extract(c *gin.Context) {
	userID := middleware.GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form with at least one file is required")
		return
	}
	headers := form.File["file"]
	if len(headers) == 0 {
		HandleError(c, domain.ErrNoFiles)
		return
	}

	files := make([]domain.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := h.readUpload(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		files = append(files, f)
	}

	provider := domain.ProviderID(strings.TrimSpace(c.PostForm("llm_provider")))
	if provider == "" {
		provider = h.defaultProvider(c.Request.Context(), userID)
	}

	req := domain.ExtractionRequest{
		UserID:      userID,
		RequestID:   middleware.GetRequestID(c),
		Files:       files,
		Provider:    provider,
		APIKey:      strings.TrimSpace(c.PostForm("api_key")),
		Enrich:      parseYesNo(c.PostForm("enrich_llm")),
		WithSummary: parseYesNo(c.PostForm("with_summary")),
	}

	result, err := h.sessions.Get(userID).Submit(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Analyze handles POST /api/v1/analyze
func (h *ExtractionHandler) Analyze(c *gin.Context) {
	userID := middleware.GetUserID(c)

	fh, err := c.FormFile("file")
	if err != nil {
		HandleError(c, domain.ErrNoFiles)
		return
	}
	file, err := h.readUpload(fh)
	if err != nil {
		HandleError(c, err)
		return
	}

	session := h.sessions.Get(userID)
	result, err := h.svc.Summarize(c.Request.Context(), domain.SummaryRequest{
		UserID:    userID,
		RequestID: middleware.GetRequestID(c),
		File:      file,
		Provider:  domain.ProviderID(strings.TrimSpace(c.PostForm("provider"))),
		APIKey:    strings.TrimSpace(c.PostForm("api_key")),
	}, session.Tracker())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

func (h *ExtractionHandler) readUpload(fh *multipart.FileHeader) (domain.UploadedFile, error) {
	if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
		return domain.UploadedFile{}, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.UploadedFile{}, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}

	return domain.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// defaultProvider returns the saved provider of userID, or the local stub.
func (h *ExtractionHandler) defaultProvider(ctx context.Context, userID string) domain.ProviderID {
	if h.prefs == nil {
		return domain.ProviderLocal
	}
	prefs, err := h.prefs.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			zap.L().Warn("loading preferences failed, using local provider",
				zap.String("user_id", userID), zap.Error(err))
		}
		return domain.ProviderLocal
	}
	return prefs.Provider
}

func parseYesNo(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "on":
		return true
	default:
		return false
	}
}
