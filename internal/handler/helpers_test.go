package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devisflow/internal/gateway"
	"devisflow/internal/gateway/local"
	"devisflow/internal/handler"
	"devisflow/internal/middleware"
	"devisflow/internal/service"
	"devisflow/mocks"
)

const quoteText = "MATELAS 1 PIÈCE - LATEX PERFORÉ 7 ZONES MÉDIUM 79/198/20 - MME\nQuantité 2"

func init() {
	gin.SetMode(gin.TestMode)
}

// newLocalService builds a real extraction service over the local stub.
func newLocalService() service.ExtractionService {
	ex := new(mocks.MockTextExtractor)
	ex.On("ExtractText", mock.Anything, mock.Anything).Return(quoteText)
	gw := gateway.NewWithBackends(local.Backend{})
	return service.NewExtractionService(gw, ex, nil, nil, nil, service.ExtractionOptions{})
}

type part struct {
	field, filename string
	data            []byte
}

func multipartBody(t *testing.T, files []part, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func newContext(method, target string, body *bytes.Buffer, contentType, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = &bytes.Buffer{}
	}
	c.Request, _ = http.NewRequest(method, target, body)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	if userID != "" {
		c.Set(middleware.ContextKeyUserID, userID)
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	if data != nil {
		resp.Data = data
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
