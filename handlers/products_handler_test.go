package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/services/products"
)

func TestProductsHandler_HandleListProducts(t *testing.T) {
	h := NewProductsHandler(zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	w := httptest.NewRecorder()
	h.HandleListProducts(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []products.Info `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Data, 5)

	ids := make([]string, 0, len(body.Data))
	for _, p := range body.Data {
		ids = append(ids, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Version)
	}
	assert.Equal(t, []string{"chatbot", "code_reviewer", "content_summarizer", "support_bot", "writing_helper"}, ids)
}
