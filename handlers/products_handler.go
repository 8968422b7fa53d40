package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/unified-ai-gateway/services/products"
	"github.com/upb/unified-ai-gateway/utils"
)

// ProductsHandler handles product catalog HTTP requests
type ProductsHandler struct {
	logger *zap.Logger
}

// NewProductsHandler creates a new ProductsHandler
func NewProductsHandler(logger *zap.Logger) *ProductsHandler {
	return &ProductsHandler{logger: logger}
}

// HandleListProducts handles GET /api/v1/products
func (h *ProductsHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	if err := utils.WriteOK(w, products.List()); err != nil {
		h.logger.Error("failed to write products response", zap.Error(err))
	}
}
