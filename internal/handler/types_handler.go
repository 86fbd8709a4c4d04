package handler

import (
	"github.com/gin-gonic/gin"

	"fieldlens/internal/domain"
	"fieldlens/internal/port"
	"fieldlens/internal/typeconfig"
)

// TypesHandler exposes the configured document type definitions.
type TypesHandler struct {
	store port.TypeConfigStore
}

// NewTypesHandler creates a new TypesHandler.
func NewTypesHandler(store port.TypeConfigStore) *TypesHandler {
	return &TypesHandler{store: store}
}

type typeSummary struct {
	ID             domain.TypeID          `json:"id"`
	DisplayName    string                 `json:"display_name"`
	Fields         []typeconfig.FieldSpec `json:"fields"`
	RequiredFields []string               `json:"required_fields"`
}

// List handles GET /api/v1/types
func (h *TypesHandler) List(c *gin.Context) {
	configs := h.store.All()
	summaries := make([]typeSummary, 0, len(configs))
	for _, tc := range configs {
		summaries = append(summaries, typeSummary{
			ID:             tc.ID,
			DisplayName:    tc.DisplayName,
			Fields:         tc.Fields,
			RequiredFields: tc.RequiredFields,
		})
	}
	RespondOK(c, summaries)
}
