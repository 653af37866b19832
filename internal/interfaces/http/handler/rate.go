package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/seafreight/internal/domain/freight"
	"github.com/erp/seafreight/internal/infrastructure/export"
	"github.com/erp/seafreight/internal/infrastructure/logger"
	"github.com/erp/seafreight/internal/interfaces/http/dto"
	"github.com/erp/seafreight/internal/interfaces/http/middleware"
)

// RateSearcher runs rate searches; implemented by the rate search service.
type RateSearcher interface {
	Search(ctx context.Context, q freight.Query) ([]freight.Rate, error)
	ProviderName() string
}

// RateHandler serves the rate search and export endpoints
type RateHandler struct {
	BaseHandler
	searcher RateSearcher
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(searcher RateSearcher) *RateHandler {
	return &RateHandler{searcher: searcher}
}

// Search godoc
// @ID           searchRates
// @Summary      Search ocean freight rates
// @Description  Queries the rate provider for one port pair, departure window and container mix
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        request body dto.SearchRatesRequest true "Search query"
// @Success      200 {object} RatesResponse
// @Failure      400 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Router       /rates/search [post]
func (h *RateHandler) Search(c *gin.Context) {
	_, rates, ok := h.search(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(rates, len(rates), h.searcher.ProviderName()))
}

// Export godoc
// @ID           exportRates
// @Summary      Export ocean freight rates
// @Description  Runs a rate search and returns the rates as an xlsx workbook
// @Tags         rates
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        request body dto.SearchRatesRequest true "Search query"
// @Success      200 {file} file
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /rates/export [post]
func (h *RateHandler) Export(c *gin.Context) {
	q, rates, ok := h.search(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteRatesWorkbook(&buf, rates); err != nil {
		logger.L(c.Request.Context()).Error("Failed to render rates workbook", zap.Error(err))
		h.InternalError(c, "Failed to render rates workbook")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(q)))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

// search binds the request and runs the query, writing the error response
// itself when ok is false.
func (h *RateHandler) search(c *gin.Context) (q freight.Query, rates []freight.Rate, ok bool) {
	var req dto.SearchRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return q, nil, false
	}

	q = req.ToQuery()
	rates, err := h.searcher.Search(c.Request.Context(), q)
	if err != nil {
		h.HandleProviderError(c, err)
		return q, nil, false
	}
	if rates == nil {
		rates = []freight.Rate{}
	}
	return q, rates, true
}

// exportFilename builds e.g. "rates-ESVLC-CNSHA-2025-03-14.xlsx".
func exportFilename(q freight.Query) string {
	return fmt.Sprintf("rates-%s-%s-%s.xlsx",
		filenameSafe(q.SourcePort.ID), filenameSafe(q.DestinationPort.ID), q.DepartureDate())
}

func filenameSafe(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "port"
	}
	return s
}
