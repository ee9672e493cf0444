// Package http exposes a read-only HTTP surface over the reporting and
// export paths (C7, C8): balances, cashflow, and a Beancount journal dump.
// It never accepts a write — ingestion, classification, and posting are
// driven by the CLI collaborator, kept out of this module's scope per
// spec.md §1.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finlite/internal/application"
)

// ReportingHandler serves the read-only reporting endpoints.
type ReportingHandler struct {
	reports *application.ReportingService
}

// NewRouter builds the gin engine for the reporting surface.
func NewRouter(reports *application.ReportingService) *gin.Engine {
	handler := &ReportingHandler{reports: reports}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "finlite", "status": "healthy"})
	})

	api := router.Group("/api/reports")
	{
		api.GET("/cashflow", handler.Cashflow)
		api.GET("/balance-sheet", handler.BalanceSheet)
		api.GET("/beancount", handler.Beancount)
	}

	return router
}

func (h *ReportingHandler) Cashflow(c *gin.Context) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	currency := c.DefaultQuery("currency", "USD")

	report, err := h.reports.Cashflow(c.Request.Context(), from, to, currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportingHandler) BalanceSheet(c *gin.Context) {
	at, err := parseDate(c.Query("at"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid at date"})
		return
	}
	currency := c.DefaultQuery("currency", "USD")

	sheet, err := h.reports.BalanceSheet(c.Request.Context(), at, currency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *ReportingHandler) Beancount(c *gin.Context) {
	currency := c.DefaultQuery("currency", "USD")
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := h.reports.Beancount(c.Request.Context(), c.Writer, currency); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
