package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/service/ledger"
	"github.com/mamadbah2/household/internal/service/reminders"
	"github.com/mamadbah2/household/internal/service/statement"
	"github.com/mamadbah2/household/pkg/clients/anthropic"
	"github.com/mamadbah2/household/pkg/clients/imagekit"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReminderGenerator produces reorder reminders on demand.
type ReminderGenerator interface {
	Generate(ctx context.Context, req reminders.Request) (anthropic.Reminders, error)
}

// UploadAuthenticator issues receipt upload credentials.
type UploadAuthenticator interface {
	Authenticate() (imagekit.AuthParams, error)
}

// StatementBuilder renders and exports ledger statements.
type StatementBuilder interface {
	Build(filter ledger.Filter) statement.Statement
	WriteXLSX(w io.Writer, st statement.Statement) error
	Export(ctx context.Context, st statement.Statement) error
}

// FilterSource supplies the window used when a request names no dates.
type FilterSource interface {
	DefaultFilter() ledger.Filter
}

// ToolsHandler serves the endpoints that sit beside the ledger: reminders,
// receipt uploads and statements.
type ToolsHandler struct {
	reminders  ReminderGenerator
	uploads    UploadAuthenticator
	statements StatementBuilder
	filters    FilterSource
	logger     *zap.Logger
}

// NewToolsHandler wires the handler.
func NewToolsHandler(rem ReminderGenerator, uploads UploadAuthenticator, statements StatementBuilder, filters FilterSource, logger *zap.Logger) *ToolsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ToolsHandler{
		reminders:  rem,
		uploads:    uploads,
		statements: statements,
		filters:    filters,
		logger:     logger,
	}
}

// Reminders asks for milk and water reorder suggestions. Nothing is stored.
func (h *ToolsHandler) Reminders(c *gin.Context) {
	var req reminders.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	out, err := h.reminders.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UploadAuth returns signed parameters for a direct receipt upload.
func (h *ToolsHandler) UploadAuth(c *gin.Context) {
	params, err := h.uploads.Authenticate()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, params)
}

// DownloadStatement streams the filtered statement as a workbook.
func (h *ToolsHandler) DownloadStatement(c *gin.Context) {
	filter, err := parseFilter(c, h.filters.DefaultFilter())
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := h.statements.WriteXLSX(&buf, h.statements.Build(filter)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statementFilename(filter)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportStatement appends the filtered statement to the shared spreadsheet.
func (h *ToolsHandler) ExportStatement(c *gin.Context) {
	filter, err := parseFilter(c, h.filters.DefaultFilter())
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	st := h.statements.Build(filter)
	if err := h.statements.Export(c.Request.Context(), st); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"deliveries": len(st.Deliveries),
		"payments":   len(st.Payments),
	})
}

func statementFilename(filter ledger.Filter) string {
	name := "statement"
	if filter.From != nil {
		name += "-" + filter.From.String()
	}
	if filter.To != nil {
		name += "-" + filter.To.String()
	}
	return name + ".xlsx"
}
