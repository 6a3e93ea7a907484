package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
	"github.com/yourusername/leaderboard-api/internal/handler/dto"
	"github.com/yourusername/leaderboard-api/internal/handler/helper"
)

// HistoryUseCase - операции с журналом начислений
type HistoryUseCase interface {
	GetHistory(ctx context.Context, page, limit int) (*dto.PaginatedHistoryResponse, error)
	ClearHistory(ctx context.Context) (int64, error)
	ExportHistory(ctx context.Context) ([]entity.HistoryEntry, error)
}

// HistoryHandler обрабатывает запросы к журналу начислений
type HistoryHandler struct {
	historyService HistoryUseCase
}

// NewHistoryHandler создает обработчик журнала
func NewHistoryHandler(historyService HistoryUseCase) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// GetHistory возвращает страницу журнала, новые записи первыми
// GET /api/history?page=1&limit=10
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	// Пустой или нечисловой limit превращается в 0, и сервис подставит лимит из конфигурации
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	resp, err := h.historyService.GetHistory(c.Request.Context(), page, limit)
	if err != nil {
		handleError(c, "HistoryHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.Response{
		Status:     dto.StatusSuccess,
		Data:       gin.H{"logs": resp.Logs},
		Pagination: &resp.Pagination,
	})
}

// ClearHistory удаляет все записи журнала
// DELETE /api/history
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	deleted, err := h.historyService.ClearHistory(c.Request.Context())
	if err != nil {
		handleError(c, "HistoryHandler", err)
		return
	}
	respondSuccess(c, http.StatusOK, "History cleared successfully.", gin.H{"deleted": deleted})
}

// ExportHistory выгружает весь журнал в CSV или Excel
// GET /api/history/export?format=csv|xlsx
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		respondFail(c, http.StatusBadRequest, "Unsupported format. Use csv or xlsx.")
		return
	}

	entries, err := h.historyService.ExportHistory(c.Request.Context())
	if err != nil {
		handleError(c, "HistoryHandler", err)
		return
	}

	filename := fmt.Sprintf("claim_history_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, entries, filename)
	default:
		h.exportCSV(c, entries, filename)
	}
}

// exportCSV отдает журнал в CSV. Заголовки уже отправлены, поэтому ошибку записи можно только залогировать.
func (h *HistoryHandler) exportCSV(c *gin.Context, entries []entity.HistoryEntry, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	if err := writeHistoryCSV(c.Writer, entries); err != nil {
		log.Printf("[HistoryHandler] Ошибка записи CSV (%d записей): %v", len(entries), err)
	}
}

// writeHistoryCSV пишет журнал в CSV с BOM для корректного UTF-8 в Excel
func writeHistoryCSV(w io.Writer, entries []entity.HistoryEntry) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(helper.HistoryExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, entry := range entries {
		if err := writer.Write(helper.HistoryEntryToRow(entry)); err != nil {
			return fmt.Errorf("failed to write row %s: %w", entry.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// exportXLSX пишет журнал в Excel через StreamWriter
func (h *HistoryHandler) exportXLSX(c *gin.Context, entries []entity.HistoryEntry, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "History"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[HistoryHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, dto.Response{Status: dto.StatusError, Message: "Failed to create Excel file"})
		return
	}

	header := make([]interface{}, len(helper.HistoryExportHeader))
	for i, title := range helper.HistoryExportHeader {
		header[i] = title
	}
	if err := sw.SetRow("A1", header); err != nil {
		log.Printf("[HistoryHandler] Ошибка записи заголовков: %v", err)
	}

	for i, entry := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, helper.HistoryEntryToCells(entry)); err != nil {
			log.Printf("[HistoryHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[HistoryHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, dto.Response{Status: dto.StatusError, Message: "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[HistoryHandler] Ошибка записи Excel в response: %v", err)
	}
}
