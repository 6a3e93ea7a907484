package helper

import (
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/leaderboard-api/internal/domain/entity"
)

// HistoryExportHeader - заголовки колонок выгрузки журнала
var HistoryExportHeader = []string{"ID", "User ID", "User", "Points", "Timestamp (UTC)"}

// SanitizeCell защищает от formula injection в Excel/Sheets:
// значения, начинающиеся с = + - @ TAB CR, экранируются апострофом.
func SanitizeCell(value string) string {
	if value == "" {
		return value
	}
	if strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}

// HistoryEntryToRow преобразует запись журнала в строку выгрузки
func HistoryEntryToRow(entry entity.HistoryEntry) []string {
	return []string{
		entry.ID.String(),
		entry.UserID.String(),
		SanitizeCell(entry.UserName),
		strconv.FormatInt(entry.PointsClaimed, 10),
		entry.Timestamp.UTC().Format(time.RFC3339),
	}
}

// HistoryEntryToCells - то же, что HistoryEntryToRow, но очки остаются числом (для XLSX)
func HistoryEntryToCells(entry entity.HistoryEntry) []interface{} {
	return []interface{}{
		entry.ID.String(),
		entry.UserID.String(),
		SanitizeCell(entry.UserName),
		entry.PointsClaimed,
		entry.Timestamp.UTC().Format(time.RFC3339),
	}
}
