package cooking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eat-backend/internal/api/middleware"
	"eat-backend/internal/core/cooking"
	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// HistoryEntry is one history row annotated with the derived canUndo flag.
// Expiry is recomputed on every read, never stored.
type HistoryEntry struct {
	models.CookingHistoryEntry
	CanUndoNow bool `json:"canUndo"`
}

// HistoryResponse is a page of non-undone history entries, newest cook first.
type HistoryResponse struct {
	Success    bool           `json:"success"`
	History    []HistoryEntry `json:"history"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// HandleHistory lists the caller's non-undone cooking history.
func HandleHistory(svc *cooking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit < 1 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		entries, total, err := svc.History(c.Request.Context(), userID, page, limit)
		if err != nil {
			common.LogError("failed to list cooking history", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list cooking history"})
			return
		}

		now := time.Now().UTC()
		history := make([]HistoryEntry, len(entries))
		for i, entry := range entries {
			history[i] = HistoryEntry{
				CookingHistoryEntry: entry,
				CanUndoNow:          svc.CanUndo(&entry, now),
			}
		}

		totalPages := int((total + int64(limit) - 1) / int64(limit))

		c.JSON(http.StatusOK, HistoryResponse{
			Success:    true,
			History:    history,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		})
	}
}
