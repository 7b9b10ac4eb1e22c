package cooking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eat-backend/internal/api/middleware"
	"eat-backend/internal/core/cooking"
	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// UndoRequest is the body of POST /cooking/undo.
type UndoRequest struct {
	CookingHistoryID string `json:"cookingHistoryId"`
}

// UndoResponse is the outcome of an undo.
type UndoResponse struct {
	Success          bool                   `json:"success"`
	Message          string                 `json:"message"`
	UpdatedInventory []models.InventoryItem `json:"updatedInventory"`
	Warnings         []string               `json:"warnings,omitempty"`
}

// HandleUndo reverses a cook action within the undo window.
func HandleUndo(svc *cooking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UndoRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.CookingHistoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cookingHistoryId is required"})
			return
		}

		result, err := svc.UndoCooking(c.Request.Context(), userID, req.CookingHistoryID)
		if err != nil {
			var rejected *cooking.RejectedError
			switch {
			case errors.Is(err, cooking.ErrHistoryNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "cooking history entry not found"})
			case errors.As(err, &rejected):
				c.JSON(http.StatusBadRequest, gin.H{"error": rejected.Reason})
			default:
				common.LogError("failed to undo cooking",
					zap.Error(err),
					zap.String("history_id", req.CookingHistoryID),
				)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to undo cooking"})
			}
			return
		}

		c.JSON(http.StatusOK, UndoResponse{
			Success:          true,
			Message:          "cooking undone, inventory restored",
			UpdatedInventory: result.Inventory,
			Warnings:         result.Warnings,
		})
	}
}
