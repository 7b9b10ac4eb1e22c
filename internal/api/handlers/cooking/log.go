package cooking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eat-backend/internal/api/middleware"
	"eat-backend/internal/core/cooking"
	"eat-backend/internal/models"
	"eat-backend/internal/pkg/common"
)

// LogRequest is the body of POST /cooking/log.
type LogRequest struct {
	Recipe     cooking.RecipeSnapshot `json:"recipe"`
	Deductions []cooking.Deduction    `json:"deductions"`
}

// LogResponse is the outcome of a logged cook.
type LogResponse struct {
	Success          bool                   `json:"success"`
	CookingHistoryID string                 `json:"cookingHistoryId"`
	UpdatedInventory []models.InventoryItem `json:"updatedInventory"`
	ItemsDeleted     int                    `json:"itemsDeleted"`
	Warnings         []string               `json:"warnings,omitempty"`
}

// HandleLog applies deductions and records the cooking history entry.
func HandleLog(svc *cooking.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req LogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Recipe.Title == "" || len(req.Deductions) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipe and deductions are required"})
			return
		}

		result, err := svc.LogCooking(c.Request.Context(), userID, req.Recipe, req.Deductions)
		if err != nil {
			if common.IsValidationError(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			common.LogError("failed to log cooking",
				zap.Error(err),
				zap.String("recipe", req.Recipe.Title),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, LogResponse{
			Success:          true,
			CookingHistoryID: result.HistoryID,
			UpdatedInventory: result.Inventory,
			ItemsDeleted:     result.ItemsDeleted,
			Warnings:         result.Warnings,
		})
	}
}
