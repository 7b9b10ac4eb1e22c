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

// PrepareRequest is the body of POST /cooking/prepare.
type PrepareRequest struct {
	RecipeTitle       string                 `json:"recipeTitle"`
	RecipeIngredients []string               `json:"recipeIngredients"`
	UserInventory     []models.InventoryItem `json:"userInventory"`
}

// PrepareResponse carries the match result. usedAI=false is the only signal
// that the AI path failed and the fallback ran.
type PrepareResponse struct {
	Success   bool                      `json:"success"`
	Matches   []cooking.IngredientMatch `json:"matches"`
	Unmatched []string                  `json:"unmatched"`
	UsedAI    bool                      `json:"usedAI"`
}

// HandlePrepare matches recipe ingredients against the caller's inventory.
func HandlePrepare(matcher *cooking.Matcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req PrepareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.RecipeTitle == "" || len(req.RecipeIngredients) == 0 || req.UserInventory == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipeTitle, recipeIngredients and userInventory are required"})
			return
		}

		result := matcher.Match(c.Request.Context(), req.RecipeTitle, req.RecipeIngredients, req.UserInventory)

		matches := result.Matches
		if matches == nil {
			matches = []cooking.IngredientMatch{}
		}
		unmatched := result.Unmatched
		if unmatched == nil {
			unmatched = []string{}
		}

		common.LogInfo("cooking prepared",
			zap.String("recipe", req.RecipeTitle),
			zap.Int("matched", len(matches)),
			zap.Int("unmatched", len(unmatched)),
			zap.Bool("used_ai", result.UsedAI),
		)

		c.JSON(http.StatusOK, PrepareResponse{
			Success:   true,
			Matches:   matches,
			Unmatched: unmatched,
			UsedAI:    result.UsedAI,
		})
	}
}
