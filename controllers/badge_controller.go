package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dayflow/dayflow/services"
	"github.com/dayflow/dayflow/utils"
)

// BadgeController exposes the achievement catalog and an on-demand award pass.
type BadgeController struct {
	badges *services.BadgeService
}

// NewBadgeController creates a BadgeController.
func NewBadgeController(badges *services.BadgeService) *BadgeController {
	return &BadgeController{badges: badges}
}

// Catalog returns every badge definition merged with the user's earned state.
func (b *BadgeController) Catalog(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	entries, earned, err := b.badges.Catalog(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load badges")
		return
	}

	utils.Success(ctx, gin.H{
		"catalog": entries,
		"earned":  earned,
		"count":   len(earned),
		"total":   len(entries),
	})
}

// Check runs an award pass immediately and returns any newly earned badges.
func (b *BadgeController) Check(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	newBadges := b.badges.Award(userID)
	utils.Success(ctx, gin.H{"new_badges": newBadges})
}
