package controller

import (
	"errors"
	"strconv"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/service"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TrustController struct {
	Service *service.TrustService
	Store   service.TrustStore
}

func NewTrustController(svc *service.TrustService, store service.TrustStore) *TrustController {
	return &TrustController{Service: svc, Store: store}
}

// @Summary Get a user's trust score
// @Tags Trust
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/trust/{userId} [get]
func (c *TrustController) GetTrustScore(ctx *gin.Context) {
	userID, err := strconv.Atoi(ctx.Param("userId"))
	if err != nil {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	score, err := c.Store.FindByUser(uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, score)
}

// @Summary List all trust scores
// @Tags Trust
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/trust [get]
func (c *TrustController) ListTrustScores(ctx *gin.Context) {
	scores, err := c.Store.ListAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, scores)
}

// @Summary Recompute all trust scores
// @Description Batch entry point for backfills; rebuilds every user's trust score from graded submissions and work experience
// @Tags Trust
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/trust/recompute [post]
func (c *TrustController) RecomputeAll(ctx *gin.Context) {
	report, err := c.Service.RecomputeAll()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// @Summary Trust score consistency audit
// @Description Recomputes every user's total without writing and reports mismatches against the stored rows
// @Tags Trust
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/trust/consistency [get]
func (c *TrustController) CheckConsistency(ctx *gin.Context) {
	mismatches, err := c.Service.CheckConsistency()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"mismatches": mismatches,
		"count":      len(mismatches),
	})
}
