package controller

import (
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"

	"github.com/gin-gonic/gin"
)

type QueueController struct {
	Queue queue.Queue
}

func NewQueueController(q queue.Queue) *QueueController {
	return &QueueController{Queue: q}
}

// @Summary Judge queue health
// @Description Waiting/active/completed/failed/paused counts for monitoring
// @Tags Operations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/queue/health [get]
func (c *QueueController) Health(ctx *gin.Context) {
	counts, err := c.Queue.Counts(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, counts)
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

// @Summary Pause or resume the judge queue
// @Tags Operations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body pauseRequest true "Pause flag"
// @Success 200 {object} util.Response
// @Router /api/admin/queue/pause [post]
func (c *QueueController) Pause(ctx *gin.Context) {
	var req pauseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Queue.Pause(ctx.Request.Context(), req.Paused); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"paused": req.Paused})
}
