package controller

import (
	"errors"
	"strconv"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/service"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(svc *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: svc}
}

// @Summary Submit code for a challenge
// @Description Validates the proctoring session, waits for pending snapshot analysis, then admits the submission and queues it for judging
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateSubmissionRequest true "Submission"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "Session paused or challenge not ready"
// @Failure 425 {object} util.Response "Snapshot analysis still in progress, retry"
// @Router /api/submissions [post]
func (c *SubmissionController) CreateSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.Service.CreateSubmission(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound), errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrChallengeNotPublished),
			errors.Is(err, util.ErrLanguageNotReady),
			errors.Is(err, util.ErrSessionPaused):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrSnapshotStillProcessing):
			util.TooEarly(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{
		"submissionId": submission.ID,
		"status":       submission.Status,
		"judgeStatus":  submission.JudgeStatus,
	})
}

// @Summary Get a submission result
// @Description Returns the submission, its latest judge run summary and the score breakdown
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} util.Response
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) GetSubmissionResult(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	result, err := c.Service.GetSubmissionResult(uint(id))
	if err != nil {
		if errors.Is(err, util.ErrSubmissionNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	// Learners may only read their own submissions.
	if result.Submission.UserID != claims.UserID && claims.Role != "admin" {
		util.Forbidden(ctx)
		return
	}

	util.Success(ctx, result)
}

// @Summary List my submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /api/submissions [get]
func (c *SubmissionController) ListMySubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	submissions, total, err := c.Service.ListUserSubmissions(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  submissions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
