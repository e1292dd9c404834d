package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReviewHandler serves đánh giá PT.
type ReviewHandler struct {
	reviewService service.ReviewService
	log           logrus.FieldLogger
}

func NewReviewHandler(reviewService service.ReviewService, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, log: log}
}

type CreateReviewRequest struct {
	SessionID string `json:"maBuoiTap" binding:"required"`
	Score     int    `json:"diem" binding:"required,min=1,max=5"`
	Comment   string `json:"nhanXet"`
}

type TrainerReviewsResponse struct {
	Reviews []domain.Review      `json:"danhSach"`
	Summary domain.RatingSummary `json:"tongHop"`
}

// CreateReview godoc
// @Summary Rate the PT of a completed session
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateReviewRequest true "Review"
// @Success 201 {object} envelope
// @Failure 409 {object} errorResponse "Already reviewed"
// @Router /danhgia [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	sessionID, err := parseObjectID(req.SessionID, "maBuoiTap")
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	review, err := h.reviewService.Create(c.Request.Context(), actor.ID, sessionID, req.Score, req.Comment)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Cảm ơn bạn đã đánh giá", review)
}

// TrainerReviews godoc
// @Summary Reviews of a PT
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param maPT path string true "PT ID"
// @Success 200 {object} ptEnvelope
// @Router /pt/{maPT}/danhgia [get]
func (h *ReviewHandler) TrainerReviews(c *gin.Context) {
	trainerID, ok := objectIDParam(c, "maPT")
	if !ok {
		return
	}
	h.listFor(c, trainerID)
}

// MyReviews godoc
// @Summary Reviews of the calling PT
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ptEnvelope
// @Router /pt/danhgia/cua-toi [get]
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.listFor(c, actor.ID)
}

func (h *ReviewHandler) listFor(c *gin.Context, trainerID primitive.ObjectID) {
	reviews, err := h.reviewService.ListForTrainer(c.Request.Context(), trainerID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, TrainerReviewsResponse{Reviews: reviews.Reviews, Summary: reviews.Summary})
}
