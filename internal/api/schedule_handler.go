package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleHandler serves PT work schedules.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	log             logrus.FieldLogger
}

func NewScheduleHandler(scheduleService service.ScheduleService, log logrus.FieldLogger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, log: log}
}

type WorkScheduleRequest struct {
	Slots []domain.ScheduleSlot `json:"lichLamViec" binding:"required"`
}

// ReplaceSchedule godoc
// @Summary Replace the calling PT's weekly schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body WorkScheduleRequest true "Weekly slots, thu 0 = Sunday"
// @Success 200 {object} ptEnvelope
// @Failure 400 {object} errorResponse "Invalid or overlapping slots"
// @Router /pt/work-schedule [put]
func (h *ScheduleHandler) ReplaceSchedule(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req WorkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	schedule, err := h.scheduleService.Replace(c.Request.Context(), actor.ID, req.Slots)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, schedule)
}

// MySchedule godoc
// @Summary The calling PT's schedule
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ptEnvelope
// @Router /pt/work-schedule [get]
func (h *ScheduleHandler) MySchedule(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.scheduleOf(c, actor.ID)
}

// TrainerSchedule godoc
// @Summary A PT's schedule
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param maPT path string true "PT ID"
// @Success 200 {object} ptEnvelope
// @Router /pt/{maPT}/work-schedule [get]
func (h *ScheduleHandler) TrainerSchedule(c *gin.Context) {
	trainerID, ok := objectIDParam(c, "maPT")
	if !ok {
		return
	}
	h.scheduleOf(c, trainerID)
}

func (h *ScheduleHandler) scheduleOf(c *gin.Context, trainerID primitive.ObjectID) {
	schedule, err := h.scheduleService.Get(c.Request.Context(), trainerID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, schedule)
}
