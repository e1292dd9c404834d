package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler serves buổi tập.
type SessionHandler struct {
	sessionService service.SessionService
	log            logrus.FieldLogger
}

func NewSessionHandler(sessionService service.SessionService, log logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, log: log}
}

type CreateSessionRequest struct {
	MemberID   string `json:"maHoiVien" binding:"required"`
	TemplateID string `json:"maTemplate"`
	Date       string `json:"ngayTap" binding:"required"`    // YYYY-MM-DD
	StartTime  string `json:"gioBatDau" binding:"required"`  // HH:MM
	EndTime    string `json:"gioKetThuc" binding:"required"` // HH:MM
	Notes      string `json:"ghiChu"`
}

type UpdateSessionStatusRequest struct {
	Status domain.SessionStatus `json:"trangThai" binding:"required"`
}

// CreateSession godoc
// @Summary Book a session with a member
// @Description The member needs PT sessions left and the slot must fit the PT's schedule without overlaps.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSessionRequest true "Session"
// @Success 201 {object} ptEnvelope
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse "Overlapping session"
// @Router /pt/buoitap [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	memberID, err := parseObjectID(req.MemberID, "maHoiVien")
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	in := service.SessionInput{
		MemberID:  memberID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if req.TemplateID != "" {
		tplID, err := parseObjectID(req.TemplateID, "maTemplate")
		if err != nil {
			abortWithServiceError(c, h.log, err)
			return
		}
		in.TemplateID = &tplID
	}

	session, err := h.sessionService.Create(c.Request.Context(), actor.ID, in)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusCreated, session)
}

// ListTrainerSessions godoc
// @Summary The PT's sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param trangThai query string false "Status filter"
// @Param tuNgay query string false "From date, YYYY-MM-DD"
// @Param denNgay query string false "To date, YYYY-MM-DD"
// @Success 200 {object} ptEnvelope
// @Router /pt/buoitap [get]
func (h *SessionHandler) ListTrainerSessions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessions, err := h.sessionService.ListForTrainer(c.Request.Context(), actor.ID, service.SessionQuery{
		Status: domain.SessionStatus(c.Query("trangThai")),
		From:   c.Query("tuNgay"),
		To:     c.Query("denNgay"),
	})
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, sessions)
}

// ListMySessions godoc
// @Summary The member's sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /buoitap/cua-toi [get]
func (h *SessionHandler) ListMySessions(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sessions, err := h.sessionService.ListForMember(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy danh sách buổi tập thành công", sessions)
}

// UpdateSessionStatus godoc
// @Summary Move a session to another status
// @Description CHUAN_BI to DANG_DIEN_RA or DA_HUY, DANG_DIEN_RA to HOAN_THANH.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param body body UpdateSessionStatusRequest true "New status"
// @Success 200 {object} ptEnvelope
// @Failure 400 {object} errorResponse "Transition not allowed"
// @Router /pt/buoitap/{id}/trang-thai [put]
func (h *SessionHandler) UpdateSessionStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var sessionID primitive.ObjectID
	if sessionID, ok = objectIDParam(c, "id"); !ok {
		return
	}
	var req UpdateSessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	session, err := h.sessionService.UpdateStatus(c.Request.Context(), actor.ID, sessionID, req.Status)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, session)
}
