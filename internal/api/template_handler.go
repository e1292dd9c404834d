package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TemplateHandler holds the template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
	log             logrus.FieldLogger
}

func NewTemplateHandler(templateService service.TemplateService, log logrus.FieldLogger) *TemplateHandler {
	return &TemplateHandler{templateService: templateService, log: log}
}

// TemplateRequest defines the expected JSON for creating or replacing a template.
type TemplateRequest struct {
	Name        string                    `json:"tenTemplate" binding:"required"`
	Description string                    `json:"moTa"`
	Goal        string                    `json:"mucTieu"` // e.g. "Giảm mỡ", "Tăng cơ"
	Exercises   []domain.TemplateExercise `json:"baiTap" binding:"required,min=1,dive"`
}

func (r TemplateRequest) toInput() service.TemplateInput {
	return service.TemplateInput{Name: r.Name, Description: r.Description, Goal: r.Goal, Exercises: r.Exercises}
}

// CreateTemplate godoc
// @Summary Create a workout template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TemplateRequest true "Template"
// @Success 201 {object} ptEnvelope
// @Router /pt/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	tpl, err := h.templateService.Create(c.Request.Context(), actor.ID, req.toInput())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusCreated, tpl)
}

// ListTemplates godoc
// @Summary The PT's templates
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ptEnvelope
// @Router /pt/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	templates, err := h.templateService.List(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, templates)
}

// UpdateTemplate godoc
// @Summary Replace a template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Param body body TemplateRequest true "Template"
// @Success 200 {object} ptEnvelope
// @Failure 404 {object} errorResponse "Not found or owned by another PT"
// @Router /pt/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	tpl, err := h.templateService.Update(c.Request.Context(), actor.ID, id, req.toInput())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, tpl)
}

// DeleteTemplate godoc
// @Summary Delete a template
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} ptEnvelope
// @Router /pt/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), actor.ID, id); err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, gin.H{"id": id.Hex()})
}
