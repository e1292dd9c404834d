package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UploadHandler hands out presigned S3 URLs.
type UploadHandler struct {
	uploadService service.UploadService
	log           logrus.FieldLogger
}

func NewUploadHandler(uploadService service.UploadService, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, log: log}
}

type UploadURLRequest struct {
	Kind        domain.UploadKind `json:"loai" binding:"required"`
	ContentType string            `json:"contentType" binding:"required"`
}

type UploadURLResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type DownloadURLResponse struct {
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RequestUploadURL godoc
// @Summary Presigned URL to upload an image
// @Description The client PUTs the file to uploadUrl and then stores objectKey on the entity.
// @Tags Uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UploadURLRequest true "Kind and content type"
// @Success 200 {object} envelope
// @Failure 400 {object} errorResponse "Not an image"
// @Router /uploads/url [post]
func (h *UploadHandler) RequestUploadURL(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	ticket, err := h.uploadService.RequestUpload(c.Request.Context(), actor.ID, req.Kind, req.ContentType)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Tạo liên kết tải lên thành công", UploadURLResponse{
		UploadURL: ticket.UploadURL,
		ObjectKey: ticket.ObjectKey,
		ExpiresAt: ticket.ExpiresAt,
	})
}

// DownloadURL godoc
// @Summary Presigned URL to view an uploaded image
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param key query string true "Object key"
// @Success 200 {object} envelope
// @Failure 404 {object} errorResponse
// @Router /uploads/url [get]
func (h *UploadHandler) DownloadURL(c *gin.Context) {
	url, expires, err := h.uploadService.DownloadURL(c.Request.Context(), c.Query("key"))
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Tạo liên kết xem ảnh thành công", DownloadURLResponse{DownloadURL: url, ExpiresAt: expires})
}
