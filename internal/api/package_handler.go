package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PackageHandler struct {
	packageService service.PackageService
	log            logrus.FieldLogger
}

func NewPackageHandler(packageService service.PackageService, log logrus.FieldLogger) *PackageHandler {
	return &PackageHandler{packageService: packageService, log: log}
}

type PackageRequest struct {
	Name            string   `json:"tenGoiTap" binding:"required"`
	Description     string   `json:"moTa"`
	Price           int64    `json:"gia" binding:"gte=0"`
	DurationDays    int      `json:"thoiHan" binding:"required,gt=0"`
	TrainerSessions int      `json:"soBuoiPT" binding:"gte=0"`
	Benefits        []string `json:"quyenLoi"`
	ImageKey        string   `json:"hinhAnh"`
}

func (r PackageRequest) toInput() service.PackageInput {
	return service.PackageInput{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		DurationDays:    r.DurationDays,
		TrainerSessions: r.TrainerSessions,
		Benefits:        r.Benefits,
		ImageKey:        r.ImageKey,
	}
}

type PackageComparisonResponse struct {
	domain.Package
	PricePerDay            float64 `json:"giaMoiNgay"`
	PricePerTrainerSession float64 `json:"giaMoiBuoiPT"`
	CheapestPerDay         bool    `json:"reNhatTheoNgay"`
	MostTrainerSessions    bool    `json:"nhieuBuoiPTNhat"`
}

// ListPackages godoc
// @Summary Packages on sale
// @Description The owner may pass tatCa=true to include stopped packages.
// @Tags Packages
// @Produce json
// @Success 200 {object} envelope
// @Router /goitap [get]
func (h *PackageHandler) ListPackages(c *gin.Context) {
	includeStopped := false
	if c.Query("tatCa") == "true" {
		if role, err := getUserRoleFromContext(c); err == nil && role == domain.RoleOwner {
			includeStopped = true
		}
	}
	packages, err := h.packageService.List(c.Request.Context(), includeStopped)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy danh sách gói tập thành công", packages)
}

// GetPackage godoc
// @Summary Package detail
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} envelope
// @Failure 404 {object} errorResponse
// @Router /goitap/{id} [get]
func (h *PackageHandler) GetPackage(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	pkg, err := h.packageService.Get(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy thông tin gói tập thành công", pkg)
}

// ComparePackages godoc
// @Summary Compare 2 to 4 packages side by side
// @Tags Packages
// @Produce json
// @Param ids query string true "Comma separated package IDs"
// @Success 200 {object} envelope
// @Failure 400 {object} errorResponse
// @Router /goitap/so-sanh [get]
func (h *PackageHandler) ComparePackages(c *gin.Context) {
	raw := splitIDs(c.Query("ids"))
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, err := parseObjectID(r, "ids")
		if err != nil {
			abortWithServiceError(c, h.log, err)
			return
		}
		ids = append(ids, id)
	}

	items, err := h.packageService.Compare(c.Request.Context(), ids)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	out := make([]PackageComparisonResponse, len(items))
	for i, it := range items {
		out[i] = PackageComparisonResponse{
			Package:                it.Package,
			PricePerDay:            it.PricePerDay,
			PricePerTrainerSession: it.PricePerTrainerSession,
			CheapestPerDay:         it.CheapestPerDay,
			MostTrainerSessions:    it.MostTrainerSessions,
		}
	}
	respond(c, http.StatusOK, "So sánh gói tập thành công", out)
}

// CreatePackage godoc
// @Summary Create a package
// @Tags Packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PackageRequest true "Package"
// @Success 201 {object} envelope
// @Router /goitap [post]
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	pkg, err := h.packageService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Tạo gói tập thành công", pkg)
}

// UpdatePackage godoc
// @Summary Update a package
// @Tags Packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Param body body PackageRequest true "Package"
// @Success 200 {object} envelope
// @Router /goitap/{id} [put]
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	pkg, err := h.packageService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cập nhật gói tập thành công", pkg)
}

// DeletePackage godoc
// @Summary Stop selling a package
// @Description Soft delete: the package moves to NGUNG_BAN.
// @Tags Packages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Success 200 {object} envelope
// @Router /goitap/{id} [delete]
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.packageService.StopSale(c.Request.Context(), id); err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Đã ngừng bán gói tập", nil)
}
