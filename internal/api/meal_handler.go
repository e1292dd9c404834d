package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealHandler serves món ăn and thực đơn.
type MealHandler struct {
	mealService service.MealService
	log         logrus.FieldLogger
}

func NewMealHandler(mealService service.MealService, log logrus.FieldLogger) *MealHandler {
	return &MealHandler{mealService: mealService, log: log}
}

type MealRequest struct {
	Name        string          `json:"tenMon" binding:"required"`
	Type        domain.MealType `json:"loaiBua" binding:"required,oneof=SANG TRUA TOI PHU"`
	Calories    int             `json:"calo" binding:"gte=0"`
	Protein     float64         `json:"protein" binding:"gte=0"`
	Carbs       float64         `json:"carb" binding:"gte=0"`
	Fat         float64         `json:"fat" binding:"gte=0"`
	Description string          `json:"moTa"`
	ImageKey    string          `json:"hinhAnh"`
}

func (r MealRequest) toInput() service.MealInput {
	return service.MealInput{
		Name:        r.Name,
		Type:        r.Type,
		Calories:    r.Calories,
		Protein:     r.Protein,
		Carbs:       r.Carbs,
		Fat:         r.Fat,
		Description: r.Description,
		ImageKey:    r.ImageKey,
	}
}

type MealSearchResponse struct {
	Meals       []domain.Meal `json:"monAn"`
	Suggestions []string      `json:"goiY"`
}

type MealPlanDayRequest struct {
	Weekday int      `json:"thu" binding:"min=0,max=6"`
	MealIDs []string `json:"monAn"`
}

type CreateMealPlanRequest struct {
	MemberID       string               `json:"maHoiVien" binding:"required"`
	Name           string               `json:"tenThucDon" binding:"required"`
	StartDate      string               `json:"ngayBatDau" binding:"required"`
	EndDate        string               `json:"ngayKetThuc" binding:"required"`
	TargetCalories int                  `json:"mucTieuCalo" binding:"gte=0"`
	Days           []MealPlanDayRequest `json:"ngay" binding:"dive"`
}

type MealPlanDayResponse struct {
	Weekday int              `json:"thu"`
	Meals   []domain.Meal    `json:"monAn"`
	Total   domain.Nutrition `json:"tongDinhDuong"`
}

type MealPlanResponse struct {
	ID             string                `json:"id"`
	TrainerID      string                `json:"maPT"`
	Name           string                `json:"tenThucDon"`
	StartDate      string                `json:"ngayBatDau"`
	EndDate        string                `json:"ngayKetThuc"`
	TargetCalories int                   `json:"mucTieuCalo,omitempty"`
	Days           []MealPlanDayResponse `json:"ngay"`
}

func mapMealPlanView(v *service.MealPlanView) MealPlanResponse {
	resp := MealPlanResponse{
		ID:             v.Plan.ID.Hex(),
		TrainerID:      v.Plan.TrainerID.Hex(),
		Name:           v.Plan.Name,
		StartDate:      v.Plan.StartDate.Format("2006-01-02"),
		EndDate:        v.Plan.EndDate.Format("2006-01-02"),
		TargetCalories: v.Plan.TargetCalories,
		Days:           make([]MealPlanDayResponse, len(v.Days)),
	}
	for i, d := range v.Days {
		resp.Days[i] = MealPlanDayResponse{Weekday: d.Weekday, Meals: d.Meals, Total: d.Total}
	}
	return resp
}

// SearchMeals godoc
// @Summary Search dishes
// @Description Accent-insensitive. When nothing matches, goiY lists the closest dish names.
// @Tags Meals
// @Produce json
// @Security BearerAuth
// @Param q query string false "Dish name"
// @Param loaiBua query string false "SANG, TRUA, TOI or PHU"
// @Success 200 {object} envelope
// @Router /monan [get]
func (h *MealHandler) SearchMeals(c *gin.Context) {
	result, err := h.mealService.Search(c.Request.Context(), c.Query("q"), domain.MealType(c.Query("loaiBua")))
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	message := "Lấy danh sách món ăn thành công"
	if len(result.Meals) == 0 && len(result.Suggestions) > 0 {
		message = "Không tìm thấy món ăn, có thể bạn muốn tìm"
	}
	respond(c, http.StatusOK, message, MealSearchResponse{Meals: result.Meals, Suggestions: result.Suggestions})
}

// GetMeal godoc
// @Summary Dish detail
// @Tags Meals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meal ID"
// @Success 200 {object} envelope
// @Router /monan/{id} [get]
func (h *MealHandler) GetMeal(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	meal, err := h.mealService.Get(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Lấy thông tin món ăn thành công", meal)
}

// CreateMeal godoc
// @Summary Add a dish
// @Tags Meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MealRequest true "Dish"
// @Success 201 {object} envelope
// @Router /monan [post]
func (h *MealHandler) CreateMeal(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	meal, err := h.mealService.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, "Thêm món ăn thành công", meal)
}

// UpdateMeal godoc
// @Summary Update a dish
// @Tags Meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meal ID"
// @Param body body MealRequest true "Dish"
// @Success 200 {object} envelope
// @Router /monan/{id} [put]
func (h *MealHandler) UpdateMeal(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	meal, err := h.mealService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Cập nhật món ăn thành công", meal)
}

// DeleteMeal godoc
// @Summary Delete a dish
// @Tags Meals
// @Produce json
// @Security BearerAuth
// @Param id path string true "Meal ID"
// @Success 200 {object} envelope
// @Router /monan/{id} [delete]
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.mealService.Delete(c.Request.Context(), id); err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, "Đã xóa món ăn", nil)
}

// CreateMealPlan godoc
// @Summary Build a meal plan for a member the PT trains
// @Tags Meal plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMealPlanRequest true "Plan"
// @Success 201 {object} ptEnvelope
// @Failure 403 {object} errorResponse "Member is not trained by this PT"
// @Router /pt/thucdon [post]
func (h *MealHandler) CreateMealPlan(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}
	memberID, err := parseObjectID(req.MemberID, "maHoiVien")
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	days := make([]domain.MealPlanDay, len(req.Days))
	for i, d := range req.Days {
		ids := make([]primitive.ObjectID, len(d.MealIDs))
		for j, raw := range d.MealIDs {
			if ids[j], err = parseObjectID(raw, "monAn"); err != nil {
				abortWithServiceError(c, h.log, err)
				return
			}
		}
		days[i] = domain.MealPlanDay{Weekday: d.Weekday, MealIDs: ids}
	}

	plan, err := h.mealService.CreatePlan(c.Request.Context(), actor.ID, service.MealPlanInput{
		MemberID:       memberID,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TargetCalories: req.TargetCalories,
		Days:           days,
	})
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusCreated, plan)
}

// MyMealPlans godoc
// @Summary The member's meal plans with dishes and daily totals
// @Tags Meal plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Router /thucdon/cua-toi [get]
func (h *MealHandler) MyMealPlans(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	views, err := h.mealService.PlansForMember(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	out := make([]MealPlanResponse, len(views))
	for i := range views {
		out[i] = mapMealPlanView(&views[i])
	}
	respond(c, http.StatusOK, "Lấy thực đơn thành công", out)
}

// TrainerMealPlans godoc
// @Summary Meal plans written by the calling PT
// @Tags Meal plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ptEnvelope
// @Router /pt/thucdon [get]
func (h *MealHandler) TrainerMealPlans(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	plans, err := h.mealService.PlansForTrainer(c.Request.Context(), actor.ID)
	if err != nil {
		abortWithServiceError(c, h.log, err)
		return
	}
	respondPT(c, http.StatusOK, plans)
}
