package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType is the meal of the day a dish belongs to.
type MealType string

const (
	MealBreakfast MealType = "SANG"
	MealLunch     MealType = "TRUA"
	MealDinner    MealType = "TOI"
	MealSnack     MealType = "PHU"
)

func ValidMealType(t MealType) bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Meal is a dish (món ăn) in the nutrition catalogue.
type Meal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"tenMon" json:"tenMon"`
	Type        MealType           `bson:"loaiBua" json:"loaiBua"`
	Calories    int                `bson:"calo" json:"calo"`
	Protein     float64            `bson:"protein" json:"protein"` // grams
	Carbs       float64            `bson:"carb" json:"carb"`
	Fat         float64            `bson:"fat" json:"fat"`
	Description string             `bson:"moTa,omitempty" json:"moTa,omitempty"`
	ImageKey    string             `bson:"hinhAnh,omitempty" json:"hinhAnh,omitempty"`
	SearchText  string             `bson:"searchText" json:"-"`
	CreatedBy   primitive.ObjectID `bson:"nguoiTao" json:"nguoiTao"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MealFilter narrows meal search.
type MealFilter struct {
	Query string // normalised
	Type  MealType
}

// MealPlanDay lists the meals of one weekday in a plan.
type MealPlanDay struct {
	Weekday int                  `bson:"thu" json:"thu"`
	MealIDs []primitive.ObjectID `bson:"monAn" json:"monAn"`
}

// MealPlan (thực đơn) is a PT's nutrition plan for a member.
type MealPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID       primitive.ObjectID `bson:"maHoiVien" json:"maHoiVien"`
	TrainerID      primitive.ObjectID `bson:"maPT" json:"maPT"`
	Name           string             `bson:"tenThucDon" json:"tenThucDon"`
	StartDate      time.Time          `bson:"ngayBatDau" json:"ngayBatDau"`
	EndDate        time.Time          `bson:"ngayKetThuc" json:"ngayKetThuc"`
	TargetCalories int                `bson:"mucTieuCalo,omitempty" json:"mucTieuCalo,omitempty"`
	Days           []MealPlanDay      `bson:"ngay" json:"ngay"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Nutrition totals for a set of meals.
type Nutrition struct {
	Calories int     `json:"calo"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carb"`
	Fat      float64 `json:"fat"`
}

// Add accumulates one meal into the totals.
func (n *Nutrition) Add(m *Meal) {
	n.Calories += m.Calories
	n.Protein += m.Protein
	n.Carbs += m.Carbs
	n.Fat += m.Fat
}
