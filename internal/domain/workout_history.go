package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseLog is one exercise performed during a workout.
type ExerciseLog struct {
	Name   string  `bson:"tenBaiTap" json:"tenBaiTap"`
	Sets   int     `bson:"soHiep,omitempty" json:"soHiep,omitempty"`
	Reps   int     `bson:"soLan,omitempty" json:"soLan,omitempty"`
	Weight float64 `bson:"khoiLuong,omitempty" json:"khoiLuong,omitempty"` // kg
}

// WorkoutHistory is a lịch sử tập record.
type WorkoutHistory struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	MemberID        primitive.ObjectID  `bson:"maHoiVien" json:"maHoiVien"`
	SessionID       *primitive.ObjectID `bson:"maBuoiTap,omitempty" json:"maBuoiTap,omitempty"`
	RecordedBy      primitive.ObjectID  `bson:"nguoiGhi" json:"nguoiGhi"`
	WorkoutDate     time.Time           `bson:"ngayTap" json:"ngayTap"`
	DurationMinutes int                 `bson:"thoiLuong" json:"thoiLuong"`
	Exercises       []ExerciseLog       `bson:"baiTap,omitempty" json:"baiTap,omitempty"`
	CaloriesBurned  int                 `bson:"caloTieuHao,omitempty" json:"caloTieuHao,omitempty"`
	Notes           string              `bson:"ghiChu,omitempty" json:"ghiChu,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}

// HistoryFilter narrows a member's history.
type HistoryFilter struct {
	From *time.Time
	To   *time.Time
}

// WeeklyCount is the number of workouts in the week starting on WeekStart (Monday).
type WeeklyCount struct {
	WeekStart time.Time `json:"tuanBatDau"`
	Count     int       `json:"soBuoi"`
}

// HistoryStats summarises a member's workout history.
type HistoryStats struct {
	TotalWorkouts int           `json:"tongSoBuoi"`
	TotalMinutes  int           `json:"tongThoiLuong"`
	TotalCalories int           `json:"tongCalo"`
	Weekly        []WeeklyCount `json:"theoTuan"`
}
