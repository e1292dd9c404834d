// internal/domain/template.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateExercise is a planned exercise inside a workout template.
type TemplateExercise struct {
	Name        string `bson:"tenBaiTap" json:"tenBaiTap"`
	Sets        int    `bson:"soHiep,omitempty" json:"soHiep,omitempty"`
	Reps        int    `bson:"soLan,omitempty" json:"soLan,omitempty"`
	RestSeconds int    `bson:"thoiGianNghi,omitempty" json:"thoiGianNghi,omitempty"`
	Notes       string `bson:"ghiChu,omitempty" json:"ghiChu,omitempty"`
}

// Template is a reusable workout plan owned by a PT.
type Template struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"maPT" json:"maPT"` // owner
	Name        string             `bson:"tenTemplate" json:"tenTemplate"`
	Description string             `bson:"moTa,omitempty" json:"moTa,omitempty"`
	Goal        string             `bson:"mucTieu,omitempty" json:"mucTieu,omitempty"` // e.g. "Giảm mỡ", "Tăng cơ"
	Exercises   []TemplateExercise `bson:"baiTap" json:"baiTap"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
