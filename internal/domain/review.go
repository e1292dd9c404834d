package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a member's rating (đánh giá) of a PT for one completed session.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID primitive.ObjectID `bson:"maBuoiTap" json:"maBuoiTap"` // unique: one review per session
	TrainerID primitive.ObjectID `bson:"maPT" json:"maPT"`
	MemberID  primitive.ObjectID `bson:"maHoiVien" json:"maHoiVien"`
	Score     int                `bson:"diem" json:"diem"` // 1..5
	Comment   string             `bson:"nhanXet,omitempty" json:"nhanXet,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// RatingSummary aggregates a PT's reviews.
type RatingSummary struct {
	Average float64     `json:"diemTrungBinh"`
	Count   int         `json:"soDanhGia"`
	ByScore map[int]int `json:"theoDiem"`
}

// Summarize computes the average and the per-star counts.
func Summarize(reviews []Review) RatingSummary {
	sum := RatingSummary{ByScore: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for _, r := range reviews {
		sum.ByScore[r.Score]++
		total += r.Score
	}
	sum.Count = len(reviews)
	if sum.Count > 0 {
		// one decimal, like the dashboard shows it
		sum.Average = float64(total*10/sum.Count) / 10
	}
	return sum
}
