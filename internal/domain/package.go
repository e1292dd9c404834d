package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PackageStatus tells whether a package can still be bought.
type PackageStatus string

const (
	PackageOnSale  PackageStatus = "DANG_BAN"
	PackageStopped PackageStatus = "NGUNG_BAN"
)

// Package is a membership package (gói tập) members can register for.
type Package struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"tenGoiTap" json:"tenGoiTap"`
	Description     string             `bson:"moTa,omitempty" json:"moTa,omitempty"`
	Price           int64              `bson:"gia" json:"gia"`                 // VND
	DurationDays    int                `bson:"thoiHan" json:"thoiHan"`         // days of access
	TrainerSessions int                `bson:"soBuoiPT" json:"soBuoiPT"`       // PT sessions included
	Benefits        []string           `bson:"quyenLoi,omitempty" json:"quyenLoi,omitempty"`
	ImageKey        string             `bson:"hinhAnh,omitempty" json:"hinhAnh,omitempty"`
	Status          PackageStatus      `bson:"trangThai" json:"trangThai"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Package) OnSale() bool {
	return p.Status == PackageOnSale
}

// PricePerDay is the package price spread over its duration.
func (p *Package) PricePerDay() float64 {
	if p.DurationDays <= 0 {
		return 0
	}
	return float64(p.Price) / float64(p.DurationDays)
}

// PricePerTrainerSession is the price divided by the included PT sessions,
// zero when the package has none.
func (p *Package) PricePerTrainerSession() float64 {
	if p.TrainerSessions <= 0 {
		return 0
	}
	return float64(p.Price) / float64(p.TrainerSessions)
}
