package service

import (
	"alcyxob/gym-app/internal/cache"
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	packageListCacheKey = "goitap:dang-ban"
	packageListCacheTTL = 10 * time.Minute
)

// PackageInput is the editable part of a package.
type PackageInput struct {
	Name            string
	Description     string
	Price           int64
	DurationDays    int
	TrainerSessions int
	Benefits        []string
	ImageKey        string
}

// PackageComparisonItem is one column of the comparison table.
type PackageComparisonItem struct {
	Package                domain.Package
	PricePerDay            float64
	PricePerTrainerSession float64
	CheapestPerDay         bool
	MostTrainerSessions    bool
}

type PackageService interface {
	List(ctx context.Context, includeStopped bool) ([]domain.Package, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Package, error)
	Compare(ctx context.Context, ids []primitive.ObjectID) ([]PackageComparisonItem, error)
	Create(ctx context.Context, in PackageInput) (*domain.Package, error)
	Update(ctx context.Context, id primitive.ObjectID, in PackageInput) (*domain.Package, error)
	// StopSale hides the package from new registrations. Existing ones keep running.
	StopSale(ctx context.Context, id primitive.ObjectID) error
}

type packageService struct {
	packageRepo repository.PackageRepository
	cache       cache.Cache
	log         logrus.FieldLogger
}

func NewPackageService(packageRepo repository.PackageRepository, c cache.Cache, log logrus.FieldLogger) PackageService {
	return &packageService{packageRepo: packageRepo, cache: c, log: log}
}

// List returns packages on sale, served from cache when possible.
// Owners may ask for stopped packages too; that list is never cached.
func (s *packageService) List(ctx context.Context, includeStopped bool) ([]domain.Package, error) {
	if includeStopped {
		return s.packageRepo.List(ctx, false)
	}

	var pkgs []domain.Package
	err := cache.GetJSON(ctx, s.cache, packageListCacheKey, &pkgs)
	if err == nil {
		return pkgs, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.WithError(err).Warn("package cache read failed")
	}

	pkgs, err = s.packageRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, packageListCacheKey, pkgs, packageListCacheTTL); err != nil {
		s.log.WithError(err).Warn("package cache write failed")
	}
	return pkgs, nil
}

func (s *packageService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Package, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return pkg, nil
}

// Compare puts 2 to 4 packages side by side with per-day and per-session prices.
func (s *packageService) Compare(ctx context.Context, ids []primitive.ObjectID) ([]PackageComparisonItem, error) {
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		dup := false
		for _, u := range unique {
			if u == id {
				dup = true
				break
			}
		}
		if !dup {
			unique = append(unique, id)
		}
	}
	if len(unique) < 2 || len(unique) > 4 {
		return nil, validationError("compare between 2 and 4 distinct packages")
	}

	pkgs, err := s.packageRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(pkgs) != len(unique) {
		return nil, ErrPackageNotFound
	}
	byID := make(map[primitive.ObjectID]domain.Package, len(pkgs))
	for _, p := range pkgs {
		byID[p.ID] = p
	}

	items := make([]PackageComparisonItem, len(unique))
	cheapest, most := -1, -1
	for i, id := range unique {
		p := byID[id]
		items[i] = PackageComparisonItem{
			Package:                p,
			PricePerDay:            p.PricePerDay(),
			PricePerTrainerSession: p.PricePerTrainerSession(),
		}
		if p.DurationDays > 0 && (cheapest < 0 || items[i].PricePerDay < items[cheapest].PricePerDay) {
			cheapest = i
		}
		if p.TrainerSessions > 0 && (most < 0 || p.TrainerSessions > items[most].Package.TrainerSessions) {
			most = i
		}
	}
	if cheapest >= 0 {
		items[cheapest].CheapestPerDay = true
	}
	if most >= 0 {
		items[most].MostTrainerSessions = true
	}
	return items, nil
}

func (s *packageService) Create(ctx context.Context, in PackageInput) (*domain.Package, error) {
	if err := validatePackage(in); err != nil {
		return nil, err
	}
	pkg := &domain.Package{Status: domain.PackageOnSale}
	applyPackageInput(pkg, in)
	id, err := s.packageRepo.Create(ctx, pkg)
	if err != nil {
		return nil, err
	}
	pkg.ID = id
	s.invalidate(ctx)
	return pkg, nil
}

func (s *packageService) Update(ctx context.Context, id primitive.ObjectID, in PackageInput) (*domain.Package, error) {
	if err := validatePackage(in); err != nil {
		return nil, err
	}
	pkg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPackageInput(pkg, in)
	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	s.invalidate(ctx)
	return pkg, nil
}

func (s *packageService) StopSale(ctx context.Context, id primitive.ObjectID) error {
	pkg, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if pkg.Status == domain.PackageStopped {
		return nil
	}
	pkg.Status = domain.PackageStopped
	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *packageService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, packageListCacheKey); err != nil {
		s.log.WithError(err).Warn("package cache invalidation failed")
	}
}

func validatePackage(in PackageInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return validationError("tenGoiTap is required")
	case in.Price < 0:
		return validationError("gia cannot be negative")
	case in.DurationDays <= 0:
		return validationError("thoiHan must be at least one day")
	case in.TrainerSessions < 0:
		return validationError("soBuoiPT cannot be negative")
	}
	return nil
}

func applyPackageInput(pkg *domain.Package, in PackageInput) {
	pkg.Name = strings.TrimSpace(in.Name)
	pkg.Description = in.Description
	pkg.Price = in.Price
	pkg.DurationDays = in.DurationDays
	pkg.TrainerSessions = in.TrainerSessions
	pkg.Benefits = in.Benefits
	pkg.ImageKey = in.ImageKey
}
