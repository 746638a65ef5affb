package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"voiceguide-backend/internal/model"
)

type PackageRepository interface {
	Seed(ctx context.Context, pkgs []model.Package) error
	FindByID(ctx context.Context, id uint) (*model.Package, error)
	FindActiveByCode(ctx context.Context, code string) (*model.Package, error)
	List(ctx context.Context) ([]*model.Package, error)
}

type packageRepoImpl struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepoImpl{
		db: db,
	}
}

// Seed inserts the catalogue; rows whose code already exists are left untouched.
func (r *packageRepoImpl) Seed(ctx context.Context, pkgs []model.Package) error {
	if len(pkgs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&pkgs).Error
}

func (r *packageRepoImpl) FindByID(ctx context.Context, id uint) (*model.Package, error) {
	var pkg model.Package
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&pkg).Error

	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

func (r *packageRepoImpl) FindActiveByCode(ctx context.Context, code string) (*model.Package, error) {
	var pkg model.Package
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&pkg).Error

	if err != nil {
		return nil, err
	}

	return &pkg, nil
}

func (r *packageRepoImpl) List(ctx context.Context) ([]*model.Package, error) {
	var pkgs []*model.Package
	err := r.db.WithContext(ctx).
		Order("package_type, num_licenses, max_guests").
		Find(&pkgs).Error

	if err != nil {
		return nil, err
	}

	return pkgs, nil
}
