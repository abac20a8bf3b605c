package postgres

import (
	"gorm.io/gorm"

	"github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/adminuser"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(email string) (*adminuser.AdminUser, error) {
	var admin adminuser.AdminUser
	if err := r.db.Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) GetByID(id int64) (*adminuser.AdminUser, error) {
	var admin adminuser.AdminUser
	if err := r.db.First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) Create(admin *adminuser.AdminUser) error {
	return r.db.Create(admin).Error
}
