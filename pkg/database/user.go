// pkg/database/user.go
package database

import (
	"fmt"

	"NotifyHub/pkg/model"

	"gorm.io/gorm"
)

type UserDB struct {
	db *gorm.DB
}

func (p *Postgres) User() *UserDB {
	return &UserDB{db: p.db}
}

func (u *UserDB) Create(user *model.User) error {
	return u.db.Create(user).Error
}

func (u *UserDB) GetByID(userID string) (*model.User, error) {
	var user model.User
	err := u.db.First(&user, "id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("获取用户失败: %w", err)
	}
	return &user, nil
}

// ActiveByCustomer 获取租户下所有未删除的用户，通知分发的接收人来源
func (u *UserDB) ActiveByCustomer(customerID string) ([]*model.User, error) {
	var users []*model.User
	err := u.db.Where("customer_id = ?", customerID).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("查询租户用户失败: %w", err)
	}
	return users, nil
}

func (u *UserDB) GetTotalCount() (int64, error) {
	var count int64
	err := u.db.Model(&model.User{}).Count(&count).Error
	return count, err
}
