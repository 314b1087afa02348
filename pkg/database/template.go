// pkg/database/template.go
package database

import (
	"fmt"
	"strings"
	"time"

	"NotifyHub/pkg/model"

	"gorm.io/gorm"
)

type TemplateDB struct {
	db *gorm.DB
}

func (p *Postgres) Template() *TemplateDB {
	return &TemplateDB{db: p.db}
}

func (t *TemplateDB) Create(template *model.Template) error {
	if err := t.db.Create(template).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return gorm.ErrDuplicatedKey
		}
		return fmt.Errorf("创建模板失败: %w", err)
	}
	return nil
}

// GetActive 获取未删除的模板，软删除的记录一律不可见
func (t *TemplateDB) GetActive(templateID string) (*model.Template, error) {
	var template model.Template
	err := t.db.First(&template, "id = ?", templateID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("获取模板失败: %w", err)
	}
	return &template, nil
}

// List 模板列表，customerID为空时只返回全局共享模板
func (t *TemplateDB) List(customerID string, limit, offset int) ([]*model.Template, error) {
	var templates []*model.Template
	query := t.db.Model(&model.Template{})

	if customerID != "" {
		// 租户可见：自己的模板加全局共享模板
		query = query.Where("customer_id = ? OR customer_id IS NULL", customerID)
	} else {
		query = query.Where("customer_id IS NULL")
	}

	if limit <= 0 {
		limit = 50
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&templates).Error

	if err != nil {
		return nil, fmt.Errorf("查询模板列表失败: %w", err)
	}
	return templates, nil
}

// Update 按更新映射做部分更新，只写调用方显式提供的字段
func (t *TemplateDB) Update(templateID string, updates map[string]interface{}) (*model.Template, error) {
	updates["updated_at"] = time.Now()

	result := t.db.Model(&model.Template{}).
		Where("id = ?", templateID).
		Updates(updates)

	if result.Error != nil {
		return nil, fmt.Errorf("更新模板失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return t.GetActive(templateID)
}

// SoftDelete 软删除模板
func (t *TemplateDB) SoftDelete(templateID string) error {
	result := t.db.Delete(&model.Template{}, "id = ?", templateID)
	if result.Error != nil {
		return fmt.Errorf("删除模板失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeDeletedBefore 物理清理软删除超过保留期的模板，返回清理条数
func (t *TemplateDB) PurgeDeletedBefore(cutoff time.Time) (int64, error) {
	result := t.db.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&model.Template{})

	if result.Error != nil {
		return 0, fmt.Errorf("清理过期模板失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}
