// pkg/model/types.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 通知类型标签
const (
	TypeInApp = "in_app"
	TypeEmail = "email"
)

// 投递渠道
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
)

// TypeList 通知类型标签集合，按jsonb存储
type TypeList []string

// Has 判断是否包含指定标签
func (t TypeList) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

func (t TypeList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	return string(b), err
}

func (t *TypeList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return errors.New("TypeList: 不支持的数据库类型")
	}
}

// Metadata 自由格式的通知元数据，按jsonb存储
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *Metadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return errors.New("Metadata: 不支持的数据库类型")
	}
}
