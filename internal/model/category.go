package model

import "time"

// Category 分类，Contents 在每次请求时由成员关系与内容全集连接得到
type Category struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Contents []Content `json:"contents"`
}

// CategoryRow categories 表
type CategoryRow struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Position  int       `json:"position" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 表名
func (CategoryRow) TableName() string {
	return "categories"
}

// CategoryContent category_contents 成员关系表
type CategoryContent struct {
	CategoryID string `json:"category_id" gorm:"primaryKey;type:varchar(64)"`
	ContentID  string `json:"content_id" gorm:"primaryKey;type:varchar(128);index"`
	Position   int    `json:"position" gorm:"default:0"`
}

// TableName 表名
func (CategoryContent) TableName() string {
	return "category_contents"
}
