package model

import "time"

// ContentView 内容访问记录
type ContentView struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ContentID string    `json:"content_id" gorm:"type:varchar(128);index;not null"`
	IPHash    string    `json:"ip_hash" gorm:"type:varchar(32)"`
	ViewedAt  time.Time `json:"viewed_at" gorm:"index"`
}

// TableName 表名
func (ContentView) TableName() string {
	return "content_views"
}

// ViewCount 单个内容的访问量
type ViewCount struct {
	ContentID string `json:"content_id"`
	Views     int64  `json:"views"`
}

// TypeCount 各类型内容数量
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}
