package model

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList 字符串数组列，Postgres 下为 text[]，其它方言退化为文本
type StringList []string

// Value 编码为 Postgres 数组字面量
func (l StringList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

// Scan 解析 Postgres 数组字面量
func (l *StringList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*l = StringList(arr)
	return nil
}

// GormDataType gorm 解析字段时使用的通用类型
func (StringList) GormDataType() string {
	return "text[]"
}

// GormDBDataType 按方言返回列类型
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// ContentRow contents 表的存储结构，字段名为 snake_case
// 嵌套集合以 JSON 文本保存
type ContentRow struct {
	ID             string     `gorm:"primaryKey;type:varchar(128)"`
	Title          string     `gorm:"not null;index"`
	Overview       string     `gorm:"type:text"`
	PosterPath     string     `gorm:"column:poster_path"`
	BackdropPath   string     `gorm:"column:backdrop_path"`
	ReleaseDate    string     `gorm:"column:release_date"`
	Type           string     `gorm:"type:varchar(16);index"`
	Genres         StringList `gorm:"column:genres"`
	Rating         float64    `gorm:"type:numeric;index"`
	Duration       string
	Status         string
	TrailerURL     string    `gorm:"column:trailer_url"`
	EmbedVideos    string    `gorm:"column:embed_videos;type:json"`
	Images         string    `gorm:"column:images;type:json"`
	WatchProviders string    `gorm:"column:watch_providers;type:json"`
	Seasons        string    `gorm:"column:seasons;type:json"`
	CastInfo       string    `gorm:"column:cast_info;type:json"`
	CreatedAt      time.Time `gorm:"index"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

// TableName 表名
func (ContentRow) TableName() string {
	return "contents"
}
