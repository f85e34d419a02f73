package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentType 内容类型
type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeTV    ContentType = "tv"
	// ContentTypeAll 仅用于列表过滤，表示不过滤类型，不是合法的内容类型
	ContentTypeAll ContentType = "all"
)

// IsValid 是否为 movie 或 tv
func (t ContentType) IsValid() bool {
	return t == ContentTypeMovie || t == ContentTypeTV
}

// CoerceContentType 将存储中的类型值转换为内容类型
// 非 movie 的值一律视为 tv，ok 表示原值是否合法
func CoerceContentType(raw string) (t ContentType, ok bool) {
	switch ContentType(raw) {
	case ContentTypeMovie:
		return ContentTypeMovie, true
	case ContentTypeTV:
		return ContentTypeTV, true
	default:
		return ContentTypeTV, false
	}
}

// Source 内容数据来源
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// WatchProvider 流媒体平台
type WatchProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LogoPath     string `json:"logoPath"`
	URL          string `json:"url"`
	RedirectLink string `json:"redirectLink,omitempty"`
}

// CastMember 演员
type CastMember struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// Episode 剧集
type Episode struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Overview      string  `json:"overview"`
	EpisodeNumber int     `json:"episodeNumber"`
	StillPath     string  `json:"stillPath,omitempty"`
	AirDate       string  `json:"airDate,omitempty"`
	Duration      string  `json:"duration,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
}

// Season 季
type Season struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"seasonNumber"`
	EpisodeCount int       `json:"episodeCount"`
	PosterPath   string    `json:"posterPath,omitempty"`
	AirDate      string    `json:"airDate,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	Episodes     []Episode `json:"episodes"`
}

// ImageType 图片类型
type ImageType string

const (
	ImagePoster   ImageType = "poster"
	ImageBackdrop ImageType = "backdrop"
)

// Image 剧照/海报
type Image struct {
	Path string    `json:"path"`
	Type ImageType `json:"type"`
}

// EmbedVideo 内嵌视频
type EmbedVideo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Content 影视内容
type Content struct {
	ID             string          `json:"id"`
	Title          string          `json:"title" validate:"required"`
	Overview       string          `json:"overview"`
	PosterPath     string          `json:"posterPath"`
	BackdropPath   string          `json:"backdropPath,omitempty"`
	ReleaseDate    string          `json:"releaseDate,omitempty"`
	Type           ContentType     `json:"type" validate:"contenttype"`
	Genres         []string        `json:"genres"`
	Rating         float64         `json:"rating" validate:"gte=0,lte=10"`
	Duration       string          `json:"duration,omitempty"`
	Status         string          `json:"status,omitempty"`
	TrailerURL     string          `json:"trailerUrl,omitempty"`
	WatchProviders []WatchProvider `json:"watchProviders"`
	Cast           []CastMember    `json:"cast"`
	Seasons        []Season        `json:"seasons"`
	Images         []Image         `json:"images"`
	EmbedVideos    []EmbedVideo    `json:"embedVideos"`

	// Source 只在导入结果上有意义，不落库
	Source    Source    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ImportedContentID 导入内容的稳定 ID
func ImportedContentID(externalID string, t ContentType) string {
	return fmt.Sprintf("tmdb-%s-%s", externalID, t)
}

// ParseImportedContentID 从导入内容的 ID 中取回外部 ID，非导入内容返回 false
func ParseImportedContentID(id string) (externalID string, t ContentType, ok bool) {
	rest, found := strings.CutPrefix(id, "tmdb-")
	if !found {
		return "", "", false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 {
		return "", "", false
	}
	t = ContentType(rest[i+1:])
	if !t.IsValid() {
		return "", "", false
	}
	return rest[:i], t, true
}

// EnsureCollections 保证所有嵌套集合不为 nil
func (c *Content) EnsureCollections() {
	if c.Genres == nil {
		c.Genres = []string{}
	}
	if c.WatchProviders == nil {
		c.WatchProviders = []WatchProvider{}
	}
	if c.Cast == nil {
		c.Cast = []CastMember{}
	}
	if c.Seasons == nil {
		c.Seasons = []Season{}
	}
	for i := range c.Seasons {
		if c.Seasons[i].Episodes == nil {
			c.Seasons[i].Episodes = []Episode{}
		}
	}
	if c.Images == nil {
		c.Images = []Image{}
	}
	if c.EmbedVideos == nil {
		c.EmbedVideos = []EmbedVideo{}
	}
}

// EnsureIDs 为缺少 ID 的嵌套元素补充随机 ID（人工录入的行）
// 导入的数据在构造时已按位置生成 ID
func (c *Content) EnsureIDs() {
	for i := range c.WatchProviders {
		if c.WatchProviders[i].ID == "" {
			c.WatchProviders[i].ID = uuid.NewString()
		}
	}
	for i := range c.Cast {
		if c.Cast[i].ID == "" {
			c.Cast[i].ID = uuid.NewString()
		}
	}
	for i := range c.Seasons {
		if c.Seasons[i].ID == "" {
			c.Seasons[i].ID = uuid.NewString()
		}
		for j := range c.Seasons[i].Episodes {
			if c.Seasons[i].Episodes[j].ID == "" {
				c.Seasons[i].Episodes[j].ID = uuid.NewString()
			}
		}
	}
}

// EnsureImages 保证 images 中包含海报和背景图，并按路径去重
func (c *Content) EnsureImages() {
	images := make([]Image, 0, len(c.Images)+2)
	seen := make(map[string]struct{}, len(c.Images)+2)
	add := func(img Image) {
		if img.Path == "" {
			return
		}
		if _, ok := seen[img.Path]; ok {
			return
		}
		seen[img.Path] = struct{}{}
		images = append(images, img)
	}

	add(Image{Path: c.PosterPath, Type: ImagePoster})
	add(Image{Path: c.BackdropPath, Type: ImageBackdrop})
	for _, img := range c.Images {
		add(img)
	}
	c.Images = images
}

// Prepare 写入前整理：补齐集合、ID 和图片
func (c *Content) Prepare() {
	c.Title = strings.TrimSpace(c.Title)
	c.EnsureCollections()
	c.EnsureIDs()
	c.EnsureImages()
}

// Clone 深拷贝，嵌套集合不与原对象共享底层数组
func (c Content) Clone() Content {
	out := c
	out.Genres = append([]string(nil), c.Genres...)
	out.WatchProviders = append([]WatchProvider(nil), c.WatchProviders...)
	out.Cast = append([]CastMember(nil), c.Cast...)
	out.Images = append([]Image(nil), c.Images...)
	out.EmbedVideos = append([]EmbedVideo(nil), c.EmbedVideos...)
	out.Seasons = make([]Season, len(c.Seasons))
	for i, s := range c.Seasons {
		s.Episodes = append([]Episode(nil), s.Episodes...)
		out.Seasons[i] = s
	}
	out.EnsureCollections()
	return out
}
