package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/config"
	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/utils"
	"go.uber.org/zap"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/"

// TMDBClient TMDB v3 接口
type TMDBClient struct {
	http    *utils.HTTPClient
	baseURL string
	apiKey  string
	token   string
	region  string
	log     *zap.Logger
}

// NewTMDBClient 创建 TMDB 客户端
func NewTMDBClient(cfg *config.Config, log *zap.Logger) *TMDBClient {
	region := strings.ToUpper(cfg.TMDBRegion)
	if region == "" {
		region = "US"
	}
	return &TMDBClient{
		http:    utils.NewHTTPClient(cfg.TMDBTimeout),
		baseURL: strings.TrimRight(cfg.TMDBBaseURL, "/"),
		apiKey:  cfg.TMDBAPIKey,
		token:   cfg.TMDBToken,
		region:  region,
		log:     logger.OrNop(log).Named("tmdb"),
	}
}

// Configured 是否配置了凭证
func (c *TMDBClient) Configured() bool {
	return c.apiKey != "" || c.token != ""
}

// get 请求 path 并解析 JSON；api key 走查询参数，v4 token 走 Bearer 头
func (c *TMDBClient) get(ctx context.Context, op, path string, query url.Values, target any) error {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.http.GetJSON(ctx, u, header, target); err != nil {
		c.log.Warn("TMDB 请求失败", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return apperror.ExternalAPI(op, "TMDB 请求失败: "+path, err)
	}
	return nil
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbSeasonSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
	Overview     string `json:"overview"`
}

// tmdbDetails 电影与剧集共用的详情结构
type tmdbDetails struct {
	ID             int                 `json:"id"`
	Title          string              `json:"title"`
	Name           string              `json:"name"` // 电视剧
	Overview       string              `json:"overview"`
	PosterPath     string              `json:"poster_path"`
	BackdropPath   string              `json:"backdrop_path"`
	ReleaseDate    string              `json:"release_date"`
	FirstAirDate   string              `json:"first_air_date"` // 电视剧
	Runtime        int                 `json:"runtime"`
	EpisodeRunTime []int               `json:"episode_run_time"` // 电视剧
	Genres         []tmdbGenre         `json:"genres"`
	VoteAverage    float64             `json:"vote_average"`
	Status         string              `json:"status"`
	Seasons        []tmdbSeasonSummary `json:"seasons"`
}

type tmdbCastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type tmdbCredits struct {
	Cast []tmdbCastMember `json:"cast"`
}

type tmdbVideo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type tmdbVideos struct {
	Results []tmdbVideo `json:"results"`
}

type tmdbImage struct {
	FilePath string `json:"file_path"`
}

type tmdbImages struct {
	Backdrops []tmdbImage `json:"backdrops"`
	Posters   []tmdbImage `json:"posters"`
}

type tmdbProvider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path"`
	DisplayPriority int    `json:"display_priority"`
}

// tmdbRegionProviders 某个地区的可观看平台
type tmdbRegionProviders struct {
	Link     string         `json:"link"`
	Flatrate []tmdbProvider `json:"flatrate"`
	Rent     []tmdbProvider `json:"rent"`
	Buy      []tmdbProvider `json:"buy"`
}

type tmdbWatchProviders struct {
	Results map[string]tmdbRegionProviders `json:"results"`
}

type tmdbEpisode struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	EpisodeNumber int     `json:"episode_number"`
	StillPath     string  `json:"still_path"`
	AirDate       string  `json:"air_date"`
	Runtime       int     `json:"runtime"`
	VoteAverage   float64 `json:"vote_average"`
}

type tmdbSeasonDetail struct {
	tmdbSeasonSummary
	Episodes []tmdbEpisode `json:"episodes"`
}

func resourcePath(t model.ContentType, externalID string) string {
	return fmt.Sprintf("/%s/%s", t, url.PathEscape(externalID))
}

// Details 详情，导入时唯一致命的请求
func (c *TMDBClient) Details(ctx context.Context, externalID string, t model.ContentType) (*tmdbDetails, error) {
	var out tmdbDetails
	if err := c.get(ctx, "tmdb.details", resourcePath(t, externalID), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == 0 && out.Title == "" && out.Name == "" {
		return nil, apperror.ExternalAPI("tmdb.details", "TMDB 返回空详情", fmt.Errorf("empty payload for %s", externalID))
	}
	return &out, nil
}

// Credits 演职员
func (c *TMDBClient) Credits(ctx context.Context, externalID string, t model.ContentType) (*tmdbCredits, error) {
	var out tmdbCredits
	if err := c.get(ctx, "tmdb.credits", resourcePath(t, externalID)+"/credits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Videos 预告片等视频
func (c *TMDBClient) Videos(ctx context.Context, externalID string, t model.ContentType) (*tmdbVideos, error) {
	var out tmdbVideos
	if err := c.get(ctx, "tmdb.videos", resourcePath(t, externalID)+"/videos", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Images 海报与剧照
func (c *TMDBClient) Images(ctx context.Context, externalID string, t model.ContentType) (*tmdbImages, error) {
	var out tmdbImages
	q := url.Values{"include_image_language": []string{"en,null"}}
	if err := c.get(ctx, "tmdb.images", resourcePath(t, externalID)+"/images", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WatchProviders 当前地区的可观看平台，地区缺失时返回空结构
func (c *TMDBClient) WatchProviders(ctx context.Context, externalID string, t model.ContentType) (*tmdbRegionProviders, error) {
	var out tmdbWatchProviders
	if err := c.get(ctx, "tmdb.providers", resourcePath(t, externalID)+"/watch/providers", nil, &out); err != nil {
		return nil, err
	}
	region := out.Results[c.region]
	return &region, nil
}

// Season 单季详情（含剧集列表）
func (c *TMDBClient) Season(ctx context.Context, externalID string, seasonNumber int) (*tmdbSeasonDetail, error) {
	var out tmdbSeasonDetail
	path := fmt.Sprintf("%s/season/%d", resourcePath(model.ContentTypeTV, externalID), seasonNumber)
	if err := c.get(ctx, "tmdb.season", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// imageURL 相对路径 -> 绝对地址，路径为空时返回空串
func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return tmdbImageBase + size + path
}
