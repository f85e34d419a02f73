package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/deeplink"
	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	maxCast          = 12
	maxImagesPerType = 8
	maxProviders     = 8
	maxSeasons       = 10
	importCacheSize  = 256
	importCacheTTL   = 30 * time.Minute
)

// metadataSource 外部元数据接口，*TMDBClient 为默认实现
type metadataSource interface {
	Configured() bool
	Details(ctx context.Context, externalID string, t model.ContentType) (*tmdbDetails, error)
	Credits(ctx context.Context, externalID string, t model.ContentType) (*tmdbCredits, error)
	Videos(ctx context.Context, externalID string, t model.ContentType) (*tmdbVideos, error)
	Images(ctx context.Context, externalID string, t model.ContentType) (*tmdbImages, error)
	WatchProviders(ctx context.Context, externalID string, t model.ContentType) (*tmdbRegionProviders, error)
	Season(ctx context.Context, externalID string, seasonNumber int) (*tmdbSeasonDetail, error)
}

// ImportService 从 TMDB 导入内容，失败时降级为模拟数据
// 返回的内容不落库，由调用方决定是否保存
type ImportService struct {
	source     metadataSource
	cache      *utils.TTLCache[model.Content]
	group      singleflight.Group
	subTimeout time.Duration
	log        *zap.Logger
}

// NewImportService 创建导入服务，subTimeout 为每个子请求的超时
func NewImportService(source metadataSource, subTimeout time.Duration, log *zap.Logger) *ImportService {
	if subTimeout <= 0 {
		subTimeout = 8 * time.Second
	}
	return &ImportService{
		source:     source,
		cache:      utils.NewTTLCache[model.Content](importCacheSize, importCacheTTL),
		subTimeout: subTimeout,
		log:        logger.OrNop(log).Named("import"),
	}
}

// Import 导入外部内容
// 参数不合法时直接返回校验错误，不发起网络请求；其余情况总是返回可用的内容
func (s *ImportService) Import(ctx context.Context, externalID string, t model.ContentType) (*model.Content, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.Validation("import", "外部 ID 不能为空")
	}
	if t != model.ContentTypeMovie && t != model.ContentTypeTV {
		return nil, apperror.Validation("import", "类型必须是 movie 或 tv: %q", t)
	}

	if s.source == nil || !s.source.Configured() {
		s.log.Info("未配置 TMDB 凭证，使用模拟数据", zap.String("externalId", externalID), zap.String("type", string(t)))
		c := Fallback(externalID, t)
		return &c, nil
	}

	key := model.ImportedContentID(externalID, t)
	if cached, ok := s.cache.Get(key); ok {
		c := cached.Clone()
		return &c, nil
	}

	// 使用 singleflight 避免并发重复抓取
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchLive(ctx, externalID, t)
	})
	if err != nil {
		s.log.Warn("TMDB 导入失败，降级为模拟数据",
			zap.String("externalId", externalID),
			zap.String("type", string(t)),
			zap.Error(err))
		c := Fallback(externalID, t)
		return &c, nil
	}

	live := v.(model.Content)
	s.cache.Set(key, live)
	c := live.Clone()
	return &c, nil
}

// ClearCache 清空导入缓存
func (s *ImportService) ClearCache() {
	s.cache.Clear()
}

// fetchLive 详情请求失败即失败，其余子请求并行执行，失败只降级对应字段
func (s *ImportService) fetchLive(ctx context.Context, externalID string, t model.ContentType) (model.Content, error) {
	detailsCtx, cancel := context.WithTimeout(ctx, s.subTimeout)
	details, err := s.source.Details(detailsCtx, externalID, t)
	cancel()
	if err != nil {
		return model.Content{}, err
	}

	var (
		credits   *tmdbCredits
		videos    *tmdbVideos
		images    *tmdbImages
		providers *tmdbRegionProviders
	)

	var g errgroup.Group
	sub := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			subCtx, cancel := context.WithTimeout(ctx, s.subTimeout)
			defer cancel()
			if err := fn(subCtx); err != nil {
				s.log.Warn("子请求失败，字段置空",
					zap.String("externalId", externalID),
					zap.String("part", name),
					zap.Error(err))
			}
			return nil
		})
	}

	sub("credits", func(ctx context.Context) (err error) {
		credits, err = s.source.Credits(ctx, externalID, t)
		return err
	})
	sub("videos", func(ctx context.Context) (err error) {
		videos, err = s.source.Videos(ctx, externalID, t)
		return err
	})
	sub("images", func(ctx context.Context) (err error) {
		images, err = s.source.Images(ctx, externalID, t)
		return err
	})
	sub("providers", func(ctx context.Context) (err error) {
		providers, err = s.source.WatchProviders(ctx, externalID, t)
		return err
	})

	var seasonNumbers []int
	if t == model.ContentTypeTV {
		seasonNumbers = regularSeasons(details.Seasons)
	}
	seasonDetails := make([]*tmdbSeasonDetail, len(seasonNumbers))
	for i, n := range seasonNumbers {
		i, n := i, n
		sub(fmt.Sprintf("season-%d", n), func(ctx context.Context) (err error) {
			seasonDetails[i], err = s.source.Season(ctx, externalID, n)
			return err
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return model.Content{}, err
	}

	c := assembleContent(externalID, t, details, credits, videos, images, providers, seasonDetails)
	c.Source = model.SourceLive
	return c, nil
}

// regularSeasons 排除第 0 季（特别篇），最多取前 maxSeasons 季
func regularSeasons(seasons []tmdbSeasonSummary) []int {
	var numbers []int
	for _, s := range seasons {
		if s.SeasonNumber > 0 {
			numbers = append(numbers, s.SeasonNumber)
		}
	}
	sort.Ints(numbers)
	if len(numbers) > maxSeasons {
		numbers = numbers[:maxSeasons]
	}
	return numbers
}

// assembleContent 把 TMDB 数据整理成 Content，nil 的子结果视为空
func assembleContent(
	externalID string,
	t model.ContentType,
	details *tmdbDetails,
	credits *tmdbCredits,
	videos *tmdbVideos,
	images *tmdbImages,
	providers *tmdbRegionProviders,
	seasons []*tmdbSeasonDetail,
) model.Content {
	c := model.Content{
		ID:           model.ImportedContentID(externalID, t),
		Title:        details.Title,
		Overview:     details.Overview,
		PosterPath:   imageURL("w500", details.PosterPath),
		BackdropPath: imageURL("w1280", details.BackdropPath),
		ReleaseDate:  details.ReleaseDate,
		Type:         t,
		Rating:       roundRating(details.VoteAverage),
		Status:       details.Status,
	}
	if t == model.ContentTypeTV {
		c.Title = details.Name
		c.ReleaseDate = details.FirstAirDate
		if len(details.EpisodeRunTime) > 0 {
			c.Duration = FormatRuntime(details.EpisodeRunTime[0])
		}
	} else {
		c.Duration = FormatRuntime(details.Runtime)
	}
	if c.Title == "" {
		c.Title = firstNonEmpty(details.Name, details.Title)
	}

	c.Genres = make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		if g.Name != "" {
			c.Genres = append(c.Genres, g.Name)
		}
	}

	if credits != nil {
		c.Cast = mapCast(credits.Cast)
	}
	if videos != nil {
		c.TrailerURL = pickTrailer(videos.Results)
	}
	c.Images = mapImages(details, images)
	if providers != nil {
		c.WatchProviders = mapProviders(providers, externalID, t)
	}
	if t == model.ContentTypeTV {
		c.Seasons = mapSeasons(details.Seasons, seasons)
	}

	c.EnsureCollections()
	c.EnsureImages()
	return c
}

func mapCast(cast []tmdbCastMember) []model.CastMember {
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}
	out := make([]model.CastMember, 0, len(cast))
	for i, p := range cast {
		id := fmt.Sprintf("cast-%d", i)
		if p.ID > 0 {
			id = strconv.Itoa(p.ID)
		}
		out = append(out, model.CastMember{
			ID:          id,
			Name:        p.Name,
			Character:   p.Character,
			ProfilePath: imageURL("w185", p.ProfilePath),
		})
	}
	return out
}

// pickTrailer 第一个 YouTube 上的 Trailer
func pickTrailer(videos []tmdbVideo) string {
	for _, v := range videos {
		if v.Type == "Trailer" && v.Site == "YouTube" && v.Key != "" {
			return "https://www.youtube.com/watch?v=" + v.Key
		}
	}
	return ""
}

// mapImages 主海报/背景图在前，每种类型最多 maxImagesPerType 张，按地址去重
func mapImages(details *tmdbDetails, images *tmdbImages) []model.Image {
	out := []model.Image{}
	seen := map[string]bool{}
	counts := map[model.ImageType]int{}
	add := func(path string, typ model.ImageType) {
		if path == "" || seen[path] || counts[typ] >= maxImagesPerType {
			return
		}
		seen[path] = true
		counts[typ]++
		out = append(out, model.Image{Path: path, Type: typ})
	}

	add(imageURL("w500", details.PosterPath), model.ImagePoster)
	add(imageURL("w1280", details.BackdropPath), model.ImageBackdrop)
	if images != nil {
		for _, img := range images.Posters {
			add(imageURL("w500", img.FilePath), model.ImagePoster)
		}
		for _, img := range images.Backdrops {
			add(imageURL("w1280", img.FilePath), model.ImageBackdrop)
		}
	}
	return out
}

// mapProviders 合并订阅/租赁/购买列表，按平台 ID 去重
func mapProviders(region *tmdbRegionProviders, externalID string, t model.ContentType) []model.WatchProvider {
	out := []model.WatchProvider{}
	seen := map[int]bool{}
	for _, list := range [][]tmdbProvider{region.Flatrate, region.Rent, region.Buy} {
		for _, p := range list {
			if len(out) >= maxProviders {
				return out
			}
			if seen[p.ProviderID] || p.ProviderName == "" {
				continue
			}
			seen[p.ProviderID] = true

			id := strconv.Itoa(p.ProviderID)
			if p.ProviderID == 0 {
				id = fmt.Sprintf("provider-%d", len(out))
			}
			link := deeplink.Build(p.ProviderName, externalID, t)
			watchURL := region.Link
			if watchURL == "" {
				watchURL = link
			}
			out = append(out, model.WatchProvider{
				ID:           id,
				Name:         p.ProviderName,
				LogoPath:     imageURL("w92", p.LogoPath),
				URL:          watchURL,
				RedirectLink: link,
			})
		}
	}
	return out
}

// mapSeasons 以季详情为准，详情缺失时退回列表中的概要（无剧集）
func mapSeasons(summaries []tmdbSeasonSummary, details []*tmdbSeasonDetail) []model.Season {
	byNumber := map[int]tmdbSeasonSummary{}
	for _, s := range summaries {
		byNumber[s.SeasonNumber] = s
	}

	numbers := regularSeasons(summaries)
	out := make([]model.Season, 0, len(numbers))
	for i, n := range numbers {
		summary := byNumber[n]
		var episodes []tmdbEpisode
		if i < len(details) && details[i] != nil {
			summary = mergeSummary(summary, details[i].tmdbSeasonSummary)
			episodes = details[i].Episodes
		}

		season := model.Season{
			ID:           fmt.Sprintf("season-%d", i),
			Name:         firstNonEmpty(summary.Name, fmt.Sprintf("Season %d", n)),
			SeasonNumber: n,
			EpisodeCount: summary.EpisodeCount,
			PosterPath:   imageURL("w500", summary.PosterPath),
			AirDate:      summary.AirDate,
			Overview:     summary.Overview,
			Episodes:     make([]model.Episode, 0, len(episodes)),
		}
		for j, e := range episodes {
			season.Episodes = append(season.Episodes, model.Episode{
				ID:            fmt.Sprintf("episode-%d-%d", i, j),
				Title:         e.Name,
				Overview:      e.Overview,
				EpisodeNumber: e.EpisodeNumber,
				StillPath:     imageURL("w300", e.StillPath),
				AirDate:       e.AirDate,
				Duration:      FormatRuntime(e.Runtime),
				Rating:        roundRating(e.VoteAverage),
			})
		}
		if len(season.Episodes) > 0 {
			season.EpisodeCount = len(season.Episodes)
		}
		out = append(out, season)
	}
	return out
}

func mergeSummary(base, detail tmdbSeasonSummary) tmdbSeasonSummary {
	base.Name = firstNonEmpty(detail.Name, base.Name)
	base.PosterPath = firstNonEmpty(detail.PosterPath, base.PosterPath)
	base.AirDate = firstNonEmpty(detail.AirDate, base.AirDate)
	base.Overview = firstNonEmpty(detail.Overview, base.Overview)
	return base
}

// FormatRuntime 分钟 -> "2h 28m" / "45m"，非正数返回空串
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func roundRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return math.Round(v*10) / 10
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
