package service

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	topRatedMin       = 7.0
	topRatedLimit     = 20
	genreBucketMin    = 3
	latestSectionID   = "latest-additions"
	topRatedSectionID = "top-rated"
)

// SectionKind 首页分区类型
type SectionKind string

const (
	SectionCategory SectionKind = "category"
	SectionLatest   SectionKind = "latest"
	SectionTopRated SectionKind = "top-rated"
	SectionGenre    SectionKind = "genre"
)

// Section 首页的一个分区，每次请求重新计算
type Section struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Kind     SectionKind     `json:"kind"`
	Contents []model.Content `json:"contents"`
}

// ContentLister 读取全部内容
type ContentLister interface {
	GetAll(ctx context.Context) ([]model.Content, error)
}

// CategoryReader 读取分类和成员关系
type CategoryReader interface {
	ListAll(ctx context.Context) ([]model.CategoryRow, error)
	Memberships(ctx context.Context) ([]model.CategoryContent, error)
}

// CategoryService 分类聚合
type CategoryService struct {
	contents   ContentLister
	categories CategoryReader
	log        *zap.Logger
}

// NewCategoryService 创建分类聚合服务
func NewCategoryService(contents ContentLister, categories CategoryReader, log *zap.Logger) *CategoryService {
	return &CategoryService{
		contents:   contents,
		categories: categories,
		log:        logger.OrNop(log).Named("category"),
	}
}

type catalogSnapshot struct {
	categories  []model.CategoryRow
	memberships []model.CategoryContent
	contents    []model.Content
}

// load 并行读取分类、成员关系和全部内容
func (s *CategoryService) load(ctx context.Context) (*catalogSnapshot, error) {
	var snap catalogSnapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.categories, err = s.categories.ListAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.memberships, err = s.categories.Memberships(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.contents, err = s.contents.GetAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GetCategories 分类及其内容，成员关系中找不到的内容会被跳过
func (s *CategoryService) GetCategories(ctx context.Context) ([]model.Category, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.join(snap), nil
}

func (s *CategoryService) join(snap *catalogSnapshot) []model.Category {
	byID := make(map[string]model.Content, len(snap.contents))
	for _, c := range snap.contents {
		byID[c.ID] = c
	}

	members := make(map[string][]model.CategoryContent)
	for _, m := range snap.memberships {
		members[m.CategoryID] = append(members[m.CategoryID], m)
	}

	out := make([]model.Category, 0, len(snap.categories))
	for _, row := range snap.categories {
		list := members[row.ID]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })

		cat := model.Category{ID: row.ID, Name: row.Name, Contents: make([]model.Content, 0, len(list))}
		for _, m := range list {
			c, ok := byID[m.ContentID]
			if !ok {
				s.log.Debug("分类成员指向不存在的内容", zap.String("category", row.ID), zap.String("content", m.ContentID))
				continue
			}
			cat.Contents = append(cat.Contents, c)
		}
		out = append(out, cat)
	}
	return out
}

// BuildSections 首页分区：分类、最新添加、高分、类型
func (s *CategoryService) BuildSections(ctx context.Context) ([]Section, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	categories := s.join(snap)
	sections := make([]Section, 0, len(categories)+2)
	for _, cat := range categories {
		sections = append(sections, Section{
			ID:       cat.ID,
			Title:    cat.Name,
			Kind:     SectionCategory,
			Contents: cat.Contents,
		})
	}

	if latest := latestAdditions(snap); len(latest) > 0 {
		sections = append(sections, Section{ID: latestSectionID, Title: "Latest Additions", Kind: SectionLatest, Contents: latest})
	}
	if top := topRated(snap.contents); len(top) > 0 {
		sections = append(sections, Section{ID: topRatedSectionID, Title: "Top Rated", Kind: SectionTopRated, Contents: top})
	}
	sections = append(sections, genreSections(snap.contents)...)
	return sections, nil
}

// latestAdditions 不属于任何现存分类的内容，保持仓库返回的顺序（最新在前）
func latestAdditions(snap *catalogSnapshot) []model.Content {
	listed := make(map[string]struct{}, len(snap.categories))
	for _, cat := range snap.categories {
		listed[cat.ID] = struct{}{}
	}
	assigned := make(map[string]struct{}, len(snap.memberships))
	for _, m := range snap.memberships {
		if _, ok := listed[m.CategoryID]; ok {
			assigned[m.ContentID] = struct{}{}
		}
	}
	out := []model.Content{}
	for _, c := range snap.contents {
		if _, ok := assigned[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func topRated(contents []model.Content) []model.Content {
	out := []model.Content{}
	for _, c := range contents {
		if c.Rating >= topRatedMin {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > topRatedLimit {
		out = out[:topRatedLimit]
	}
	return out
}

// genreSections 成员数不少于 genreBucketMin 的类型，按成员数降序
func genreSections(contents []model.Content) []Section {
	buckets := map[string][]model.Content{}
	for _, c := range contents {
		seen := map[string]bool{}
		for _, g := range c.Genres {
			g = strings.TrimSpace(g)
			if g == "" || seen[g] {
				continue
			}
			seen[g] = true
			buckets[g] = append(buckets[g], c)
		}
	}

	out := []Section{}
	for genre, list := range buckets {
		if len(list) < genreBucketMin {
			continue
		}
		out = append(out, Section{
			ID:       "genre-" + slugify(genre),
			Title:    genre,
			Kind:     SectionGenre,
			Contents: list,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Contents) != len(out[j].Contents) {
			return len(out[i].Contents) > len(out[j].Contents)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// slugify "Sci-Fi & Fantasy" -> "sci-fi-fantasy"
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
