package deeplink

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/user/where2watch/internal/model"
)

// template 已知平台的链接模板
type template struct {
	aliases []string
	build   func(id string, t model.ContentType) string
}

func pick(t model.ContentType, movie, tv string) string {
	if t == model.ContentTypeMovie {
		return movie
	}
	return tv
}

var known = []template{
	{
		aliases: []string{"netflix"},
		build: func(id string, _ model.ContentType) string {
			return "https://www.netflix.com/title/" + id
		},
	},
	{
		aliases: []string{"amazon prime video", "prime video", "amazon video"},
		build: func(id string, _ model.ContentType) string {
			return "https://www.primevideo.com/detail/" + id
		},
	},
	{
		aliases: []string{"disney plus", "disney+"},
		build: func(id string, t model.ContentType) string {
			return "https://www.disneyplus.com/" + pick(t, "movies", "series") + "/" + id
		},
	},
	{
		aliases: []string{"hulu"},
		build: func(id string, t model.ContentType) string {
			return "https://www.hulu.com/" + pick(t, "movie", "series") + "/" + id
		},
	},
	{
		aliases: []string{"hbo max", "max"},
		build: func(id string, t model.ContentType) string {
			return "https://play.max.com/" + pick(t, "movie", "show") + "/" + id
		},
	},
	{
		aliases: []string{"apple tv plus", "apple tv+", "apple tv"},
		build: func(id string, t model.ContentType) string {
			return "https://tv.apple.com/us/" + pick(t, "movie", "show") + "/" + id
		},
	},
}

// Build 生成平台深链
// 已知平台按各自的路径模板生成，未知平台退化为 https://www.{slug}.com
// 纯函数，不做 I/O，总是返回字符串
func Build(providerName, contentID string, t model.ContentType) string {
	name := strings.ToLower(strings.TrimSpace(providerName))
	id := url.PathEscape(contentID)

	// 先精确匹配，再匹配 "Netflix Standard with Ads" 之类的套餐名前缀
	for _, tpl := range known {
		for _, alias := range tpl.aliases {
			if name == alias {
				return tpl.build(id, t)
			}
		}
	}
	for _, tpl := range known {
		for _, alias := range tpl.aliases {
			if strings.HasPrefix(name, alias+" ") {
				return tpl.build(id, t)
			}
		}
	}

	return "https://www." + Slug(providerName) + ".com"
}

// Slug 小写并去掉所有空白
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

