package service

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"net/url"

	"github.com/user/where2watch/internal/deeplink"
	"github.com/user/where2watch/internal/model"
)

type mockProvider struct {
	ID   string
	Name string
	Home string
}

var mockProviders = []mockProvider{
	{ID: "8", Name: "Netflix", Home: "https://www.netflix.com"},
	{ID: "9", Name: "Amazon Prime Video", Home: "https://www.primevideo.com"},
	{ID: "337", Name: "Disney Plus", Home: "https://www.disneyplus.com"},
	{ID: "15", Name: "Hulu", Home: "https://www.hulu.com"},
	{ID: "1899", Name: "Max", Home: "https://www.max.com"},
	{ID: "350", Name: "Apple TV Plus", Home: "https://tv.apple.com"},
}

var mockGenres = map[model.ContentType][]string{
	model.ContentTypeMovie: {"Action", "Adventure", "Comedy", "Drama", "Thriller", "Science Fiction", "Romance", "Animation"},
	model.ContentTypeTV:    {"Drama", "Crime", "Comedy", "Sci-Fi & Fantasy", "Mystery", "Action & Adventure", "Documentary"},
}

// sample 常见 ID 的固定数据
type sample struct {
	Title       string
	Overview    string
	ReleaseDate string
	Genres      []string
	Rating      float64
	Runtime     int
	Status      string
	Providers   []string
	Seasons     int
}

var samples = map[string]sample{
	"movie/27205": {
		Title:       "Inception",
		Overview:    "Cobb, a skilled thief who commits corporate espionage by infiltrating the subconscious of his targets, is offered a chance to regain his old life as payment for a task considered to be impossible.",
		ReleaseDate: "2010-07-15",
		Genres:      []string{"Action", "Science Fiction", "Adventure"},
		Rating:      8.4,
		Runtime:     148,
		Status:      "Released",
		Providers:   []string{"Netflix", "Amazon Prime Video"},
	},
	"movie/155": {
		Title:       "The Dark Knight",
		Overview:    "Batman raises the stakes in his war on crime. With the help of Lt. Jim Gordon and District Attorney Harvey Dent, Batman sets out to dismantle the remaining criminal organizations that plague the streets.",
		ReleaseDate: "2008-07-16",
		Genres:      []string{"Drama", "Action", "Crime", "Thriller"},
		Rating:      8.5,
		Runtime:     152,
		Status:      "Released",
		Providers:   []string{"Max"},
	},
	"tv/1396": {
		Title:       "Breaking Bad",
		Overview:    "Walter White, a New Mexico chemistry teacher, is diagnosed with Stage III cancer and given a prognosis of only two years left to live.",
		ReleaseDate: "2008-01-20",
		Genres:      []string{"Drama", "Crime"},
		Rating:      8.9,
		Runtime:     47,
		Status:      "Ended",
		Providers:   []string{"Netflix"},
		Seasons:     5,
	},
	"tv/1399": {
		Title:       "Game of Thrones",
		Overview:    "Seven noble families fight for control of the mythical land of Westeros.",
		ReleaseDate: "2011-04-17",
		Genres:      []string{"Sci-Fi & Fantasy", "Drama", "Action & Adventure"},
		Rating:      8.5,
		Runtime:     60,
		Status:      "Ended",
		Providers:   []string{"Max"},
		Seasons:     8,
	},
	"tv/66732": {
		Title:       "Stranger Things",
		Overview:    "When a young boy vanishes, a small town uncovers a mystery involving secret experiments, terrifying supernatural forces, and one strange little girl.",
		ReleaseDate: "2016-07-15",
		Genres:      []string{"Drama", "Sci-Fi & Fantasy", "Mystery"},
		Rating:      8.6,
		Runtime:     61,
		Status:      "Returning Series",
		Providers:   []string{"Netflix"},
		Seasons:     4,
	},
}

// Fallback 合成模拟内容，不做任何 I/O，同一输入总是得到相同结果
func Fallback(externalID string, t model.ContentType) model.Content {
	r := rand.New(rand.NewSource(fallbackSeed(externalID, t)))

	s, known := samples[string(t)+"/"+externalID]
	if !known {
		s = templatedSample(r, externalID, t)
	}

	c := model.Content{
		ID:           model.ImportedContentID(externalID, t),
		Title:        s.Title,
		Overview:     s.Overview,
		PosterPath:   placeholder(500, 750, s.Title),
		BackdropPath: placeholder(1280, 720, s.Title),
		ReleaseDate:  s.ReleaseDate,
		Type:         t,
		Genres:       append([]string(nil), s.Genres...),
		Rating:       s.Rating,
		Duration:     FormatRuntime(s.Runtime),
		Status:       s.Status,
		Source:       model.SourceFallback,
	}

	providers := s.Providers
	if len(providers) == 0 {
		providers = pickProviders(r)
	}
	for i, name := range providers {
		p := lookupMockProvider(name)
		if p.ID == "" {
			p.ID = fmt.Sprintf("provider-%d", i)
		}
		c.WatchProviders = append(c.WatchProviders, model.WatchProvider{
			ID:           p.ID,
			Name:         p.Name,
			URL:          p.Home,
			RedirectLink: deeplink.Build(p.Name, externalID, t),
		})
	}

	for i, role := range []string{"Lead", "Supporting", "Guest"} {
		c.Cast = append(c.Cast, model.CastMember{
			ID:        fmt.Sprintf("cast-%d", i),
			Name:      fmt.Sprintf("%s Actor", role),
			Character: fmt.Sprintf("%s Character", role),
		})
	}

	if t == model.ContentTypeTV {
		seasons := s.Seasons
		if seasons == 0 {
			seasons = 1 + r.Intn(2)
		}
		for i := 0; i < seasons; i++ {
			c.Seasons = append(c.Seasons, mockSeason(r, i, s.Runtime))
		}
	}

	c.EnsureCollections()
	c.EnsureImages()
	return c
}

func templatedSample(r *rand.Rand, externalID string, t model.ContentType) sample {
	pool := mockGenres[t]
	n := 1 + r.Intn(3)
	genres := make([]string, 0, n)
	for _, idx := range r.Perm(len(pool))[:n] {
		genres = append(genres, pool[idx])
	}

	kind, runtime, status := "Movie", 85+r.Intn(70), "Released"
	if t == model.ContentTypeTV {
		kind, runtime, status = "Series", 22+r.Intn(40), "Returning Series"
	}

	return sample{
		Title:       fmt.Sprintf("%s %s", kind, externalID),
		Overview:    fmt.Sprintf("Details for this %s (TMDB %s) are not available right now. This entry was generated so it can be previewed and edited before saving.", kind, externalID),
		ReleaseDate: fmt.Sprintf("%d-%02d-%02d", 1990+r.Intn(35), 1+r.Intn(12), 1+r.Intn(28)),
		Genres:      genres,
		Rating:      float64(50+r.Intn(41)) / 10,
		Runtime:     runtime,
		Status:      status,
	}
}

// pickProviders 随机挑选 1-3 个平台
func pickProviders(r *rand.Rand) []string {
	n := 1 + r.Intn(3)
	names := make([]string, 0, n)
	for _, idx := range r.Perm(len(mockProviders))[:n] {
		names = append(names, mockProviders[idx].Name)
	}
	return names
}

func lookupMockProvider(name string) mockProvider {
	for _, p := range mockProviders {
		if p.Name == name {
			return p
		}
	}
	return mockProvider{Name: name, Home: "https://www." + deeplink.Slug(name) + ".com"}
}

func mockSeason(r *rand.Rand, idx, runtime int) model.Season {
	number := idx + 1
	season := model.Season{
		ID:           fmt.Sprintf("season-%d", idx),
		Name:         fmt.Sprintf("Season %d", number),
		SeasonNumber: number,
		Overview:     fmt.Sprintf("Season %d overview.", number),
	}
	episodes := 6 + r.Intn(5)
	for j := 0; j < episodes; j++ {
		season.Episodes = append(season.Episodes, model.Episode{
			ID:            fmt.Sprintf("episode-%d-%d", idx, j),
			Title:         fmt.Sprintf("Episode %d", j+1),
			Overview:      fmt.Sprintf("Season %d, episode %d.", number, j+1),
			EpisodeNumber: j + 1,
			Duration:      FormatRuntime(runtime),
			Rating:        float64(60+r.Intn(35)) / 10,
		})
	}
	season.EpisodeCount = len(season.Episodes)
	return season
}

func placeholder(w, h int, title string) string {
	return fmt.Sprintf("https://placehold.co/%dx%d?text=%s", w, h, url.QueryEscape(title))
}

func fallbackSeed(externalID string, t model.ContentType) int64 {
	h := fnv.New64a()
	h.Write([]byte(string(t)))
	h.Write([]byte{0})
	h.Write([]byte(externalID))
	return int64(h.Sum64())
}
