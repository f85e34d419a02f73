package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/config"
	"github.com/user/where2watch/internal/model"
	"go.uber.org/zap"
)

type fakeTMDB struct {
	*httptest.Server
	requests atomic.Int64
	details  atomic.Int64
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	f := &fakeTMDB{}
	mux := http.NewServeMux()

	mux.HandleFunc("/movie/27205", func(w http.ResponseWriter, r *http.Request) {
		f.details.Add(1)
		writeJSON(w, map[string]any{
			"id":            27205,
			"title":         "Inception",
			"overview":      "Dreams within dreams.",
			"poster_path":   "/main-poster.jpg",
			"backdrop_path": "/main-backdrop.jpg",
			"release_date":  "2010-07-15",
			"runtime":       148,
			"vote_average":  8.369,
			"status":        "Released",
			"genres":        []map[string]any{{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}},
		})
	})
	mux.HandleFunc("/movie/27205/credits", func(w http.ResponseWriter, r *http.Request) {
		cast := []map[string]any{}
		for i := 0; i < 15; i++ {
			profile := fmt.Sprintf("/p%d.jpg", i)
			if i == 1 {
				profile = ""
			}
			cast = append(cast, map[string]any{
				"id":           1000 + i,
				"name":         fmt.Sprintf("Actor %d", i),
				"character":    fmt.Sprintf("Role %d", i),
				"profile_path": profile,
			})
		}
		writeJSON(w, map[string]any{"cast": cast})
	})
	mux.HandleFunc("/movie/27205/videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": []map[string]any{
			{"key": "teaser", "site": "YouTube", "type": "Teaser"},
			{"key": "vimeo", "site": "Vimeo", "type": "Trailer"},
			{"key": "abc", "site": "YouTube", "type": "Trailer"},
		}})
	})
	mux.HandleFunc("/movie/27205/images", func(w http.ResponseWriter, r *http.Request) {
		posters := []map[string]any{{"file_path": "/main-poster.jpg"}}
		for i := 0; i < 10; i++ {
			posters = append(posters, map[string]any{"file_path": fmt.Sprintf("/poster-%d.jpg", i)})
		}
		writeJSON(w, map[string]any{
			"posters":   posters,
			"backdrops": []map[string]any{{"file_path": "/b1.jpg"}, {"file_path": "/b1.jpg"}},
		})
	})
	mux.HandleFunc("/movie/27205/watch/providers", func(w http.ResponseWriter, r *http.Request) {
		netflix := map[string]any{"provider_id": 8, "provider_name": "Netflix", "logo_path": "/netflix.png"}
		writeJSON(w, map[string]any{"results": map[string]any{
			"US": map[string]any{
				"link":     "https://www.themoviedb.org/movie/27205/watch?locale=US",
				"flatrate": []map[string]any{netflix},
				"rent":     []map[string]any{netflix, {"provider_id": 2, "provider_name": "Apple TV"}},
				"buy":      []map[string]any{{"provider_id": 3, "provider_name": "Google Play Movies"}},
			},
			"GB": map[string]any{
				"flatrate": []map[string]any{{"provider_id": 39, "provider_name": "Now TV"}},
			},
		}})
	})

	mux.HandleFunc("/tv/1396", func(w http.ResponseWriter, r *http.Request) {
		f.details.Add(1)
		writeJSON(w, map[string]any{
			"id":               1396,
			"name":             "Breaking Bad",
			"overview":         "Chemistry teacher turned producer.",
			"poster_path":      "/bb.jpg",
			"first_air_date":   "2008-01-20",
			"episode_run_time": []int{47},
			"vote_average":     8.9,
			"genres":           []map[string]any{{"id": 18, "name": "Drama"}},
			"seasons": []map[string]any{
				{"season_number": 0, "name": "Specials", "episode_count": 9},
				{"season_number": 2, "name": "Season 2", "episode_count": 13},
				{"season_number": 1, "name": "Season 1", "episode_count": 7},
			},
		})
	})
	mux.HandleFunc("/tv/1396/season/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"season_number": 1,
			"name":          "Season 1",
			"air_date":      "2008-01-20",
			"episodes": []map[string]any{
				{"episode_number": 1, "name": "Pilot", "runtime": 58, "still_path": "/s1e1.jpg", "vote_average": 8.2},
				{"episode_number": 2, "name": "Cat's in the Bag...", "runtime": 48},
			},
		})
	})
	mux.HandleFunc("/tv/1396/season/2", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/tv/1396/credits", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func newTestImporter(baseURL string) *ImportService {
	client := NewTMDBClient(&config.Config{
		TMDBAPIKey:  "test-key",
		TMDBBaseURL: baseURL,
		TMDBRegion:  "us",
		TMDBTimeout: 2 * time.Second,
	}, zap.NewNop())
	return NewImportService(client, 2*time.Second, zap.NewNop())
}

func TestImportMovie(t *testing.T) {
	f := newFakeTMDB(t)
	svc := newTestImporter(f.URL)

	c, err := svc.Import(context.Background(), "27205", model.ContentTypeMovie)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, model.SourceLive, c.Source)
	assert.Equal(t, "tmdb-27205-movie", c.ID)
	assert.Equal(t, "Inception", c.Title)
	assert.Equal(t, model.ContentTypeMovie, c.Type)
	assert.Equal(t, "2h 28m", c.Duration)
	assert.Equal(t, 8.4, c.Rating)
	assert.Equal(t, []string{"Action", "Science Fiction"}, c.Genres)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/main-poster.jpg", c.PosterPath)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", c.TrailerURL)

	require.Len(t, c.Cast, maxCast)
	assert.Equal(t, "1000", c.Cast[0].ID)
	assert.Equal(t, "https://image.tmdb.org/t/p/w185/p0.jpg", c.Cast[0].ProfilePath)
	assert.Empty(t, c.Cast[1].ProfilePath)

	posters, backdrops := 0, 0
	seen := map[string]bool{}
	for _, img := range c.Images {
		assert.False(t, seen[img.Path], "duplicate image %s", img.Path)
		seen[img.Path] = true
		switch img.Type {
		case model.ImagePoster:
			posters++
		case model.ImageBackdrop:
			backdrops++
		}
	}
	assert.Equal(t, maxImagesPerType, posters)
	assert.Equal(t, 2, backdrops)
	assert.Equal(t, model.Image{Path: c.PosterPath, Type: model.ImagePoster}, c.Images[0])

	require.Len(t, c.WatchProviders, 3)
	assert.Equal(t, "Netflix", c.WatchProviders[0].Name)
	assert.Equal(t, "8", c.WatchProviders[0].ID)
	assert.Equal(t, "https://image.tmdb.org/t/p/w92/netflix.png", c.WatchProviders[0].LogoPath)
	assert.Equal(t, "https://www.netflix.com/title/27205", c.WatchProviders[0].RedirectLink)
	assert.Equal(t, "https://www.themoviedb.org/movie/27205/watch?locale=US", c.WatchProviders[0].URL)
	assert.Equal(t, "https://tv.apple.com/us/movie/27205", c.WatchProviders[1].RedirectLink)
	assert.Equal(t, "https://www.googleplaymovies.com", c.WatchProviders[2].RedirectLink)

	assert.Empty(t, c.Seasons)
	assert.NotNil(t, c.Seasons)
	assert.NoError(t, c.Validate())
}

func TestImportTVDegradesFailedSubFetches(t *testing.T) {
	f := newFakeTMDB(t)
	svc := newTestImporter(f.URL)

	c, err := svc.Import(context.Background(), "1396", model.ContentTypeTV)
	require.NoError(t, err)

	assert.Equal(t, model.SourceLive, c.Source)
	assert.Equal(t, "Breaking Bad", c.Title)
	assert.Equal(t, "2008-01-20", c.ReleaseDate)
	assert.Equal(t, "47m", c.Duration)
	assert.Empty(t, c.Cast)
	assert.NotNil(t, c.Cast)
	assert.Empty(t, c.TrailerURL)

	require.Len(t, c.Seasons, 2)
	s1, s2 := c.Seasons[0], c.Seasons[1]
	assert.Equal(t, 1, s1.SeasonNumber)
	assert.Equal(t, "season-0", s1.ID)
	require.Len(t, s1.Episodes, 2)
	assert.Equal(t, 2, s1.EpisodeCount)
	assert.Equal(t, "episode-0-0", s1.Episodes[0].ID)
	assert.Equal(t, "Pilot", s1.Episodes[0].Title)
	assert.Equal(t, "58m", s1.Episodes[0].Duration)
	assert.Equal(t, "https://image.tmdb.org/t/p/w300/s1e1.jpg", s1.Episodes[0].StillPath)
	assert.Empty(t, s1.Episodes[1].StillPath)

	assert.Equal(t, 2, s2.SeasonNumber)
	assert.Equal(t, 13, s2.EpisodeCount)
	assert.Empty(t, s2.Episodes)
	assert.NotNil(t, s2.Episodes)
}

func TestImportCachesLiveResults(t *testing.T) {
	f := newFakeTMDB(t)
	svc := newTestImporter(f.URL)
	ctx := context.Background()

	first, err := svc.Import(ctx, "27205", model.ContentTypeMovie)
	require.NoError(t, err)
	first.Title = "mutated by caller"

	second, err := svc.Import(ctx, "27205", model.ContentTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, "Inception", second.Title)
	assert.Equal(t, int64(1), f.details.Load())

	svc.ClearCache()
	_, err = svc.Import(ctx, "27205", model.ContentTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.details.Load())
}

func TestImportFallsBackWhenDetailsFail(t *testing.T) {
	f := newFakeTMDB(t)
	svc := newTestImporter(f.URL)

	c, err := svc.Import(context.Background(), "999999", model.ContentTypeMovie)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, model.SourceFallback, c.Source)
	assert.Equal(t, model.ContentTypeMovie, c.Type)
	assert.GreaterOrEqual(t, len(c.Genres), 1)
	require.NotEmpty(t, c.WatchProviders)
	assert.NotEmpty(t, c.WatchProviders[0].RedirectLink)
}

func TestImportFallsBackWhenUnreachable(t *testing.T) {
	svc := newTestImporter("http://127.0.0.1:1")

	c, err := svc.Import(context.Background(), "27205", model.ContentTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, c.Source)
	assert.Equal(t, "Inception", c.Title)
}

func TestImportValidatesBeforeNetwork(t *testing.T) {
	f := newFakeTMDB(t)
	svc := newTestImporter(f.URL)
	ctx := context.Background()

	_, err := svc.Import(ctx, "  ", model.ContentTypeMovie)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Import(ctx, "27205", model.ContentTypeAll)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Import(ctx, "27205", "anime")
	assert.True(t, apperror.IsValidation(err))

	assert.Equal(t, int64(0), f.requests.Load())
}

func TestImportWithoutCredentialsUsesFallback(t *testing.T) {
	svc := NewImportService(NewTMDBClient(&config.Config{}, nil), 0, nil)

	c, err := svc.Import(context.Background(), "1399", model.ContentTypeTV)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, c.Source)
	assert.Equal(t, "Game of Thrones", c.Title)
	assert.Len(t, c.Seasons, 8)
}

func TestFormatRuntime(t *testing.T) {
	assert.Equal(t, "2h 28m", FormatRuntime(148))
	assert.Equal(t, "1h 0m", FormatRuntime(60))
	assert.Equal(t, "45m", FormatRuntime(45))
	assert.Equal(t, "", FormatRuntime(0))
}
