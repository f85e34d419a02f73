package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/where2watch/internal/model"
)

func TestFallbackKnownSample(t *testing.T) {
	c := Fallback("155", model.ContentTypeMovie)

	assert.Equal(t, "The Dark Knight", c.Title)
	assert.Equal(t, "tmdb-155-movie", c.ID)
	assert.Equal(t, "2h 32m", c.Duration)
	assert.Equal(t, model.SourceFallback, c.Source)
	require.Len(t, c.WatchProviders, 1)
	assert.Equal(t, "https://play.max.com/movie/155", c.WatchProviders[0].RedirectLink)
}

func TestFallbackUnknownIDsAreUsable(t *testing.T) {
	for _, typ := range []model.ContentType{model.ContentTypeMovie, model.ContentTypeTV} {
		for i := 0; i < 50; i++ {
			id := fmt.Sprintf("%d", 500000+i*7919)
			c := Fallback(id, typ)

			assert.Equal(t, typ, c.Type)
			assert.Equal(t, model.SourceFallback, c.Source)
			assert.NotEmpty(t, c.Title)
			assert.Contains(t, c.Title, id)
			assert.GreaterOrEqual(t, len(c.Genres), 1)
			assert.LessOrEqual(t, len(c.Genres), 3)
			assert.GreaterOrEqual(t, len(c.WatchProviders), 1)
			assert.LessOrEqual(t, len(c.WatchProviders), 3)
			for _, p := range c.WatchProviders {
				assert.NotEmpty(t, p.RedirectLink)
				assert.True(t, strings.HasPrefix(p.RedirectLink, "https://"))
			}
			assert.NoError(t, c.Validate())

			if typ == model.ContentTypeTV {
				require.NotEmpty(t, c.Seasons)
				for si, s := range c.Seasons {
					assert.Equal(t, si+1, s.SeasonNumber)
					assert.Equal(t, len(s.Episodes), s.EpisodeCount)
					for ei, e := range s.Episodes {
						assert.Equal(t, ei+1, e.EpisodeNumber)
					}
				}
			} else {
				assert.Empty(t, c.Seasons)
			}
		}
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	assert.Equal(t, Fallback("8675309", model.ContentTypeTV), Fallback("8675309", model.ContentTypeTV))
	assert.NotEqual(t, Fallback("8675309", model.ContentTypeTV).Title, Fallback("8675309", model.ContentTypeMovie).Title)
}

func TestFallbackImagesIncludePosterAndBackdrop(t *testing.T) {
	c := Fallback("42", model.ContentTypeMovie)

	require.Len(t, c.Images, 2)
	assert.Equal(t, model.Image{Path: c.PosterPath, Type: model.ImagePoster}, c.Images[0])
	assert.Equal(t, model.Image{Path: c.BackdropPath, Type: model.ImageBackdrop}, c.Images[1])
}
