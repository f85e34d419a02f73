package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func sampleContent() model.Content {
	return model.Content{
		Title:        "Inception",
		Overview:     "A thief who steals corporate secrets through dream-sharing.",
		PosterPath:   "https://image.tmdb.org/t/p/w500/poster.jpg",
		BackdropPath: "https://image.tmdb.org/t/p/w1280/backdrop.jpg",
		ReleaseDate:  "2010-07-16",
		Type:         model.ContentTypeMovie,
		Genres:       []string{"Action", "Science Fiction"},
		Rating:       8.4,
		Duration:     "2h 28m",
		Status:       "Released",
		WatchProviders: []model.WatchProvider{
			{ID: "8", Name: "Netflix", URL: "https://www.netflix.com"},
		},
		Cast: []model.CastMember{
			{ID: "6193", Name: "Leonardo DiCaprio", Character: "Cobb"},
		},
	}
}

type ContentRepositorySuite struct {
	suite.Suite
	db   *gorm.DB
	repo *ContentRepository
	ctx  context.Context
}

func (s *ContentRepositorySuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.repo = NewContentRepository(s.db, zap.NewNop())
	s.ctx = context.Background()
}

func (s *ContentRepositorySuite) TestCreateRoundTrip() {
	in := sampleContent()
	created, err := s.repo.Create(s.ctx, in)
	s.Require().NoError(err)
	s.Require().NotNil(created)

	s.NotEmpty(created.ID)
	s.Equal(in.Title, created.Title)
	s.Equal(in.Genres, created.Genres)
	s.Equal(in.Rating, created.Rating)
	s.Require().Len(created.WatchProviders, 1)
	s.Equal("Netflix", created.WatchProviders[0].Name)
	s.Require().Len(created.Cast, 1)
	s.Equal("Cobb", created.Cast[0].Character)
	s.NotNil(created.Seasons)
	s.NotNil(created.EmbedVideos)
	s.Require().Len(created.Images, 2)
	s.Equal(model.ImagePoster, created.Images[0].Type)
	s.Equal(model.ImageBackdrop, created.Images[1].Type)

	got, err := s.repo.GetByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(created.ID, got.ID)
	s.Equal(created.WatchProviders, got.WatchProviders)
}

func (s *ContentRepositorySuite) TestCreateRoundTripKeepsEveryField() {
	want := model.Content{
		ID:           "show-1",
		Title:        "Dark",
		Overview:     "A family saga with a supernatural twist.",
		PosterPath:   "https://image.tmdb.org/t/p/w500/dark.jpg",
		BackdropPath: "https://image.tmdb.org/t/p/w1280/dark-bg.jpg",
		ReleaseDate:  "2017-12-01",
		Type:         model.ContentTypeTV,
		Genres:       []string{"Sci-Fi, Fantasy", `Say "Hi"`, `back\slash`},
		Rating:       8.7,
		Duration:     "3 seasons",
		Status:       "Ended",
		TrailerURL:   "https://www.youtube.com/watch?v=rrwycJ08PSA",
		WatchProviders: []model.WatchProvider{
			{ID: "8", Name: "Netflix", LogoPath: "/netflix.png", URL: "https://www.netflix.com", RedirectLink: "https://www.netflix.com/title/80100172"},
		},
		Cast: []model.CastMember{
			{ID: "1", Name: "Louis Hofmann", Character: "Jonas Kahnwald", ProfilePath: "/louis.jpg"},
		},
		Seasons: []model.Season{
			{
				ID: "s1", Name: "Season 1", SeasonNumber: 1, EpisodeCount: 2,
				PosterPath: "/s1.jpg", AirDate: "2017-12-01", Overview: "Winden, 2019.",
				Episodes: []model.Episode{
					{ID: "e1", Title: "Secrets", Overview: "A boy goes missing.", EpisodeNumber: 1, StillPath: "/e1.jpg", AirDate: "2017-12-01", Duration: "51m", Rating: 8.2},
					{ID: "e2", Title: "Lies", EpisodeNumber: 2},
				},
			},
			{ID: "s2", Name: "Specials", SeasonNumber: 2, Episodes: []model.Episode{}},
		},
		Images: []model.Image{
			{Path: "https://image.tmdb.org/t/p/w500/dark.jpg", Type: model.ImagePoster},
			{Path: "https://image.tmdb.org/t/p/w1280/dark-bg.jpg", Type: model.ImageBackdrop},
			{Path: "/still.jpg", Type: model.ImageBackdrop},
		},
		EmbedVideos: []model.EmbedVideo{{URL: "https://www.youtube.com/embed/rrwycJ08PSA", Title: "Trailer"}},
	}

	created, err := s.repo.Create(s.ctx, want.Clone())
	s.Require().NoError(err)
	s.False(created.CreatedAt.IsZero())

	got, err := s.repo.GetByID(s.ctx, want.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	got.CreatedAt, got.UpdatedAt = time.Time{}, time.Time{}
	s.Equal(want, *got)
}

func (s *ContentRepositorySuite) TestCreateRejectsUnknownType() {
	in := sampleContent()
	in.Type = "documentary"

	_, err := s.repo.Create(s.ctx, in)
	s.True(apperror.IsValidation(err))
}

func (s *ContentRepositorySuite) TestGetByIDMissing() {
	got, err := s.repo.GetByID(s.ctx, "nope")
	s.NoError(err)
	s.Nil(got)

	got, err = s.repo.GetByID(s.ctx, "")
	s.NoError(err)
	s.Nil(got)
}

func (s *ContentRepositorySuite) TestUnknownStoredTypeReadsAsTV() {
	s.Require().NoError(s.db.Create(&model.ContentRow{
		ID:    "doc-1",
		Title: "Planet Earth",
		Type:  "documentary",
	}).Error)

	got, err := s.repo.GetByID(s.ctx, "doc-1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(model.ContentTypeTV, got.Type)
	s.Empty(got.WatchProviders)
	s.NotNil(got.WatchProviders)

	tv, err := s.repo.GetByType(s.ctx, model.ContentTypeTV)
	s.Require().NoError(err)
	s.Len(tv, 1)
}

func (s *ContentRepositorySuite) TestMalformedNestedColumnsFallBackToEmpty() {
	s.Require().NoError(s.db.Create(&model.ContentRow{
		ID:             "broken",
		Title:          "Broken",
		Type:           "movie",
		WatchProviders: "{not json",
		CastInfo:       `{"name":"x"}`,
	}).Error)

	got, err := s.repo.GetByID(s.ctx, "broken")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Empty(got.WatchProviders)
	s.Empty(got.Cast)
}

func (s *ContentRepositorySuite) TestGetByType() {
	movie := sampleContent()
	show := sampleContent()
	show.Title = "Breaking Bad"
	show.Type = model.ContentTypeTV

	_, err := s.repo.Create(s.ctx, movie)
	s.Require().NoError(err)
	_, err = s.repo.Create(s.ctx, show)
	s.Require().NoError(err)

	movies, err := s.repo.GetByType(s.ctx, model.ContentTypeMovie)
	s.Require().NoError(err)
	s.Len(movies, 1)
	s.Equal("Inception", movies[0].Title)

	all, err := s.repo.GetByType(s.ctx, model.ContentTypeAll)
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.repo.GetByType(s.ctx, "anime")
	s.True(apperror.IsValidation(err))
}

func (s *ContentRepositorySuite) TestSearchIsCaseInsensitive() {
	_, err := s.repo.Create(s.ctx, sampleContent())
	s.Require().NoError(err)

	for _, q := range []string{"INCEPTION", "incep", "Dream-Sharing"} {
		got, err := s.repo.Search(s.ctx, q)
		s.Require().NoError(err)
		s.Len(got, 1, q)
	}

	got, err := s.repo.Search(s.ctx, "100%")
	s.Require().NoError(err)
	s.Empty(got)

	got, err = s.repo.Search(s.ctx, "   ")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *ContentRepositorySuite) TestSearchMatchesNonASCIITitles() {
	in := sampleContent()
	in.Title = "Élite"
	_, err := s.repo.Create(s.ctx, in)
	s.Require().NoError(err)

	for _, q := range []string{"Élite", "ÉLITE", "LITE"} {
		got, err := s.repo.Search(s.ctx, q)
		s.Require().NoError(err)
		s.Len(got, 1, q)
	}
}

func (s *ContentRepositorySuite) TestUpdateReplacesDocument() {
	created, err := s.repo.Create(s.ctx, sampleContent())
	s.Require().NoError(err)

	edited := *created
	edited.Title = "Inception (Director's Cut)"
	edited.WatchProviders = []model.WatchProvider{}
	edited.AddSeason(model.Season{})

	updated, err := s.repo.Update(s.ctx, edited)
	s.Require().NoError(err)
	s.Equal("Inception (Director's Cut)", updated.Title)
	s.Empty(updated.WatchProviders)
	s.Require().Len(updated.Seasons, 1)
	s.Equal(1, updated.Seasons[0].SeasonNumber)
	s.False(updated.UpdatedAt.Before(created.UpdatedAt))
}

func (s *ContentRepositorySuite) TestUpdateMissingRow() {
	c := sampleContent()
	c.ID = "ghost"

	_, err := s.repo.Update(s.ctx, c)
	s.True(apperror.IsStorage(err))
	s.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (s *ContentRepositorySuite) TestDelete() {
	created, err := s.repo.Create(s.ctx, sampleContent())
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(s.ctx, created.ID))

	got, err := s.repo.GetByID(s.ctx, created.ID)
	s.NoError(err)
	s.Nil(got)

	err = s.repo.Delete(s.ctx, created.ID)
	s.True(apperror.IsStorage(err))
}

func TestContentRepositorySuite(t *testing.T) {
	suite.Run(t, new(ContentRepositorySuite))
}

func TestGetAllWrapsStorageFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "contents"`).WillReturnError(errors.New("connection reset by peer"))

	repo := NewContentRepository(db, zap.NewNop())
	got, err := repo.GetAll(context.Background())

	assert.Nil(t, got)
	assert.True(t, apperror.IsStorage(err))
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
