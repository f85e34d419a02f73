package model

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// defaultSeasonName 自动生成的季名，重新编号时随季号一起更新
var defaultSeasonName = regexp.MustCompile(`^Season \d+$`)

// AddSeason 追加一季，季号顺延，集号从 1 重新编号
func (c *Content) AddSeason(s Season) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Episodes == nil {
		s.Episodes = []Episode{}
	}
	s.SeasonNumber = len(c.Seasons) + 1
	if s.Name == "" || defaultSeasonName.MatchString(s.Name) {
		s.Name = fmt.Sprintf("Season %d", s.SeasonNumber)
	}
	s.renumberEpisodes()
	c.Seasons = append(c.Seasons, s)
}

// RemoveSeason 删除第 idx 季（从 0 开始），其余季号连续重排
func (c *Content) RemoveSeason(idx int) error {
	if idx < 0 || idx >= len(c.Seasons) {
		return fmt.Errorf("season index %d out of range [0,%d)", idx, len(c.Seasons))
	}
	seasons := make([]Season, 0, len(c.Seasons)-1)
	seasons = append(seasons, c.Seasons[:idx]...)
	seasons = append(seasons, c.Seasons[idx+1:]...)
	c.Seasons = seasons
	c.renumberSeasons()
	return nil
}

// renumberSeasons 季号从 1 连续编号，自定义季名保持不变
func (c *Content) renumberSeasons() {
	for i := range c.Seasons {
		c.Seasons[i].SeasonNumber = i + 1
		if defaultSeasonName.MatchString(c.Seasons[i].Name) {
			c.Seasons[i].Name = fmt.Sprintf("Season %d", i+1)
		}
	}
}

// AddEpisode 追加一集，集号为当前集数 + 1
func (s *Season) AddEpisode(e Episode) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.Episodes = append(s.Episodes, e)
	s.renumberEpisodes()
}

// RemoveEpisode 删除第 idx 集（从 0 开始），剩余剧集保持原相对顺序并从 1 重新编号
func (s *Season) RemoveEpisode(idx int) error {
	if idx < 0 || idx >= len(s.Episodes) {
		return fmt.Errorf("episode index %d out of range [0,%d)", idx, len(s.Episodes))
	}
	episodes := make([]Episode, 0, len(s.Episodes)-1)
	episodes = append(episodes, s.Episodes[:idx]...)
	episodes = append(episodes, s.Episodes[idx+1:]...)
	s.Episodes = episodes
	s.renumberEpisodes()
	return nil
}

func (s *Season) renumberEpisodes() {
	for i := range s.Episodes {
		s.Episodes[i].EpisodeNumber = i + 1
	}
	s.EpisodeCount = len(s.Episodes)
}
