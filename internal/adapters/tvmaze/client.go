// Package tvmaze queries the TV Maze API for show, episode, cast, and
// schedule data. No auth required. Summaries arrive as HTML and are stripped
// before they reach the domain.
package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bnema/entertainbot/internal/adapters/fetch"
	"github.com/bnema/entertainbot/internal/domain"
)

type Client struct {
	fetcher *fetch.Client
}

func NewClient(fetcher *fetch.Client) *Client {
	return &Client{fetcher: fetcher}
}

type showPayload struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Summary   string   `json:"summary"`
	Genres    []string `json:"genres"`
	Status    string   `json:"status"`
	Premiered string   `json:"premiered"`
	Ended     string   `json:"ended"`
	Runtime   int      `json:"runtime"`
	Language  string   `json:"language"`
	Type      string   `json:"type"`
	URL       string   `json:"url"`
	Rating    struct {
		Average float64 `json:"average"`
	} `json:"rating"`
	Network *struct {
		Name string `json:"name"`
	} `json:"network"`
	Schedule struct {
		Time string   `json:"time"`
		Days []string `json:"days"`
	} `json:"schedule"`
	Image *struct {
		Medium string `json:"medium"`
	} `json:"image"`
	Embedded struct {
		Episodes []episodePayload `json:"episodes"`
		Cast     []castPayload    `json:"cast"`
	} `json:"_embedded"`
}

type episodePayload struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Airdate string `json:"airdate"`
	Runtime int    `json:"runtime"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

type castPayload struct {
	Person struct {
		Name  string `json:"name"`
		Image *struct {
			Medium string `json:"medium"`
		} `json:"image"`
	} `json:"person"`
	Character struct {
		Name string `json:"name"`
	} `json:"character"`
}

func (p showPayload) toShow() domain.TVShow {
	show := domain.TVShow{
		ID:           p.ID,
		Name:         p.Name,
		Summary:      domain.StripHTML(p.Summary),
		Genres:       p.Genres,
		Status:       p.Status,
		Premiered:    p.Premiered,
		Ended:        p.Ended,
		Rating:       p.Rating.Average,
		ScheduleTime: p.Schedule.Time,
		ScheduleDays: p.Schedule.Days,
		Runtime:      p.Runtime,
		Language:     p.Language,
		Type:         p.Type,
		URL:          p.URL,
	}
	if p.Network != nil {
		show.Network = p.Network.Name
	}
	if p.Image != nil {
		show.ImageURL = p.Image.Medium
	}
	return show
}

func (p episodePayload) toEpisode() domain.TVEpisode {
	return domain.TVEpisode{
		ID:      p.ID,
		Name:    p.Name,
		Season:  p.Season,
		Number:  p.Number,
		Airdate: p.Airdate,
		Runtime: p.Runtime,
		Summary: domain.StripHTML(p.Summary),
		URL:     p.URL,
	}
}

func (p castPayload) toCastMember() domain.TVCastMember {
	member := domain.TVCastMember{
		PersonName:    p.Person.Name,
		CharacterName: p.Character.Name,
	}
	if p.Person.Image != nil {
		member.PersonImageURL = p.Person.Image.Medium
	}
	return member
}

// SearchShows fuzzy-searches TV shows, returning up to 10 matches.
func (c *Client) SearchShows(ctx context.Context, query string) ([]domain.TVShow, error) {
	raw, found, err := c.fetcher.Get(ctx, "/search/shows", map[string]any{"q": query})
	if err != nil {
		return nil, fmt.Errorf("search shows: %w", err)
	}
	if !found {
		return nil, nil
	}

	var results []struct {
		Show showPayload `json:"show"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decode show search response: %w", err)
	}
	if len(results) > 10 {
		results = results[:10]
	}
	shows := make([]domain.TVShow, 0, len(results))
	for _, result := range results {
		shows = append(shows, result.Show.toShow())
	}
	return shows, nil
}

// GetShowWithDetails fetches a show with embedded episodes and cast. Episode
// and cast lists are capped to keep tool results within model context.
// Returns (nil, nil) when the ID is unknown.
func (c *Client) GetShowWithDetails(ctx context.Context, showID int) (*domain.TVShowDetails, error) {
	raw, found, err := c.fetcher.Get(ctx, "/shows/"+strconv.Itoa(showID), map[string]any{
		"embed[]": []string{"episodes", "cast"},
	})
	if err != nil {
		return nil, fmt.Errorf("get show with details: %w", err)
	}
	if !found {
		return nil, nil
	}

	var payload showPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode show response: %w", err)
	}

	details := &domain.TVShowDetails{Show: payload.toShow()}
	episodes := payload.Embedded.Episodes
	if len(episodes) > 20 {
		episodes = episodes[:20]
	}
	for _, episode := range episodes {
		details.Episodes = append(details.Episodes, episode.toEpisode())
	}
	cast := payload.Embedded.Cast
	if len(cast) > 10 {
		cast = cast[:10]
	}
	for _, member := range cast {
		details.Cast = append(details.Cast, member.toCastMember())
	}
	return details, nil
}

// GetEpisodeByNumber fetches one episode by season and number. Returns
// (nil, nil) when the episode does not exist.
func (c *Client) GetEpisodeByNumber(ctx context.Context, showID, season, episode int) (*domain.TVEpisode, error) {
	raw, found, err := c.fetcher.Get(ctx, "/shows/"+strconv.Itoa(showID)+"/episodebynumber", map[string]any{
		"season": season, "number": episode,
	})
	if err != nil {
		return nil, fmt.Errorf("get episode by number: %w", err)
	}
	if !found {
		return nil, nil
	}

	var payload episodePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode episode response: %w", err)
	}
	result := payload.toEpisode()
	return &result, nil
}

// GetShowCast returns the main cast of a show, capped at 15.
func (c *Client) GetShowCast(ctx context.Context, showID int) ([]domain.TVCastMember, error) {
	raw, found, err := c.fetcher.Get(ctx, "/shows/"+strconv.Itoa(showID)+"/cast", nil)
	if err != nil {
		return nil, fmt.Errorf("get show cast: %w", err)
	}
	if !found {
		return nil, nil
	}

	var payload []castPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode cast response: %w", err)
	}
	if len(payload) > 15 {
		payload = payload[:15]
	}
	cast := make([]domain.TVCastMember, 0, len(payload))
	for _, member := range payload {
		cast = append(cast, member.toCastMember())
	}
	return cast, nil
}

// GetSchedule returns shows airing in a country on a date (today when date
// is empty), capped at 20 entries.
func (c *Client) GetSchedule(ctx context.Context, country, date string) ([]domain.TVScheduleEntry, error) {
	if country == "" {
		country = "US"
	}
	params := map[string]any{"country": country}
	if date != "" {
		params["date"] = date
	}

	raw, found, err := c.fetcher.Get(ctx, "/schedule", params)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if !found {
		return nil, nil
	}

	var payload []struct {
		Name    string `json:"name"`
		Season  int    `json:"season"`
		Number  int    `json:"number"`
		Airtime string `json:"airtime"`
		Show    struct {
			Name    string `json:"name"`
			Network *struct {
				Name string `json:"name"`
			} `json:"network"`
		} `json:"show"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode schedule response: %w", err)
	}
	if len(payload) > 20 {
		payload = payload[:20]
	}

	entries := make([]domain.TVScheduleEntry, 0, len(payload))
	for _, item := range payload {
		entry := domain.TVScheduleEntry{
			ShowName:    item.Show.Name,
			EpisodeName: item.Name,
			Season:      item.Season,
			Number:      item.Number,
			Airtime:     item.Airtime,
		}
		if item.Show.Network != nil {
			entry.Network = item.Show.Network.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Health verifies the API is reachable.
func (c *Client) Health(ctx context.Context) bool {
	_, _, err := c.fetcher.Get(ctx, "/shows/1", nil)
	return err == nil
}
