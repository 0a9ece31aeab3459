// Package jikan queries the Jikan (MyAnimeList) API v4 for anime and manga
// data. No auth required; the public rate limit is ~3 req/sec, so the default
// minimum interval is a conservative 1s.
package jikan

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

// Wire shapes for the slices of Jikan payloads we consume.

type namedEntry struct {
	Name string `json:"name"`
}

type animePayload struct {
	MALID         int     `json:"mal_id"`
	Title         string  `json:"title"`
	TitleEnglish  string  `json:"title_english"`
	TitleJapanese string  `json:"title_japanese"`
	Synopsis      string  `json:"synopsis"`
	Score         float64 `json:"score"`
	ScoredBy      int     `json:"scored_by"`
	Rank          int     `json:"rank"`
	Popularity    int     `json:"popularity"`
	Episodes      int     `json:"episodes"`
	Chapters      int     `json:"chapters"`
	Volumes       int     `json:"volumes"`
	Status        string  `json:"status"`
	Rating        string  `json:"rating"`
	Source        string  `json:"source"`
	Duration      string  `json:"duration"`
	Season        string  `json:"season"`
	Year          int     `json:"year"`
	Type          string  `json:"type"`
	URL           string  `json:"url"`
	Genres        []namedEntry `json:"genres"`
	Studios       []namedEntry `json:"studios"`
	Themes        []namedEntry `json:"themes"`
	Authors       []namedEntry `json:"authors"`
	Images        struct {
		JPG struct {
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Trailer struct {
		URL string `json:"url"`
	} `json:"trailer"`
}

func names(entries []namedEntry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Name)
	}
	return out
}

func (p animePayload) toAnime() domain.Anime {
	return domain.Anime{
		MALID:         p.MALID,
		Title:         p.Title,
		TitleEnglish:  p.TitleEnglish,
		TitleJapanese: p.TitleJapanese,
		Synopsis:      domain.StripHTML(p.Synopsis),
		Score:         p.Score,
		ScoredBy:      p.ScoredBy,
		Rank:          p.Rank,
		Popularity:    p.Popularity,
		Episodes:      p.Episodes,
		Status:        p.Status,
		Rating:        p.Rating,
		Source:        p.Source,
		Duration:      p.Duration,
		Season:        p.Season,
		Year:          p.Year,
		Genres:        names(p.Genres),
		Studios:       names(p.Studios),
		Themes:        names(p.Themes),
		URL:           p.URL,
		ImageURL:      p.Images.JPG.LargeImageURL,
		TrailerURL:    p.Trailer.URL,
	}
}

func (p animePayload) toManga() domain.Manga {
	return domain.Manga{
		MALID:         p.MALID,
		Title:         p.Title,
		TitleEnglish:  p.TitleEnglish,
		TitleJapanese: p.TitleJapanese,
		Synopsis:      domain.StripHTML(p.Synopsis),
		Score:         p.Score,
		ScoredBy:      p.ScoredBy,
		Rank:          p.Rank,
		Popularity:    p.Popularity,
		Chapters:      p.Chapters,
		Volumes:       p.Volumes,
		Status:        p.Status,
		Type:          p.Type,
		Genres:        names(p.Genres),
		Authors:       names(p.Authors),
		Themes:        names(p.Themes),
		URL:           p.URL,
		ImageURL:      p.Images.JPG.LargeImageURL,
	}
}

type listEnvelope struct {
	Data []animePayload `json:"data"`
}

type singleEnvelope struct {
	Data animePayload `json:"data"`
}

// SearchAnime searches anime by name. Limit is clamped to 25.
func (c *Client) SearchAnime(ctx context.Context, query string, limit int) ([]domain.Anime, error) {
	raw, found, err := c.fetcher.Get(ctx, "/anime", map[string]any{
		"q": query, "limit": clampLimit(limit, 5, 25), "sfw": true,
	})
	if err != nil {
		return nil, fmt.Errorf("search anime: %w", err)
	}
	if !found {
		return nil, nil
	}
	return decodeAnimeList(raw)
}

// GetAnimeByID fetches full anime details. Returns (nil, nil) when the ID is
// unknown.
func (c *Client) GetAnimeByID(ctx context.Context, animeID int) (*domain.Anime, error) {
	raw, found, err := c.fetcher.Get(ctx, "/anime/"+strconv.Itoa(animeID)+"/full", nil)
	if err != nil {
		return nil, fmt.Errorf("get anime by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope singleEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode anime response: %w", err)
	}
	anime := envelope.Data.toAnime()
	return &anime, nil
}

// GetTopAnime returns top anime for a filter: 'airing', 'upcoming',
// 'bypopularity', or 'favorite'.
func (c *Client) GetTopAnime(ctx context.Context, filterType string, limit int) ([]domain.Anime, error) {
	if filterType == "" {
		filterType = "bypopularity"
	}
	raw, found, err := c.fetcher.Get(ctx, "/top/anime", map[string]any{
		"filter": filterType, "limit": clampLimit(limit, 10, 25),
	})
	if err != nil {
		return nil, fmt.Errorf("get top anime: %w", err)
	}
	if !found {
		return nil, nil
	}
	return decodeAnimeList(raw)
}

// GetSeasonAnime returns anime airing in the given season of a year.
func (c *Client) GetSeasonAnime(ctx context.Context, year int, season string, limit int) ([]domain.Anime, error) {
	endpoint := fmt.Sprintf("/seasons/%d/%s", year, season)
	raw, found, err := c.fetcher.Get(ctx, endpoint, map[string]any{"limit": clampLimit(limit, 10, 25)})
	if err != nil {
		return nil, fmt.Errorf("get season anime: %w", err)
	}
	if !found {
		return nil, nil
	}
	return decodeAnimeList(raw)
}

// SearchManga searches manga by name. Limit is clamped to 25.
func (c *Client) SearchManga(ctx context.Context, query string, limit int) ([]domain.Manga, error) {
	raw, found, err := c.fetcher.Get(ctx, "/manga", map[string]any{
		"q": query, "limit": clampLimit(limit, 5, 25), "sfw": true,
	})
	if err != nil {
		return nil, fmt.Errorf("search manga: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode manga response: %w", err)
	}
	manga := make([]domain.Manga, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		manga = append(manga, item.toManga())
	}
	return manga, nil
}

// GetMangaByID fetches full manga details. Returns (nil, nil) when the ID is
// unknown.
func (c *Client) GetMangaByID(ctx context.Context, mangaID int) (*domain.Manga, error) {
	raw, found, err := c.fetcher.Get(ctx, "/manga/"+strconv.Itoa(mangaID)+"/full", nil)
	if err != nil {
		return nil, fmt.Errorf("get manga by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope singleEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode manga response: %w", err)
	}
	manga := envelope.Data.toManga()
	return &manga, nil
}

// GetAnimeCharacters returns the top characters of an anime, capped at 10 to
// keep tool results compact.
func (c *Client) GetAnimeCharacters(ctx context.Context, animeID int) ([]domain.AnimeCharacter, error) {
	raw, found, err := c.fetcher.Get(ctx, "/anime/"+strconv.Itoa(animeID)+"/characters", nil)
	if err != nil {
		return nil, fmt.Errorf("get anime characters: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope struct {
		Data []struct {
			Role      string `json:"role"`
			Character struct {
				Name   string `json:"name"`
				Images struct {
					JPG struct {
						ImageURL string `json:"image_url"`
					} `json:"jpg"`
				} `json:"images"`
			} `json:"character"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode characters response: %w", err)
	}

	entries := envelope.Data
	if len(entries) > 10 {
		entries = entries[:10]
	}
	characters := make([]domain.AnimeCharacter, 0, len(entries))
	for _, entry := range entries {
		characters = append(characters, domain.AnimeCharacter{
			Name:     entry.Character.Name,
			Role:     entry.Role,
			ImageURL: entry.Character.Images.JPG.ImageURL,
		})
	}
	return characters, nil
}

// GetAnimeRecommendations returns up to 5 recommendations for an anime.
func (c *Client) GetAnimeRecommendations(ctx context.Context, animeID int) ([]domain.AnimeRecommendation, error) {
	raw, found, err := c.fetcher.Get(ctx, "/anime/"+strconv.Itoa(animeID)+"/recommendations", nil)
	if err != nil {
		return nil, fmt.Errorf("get anime recommendations: %w", err)
	}
	if !found {
		return nil, nil
	}

	var envelope struct {
		Data []struct {
			Entry struct {
				MALID  int    `json:"mal_id"`
				Title  string `json:"title"`
				URL    string `json:"url"`
				Images struct {
					JPG struct {
						ImageURL string `json:"image_url"`
					} `json:"jpg"`
				} `json:"images"`
			} `json:"entry"`
			Votes int `json:"votes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode recommendations response: %w", err)
	}

	entries := envelope.Data
	if len(entries) > 5 {
		entries = entries[:5]
	}
	recommendations := make([]domain.AnimeRecommendation, 0, len(entries))
	for _, entry := range entries {
		recommendations = append(recommendations, domain.AnimeRecommendation{
			MALID:    entry.Entry.MALID,
			Title:    entry.Entry.Title,
			URL:      entry.Entry.URL,
			ImageURL: entry.Entry.Images.JPG.ImageURL,
			Votes:    entry.Votes,
		})
	}
	return recommendations, nil
}

// Health verifies the API is reachable.
func (c *Client) Health(ctx context.Context) bool {
	_, _, err := c.fetcher.Get(ctx, "/anime", map[string]any{"q": "test", "limit": 1})
	return err == nil
}

func decodeAnimeList(raw json.RawMessage) ([]domain.Anime, error) {
	var envelope listEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode anime response: %w", err)
	}
	anime := make([]domain.Anime, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		anime = append(anime, item.toAnime())
	}
	return anime, nil
}

func clampLimit(limit, fallback, maxValue int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxValue {
		return maxValue
	}
	return limit
}
