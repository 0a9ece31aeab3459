package application

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/entertainbot/internal/domain"
)

type fakeAnimeSource struct {
	searchAnimeFn     func(query string, limit int) ([]domain.Anime, error)
	getAnimeFn        func(animeID int) (*domain.Anime, error)
	topAnimeFn        func(filterType string, limit int) ([]domain.Anime, error)
	seasonAnimeFn     func(year int, season string, limit int) ([]domain.Anime, error)
	searchMangaFn     func(query string, limit int) ([]domain.Manga, error)
	getMangaFn        func(mangaID int) (*domain.Manga, error)
	charactersFn      func(animeID int) ([]domain.AnimeCharacter, error)
	recommendationsFn func(animeID int) ([]domain.AnimeRecommendation, error)
}

func (f *fakeAnimeSource) SearchAnime(_ context.Context, query string, limit int) ([]domain.Anime, error) {
	return f.searchAnimeFn(query, limit)
}

func (f *fakeAnimeSource) GetAnimeByID(_ context.Context, animeID int) (*domain.Anime, error) {
	return f.getAnimeFn(animeID)
}

func (f *fakeAnimeSource) GetTopAnime(_ context.Context, filterType string, limit int) ([]domain.Anime, error) {
	return f.topAnimeFn(filterType, limit)
}

func (f *fakeAnimeSource) GetSeasonAnime(_ context.Context, year int, season string, limit int) ([]domain.Anime, error) {
	return f.seasonAnimeFn(year, season, limit)
}

func (f *fakeAnimeSource) SearchManga(_ context.Context, query string, limit int) ([]domain.Manga, error) {
	return f.searchMangaFn(query, limit)
}

func (f *fakeAnimeSource) GetMangaByID(_ context.Context, mangaID int) (*domain.Manga, error) {
	return f.getMangaFn(mangaID)
}

func (f *fakeAnimeSource) GetAnimeCharacters(_ context.Context, animeID int) ([]domain.AnimeCharacter, error) {
	if f.charactersFn == nil {
		return nil, nil
	}
	return f.charactersFn(animeID)
}

func (f *fakeAnimeSource) GetAnimeRecommendations(_ context.Context, animeID int) ([]domain.AnimeRecommendation, error) {
	if f.recommendationsFn == nil {
		return nil, nil
	}
	return f.recommendationsFn(animeID)
}

type fakeTVSource struct {
	searchShowsFn func(query string) ([]domain.TVShow, error)
	detailsFn     func(showID int) (*domain.TVShowDetails, error)
	episodeFn     func(showID, season, episode int) (*domain.TVEpisode, error)
	scheduleFn    func(country, date string) ([]domain.TVScheduleEntry, error)
}

func (f *fakeTVSource) SearchShows(_ context.Context, query string) ([]domain.TVShow, error) {
	return f.searchShowsFn(query)
}

func (f *fakeTVSource) GetShowWithDetails(_ context.Context, showID int) (*domain.TVShowDetails, error) {
	return f.detailsFn(showID)
}

func (f *fakeTVSource) GetEpisodeByNumber(_ context.Context, showID, season, episode int) (*domain.TVEpisode, error) {
	return f.episodeFn(showID, season, episode)
}

func (f *fakeTVSource) GetSchedule(_ context.Context, country, date string) ([]domain.TVScheduleEntry, error) {
	return f.scheduleFn(country, date)
}

type fakeBookSource struct {
	searchBooksFn   func(query string, limit int) ([]domain.Book, error)
	editionFn       func(isbn string) (*domain.BookEdition, error)
	searchAuthorsFn func(query string) ([]domain.Author, error)
}

func (f *fakeBookSource) SearchBooks(_ context.Context, query string, limit int) ([]domain.Book, error) {
	return f.searchBooksFn(query, limit)
}

func (f *fakeBookSource) GetEditionByISBN(_ context.Context, isbn string) (*domain.BookEdition, error) {
	return f.editionFn(isbn)
}

func (f *fakeBookSource) SearchAuthors(_ context.Context, query string) ([]domain.Author, error) {
	return f.searchAuthorsFn(query)
}

func decodePayload(t *testing.T, payload string) map[string]any {
	t.Helper()
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	return decoded
}

func TestExecuteSearchAnime(t *testing.T) {
	anime := &fakeAnimeSource{
		searchAnimeFn: func(query string, limit int) ([]domain.Anime, error) {
			assert.Equal(t, "naruto", query)
			assert.Equal(t, 5, limit)
			return []domain.Anime{{MALID: 20, Title: "Naruto"}}, nil
		},
	}
	router := NewToolRouter(anime, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		ID:        "call_1",
		Name:      "search_anime",
		Arguments: map[string]any{"query": "naruto", "limit": float64(5)},
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, float64(1), decoded["count"])
	results, ok := decoded["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
}

func TestExecuteUnknownTool(t *testing.T) {
	router := NewToolRouter(&fakeAnimeSource{}, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		ID:   "call_1",
		Name: "summon_dragon",
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, "Unknown tool: summon_dragon", decoded["error"])
}

func TestExecuteMissingRequiredArgument(t *testing.T) {
	router := NewToolRouter(&fakeAnimeSource{}, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "search_anime",
		Arguments: map[string]any{},
	})

	decoded := decodePayload(t, payload)
	assert.Contains(t, decoded["error"], "query")
}

func TestExecuteSourceFailureBecomesErrorPayload(t *testing.T) {
	anime := &fakeAnimeSource{
		searchAnimeFn: func(string, int) ([]domain.Anime, error) {
			return nil, fmt.Errorf("search anime: %w", domain.ErrRetryExhausted)
		},
	}
	router := NewToolRouter(anime, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "search_anime",
		Arguments: map[string]any{"query": "naruto"},
	})

	decoded := decodePayload(t, payload)
	assert.Contains(t, decoded["error"], "temporarily unavailable")
}

func TestExecuteEmptyResults(t *testing.T) {
	anime := &fakeAnimeSource{
		searchAnimeFn: func(string, int) ([]domain.Anime, error) { return nil, nil },
	}
	router := NewToolRouter(anime, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "search_anime",
		Arguments: map[string]any{"query": "zzzzz"},
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, "No results found", decoded["error"])
}

func TestExecuteAnimeDetailsBundlesCompanions(t *testing.T) {
	anime := &fakeAnimeSource{
		getAnimeFn: func(animeID int) (*domain.Anime, error) {
			assert.Equal(t, 20, animeID)
			return &domain.Anime{MALID: 20, Title: "Naruto"}, nil
		},
		charactersFn: func(int) ([]domain.AnimeCharacter, error) {
			return []domain.AnimeCharacter{{Name: "Naruto Uzumaki", Role: "Main"}}, nil
		},
		recommendationsFn: func(int) ([]domain.AnimeRecommendation, error) {
			return nil, fmt.Errorf("recommendations down")
		},
	}
	router := NewToolRouter(anime, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "get_anime_details",
		Arguments: map[string]any{"anime_id": float64(20)},
	})

	decoded := decodePayload(t, payload)
	require.Contains(t, decoded, "anime")
	require.Contains(t, decoded, "characters")
	assert.NotContains(t, decoded, "recommendations")
}

func TestExecuteAnimeDetailsNotFound(t *testing.T) {
	anime := &fakeAnimeSource{
		getAnimeFn: func(int) (*domain.Anime, error) { return nil, nil },
	}
	router := NewToolRouter(anime, &fakeTVSource{}, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "get_anime_details",
		Arguments: map[string]any{"anime_id": float64(99999)},
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, "No results found", decoded["error"])
}

func TestExecuteCoercesStringNumbers(t *testing.T) {
	tv := &fakeTVSource{
		episodeFn: func(showID, season, episode int) (*domain.TVEpisode, error) {
			assert.Equal(t, 169, showID)
			assert.Equal(t, 5, season)
			assert.Equal(t, 14, episode)
			return &domain.TVEpisode{Name: "Ozymandias"}, nil
		},
	}
	router := NewToolRouter(&fakeAnimeSource{}, tv, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "get_tv_episode",
		Arguments: map[string]any{"show_id": "169", "season": float64(5), "episode": "14"},
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, "Ozymandias", decoded["name"])
}

func TestExecuteScheduleDefaults(t *testing.T) {
	tv := &fakeTVSource{
		scheduleFn: func(country, date string) ([]domain.TVScheduleEntry, error) {
			assert.Empty(t, country)
			assert.Empty(t, date)
			return []domain.TVScheduleEntry{{ShowName: "Some Show"}}, nil
		},
	}
	router := NewToolRouter(&fakeAnimeSource{}, tv, &fakeBookSource{}, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "get_tv_schedule",
		Arguments: map[string]any{},
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, float64(1), decoded["count"])
}

func TestExecuteBookByISBN(t *testing.T) {
	books := &fakeBookSource{
		editionFn: func(isbn string) (*domain.BookEdition, error) {
			assert.Equal(t, "9780441172719", isbn)
			return &domain.BookEdition{Title: "Dune"}, nil
		},
	}
	router := NewToolRouter(&fakeAnimeSource{}, &fakeTVSource{}, books, nil)

	payload := router.Execute(context.Background(), domain.ToolInvocation{
		Name:      "get_book_by_isbn",
		Arguments: map[string]any{"isbn": "9780441172719"},
	})

	decoded := decodePayload(t, payload)
	assert.Equal(t, "Dune", decoded["title"])
}

func TestEveryCatalogToolRoutes(t *testing.T) {
	anime := &fakeAnimeSource{
		searchAnimeFn: func(string, int) ([]domain.Anime, error) { return []domain.Anime{{}}, nil },
		getAnimeFn:    func(int) (*domain.Anime, error) { return &domain.Anime{}, nil },
		topAnimeFn:    func(string, int) ([]domain.Anime, error) { return []domain.Anime{{}}, nil },
		seasonAnimeFn: func(int, string, int) ([]domain.Anime, error) { return []domain.Anime{{}}, nil },
		searchMangaFn: func(string, int) ([]domain.Manga, error) { return []domain.Manga{{}}, nil },
		getMangaFn:    func(int) (*domain.Manga, error) { return &domain.Manga{}, nil },
	}
	tv := &fakeTVSource{
		searchShowsFn: func(string) ([]domain.TVShow, error) { return []domain.TVShow{{}}, nil },
		detailsFn:     func(int) (*domain.TVShowDetails, error) { return &domain.TVShowDetails{}, nil },
		episodeFn:     func(int, int, int) (*domain.TVEpisode, error) { return &domain.TVEpisode{}, nil },
		scheduleFn:    func(string, string) ([]domain.TVScheduleEntry, error) { return []domain.TVScheduleEntry{{}}, nil },
	}
	books := &fakeBookSource{
		searchBooksFn:   func(string, int) ([]domain.Book, error) { return []domain.Book{{}}, nil },
		editionFn:       func(string) (*domain.BookEdition, error) { return &domain.BookEdition{}, nil },
		searchAuthorsFn: func(string) ([]domain.Author, error) { return []domain.Author{{}}, nil },
	}
	router := NewToolRouter(anime, tv, books, nil)

	arguments := map[domain.ToolName]map[string]any{
		domain.ToolSearchAnime:      {"query": "q"},
		domain.ToolGetAnimeDetails:  {"anime_id": float64(1)},
		domain.ToolGetTopAnime:      {},
		domain.ToolGetSeasonalAnime: {"year": float64(2024), "season": "winter"},
		domain.ToolSearchManga:      {"query": "q"},
		domain.ToolGetMangaDetails:  {"manga_id": float64(1)},
		domain.ToolSearchTVShows:    {"query": "q"},
		domain.ToolGetTVShowDetails: {"show_id": float64(1)},
		domain.ToolGetTVEpisode:     {"show_id": float64(1), "season": float64(1), "episode": float64(1)},
		domain.ToolGetTVSchedule:    {},
		domain.ToolSearchBooks:      {"query": "q"},
		domain.ToolGetBookByISBN:    {"isbn": "123"},
		domain.ToolSearchAuthors:    {"query": "q"},
	}

	for _, definition := range domain.Catalog() {
		args, ok := arguments[definition.Name]
		require.True(t, ok, "no arguments prepared for %s", definition.Name)

		payload := router.Execute(context.Background(), domain.ToolInvocation{
			Name:      string(definition.Name),
			Arguments: args,
		})
		decoded := decodePayload(t, payload)
		assert.NotContains(t, decoded, "error", "tool %s returned an error payload", definition.Name)
	}
}
