package tvmaze

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/entertainbot/internal/adapters/fetch"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	fetcher, err := fetch.NewClient(fetch.Config{Name: "tvmaze", BaseURL: server.URL})
	require.NoError(t, err)
	return NewClient(fetcher)
}

func TestSearchShows(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/shows", r.URL.Path)
		require.Equal(t, "breaking bad", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{
			"score": 0.91,
			"show": {
				"id": 169,
				"name": "Breaking Bad",
				"summary": "<p>A chemistry teacher turns to crime.</p>",
				"genres": ["Drama", "Crime"],
				"status": "Ended",
				"premiered": "2008-01-20",
				"rating": {"average": 9.2},
				"network": {"name": "AMC"},
				"image": {"medium": "https://img.example/bb.jpg"}
			}
		}]`))
	}))

	shows, err := client.SearchShows(context.Background(), "breaking bad")
	require.NoError(t, err)
	require.Len(t, shows, 1)

	show := shows[0]
	assert.Equal(t, 169, show.ID)
	assert.Equal(t, "A chemistry teacher turns to crime.", show.Summary)
	assert.Equal(t, 9.2, show.Rating)
	assert.Equal(t, "AMC", show.Network)
	assert.Equal(t, "https://img.example/bb.jpg", show.ImageURL)
}

func TestSearchShowsNilNetworkAndImage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"show": {"id": 1, "name": "Web Show", "network": null, "image": null}}]`))
	}))

	shows, err := client.SearchShows(context.Background(), "web show")
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Empty(t, shows[0].Network)
	assert.Empty(t, shows[0].ImageURL)
}

func TestGetShowWithDetails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shows/169", r.URL.Path)
		require.ElementsMatch(t, []string{"episodes", "cast"}, r.URL.Query()["embed[]"])
		_, _ = w.Write([]byte(`{
			"id": 169,
			"name": "Breaking Bad",
			"_embedded": {
				"episodes": [
					{"id": 12192, "name": "Pilot", "season": 1, "number": 1, "airdate": "2008-01-20"},
					{"id": 12193, "name": "Cat's in the Bag...", "season": 1, "number": 2}
				],
				"cast": [
					{"person": {"name": "Bryan Cranston"}, "character": {"name": "Walter White"}}
				]
			}
		}`))
	}))

	details, err := client.GetShowWithDetails(context.Background(), 169)
	require.NoError(t, err)
	require.NotNil(t, details)
	assert.Equal(t, "Breaking Bad", details.Show.Name)
	require.Len(t, details.Episodes, 2)
	assert.Equal(t, "Pilot", details.Episodes[0].Name)
	require.Len(t, details.Cast, 1)
	assert.Equal(t, "Walter White", details.Cast[0].CharacterName)
}

func TestGetShowWithDetailsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	details, err := client.GetShowWithDetails(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, details)
}

func TestGetEpisodeByNumber(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shows/169/episodebynumber", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("season"))
		require.Equal(t, "14", r.URL.Query().Get("number"))
		_, _ = w.Write([]byte(`{"id": 12244, "name": "Ozymandias", "season": 5, "number": 14, "summary": "<p>Everything falls apart.</p>"}`))
	}))

	episode, err := client.GetEpisodeByNumber(context.Background(), 169, 5, 14)
	require.NoError(t, err)
	require.NotNil(t, episode)
	assert.Equal(t, "Ozymandias", episode.Name)
	assert.Equal(t, "Everything falls apart.", episode.Summary)
}

func TestGetShowCastCapped(t *testing.T) {
	payload := `[`
	for i := 0; i < 18; i++ {
		if i > 0 {
			payload += ","
		}
		payload += `{"person": {"name": "P"}, "character": {"name": "C"}}`
	}
	payload += `]`

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/shows/169/cast", r.URL.Path)
		_, _ = w.Write([]byte(payload))
	}))

	cast, err := client.GetShowCast(context.Background(), 169)
	require.NoError(t, err)
	assert.Len(t, cast, 15)
}

func TestGetSchedule(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/schedule", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{
			"name": "Episode 1",
			"season": 2,
			"number": 1,
			"airtime": "21:00",
			"show": {"name": "Some Show", "network": {"name": "HBO"}}
		}]`))
	}))

	entries, err := client.GetSchedule(context.Background(), "", "2026-09-01")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Contains(t, gotQuery, "country=US")
	assert.Contains(t, gotQuery, "date=2026-09-01")
	assert.Equal(t, "Some Show", entries[0].ShowName)
	assert.Equal(t, "HBO", entries[0].Network)
	assert.Equal(t, "21:00", entries[0].Airtime)
}
