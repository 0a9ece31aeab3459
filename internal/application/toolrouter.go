package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bnema/entertainbot/internal/domain"
	"github.com/bnema/entertainbot/internal/ports"
)

// AnimeSource covers the anime and manga lookups the router dispatches.
type AnimeSource interface {
	SearchAnime(ctx context.Context, query string, limit int) ([]domain.Anime, error)
	GetAnimeByID(ctx context.Context, animeID int) (*domain.Anime, error)
	GetTopAnime(ctx context.Context, filterType string, limit int) ([]domain.Anime, error)
	GetSeasonAnime(ctx context.Context, year int, season string, limit int) ([]domain.Anime, error)
	SearchManga(ctx context.Context, query string, limit int) ([]domain.Manga, error)
	GetMangaByID(ctx context.Context, mangaID int) (*domain.Manga, error)
	GetAnimeCharacters(ctx context.Context, animeID int) ([]domain.AnimeCharacter, error)
	GetAnimeRecommendations(ctx context.Context, animeID int) ([]domain.AnimeRecommendation, error)
}

// TVSource covers the TV show lookups the router dispatches.
type TVSource interface {
	SearchShows(ctx context.Context, query string) ([]domain.TVShow, error)
	GetShowWithDetails(ctx context.Context, showID int) (*domain.TVShowDetails, error)
	GetEpisodeByNumber(ctx context.Context, showID, season, episode int) (*domain.TVEpisode, error)
	GetSchedule(ctx context.Context, country, date string) ([]domain.TVScheduleEntry, error)
}

// BookSource covers the book and author lookups the router dispatches.
type BookSource interface {
	SearchBooks(ctx context.Context, query string, limit int) ([]domain.Book, error)
	GetEditionByISBN(ctx context.Context, isbn string) (*domain.BookEdition, error)
	SearchAuthors(ctx context.Context, query string) ([]domain.Author, error)
}

// ToolRouter implements ports.ToolExecutor over the three entertainment
// sources. Every outcome, including routing faults and source failures, is
// folded into a JSON string so the model always receives a tool result.
type ToolRouter struct {
	anime  AnimeSource
	tv     TVSource
	books  BookSource
	logger *slog.Logger
}

var _ ports.ToolExecutor = (*ToolRouter)(nil)

func NewToolRouter(anime AnimeSource, tv TVSource, books BookSource, logger *slog.Logger) *ToolRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolRouter{anime: anime, tv: tv, books: books, logger: logger}
}

func (r *ToolRouter) Execute(ctx context.Context, call domain.ToolInvocation) string {
	name, ok := domain.KnownTool(call.Name)
	if !ok {
		r.logger.Warn("model requested unknown tool", "tool", call.Name)
		return errorPayload(fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	result, err := r.dispatch(ctx, name, call.Arguments)
	if err != nil {
		r.logger.Warn("tool call failed", "tool", name, "error", err)
		return errorPayload(userFacing(err))
	}
	return result
}

func (r *ToolRouter) dispatch(ctx context.Context, name domain.ToolName, args map[string]any) (string, error) {
	switch name {
	case domain.ToolSearchAnime:
		query, err := stringArg(args, "query")
		if err != nil {
			return "", err
		}
		results, err := r.anime.SearchAnime(ctx, query, intArg(args, "limit", 5))
		if err != nil {
			return "", err
		}
		return listPayload(results)

	case domain.ToolGetAnimeDetails:
		animeID, err := requiredIntArg(args, "anime_id")
		if err != nil {
			return "", err
		}
		return r.animeDetails(ctx, animeID)

	case domain.ToolGetTopAnime:
		results, err := r.anime.GetTopAnime(ctx, optionalStringArg(args, "filter"), intArg(args, "limit", 10))
		if err != nil {
			return "", err
		}
		return listPayload(results)

	case domain.ToolGetSeasonalAnime:
		year, err := requiredIntArg(args, "year")
		if err != nil {
			return "", err
		}
		season, err := stringArg(args, "season")
		if err != nil {
			return "", err
		}
		results, err := r.anime.GetSeasonAnime(ctx, year, season, intArg(args, "limit", 10))
		if err != nil {
			return "", err
		}
		return listPayload(results)

	case domain.ToolSearchManga:
		query, err := stringArg(args, "query")
		if err != nil {
			return "", err
		}
		results, err := r.anime.SearchManga(ctx, query, intArg(args, "limit", 5))
		if err != nil {
			return "", err
		}
		return listPayload(results)

	case domain.ToolGetMangaDetails:
		mangaID, err := requiredIntArg(args, "manga_id")
		if err != nil {
			return "", err
		}
		manga, err := r.anime.GetMangaByID(ctx, mangaID)
		if err != nil {
			return "", err
		}
		return singlePayload(manga, manga == nil)

	case domain.ToolSearchTVShows:
		query, err := stringArg(args, "query")
		if err != nil {
			return "", err
		}
		results, err := r.tv.SearchShows(ctx, query)
		if err != nil {
			return "", err
		}
		return listPayload(results)

	case domain.ToolGetTVShowDetails:
		showID, err := requiredIntArg(args, "show_id")
		if err != nil {
			return "", err
		}
		details, err := r.tv.GetShowWithDetails(ctx, showID)
		if err != nil {
			return "", err
		}
		return singlePayload(details, details == nil)

	case domain.ToolGetTVEpisode:
		showID, err := requiredIntArg(args, "show_id")
		if err != nil {
			return "", err
		}
		season, err := requiredIntArg(args, "season")
		if err != nil {
			return "", err
		}
		episode, err := requiredIntArg(args, "episode")
		if err != nil {
			return "", err
		}
		result, err := r.tv.GetEpisodeByNumber(ctx, showID, season, episode)
		if err != nil {
			return "", err
		}
		return singlePayload(result, result == nil)

	case domain.ToolGetTVSchedule:
		entries, err := r.tv.GetSchedule(ctx, optionalStringArg(args, "country"), optionalStringArg(args, "date"))
		if err != nil {
			return "", err
		}
		return listPayload(entries)

	case domain.ToolSearchBooks:
		query, err := stringArg(args, "query")
		if err != nil {
			return "", err
		}
		results, err := r.books.SearchBooks(ctx, query, intArg(args, "limit", 5))
		if err != nil {
			return "", err
		}
		return listPayload(results)

	case domain.ToolGetBookByISBN:
		isbn, err := stringArg(args, "isbn")
		if err != nil {
			return "", err
		}
		edition, err := r.books.GetEditionByISBN(ctx, isbn)
		if err != nil {
			return "", err
		}
		return singlePayload(edition, edition == nil)

	case domain.ToolSearchAuthors:
		query, err := stringArg(args, "query")
		if err != nil {
			return "", err
		}
		results, err := r.books.SearchAuthors(ctx, query)
		if err != nil {
			return "", err
		}
		return listPayload(results)
	}

	return "", fmt.Errorf("unroutable tool %q", name)
}

// animeDetails combines the full record with characters and recommendations.
// The companion lookups are best-effort: their failure degrades the payload
// instead of failing the tool call.
func (r *ToolRouter) animeDetails(ctx context.Context, animeID int) (string, error) {
	anime, err := r.anime.GetAnimeByID(ctx, animeID)
	if err != nil {
		return "", err
	}
	if anime == nil {
		return errorPayload("No results found"), nil
	}

	payload := map[string]any{"anime": anime}
	if characters, err := r.anime.GetAnimeCharacters(ctx, animeID); err != nil {
		r.logger.Warn("anime characters lookup failed", "anime_id", animeID, "error", err)
	} else if len(characters) > 0 {
		payload["characters"] = characters
	}
	if recommendations, err := r.anime.GetAnimeRecommendations(ctx, animeID); err != nil {
		r.logger.Warn("anime recommendations lookup failed", "anime_id", animeID, "error", err)
	} else if len(recommendations) > 0 {
		payload["recommendations"] = recommendations
	}
	return marshalPayload(payload)
}

func listPayload[T any](results []T) (string, error) {
	if len(results) == 0 {
		return errorPayload("No results found"), nil
	}
	return marshalPayload(map[string]any{"count": len(results), "results": results})
}

func singlePayload(value any, missing bool) (string, error) {
	if missing {
		return errorPayload("No results found"), nil
	}
	return marshalPayload(value)
}

func marshalPayload(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return string(data), nil
}

func errorPayload(message string) string {
	data, _ := json.Marshal(map[string]string{"error": message})
	return string(data)
}

// userFacing translates source failures into short messages the model can
// relay.
func userFacing(err error) string {
	switch {
	case errors.Is(err, domain.ErrRetryExhausted):
		return "The data source is temporarily unavailable. Please try again shortly."
	case errors.Is(err, domain.ErrNotFound):
		return "No results found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "The request timed out"
	default:
		return "The lookup failed: " + err.Error()
	}
}

// Argument extraction. The model sends arguments as decoded JSON, so numbers
// arrive as float64 and occasionally as quoted strings.

func stringArg(args map[string]any, key string) (string, error) {
	value, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	text, ok := value.(string)
	if !ok || text == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return text, nil
}

func optionalStringArg(args map[string]any, key string) string {
	text, _ := args[key].(string)
	return text
}

func requiredIntArg(args map[string]any, key string) (int, error) {
	value, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	parsed, ok := coerceInt(value)
	if !ok {
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
	return parsed, nil
}

func intArg(args map[string]any, key string, fallback int) int {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	parsed, ok := coerceInt(value)
	if !ok {
		return fallback
	}
	return parsed
}

func coerceInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}
