package domain

// ToolName identifies one entry of the closed tool catalog. The model may
// request arbitrary strings; anything outside this enumeration resolves to
// the unknown-tool path.
type ToolName string

const (
	ToolSearchAnime      ToolName = "search_anime"
	ToolGetAnimeDetails  ToolName = "get_anime_details"
	ToolGetTopAnime      ToolName = "get_top_anime"
	ToolGetSeasonalAnime ToolName = "get_seasonal_anime"
	ToolSearchManga      ToolName = "search_manga"
	ToolGetMangaDetails  ToolName = "get_manga_details"
	ToolSearchTVShows    ToolName = "search_tv_shows"
	ToolGetTVShowDetails ToolName = "get_tv_show_details"
	ToolGetTVEpisode     ToolName = "get_tv_episode"
	ToolGetTVSchedule    ToolName = "get_tv_schedule"
	ToolSearchBooks      ToolName = "search_books"
	ToolGetBookByISBN    ToolName = "get_book_by_isbn"
	ToolSearchAuthors    ToolName = "search_authors"
)

// KnownTool resolves a raw tool name against the catalog.
func KnownTool(name string) (ToolName, bool) {
	switch ToolName(name) {
	case ToolSearchAnime, ToolGetAnimeDetails, ToolGetTopAnime, ToolGetSeasonalAnime,
		ToolSearchManga, ToolGetMangaDetails,
		ToolSearchTVShows, ToolGetTVShowDetails, ToolGetTVEpisode, ToolGetTVSchedule,
		ToolSearchBooks, ToolGetBookByISBN, ToolSearchAuthors:
		return ToolName(name), true
	}
	return "", false
}

// PropertySchema describes one tool parameter in the JSON Schema subset the
// chat completions API understands.
type PropertySchema struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// ParameterSchema is the object schema for a tool's arguments.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// ToolDefinition is one static catalog entry: what the model sees.
type ToolDefinition struct {
	Name        ToolName
	Description string
	Parameters  ParameterSchema
}

// Catalog returns the fixed, versioned tool catalog sent to the model. It is
// a static configuration artifact, never derived at runtime.
func Catalog() []ToolDefinition {
	return toolCatalog
}

var toolCatalog = []ToolDefinition{
	{
		Name:        ToolSearchAnime,
		Description: "Search for anime series by name, keyword, or phrase. Use when the user asks about a specific anime or wants to find anime.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"query": {Type: "string", Description: "Anime title or keyword to search for"},
				"limit": {Type: "integer", Description: "Maximum number of results to return (1-10)", Default: 5},
			},
			Required: []string{"query"},
		},
	},
	{
		Name:        ToolGetAnimeDetails,
		Description: "Get full details about a specific anime by its MyAnimeList ID. Use after searching to get deeper information like synopsis, characters, etc.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"anime_id": {Type: "integer", Description: "The MyAnimeList anime ID"},
			},
			Required: []string{"anime_id"},
		},
	},
	{
		Name:        ToolGetTopAnime,
		Description: "Get top-rated or trending anime lists. Use when the user asks for the best anime, popular anime, or recommendations.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"filter": {Type: "string", Description: "Filter type: 'airing' (currently airing), 'upcoming', 'bypopularity', or 'favorite'", Default: "bypopularity"},
				"limit":  {Type: "integer", Description: "Number of results (1-25)", Default: 10},
			},
			Required: []string{},
		},
	},
	{
		Name:        ToolGetSeasonalAnime,
		Description: "Get anime airing in a specific season and year. Seasons are: 'winter', 'spring', 'summer', 'fall'.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"year":   {Type: "integer", Description: "The year (e.g., 2024)"},
				"season": {Type: "string", Description: "Season: 'winter', 'spring', 'summer', or 'fall'"},
			},
			Required: []string{"year", "season"},
		},
	},
	{
		Name:        ToolSearchManga,
		Description: "Search for manga by name, keyword, or phrase. Use when the user asks about manga, manhwa, or graphic novels.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"query": {Type: "string", Description: "Manga title or keyword to search for"},
				"limit": {Type: "integer", Description: "Maximum number of results (1-10)", Default: 5},
			},
			Required: []string{"query"},
		},
	},
	{
		Name:        ToolGetMangaDetails,
		Description: "Get full details about a specific manga by its MyAnimeList ID.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"manga_id": {Type: "integer", Description: "The MyAnimeList manga ID"},
			},
			Required: []string{"manga_id"},
		},
	},
	{
		Name:        ToolSearchTVShows,
		Description: "Search for TV shows by name. Covers all TV series including western shows, Asian dramas, reality TV, etc.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"query": {Type: "string", Description: "TV show name or keyword to search for"},
			},
			Required: []string{"query"},
		},
	},
	{
		Name:        ToolGetTVShowDetails,
		Description: "Get full details about a TV show including cast and episodes by its TV Maze show ID.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"show_id": {Type: "integer", Description: "The TV Maze show ID"},
			},
			Required: []string{"show_id"},
		},
	},
	{
		Name:        ToolGetTVEpisode,
		Description: "Get a specific TV episode by show ID, season number, and episode number.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"show_id": {Type: "integer", Description: "The TV Maze show ID"},
				"season":  {Type: "integer", Description: "Season number"},
				"episode": {Type: "integer", Description: "Episode number within the season"},
			},
			Required: []string{"show_id", "season", "episode"},
		},
	},
	{
		Name:        ToolGetTVSchedule,
		Description: "Get TV shows airing today or on a specific date. Defaults to the US schedule.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"country": {Type: "string", Description: "ISO 3166-1 country code (e.g., 'US', 'GB', 'JP')", Default: "US"},
				"date":    {Type: "string", Description: "Date in YYYY-MM-DD format (defaults to today)"},
			},
			Required: []string{},
		},
	},
	{
		Name:        ToolSearchBooks,
		Description: "Search for books by title, author, or general keyword. Use for any book-related query.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"query": {Type: "string", Description: "Book title, author name, or keyword"},
				"limit": {Type: "integer", Description: "Maximum number of results (1-10)", Default: 5},
			},
			Required: []string{"query"},
		},
	},
	{
		Name:        ToolGetBookByISBN,
		Description: "Get detailed book information by ISBN (10 or 13 digit). Use when the user provides an ISBN number.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"isbn": {Type: "string", Description: "ISBN-10 or ISBN-13 number"},
			},
			Required: []string{"isbn"},
		},
	},
	{
		Name:        ToolSearchAuthors,
		Description: "Search for book authors by name. Returns author information and their notable works.",
		Parameters: ParameterSchema{
			Type: "object",
			Properties: map[string]PropertySchema{
				"query": {Type: "string", Description: "Author name to search for"},
			},
			Required: []string{"query"},
		},
	},
}
