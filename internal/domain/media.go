package domain

// Normalized domain objects for the three data sources. Field names are the
// internal vocabulary; every free-text field is HTML-stripped by the adapter
// that produced it. `omitempty` keeps serialized tool results compact for
// the model.

type Anime struct {
	MALID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	TitleJapanese string   `json:"title_japanese,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
	Score         float64  `json:"score,omitempty"`
	ScoredBy      int      `json:"scored_by,omitempty"`
	Rank          int      `json:"rank,omitempty"`
	Popularity    int      `json:"popularity,omitempty"`
	Episodes      int      `json:"episodes,omitempty"`
	Status        string   `json:"status,omitempty"`
	Rating        string   `json:"rating,omitempty"`
	Source        string   `json:"source,omitempty"`
	Duration      string   `json:"duration,omitempty"`
	Season        string   `json:"season,omitempty"`
	Year          int      `json:"year,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Studios       []string `json:"studios,omitempty"`
	Themes        []string `json:"themes,omitempty"`
	URL           string   `json:"url,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	TrailerURL    string   `json:"trailer_url,omitempty"`
}

type Manga struct {
	MALID         int      `json:"mal_id"`
	Title         string   `json:"title"`
	TitleEnglish  string   `json:"title_english,omitempty"`
	TitleJapanese string   `json:"title_japanese,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
	Score         float64  `json:"score,omitempty"`
	ScoredBy      int      `json:"scored_by,omitempty"`
	Rank          int      `json:"rank,omitempty"`
	Popularity    int      `json:"popularity,omitempty"`
	Chapters      int      `json:"chapters,omitempty"`
	Volumes       int      `json:"volumes,omitempty"`
	Status        string   `json:"status,omitempty"`
	Type          string   `json:"type,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Themes        []string `json:"themes,omitempty"`
	URL           string   `json:"url,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
}

type AnimeCharacter struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type AnimeRecommendation struct {
	MALID    int    `json:"mal_id"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Votes    int    `json:"votes"`
}

type TVShow struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Summary      string   `json:"summary,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Status       string   `json:"status,omitempty"`
	Premiered    string   `json:"premiered,omitempty"`
	Ended        string   `json:"ended,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	Network      string   `json:"network,omitempty"`
	ScheduleTime string   `json:"schedule_time,omitempty"`
	ScheduleDays []string `json:"schedule_days,omitempty"`
	Runtime      int      `json:"runtime,omitempty"`
	Language     string   `json:"language,omitempty"`
	Type         string   `json:"type,omitempty"`
	URL          string   `json:"url,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
}

type TVEpisode struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number,omitempty"`
	Airdate string `json:"airdate,omitempty"`
	Runtime int    `json:"runtime,omitempty"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
}

// TVShowDetails bundles a show with its episode guide and main cast.
type TVShowDetails struct {
	Show     TVShow         `json:"show"`
	Episodes []TVEpisode    `json:"episodes,omitempty"`
	Cast     []TVCastMember `json:"cast,omitempty"`
}

type TVCastMember struct {
	PersonName     string `json:"person_name"`
	CharacterName  string `json:"character_name,omitempty"`
	PersonImageURL string `json:"person_image_url,omitempty"`
}

type TVScheduleEntry struct {
	ShowName    string `json:"show_name"`
	EpisodeName string `json:"episode_name,omitempty"`
	Season      int    `json:"season,omitempty"`
	Number      int    `json:"number,omitempty"`
	Airtime     string `json:"airtime,omitempty"`
	Network     string `json:"network,omitempty"`
}

type Book struct {
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`
	ISBN             []string `json:"isbn,omitempty"`
	Subjects         []string `json:"subject,omitempty"`
	CoverID          int      `json:"cover_id,omitempty"`
	Key              string   `json:"key,omitempty"`
	RatingsAverage   float64  `json:"ratings_average,omitempty"`
	Pages            int      `json:"number_of_pages,omitempty"`
	Languages        []string `json:"language,omitempty"`
	Publishers       []string `json:"publisher,omitempty"`
	CoverURL         string   `json:"cover_url,omitempty"`
}

type BookEdition struct {
	Title       string   `json:"title"`
	ISBN13      []string `json:"isbn_13,omitempty"`
	ISBN10      []string `json:"isbn_10,omitempty"`
	Publishers  []string `json:"publishers,omitempty"`
	PublishDate string   `json:"publish_date,omitempty"`
	Pages       int      `json:"number_of_pages,omitempty"`
	Key         string   `json:"key,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
}

type Author struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`
	TopWork   string `json:"top_work,omitempty"`
	WorkCount int    `json:"work_count,omitempty"`
}
