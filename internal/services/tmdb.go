package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"boxlounge/internal/utils"

	"github.com/go-resty/resty/v2"
)

const tmdbDefaultBaseURL = "https://api.themoviedb.org/3"

// genreAnimation is TMDB's genre id for Animation, used by the anime
// and animation shelves.
const genreAnimation = 16

// Media is the common shape of TMDB movie and TV rows. Movies carry
// Title/ReleaseDate, TV shows carry Name/FirstAirDate.
type Media struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	MediaType    string  `json:"media_type"`
	GenreIDs     []int   `json:"genre_ids"`
}

// DisplayTitle unifies movie titles and TV show names.
func (m Media) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Year extracts the release year for display, empty when unknown.
func (m Media) Year() string {
	date := m.ReleaseDate
	if date == "" {
		date = m.FirstAirDate
	}
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MediaDetail is the full detail payload for one title, combined with
// its credits.
type MediaDetail struct {
	Media
	Tagline         string  `json:"tagline"`
	Runtime         int     `json:"runtime"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	Genres          []Genre `json:"genres"`
	Credits         Credits `json:"-"`
}

type mediaPage struct {
	Page       int     `json:"page"`
	Results    []Media `json:"results"`
	TotalPages int     `json:"total_pages"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// TMDBService is the media catalog client. Every read is cached in the
// LRU cache for an hour; posts store a denormalized copy of whatever
// they reference, so a cold or failing TMDB only degrades the catalog
// pages, never the lounge.
type TMDBService struct {
	client *resty.Client
	apiKey string
}

var tmdbService *TMDBService

// GetTMDBService returns the singleton catalog client, configured from
// TMDB_API_KEY and optionally TMDB_BASE_URL.
func GetTMDBService() *TMDBService {
	if tmdbService == nil {
		tmdbService = newTMDBService()
	}
	return tmdbService
}

func newTMDBService() *TMDBService {
	baseURL := os.Getenv("TMDB_BASE_URL")
	if baseURL == "" {
		baseURL = tmdbDefaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetQueryParam("language", "en-US")
	return &TMDBService{
		client: client,
		apiKey: os.Getenv("TMDB_API_KEY"),
	}
}

func (s *TMDBService) get(path string, params map[string]string, out interface{}) error {
	req := s.client.R().
		SetQueryParam("api_key", s.apiKey).
		SetResult(out)
	if params != nil {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("%w: tmdb: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: tmdb: status %d for %s", ErrUnavailable, resp.StatusCode(), path)
	}
	return nil
}

// fetchPages collects the first n pages of a paged listing. TMDB
// returns 20 rows per page, so three pages fill a shelf of 60.
func (s *TMDBService) fetchPages(path string, params map[string]string, pages int) ([]Media, error) {
	var all []Media
	for page := 1; page <= pages; page++ {
		merged := map[string]string{"page": strconv.Itoa(page)}
		for k, v := range params {
			merged[k] = v
		}
		var res mediaPage
		if err := s.get(path, merged, &res); err != nil {
			return nil, err
		}
		all = append(all, res.Results...)
		if res.TotalPages != 0 && page >= res.TotalPages {
			break
		}
	}
	return all, nil
}

func tagMediaType(media []Media, mediaType string) []Media {
	for i := range media {
		if media[i].MediaType == "" {
			media[i].MediaType = mediaType
		}
	}
	return media
}

// cachedListing wraps a listing fetch with the shared LRU cache.
func cachedListing(key string, fetch func() ([]Media, error)) ([]Media, error) {
	if cached := utils.GetCache().Get(key); cached != nil {
		if media, ok := cached.([]Media); ok {
			return media, nil
		}
	}
	media, err := fetch()
	if err != nil {
		return nil, err
	}
	utils.GetCache().Set(key, media, time.Hour)
	return media, nil
}

func (s *TMDBService) PopularMovies() ([]Media, error) {
	return cachedListing("tmdb:movie:popular", func() ([]Media, error) {
		media, err := s.fetchPages("/movie/popular", nil, 3)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "movie"), nil
	})
}

func (s *TMDBService) PopularTVShows() ([]Media, error) {
	return cachedListing("tmdb:tv:popular", func() ([]Media, error) {
		media, err := s.fetchPages("/tv/popular", nil, 3)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "tv"), nil
	})
}

// Trending returns this week's mixed movie/TV trending list.
func (s *TMDBService) Trending() ([]Media, error) {
	return cachedListing("tmdb:trending:week", func() ([]Media, error) {
		var res mediaPage
		if err := s.get("/trending/all/week", nil, &res); err != nil {
			return nil, err
		}
		return res.Results, nil
	})
}

func (s *TMDBService) MoviesByGenre(genreID int) ([]Media, error) {
	key := fmt.Sprintf("tmdb:movie:genre:%d", genreID)
	return cachedListing(key, func() ([]Media, error) {
		media, err := s.fetchPages("/discover/movie", map[string]string{
			"sort_by":     "popularity.desc",
			"with_genres": strconv.Itoa(genreID),
		}, 3)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "movie"), nil
	})
}

// Anime is the animation genre restricted to Japanese originals.
func (s *TMDBService) Anime() ([]Media, error) {
	return cachedListing("tmdb:tv:anime", func() ([]Media, error) {
		media, err := s.fetchPages("/discover/tv", map[string]string{
			"sort_by":                "popularity.desc",
			"with_genres":            strconv.Itoa(genreAnimation),
			"with_original_language": "ja",
		}, 3)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "tv"), nil
	})
}

func (s *TMDBService) TopRatedMovies() ([]Media, error) {
	return cachedListing("tmdb:movie:top_rated", func() ([]Media, error) {
		media, err := s.fetchPages("/movie/top_rated", nil, 2)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "movie"), nil
	})
}

func (s *TMDBService) TopRatedTVShows() ([]Media, error) {
	return cachedListing("tmdb:tv:top_rated", func() ([]Media, error) {
		media, err := s.fetchPages("/tv/top_rated", nil, 2)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "tv"), nil
	})
}

// bestOfYearMinVotes keeps single-digit-vote obscurities out of the
// by-average "best of" shelves.
const bestOfYearMinVotes = 200

// BestOfYear returns the highest-rated movies released in one year.
func (s *TMDBService) BestOfYear(year int) ([]Media, error) {
	key := fmt.Sprintf("tmdb:movie:best:%d", year)
	return cachedListing(key, func() ([]Media, error) {
		media, err := s.fetchPages("/discover/movie", map[string]string{
			"sort_by":              "vote_average.desc",
			"primary_release_year": strconv.Itoa(year),
			"vote_count.gte":       strconv.Itoa(bestOfYearMinVotes),
		}, 1)
		if err != nil {
			return nil, err
		}
		return tagMediaType(media, "movie"), nil
	})
}

// Search runs a multi search across movies and TV shows. Person and
// other result types are filtered out.
func (s *TMDBService) Search(query string) ([]Media, error) {
	var res mediaPage
	if err := s.get("/search/multi", map[string]string{"query": query}, &res); err != nil {
		return nil, err
	}
	results := make([]Media, 0, len(res.Results))
	for _, m := range res.Results {
		if m.MediaType == "movie" || m.MediaType == "tv" {
			results = append(results, m)
		}
	}
	return results, nil
}

// Genres returns the merged movie+TV genre id -> name map, cached
// because the set practically never changes.
func (s *TMDBService) Genres() (map[int]string, error) {
	const key = "tmdb:genres"
	if cached := utils.GetCache().Get(key); cached != nil {
		if genres, ok := cached.(map[int]string); ok {
			return genres, nil
		}
	}

	genres := make(map[int]string)
	for _, path := range []string{"/genre/movie/list", "/genre/tv/list"} {
		var res genreListResponse
		if err := s.get(path, nil, &res); err != nil {
			return nil, err
		}
		for _, g := range res.Genres {
			genres[g.ID] = g.Name
		}
	}
	utils.GetCache().Set(key, genres, 24*time.Hour)
	return genres, nil
}

func (s *TMDBService) credits(mediaType string, id int) (Credits, error) {
	var credits Credits
	path := fmt.Sprintf("/%s/%d/credits", mediaType, id)
	if err := s.get(path, nil, &credits); err != nil {
		return Credits{}, err
	}
	return credits, nil
}

// MovieDetail combines the primary movie payload with its credits.
func (s *TMDBService) MovieDetail(id int) (*MediaDetail, error) {
	return s.detail("movie", id)
}

// TVDetail combines the primary TV payload with its credits.
func (s *TMDBService) TVDetail(id int) (*MediaDetail, error) {
	return s.detail("tv", id)
}

func (s *TMDBService) detail(mediaType string, id int) (*MediaDetail, error) {
	key := fmt.Sprintf("tmdb:%s:detail:%d", mediaType, id)
	if cached := utils.GetCache().Get(key); cached != nil {
		if detail, ok := cached.(*MediaDetail); ok {
			return detail, nil
		}
	}

	var detail MediaDetail
	if err := s.get(fmt.Sprintf("/%s/%d", mediaType, id), nil, &detail); err != nil {
		return nil, err
	}
	detail.MediaType = mediaType

	credits, err := s.credits(mediaType, id)
	if err != nil {
		return nil, err
	}
	// Trim to what the detail page shows
	if len(credits.Cast) > 12 {
		credits.Cast = credits.Cast[:12]
	}
	detail.Credits = credits

	utils.GetCache().Set(key, &detail, time.Hour)
	return &detail, nil
}

type Person struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Biography          string `json:"biography"`
	Birthday           string `json:"birthday"`
	Deathday           string `json:"deathday"`
	PlaceOfBirth       string `json:"place_of_birth"`
	ProfilePath        string `json:"profile_path"`
	KnownForDepartment string `json:"known_for_department"`
	Homepage           string `json:"homepage"`
}

// PersonDetail is a person plus the titles they are known for.
type PersonDetail struct {
	Person
	KnownFor []Media
}

type personCredits struct {
	Cast []Media `json:"cast"`
	Crew []Media `json:"crew"`
}

// personKnownForLimit caps the known-for shelf; prolific crew members
// can carry hundreds of credits.
const personKnownForLimit = 50

// PersonDetail combines a person's profile with their combined
// movie/TV credits. Actors show their cast credits, everyone else
// their crew credits, ordered by how widely voted the title is.
func (s *TMDBService) PersonDetail(id int) (*PersonDetail, error) {
	key := fmt.Sprintf("tmdb:person:%d", id)
	if cached := utils.GetCache().Get(key); cached != nil {
		if person, ok := cached.(*PersonDetail); ok {
			return person, nil
		}
	}

	var detail PersonDetail
	if err := s.get(fmt.Sprintf("/person/%d", id), nil, &detail.Person); err != nil {
		return nil, err
	}

	var credits personCredits
	if err := s.get(fmt.Sprintf("/person/%d/combined_credits", id), nil, &credits); err != nil {
		return nil, err
	}
	detail.KnownFor = knownForCredits(&detail.Person, credits)

	utils.GetCache().Set(key, &detail, time.Hour)
	return &detail, nil
}

func knownForCredits(person *Person, credits personCredits) []Media {
	list := credits.Crew
	if person.KnownForDepartment == "Acting" {
		list = credits.Cast
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].VoteCount > list[j].VoteCount
	})

	// Combined credits repeat a title once per role.
	seen := make(map[int]bool, len(list))
	known := make([]Media, 0, personKnownForLimit)
	for _, m := range list {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		known = append(known, m)
		if len(known) == personKnownForLimit {
			break
		}
	}
	return known
}
