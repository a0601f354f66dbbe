package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"marquee/config"
	"marquee/internal/metrics"
	"marquee/models"
)

var (
	// ErrNetwork covers transport failures, non-2xx answers and bodies that
	// are not valid JSON.
	ErrNetwork = errors.New("catalog request failed")
	// ErrEmptyResult is returned when the catalog answered without usable items.
	ErrEmptyResult = errors.New("catalog returned no results")
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("tmdb client not configured")
)

const (
	defaultTMDBBaseURL  = "https://api.themoviedb.org/3"
	defaultTMDBImageURL = "https://image.tmdb.org/t/p/original"
	maxErrorBodyBytes   = 512
)

// Client is a minimal TMDB v3 client covering the endpoints the homepage needs.
type Client struct {
	apiKey       string
	language     string
	baseURL      string
	imageBaseURL string
	httpc        *http.Client
	limiter      *rate.Limiter
}

// TitleInfo is the subset of the details endpoint rendered in the modal.
type TitleInfo struct {
	Title        string   `json:"title"`
	Name         string   `json:"name"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	FirstAirDate string   `json:"first_air_date"`
	VoteAverage  float64  `json:"vote_average"`
	Genres       []string `json:"-"`
}

// CastMember is one credited actor.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

type tmdbListItem struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	BackdropPath string `json:"backdrop_path"`
	MediaType    string `json:"media_type"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
}

type tmdbListResponse struct {
	Page    int            `json:"page"`
	Results []tmdbListItem `json:"results"`
}

type tmdbGenresResponse struct {
	Genres []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbVideosResponse struct {
	ID      int64                `json:"id"`
	Results []models.VideoRecord `json:"results"`
}

type tmdbDetailsResponse struct {
	TitleInfo
	GenreList []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

type tmdbCreditsResponse struct {
	Cast []CastMember `json:"cast"`
}

// NewClient builds a client from settings. A nil httpc gets a client with the
// configured request timeout.
func NewClient(cfg config.TMDBSettings, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: cfg.RequestTimeout()}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}
	imageBaseURL := strings.TrimRight(strings.TrimSpace(cfg.ImageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = defaultTMDBImageURL
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		language:     normalizeLanguage(cfg.Language),
		baseURL:      baseURL,
		imageBaseURL: imageBaseURL,
		httpc:        httpc,
		limiter:      rate.NewLimiter(limit, burst),
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// ImageURL joins a backdrop path onto the image base URL.
func (c *Client) ImageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageBaseURL + path
}

// Genres lists the movie categories.
func (c *Client) Genres(ctx context.Context) ([]models.Category, error) {
	var resp tmdbGenresResponse
	if err := c.get(ctx, "genres", "/genre/movie/list", nil, &resp); err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		if g.ID <= 0 || strings.TrimSpace(g.Name) == "" {
			continue
		}
		categories = append(categories, models.Category{ID: g.ID, Name: strings.TrimSpace(g.Name)})
	}
	if len(categories) == 0 {
		return nil, ErrEmptyResult
	}
	return categories, nil
}

// Discover returns the first page of popular movies in a genre.
func (c *Client) Discover(ctx context.Context, genreID int64) ([]models.CatalogItem, error) {
	q := url.Values{}
	q.Set("with_genres", strconv.FormatInt(genreID, 10))
	q.Set("sort_by", "popularity.desc")
	q.Set("include_video", "true")
	q.Set("page", "1")

	var resp tmdbListResponse
	if err := c.get(ctx, "discover", "/discover/movie", q, &resp); err != nil {
		return nil, err
	}
	items := make([]models.CatalogItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, r.toCatalogItem(models.MediaKindMovie))
	}
	return items, nil
}

// Trending returns today's trending movies and series. People are dropped
// since they have no videos to play.
func (c *Client) Trending(ctx context.Context) ([]models.CatalogItem, error) {
	var resp tmdbListResponse
	if err := c.get(ctx, "trending", "/trending/all/day", nil, &resp); err != nil {
		return nil, err
	}
	items := make([]models.CatalogItem, 0, len(resp.Results))
	for _, r := range resp.Results {
		if strings.EqualFold(r.MediaType, "person") {
			continue
		}
		items = append(items, r.toCatalogItem(models.ParseMediaKind(r.MediaType)))
	}
	return items, nil
}

// Videos lists the video records attached to a title.
func (c *Client) Videos(ctx context.Context, kind models.MediaKind, id int64) ([]models.VideoRecord, error) {
	var resp tmdbVideosResponse
	path := fmt.Sprintf("/%s/%d/videos", kind.APIPath(), id)
	if err := c.get(ctx, "videos", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Details fetches descriptive metadata for a title.
func (c *Client) Details(ctx context.Context, kind models.MediaKind, id int64) (*TitleInfo, error) {
	var resp tmdbDetailsResponse
	path := fmt.Sprintf("/%s/%d", kind.APIPath(), id)
	if err := c.get(ctx, "details", path, nil, &resp); err != nil {
		return nil, err
	}
	info := resp.TitleInfo
	for _, g := range resp.GenreList {
		if name := strings.TrimSpace(g.Name); name != "" {
			info.Genres = append(info.Genres, name)
		}
	}
	return &info, nil
}

// Credits fetches the cast list of a title in billing order.
func (c *Client) Credits(ctx context.Context, kind models.MediaKind, id int64) ([]CastMember, error) {
	var resp tmdbCreditsResponse
	path := fmt.Sprintf("/%s/%d/credits", kind.APIPath(), id)
	if err := c.get(ctx, "credits", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cast, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, v any) (err error) {
	defer func() { metrics.RecordTMDBRequest(endpoint, err) }()

	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", ErrNetwork, err)
	}

	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrNetwork, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%w: GET %s: %s: %s", ErrNetwork, path, resp.Status, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrNetwork, path, err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		log.Printf("[metadata] slow tmdb request endpoint=%s path=%s took=%s", endpoint, path, elapsed)
	}
	return nil
}

func (r tmdbListItem) toCatalogItem(kind models.MediaKind) models.CatalogItem {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = strings.TrimSpace(r.Name)
	}
	release := r.ReleaseDate
	if release == "" {
		release = r.FirstAirDate
	}
	return models.CatalogItem{
		ID:           r.ID,
		Title:        title,
		BackdropPath: strings.TrimSpace(r.BackdropPath),
		Kind:         kind,
		ReleaseDate:  release,
		Overview:     strings.TrimSpace(r.Overview),
	}
}

// normalizeLanguage turns user input such as "pt_br" or "en" into the
// language-REGION form TMDB expects. Missing regions default to US.
func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return "en-US"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "en-US"
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf != language.Exact {
		return base.String() + "-US"
	}
	return base.String() + "-" + region.String()
}
