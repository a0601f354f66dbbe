// Package details assembles the title details shown in the modal.
package details

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"marquee/models"
	"marquee/services/metadata"
	"marquee/services/trailers"
)

const (
	maxCastNames = 10

	notAvailable        = "N/A"
	unknownTitle        = "Unknown"
	noOverview          = "No overview available"
	castNotAvailable    = "Not available"
	trailerNotAvailable = "Trailer not available for this title."
)

// Mode selects which parts of the modal are filled.
type Mode string

const (
	ModeBoth    Mode = "both"
	ModeDetails Mode = "details"
	ModeVideo   Mode = "video"
)

// ParseMode defaults to ModeBoth for anything unrecognised.
func ParseMode(value string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeDetails:
		return ModeDetails
	case ModeVideo:
		return ModeVideo
	default:
		return ModeBoth
	}
}

func (m Mode) wantsVideo() bool   { return m != ModeDetails }
func (m Mode) wantsDetails() bool { return m != ModeVideo }

// Source is the catalog surface used to fill the modal.
type Source interface {
	Videos(ctx context.Context, kind models.MediaKind, id int64) ([]models.VideoRecord, error)
	Details(ctx context.Context, kind models.MediaKind, id int64) (*metadata.TitleInfo, error)
	Credits(ctx context.Context, kind models.MediaKind, id int64) ([]metadata.CastMember, error)
}

// Service fetches and formats title details.
type Service struct {
	source Source
}

// NewService returns a details service backed by source.
func NewService(source Source) *Service {
	return &Service{source: source}
}

// Get fetches videos, details and credits concurrently. A failed fetch leaves
// its part of the result on the fallback text; Get itself never fails.
func (s *Service) Get(ctx context.Context, kind models.MediaKind, id int64) *models.TitleDetails {
	return s.GetMode(ctx, kind, id, ModeBoth)
}

// GetMode is Get restricted to the parts mode displays.
func (s *Service) GetMode(ctx context.Context, kind models.MediaKind, id int64, mode Mode) *models.TitleDetails {
	start := time.Now()

	var (
		videos    []models.VideoRecord
		videosErr error
		info      *metadata.TitleInfo
		infoErr   error
		cast      []metadata.CastMember
		castErr   error
	)

	var wg conc.WaitGroup
	if mode.wantsVideo() {
		wg.Go(func() {
			videos, videosErr = s.source.Videos(ctx, kind, id)
		})
	}
	if mode.wantsDetails() {
		wg.Go(func() {
			info, infoErr = s.source.Details(ctx, kind, id)
		})
		wg.Go(func() {
			cast, castErr = s.source.Credits(ctx, kind, id)
		})
	}
	wg.Wait()

	result := &models.TitleDetails{
		ID:       id,
		Kind:     kind,
		Title:    unknownTitle,
		Year:     notAvailable,
		Rating:   notAvailable,
		Genres:   notAvailable,
		Overview: noOverview,
		Cast:     []string{},
	}

	if mode.wantsVideo() {
		if videosErr != nil {
			log.Printf("[details] videos error kind=%s id=%d: %v", kind, id, videosErr)
			result.VideoError = videosErr.Error()
		}
		if key := trailers.SelectBestKey(videos); key != "" {
			result.TrailerKey = key
			result.EmbedURL = trailers.ModalEmbedURL(key)
		} else {
			result.VideoMessage = trailerNotAvailable
		}
	}

	if mode.wantsDetails() {
		if infoErr != nil {
			log.Printf("[details] details error kind=%s id=%d: %v", kind, id, infoErr)
			result.DetailsError = infoErr.Error()
		} else if info != nil {
			applyInfo(result, info)
		}

		if castErr != nil {
			log.Printf("[details] credits error kind=%s id=%d: %v", kind, id, castErr)
			result.CreditsError = castErr.Error()
		}
		result.Cast = castNames(cast)
		if len(result.Cast) == 0 {
			result.CastMessage = castNotAvailable
		}
	}

	log.Printf("[details] kind=%s id=%d mode=%s took=%dms", kind, id, mode, time.Since(start).Milliseconds())
	return result
}

func applyInfo(result *models.TitleDetails, info *metadata.TitleInfo) {
	if title := firstNonEmpty(info.Title, info.Name); title != "" {
		result.Title = title
	}
	result.Year = formatYear(info.ReleaseDate, info.FirstAirDate)
	result.Rating = formatRating(info.VoteAverage)
	if len(info.Genres) > 0 {
		result.Genres = strings.Join(info.Genres, ", ")
	}
	if overview := strings.TrimSpace(info.Overview); overview != "" {
		result.Overview = overview
	}
}

// formatYear takes the year from the first date present, e.g. "2019-05-01".
func formatYear(dates ...string) string {
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if len(d) >= 4 {
			return d[:4]
		}
	}
	return notAvailable
}

func formatRating(vote float64) string {
	if vote <= 0 {
		return notAvailable
	}
	return fmt.Sprintf("%.1f", vote)
}

func castNames(cast []metadata.CastMember) []string {
	names := make([]string, 0, maxCastNames)
	for _, member := range cast {
		if len(names) == maxCastNames {
			break
		}
		if name := strings.TrimSpace(member.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
