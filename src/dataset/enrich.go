package dataset

import (
	"math"
	"regexp"
)

// EngagementColumn is the derived column appended by Enrich.
const EngagementColumn = "engagement"

// EnrichPatterns is the configurable pattern table used to detect the source
// columns of the engagement ratio. Detection is best-effort: unusual schemas
// that match neither pattern silently skip enrichment.
type EnrichPatterns struct {
	Favorites *regexp.Regexp
	Views     *regexp.Regexp
}

// DefaultEnrichPatterns covers the common naming variants for favorite/like
// and view counts.
func DefaultEnrichPatterns() EnrichPatterns {
	return EnrichPatterns{
		Favorites: regexp.MustCompile(`(?i)(favou?rite|like)s?[\s_-]*(count)?`),
		Views:     regexp.MustCompile(`(?i)views?[\s_-]*(count)?`),
	}
}

// Enrich appends an engagement column equal to favorites/views rounded to six
// decimal places, nil when views is zero or either cell fails to parse. The
// favorites-like and views-like columns are located by pattern match over the
// header set. Enrich is idempotent: when an engagement column already exists
// the dataset is returned unchanged.
func Enrich(d *Dataset, patterns EnrichPatterns) *Dataset {
	if d.Empty() || d.HasHeader(EngagementColumn) {
		return d
	}

	favCol := matchHeader(d.Headers, patterns.Favorites)
	viewCol := matchHeader(d.Headers, patterns.Views)
	if favCol == "" || viewCol == "" {
		return d
	}

	for _, row := range d.Rows {
		fav, favOK := ParseNumber(row[favCol])
		views, viewsOK := ParseNumber(row[viewCol])
		if !favOK || !viewsOK || views == 0 {
			row[EngagementColumn] = nil
			continue
		}
		row[EngagementColumn] = math.Round(fav/views*1e6) / 1e6
	}
	d.Headers = append(d.Headers, EngagementColumn)
	return d
}

func matchHeader(headers []string, re *regexp.Regexp) string {
	if re == nil {
		return ""
	}
	for _, h := range headers {
		if re.MatchString(h) {
			return h
		}
	}
	return ""
}
