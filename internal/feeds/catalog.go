// Package feeds polls the third-party XML feeds and caches each one on local
// disk under <data dir>/<category>/<competition>/<file>. Bodies are stored as
// received; parsing happens in the jobs that read the cache.
package feeds

import (
	"fmt"
	"path/filepath"
)

// Type selects which feeds a loader pass downloads
type Type string

const (
	Preplay Type = "preplay"
	Inplay  Type = "inplay"
)

// ParseType validates a feed type from the command line
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Preplay, Inplay:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown feed type %q (expected preplay or inplay)", s)
}

// Feed is one cached XML document
type Feed struct {
	Category    string
	Competition string
	FileName    string
	// Path is relative to the feed API root and may include a query string
	Path string
	Type Type
}

// Name identifies the feed in logs and metrics
func (f Feed) Name() string {
	return f.Category + "/" + f.Competition + "/" + f.FileName
}

// Dir returns the cache directory of the feed
func (f Feed) Dir(dataDir string) string {
	return filepath.Join(dataDir, f.Category, f.Competition)
}

// FilePath returns the cached file location
func (f Feed) FilePath(dataDir string) string {
	return filepath.Join(f.Dir(dataDir), f.FileName)
}

// Catalog lists every feed the platform consumes
var Catalog = []Feed{
	{
		Category:    "soccer",
		Competition: "premier_league",
		FileName:    "preplay_odds.xml",
		Path:        "soccernew/england_shedule?odds=bet365",
		Type:        Preplay,
	},
	{
		Category:    "soccer",
		Competition: "champions_league",
		FileName:    "preplay_odds.xml",
		Path:        "soccernew/eurocups_shedule?odds=bet365",
		Type:        Preplay,
	},
	{
		Category:    "soccer",
		Competition: "all",
		FileName:    "inplay_odds.xml",
		Path:        "lines/soccer-inplay",
		Type:        Inplay,
	},
	{
		Category:    "soccer",
		Competition: "all",
		FileName:    "inplay_scores.xml",
		Path:        "soccernew/home",
		Type:        Inplay,
	},
	{
		Category:    "soccer",
		Competition: "premier_league",
		FileName:    "inplay_commentaries.xml",
		Path:        "commentaries/epl.xml",
		Type:        Inplay,
	},
}

// ForType returns the feeds of one type, keeping catalog order
func ForType(feeds []Feed, t Type) []Feed {
	var out []Feed
	for _, f := range feeds {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}
