// Package banatic retrieves the per-département export of intercommunal
// groupings, one département at a time, through a persistent cache.
package banatic

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/cache"
	"github.com/sells-group/groupements-cli/internal/division"
	"github.com/sells-group/groupements-cli/internal/fetcher"
	"github.com/sells-group/groupements-cli/internal/model"
)

// ErrFetch is returned when a division cannot be downloaded or decoded.
var ErrFetch = eris.New("banatic: fetch failed")

// DefaultBaseURL is the export endpoint of the Banatic portal.
const DefaultBaseURL = "https://www.banatic.interieur.gouv.fr/V5/fichiers-en-telechargement/telecharger.php"

// Options configures a Fetcher.
type Options struct {
	BaseURL string
	// Version is the dataset date (DD/MM/YYYY). It is sent as the `date`
	// parameter and scopes cache keys.
	Version string
	// Format is the export format selector.
	Format string
}

// Stats counts cache outcomes over one Fetch.
type Stats struct {
	Hits    int `json:"hits"`
	Fetched int `json:"fetched"`
	Rows    int `json:"rows"`
}

// Fetcher retrieves division exports, preferring the cache.
type Fetcher struct {
	http  fetcher.Fetcher
	cache cache.Store
	opts  Options
	stats Stats
}

// NewFetcher creates a Fetcher.
func NewFetcher(f fetcher.Fetcher, store cache.Store, opts Options) *Fetcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Format == "" {
		opts.Format = "D"
	}
	return &Fetcher{http: f, cache: store, opts: opts}
}

// CacheKey is the cache key for one division of one dataset version.
func CacheKey(version, code string) string {
	return version + "-departement-" + code
}

// CachePrefix is the key prefix shared by all divisions of a version.
func CachePrefix(version string) string {
	return version + "-departement-"
}

// Stats returns the counters accumulated so far.
func (f *Fetcher) Stats() Stats {
	return f.stats
}

// URL builds the export request for one division.
func (f *Fetcher) URL(code string) (string, error) {
	u, err := url.Parse(f.opts.BaseURL)
	if err != nil {
		return "", eris.Wrapf(err, "banatic: parse base url %q", f.opts.BaseURL)
	}
	q := u.Query()
	q.Set("zone", "D"+code)
	q.Set("date", f.opts.Version)
	q.Set("format", f.opts.Format)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch returns the rows of every division, concatenated in division order.
// Divisions are processed one after the other. The first failure aborts.
func (f *Fetcher) Fetch(ctx context.Context, divs []division.Division) ([]model.Row, error) {
	var rows []model.Row
	for _, d := range divs {
		tbl, err := f.fetchDivision(ctx, d)
		if err != nil {
			return nil, err
		}
		part := tbl.Rows()
		f.stats.Rows += len(part)
		rows = append(rows, part...)
	}
	return rows, nil
}

func (f *Fetcher) fetchDivision(ctx context.Context, d division.Division) (*model.Table, error) {
	key := CacheKey(f.opts.Version, d.Code)
	log := zap.L().With(zap.String("component", "banatic"), zap.String("cache_key", key))

	tbl, err := f.cache.Get(ctx, key)
	if err != nil {
		return nil, eris.Wrapf(err, "banatic: cache lookup %s", key)
	}
	if tbl != nil {
		f.stats.Hits++
		log.Info("HIT")
		return tbl, nil
	}

	log.Info("UPDATING", zap.String("division", d.Nom))
	tbl, err = f.download(ctx, d.Code)
	if err != nil {
		return nil, eris.Wrapf(ErrFetch, "division %s: %v", d.Code, err)
	}
	if err := f.cache.Set(ctx, key, tbl); err != nil {
		return nil, eris.Wrapf(err, "banatic: cache store %s", key)
	}
	f.stats.Fetched++
	log.Info("cached", zap.Int("rows", len(tbl.Records)))
	return tbl, nil
}

func (f *Fetcher) download(ctx context.Context, code string) (*model.Table, error) {
	u, err := f.URL(code)
	if err != nil {
		return nil, err
	}
	body, err := f.http.Download(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	return fetcher.ReadTSV(fetcher.Latin1Reader(body))
}
