// package controllers implements the catalog, ratings and recommendations pages
package controllers

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
)

// User-facing messages.
const (
	MsgMoviesError          = "Error loading movies. Please try again."
	MsgRecommendationsError = "Error loading recommendations."
	MsgSearchError          = "Error searching movies."
	MsgRatingsError         = "Error loading your ratings. Please try again."
	MsgRatingFailed         = "Error saving rating. Please try again."
	MsgRatingSaved          = "Rating saved successfully!"
	MsgNoRecommendations    = "Rate some movies to get personalized recommendations!"
	MsgNoRatings            = "You haven't rated any movies yet"
)

// Defaults applied when [Options] leaves a field zero.
const (
	DefaultNoticeTTL     = 3 * time.Second
	DefaultFeaturedCount = 5
)

// API is the part of the gateway client the controllers use.
type API interface {
	GetCatalog(ctx context.Context) (models.Catalog, error)
	SearchCatalog(ctx context.Context, query string, searchType models.SearchType) ([]models.Movie, error)
	GetRecommendations(ctx context.Context) ([]models.Movie, error)
	GetRatings(ctx context.Context) ([]models.Rating, error)
	RateOrUpdate(ctx context.Context, movieID, score int, comment string) (*models.Rating, error)
}

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timerAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Options configures a controller.
type Options struct {
	NoticeTTL     time.Duration
	FeaturedCount int
	AfterFunc     AfterFunc
	Logger        *log.Logger
}

func (o Options) withDefaults() Options {
	if o.NoticeTTL <= 0 {
		o.NoticeTTL = DefaultNoticeTTL
	}
	if o.FeaturedCount <= 0 {
		o.FeaturedCount = DefaultFeaturedCount
	}
	if o.AfterFunc == nil {
		o.AfterFunc = timerAfterFunc
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// OptionsFromConfig maps the [ui] config section to controller options.
func OptionsFromConfig(cfg shared.UIConfig, logger *log.Logger) Options {
	return Options{NoticeTTL: cfg.NoticeTTL(), FeaturedCount: cfg.FeaturedCount, Logger: logger}
}

// Source is the state of one independently fetched piece of data.
type Source[T any] struct {
	Loading bool
	Error   string
	Data    T
}

// base carries the pieces every page shares: the mutex, the rating error and the notice.
type base struct {
	mu     sync.Mutex
	api    API
	opts   Options
	logger *log.Logger

	ratingError string
	notice      string
	noticeGen   int
	stopNotice  func() bool
}

func (b *base) init(api API, opts Options, page string) {
	b.api = api
	b.opts = opts.withDefaults()
	b.logger = shared.WithLogger(b.opts.Logger, "page", page)
}

// showNotice sets text and clears it after the notice TTL unless a newer notice replaced it.
func (b *base) showNotice(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearNoticeLocked()
	b.noticeGen++
	gen := b.noticeGen
	b.notice = text
	b.stopNotice = b.opts.AfterFunc(b.opts.NoticeTTL, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.noticeGen == gen {
			b.notice = ""
			b.stopNotice = nil
		}
	})
}

func (b *base) clearNoticeLocked() {
	if b.stopNotice != nil {
		b.stopNotice()
		b.stopNotice = nil
	}
	b.notice = ""
}

// NoticeTTL is how long a success notice stays visible.
func (b *base) NoticeTTL() time.Duration { return b.opts.NoticeTTL }

// rate submits a score and, on success, shows the saved notice and runs reload.
func (b *base) rate(ctx context.Context, movieID, score int, reload func(context.Context)) error {
	b.mu.Lock()
	b.ratingError = ""
	b.clearNoticeLocked()
	b.mu.Unlock()

	if _, err := b.api.RateOrUpdate(ctx, movieID, score, ""); err != nil {
		msg := err.Error()
		if msg == "" {
			msg = MsgRatingFailed
		}

		b.mu.Lock()
		b.ratingError = msg
		b.mu.Unlock()

		b.logger.Warn("rating failed", "movie", movieID, "score", score, "error", err)
		return err
	}

	b.logger.Info("rating saved", "movie", movieID, "score", score)
	b.showNotice(MsgRatingSaved)
	reload(ctx)
	return nil
}

// fetch runs fn for one source: it marks the source loading, then stores data or failMsg.
func fetch[T any](b *base, src *Source[T], failMsg string, fn func() (T, error)) {
	b.mu.Lock()
	src.Loading = true
	src.Error = ""
	b.mu.Unlock()

	data, err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	src.Loading = false
	if err != nil {
		src.Error = failMsg
		b.logger.Warn("fetch failed", "error", err)
		return
	}
	src.Data = data
}

// parallel runs fns concurrently and waits for all of them.
func parallel(fns ...func()) {
	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	wg.Wait()
}
