// Package panel drives the detail panel: populate from a painter record,
// then enrich with an article summary fetched in the background.
package panel

import (
	"context"
	"sync"

	"github.com/okian/artmap/internal/domain/imageurl"
	"github.com/okian/artmap/internal/domain/locale"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// SummaryFetcher returns the plain-text introduction of an article.
type SummaryFetcher interface {
	Summary(ctx context.Context, articleURL string) (string, error)
}

// Controller owns one panel. Every Show or Clear starts a new generation;
// enrichment results from older generations are dropped.
type Controller struct {
	mu     sync.Mutex
	view   View
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	fetcher   SummaryFetcher
	resolver  *imageurl.Resolver
	errorText func(error) string
	logger    logger.Logger
}

// NewController creates a Controller in the empty state.
func NewController(fetcher SummaryFetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:   fetcher,
		resolver:  imageurl.NewResolver(),
		errorText: func(error) string { return locale.SummaryFailed },
		logger:    logger.Current().Named("panel"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.view = View{State: StateEmpty, Message: locale.PanelPrompt}
	return c
}

// Show resets the panel, fills it from rec and starts the summary lookup.
// A record without article goes straight to the summary error state.
func (c *Controller) Show(ctx context.Context, rec model.PainterRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked(locale.PanelPrompt)
	metrics.RecordPanelShow()

	img := c.resolver.Resolve(rec.ArtworkImageURL, rec.PainterImageURL, imageurl.PanelWidth)
	c.view = View{
		State:      StatePopulated,
		Generation: c.gen,
		Detail: &Detail{
			Name:        locale.Or(rec.Name, locale.UnknownArtist),
			Lifespan:    locale.DetailLifespan(rec.BirthDate, rec.DeathDate),
			BirthPlace:  locale.Or(rec.BirthPlaceLabel, locale.UnknownBirthPlace),
			Description: locale.Or(rec.Description, locale.NoDescription),
			Image:       img,
			Caption:     locale.Caption(rec.ArtworkLabel, rec.ArtworkImageURL, rec.PainterImageURL),
			ArticleURL:  rec.ArticleURL,
		},
	}

	if rec.ArticleURL == "" || c.fetcher == nil {
		c.view.State = StateSummaryError
		c.view.Summary = &Summary{Error: locale.NoArticle}
		return
	}

	c.view.State = StateSummaryLoading
	c.view.Summary = &Summary{Text: locale.SummaryLoading}

	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	gen := c.gen
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		text, err := c.fetcher.Summary(fctx, rec.ArticleURL)
		c.complete(fctx, gen, text, err)
	}()
}

// Clear resets the panel to the click prompt.
func (c *Controller) Clear(ctx context.Context) {
	c.ShowMessage(ctx, locale.PanelPrompt)
}

// ShowMessage resets the panel to the empty state showing msg.
func (c *Controller) ShowMessage(ctx context.Context, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(msg)
}

// View returns a snapshot of the panel.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.view
	if v.Detail != nil {
		d := *v.Detail
		v.Detail = &d
	}
	if v.Summary != nil {
		s := *v.Summary
		v.Summary = &s
	}
	return v
}

// Wait blocks until every started summary lookup has returned.
func (c *Controller) Wait() { c.wg.Wait() }

// Close cancels the outstanding lookup and waits for it.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller) resetLocked(msg string) {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.view = View{State: StateEmpty, Message: msg, Generation: c.gen}
}

func (c *Controller) complete(ctx context.Context, gen uint64, text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		metrics.RecordEnrichmentDiscarded()
		c.logger.Debug(ctx, "stale summary discarded",
			logger.Int("generation", int(gen)),
			logger.Int("current", int(c.gen)),
		)
		return
	}
	c.cancel = nil
	if err != nil {
		c.view.State = StateSummaryError
		c.view.Summary = &Summary{Error: c.errorText(err)}
		return
	}
	c.view.State = StateSummaryReady
	c.view.Summary = &Summary{Text: text}
}
