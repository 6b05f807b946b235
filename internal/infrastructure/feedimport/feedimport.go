// Package feedimport turns RSS/Atom entries into draft publications.
package feedimport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/x/ansi"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tesso57/pubdesk/internal/domain/publication"
	"github.com/tesso57/pubdesk/internal/infrastructure/api"
	"github.com/tesso57/pubdesk/internal/logging"
)

const (
	DefaultConcurrency = 4
	userAgent          = "pubdesk/0.1"
	feedAcceptHeader   = "application/atom+xml, application/rss+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

type acceptTransport struct {
	base http.RoundTripper
}

func (t acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", feedAcceptHeader)
	}
	return base.RoundTrip(clone)
}

// ParserFunc is exposed for testing.
var ParserFunc = defaultParser

func defaultParser(ctx context.Context, url string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = &http.Client{Transport: acceptTransport{base: http.DefaultTransport}}
	return fp.ParseURLWithContext(url, ctx)
}

// Creator stores a validated draft. usecase.PublicationService satisfies it.
type Creator interface {
	Save(ctx context.Context, editing *publication.Publication, draft publication.Draft) (publication.Publication, error)
}

// Skipped is a feed entry that was not imported.
type Skipped struct {
	Title  string
	Reason string
}

// Report summarizes an import.
type Report struct {
	Feed    string
	Created []publication.Publication
	Skipped []Skipped
}

// Importer creates one draft publication per feed entry.
type Importer struct {
	Creator     Creator
	Concurrency int
	log         zerolog.Logger
}

// NewImporter constructs an Importer.
func NewImporter(creator Creator, concurrency int) *Importer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Importer{
		Creator:     creator,
		Concurrency: concurrency,
		log:         logging.NewLogger("import"),
	}
}

// Import fetches url and creates a draft for every usable entry. Entries that fail
// validation or creation are reported as skipped. An expired session aborts the run.
func (im *Importer) Import(ctx context.Context, url string) (Report, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Report{}, errors.New("feed url is empty")
	}
	parsed, err := ParserFunc(ctx, url)
	if err != nil {
		return Report{}, fmt.Errorf("parse feed: %w", err)
	}

	drafts, skipped := Drafts(parsed)
	report := Report{Feed: parsed.Title, Skipped: skipped}
	im.log.Info().Str("feed", url).Int("entries", len(parsed.Items)).Int("drafts", len(drafts)).Msg("importing feed")

	created := make([]*publication.Publication, len(drafts))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.Concurrency)
	for i, draft := range drafts {
		g.Go(func() error {
			p, err := im.Creator.Save(gctx, nil, draft)
			if err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return err
				}
				mu.Lock()
				report.Skipped = append(report.Skipped, Skipped{Title: draft.Title, Reason: api.Message(err, "create failed")})
				mu.Unlock()
				return nil
			}
			created[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, p := range created {
		if p != nil {
			report.Created = append(report.Created, *p)
		}
	}
	return report, nil
}

// Drafts converts feed entries into valid drafts. Entries that cannot be made
// valid are returned as skipped.
func Drafts(feed *gofeed.Feed) ([]publication.Draft, []Skipped) {
	if feed == nil {
		return nil, nil
	}
	var drafts []publication.Draft
	var skipped []Skipped
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		draft := DraftOf(item)
		if err := draft.Validate(); err != nil {
			title := draft.Title
			if title == "" {
				title = item.Link
			}
			skipped = append(skipped, Skipped{Title: title, Reason: err.Error()})
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, skipped
}

// DraftOf builds a draft from a feed entry, clipping title and content to the
// publication limits.
func DraftOf(item *gofeed.Item) publication.Draft {
	body := plainText(item.Content)
	if body == "" {
		body = plainText(item.Description)
	}
	if body == "" && item.Link != "" {
		body = "Imported from " + item.Link
	}
	return publication.Draft{
		Title:   clip(plainText(item.Title), publication.TitleMaxLength),
		Content: clip(body, publication.ContentMaxLength),
		Status:  publication.StatusDraft,
	}.Normalize()
}

func plainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	text := html
	if strings.ContainsAny(html, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

func clip(text string, limit int) string {
	if len([]rune(text)) <= limit {
		return text
	}
	return ansi.Truncate(text, limit, "…")
}
