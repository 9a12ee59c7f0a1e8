package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/azhavoronkov/eventscope/pkg/domain"
	"github.com/azhavoronkov/eventscope/pkg/filter"
	"github.com/azhavoronkov/eventscope/pkg/media"
	"github.com/azhavoronkov/eventscope/pkg/text"
)

// descriptionLimit bounds event text in RSS items
const descriptionLimit = 500

// Generator creates RSS feeds from event cards
type Generator struct {
	baseURL string // preview server base, used for self links
	apiBase string // backend base, used to resolve media
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL, apiBase string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiBase: apiBase,
	}
}

// GenerateRSS creates an RSS 2.0 feed from event cards. The filter label
// goes into the channel title; events keep their first-line headline and a
// sanitized, truncated description.
func (g *Generator) GenerateRSS(events []domain.EventCard, f domain.Filter, taxonomy []domain.Filter) (string, error) {
	title := "Eventscope"
	if !f.All() {
		title = fmt.Sprintf("Eventscope - %s", f.Label)
	}

	selfLink := g.baseURL + "/rss"
	if !f.All() {
		selfLink = fmt.Sprintf("%s/rss/%s", g.baseURL, f.Key)
	}

	rssItems := make([]*RSSItem, 0, len(events))
	for i := range events {
		rssItems = append(rssItems, g.convertToRSSItem(&events[i], taxonomy))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Events from channel sources",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}

// convertToRSSItem converts an event card to an RSS item
func (g *Generator) convertToRSSItem(ev *domain.EventCard, taxonomy []domain.Filter) *RSSItem {
	headline := text.FirstLine(ev.Title)
	if headline == "" {
		headline = text.FirstLine(ev.DescriptionText())
	}
	if headline == "" {
		headline = "Событие"
	}

	desc := text.Truncate(text.Sanitize(ev.DescriptionText()), descriptionLimit)
	if desc == "" {
		desc = text.Truncate(text.Sanitize(ev.Title), descriptionLimit)
	}

	var categories []string
	for _, cat := range filter.MatchedCategories(ev, taxonomy) {
		categories = append(categories, cat.Label)
	}

	item := &RSSItem{
		Title:       headline,
		GUID:        ev.ID,
		Description: desc,
		PubDate:     ev.When().Format(time.RFC1123Z),
		Categories:  categories,
	}

	if ev.SourceLink != nil {
		item.Link = *ev.SourceLink
	}

	for _, m := range ev.MediaURLs {
		resolved := media.Resolve(m, g.apiBase)
		if resolved != "" && media.IsLikelyImage(resolved) {
			item.Enclosure = &Enclosure{URL: resolved, Type: imageMIME(resolved)}
			break
		}
	}

	return item
}

// imageMIME guesses the MIME type from the URL extension
func imageMIME(u string) string {
	lower := strings.ToLower(u)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
