// Package lyrics provides song lyric lookup backed by the Genius API.
package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"musicwizard/internal/core"
	"musicwizard/pkg/fuzzy"
)

const searchEndpoint = "https://api.genius.com/search"

var (
	sectionHeaderRegex = regexp.MustCompile(`\[.+\]`)
	alsoLikeRegex      = regexp.MustCompile(`(?i)\d*You might also like\d*`)
	digitsRegex        = regexp.MustCompile(`^\d+$`)
)

type Client struct {
	config     *core.GeniusConfig
	logger     *zap.Logger
	httpClient *http.Client
	normalizer *fuzzy.Normalizer
	searchURL  string
}

type searchResponse struct {
	Response struct {
		Hits []struct {
			Result struct {
				URL           string `json:"url"`
				Title         string `json:"title"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

func NewClient(config *core.GeniusConfig, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSecs) * time.Second,
		},
		normalizer: fuzzy.NewNormalizer(),
		searchURL:  searchEndpoint,
	}
}

// Lookup searches Genius for the song and scrapes the lyrics from the song
// page. A failed artist-scoped search is retried with the title alone.
func (c *Client) Lookup(ctx context.Context, artist, title string) (string, error) {
	cleanedTitle := c.normalizer.CleanTitle(title)

	c.logger.Info("Searching lyrics",
		zap.String("artist", artist),
		zap.String("title", cleanedTitle))

	songURL, err := c.searchSong(ctx, cleanedTitle+" "+artist)
	if err != nil {
		songURL, err = c.searchSong(ctx, cleanedTitle)
		if err != nil {
			return "", err
		}
	}

	page, err := c.fetchPage(ctx, songURL)
	if err != nil {
		return "", fmt.Errorf("fetching song page: %w", err)
	}

	lyrics := cleanLyrics(extractLyrics(page))
	if lyrics == "" {
		return "", core.ErrNotFound
	}

	return lyrics, nil
}

func (c *Client) searchSong(ctx context.Context, query string) (string, error) {
	endpoint := c.searchURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing search response: %w", err)
	}

	if len(result.Response.Hits) == 0 {
		return "", core.ErrNotFound
	}

	hit := result.Response.Hits[0].Result
	c.logger.Debug("Song found on Genius",
		zap.String("title", hit.Title),
		zap.String("artist", hit.PrimaryArtist.Name),
		zap.String("url", hit.URL))

	return hit.URL, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("song page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// extractLyrics collects the text of every lyrics container div on a Genius
// song page, with line breaks preserved.
func extractLyrics(page string) string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node, inside bool)
	walk = func(n *html.Node, inside bool) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "div" && hasLyricsAttr(n):
				inside = true
			case inside && n.Data == "br":
				b.WriteString("\n")
			}
		}
		if inside && n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child, inside)
		}
	}
	walk(doc, false)

	return b.String()
}

func hasLyricsAttr(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "data-lyrics-container" && attr.Val == "true" {
			return true
		}
	}
	return false
}

// cleanLyrics strips Genius page furniture from scraped lyrics: the title
// line before the first section header, the "You might also like" widget
// text, and a trailing pyongs count.
func cleanLyrics(lyrics string) string {
	if loc := sectionHeaderRegex.FindStringIndex(lyrics); loc != nil {
		lyrics = lyrics[loc[0]:]
	} else if parts := strings.SplitN(lyrics, "\n", 2); len(parts) > 1 {
		lyrics = parts[1]
	}

	lyrics = alsoLikeRegex.Split(lyrics, 2)[0]

	lines := strings.Split(strings.TrimSpace(lyrics), "\n")
	if len(lines) > 0 && digitsRegex.MatchString(strings.TrimSpace(lines[len(lines)-1])) {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
