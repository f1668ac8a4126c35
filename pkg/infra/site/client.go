package site

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/meteo/pkg/domain/interfaces"
	"github.com/m-mizutani/meteo/pkg/domain/model"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// DefaultBaseURL is the weather station website of the Chamson high school in Le Vigan
const DefaultBaseURL = "http://meteo.lyc-chamson-levigan.ac-montpellier.fr/meteo/"

// maxBodySize bounds a downloaded page or report
const maxBodySize = 4 << 20

var reportSelector = cascadia.MustCompile("#gauche select option")

type client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures the site client
type Option func(*client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		cl.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header of every request
func WithUserAgent(ua string) Option {
	return func(cl *client) {
		cl.userAgent = ua
	}
}

// NewClient creates a client of the station website. baseURL must end with a slash since
// report links are relative to it.
func NewClient(baseURL string, opts ...Option) (interfaces.ReportSite, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, goerr.Wrap(err, "invalid site base URL", goerr.V("base_url", baseURL))
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "meteo-prepare-data",
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListReports reads the report selector of the "releve" page
func (c *client) ListReports(ctx context.Context) ([]model.ReportSource, error) {
	page := c.baseURL + "?page=releve"

	body, err := c.get(ctx, page)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download report index")
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse report index", goerr.V("url", page))
	}

	var sources []model.ReportSource
	for _, node := range reportSelector.MatchAll(doc) {
		value := attr(node, "value")
		if value == "" {
			continue
		}
		sources = append(sources, model.ReportSource{
			Name: strings.TrimSpace(innerText(node)),
			URL:  c.baseURL + value,
		})
	}

	return sources, nil
}

// Download fetches a report and normalizes it to UTF-8 with LF line endings
func (c *client) Download(ctx context.Context, src model.ReportSource) (string, error) {
	body, err := c.get(ctx, src.URL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to download report", goerr.V("name", src.Name))
	}
	return strings.ReplaceAll(body, "\r\n", "\n"), nil
}

// get returns the body of target decoded from Windows-1252, the charset the station serves
func (c *client) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request", goerr.V("url", target))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to send request", goerr.V("url", target))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("unexpected status code",
			goerr.V("url", target),
			goerr.V("status", resp.StatusCode),
		)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read response body", goerr.V("url", target))
	}
	if len(raw) > maxBodySize {
		return "", goerr.New("response body is too large",
			goerr.V("url", target),
			goerr.V("limit", maxBodySize),
		)
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode Windows-1252 body", goerr.V("url", target))
	}

	return string(decoded), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
