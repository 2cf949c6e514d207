package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/craftwiki/feedticker/app/database"
)

// DefaultOEmbedEndpoint is the public endpoint serving embedded timelines.
const DefaultOEmbedEndpoint = "https://publish.twitter.com/oembed"

// TwitterParser produces the single synthetic timeline item for an account.
// Unlike the other adapters it ignores the raw argument and performs its own
// HTTP call against the oEmbed endpoint.
type TwitterParser struct {
	httpClient *http.Client
	userAgent  string
	clock      Clock

	// Endpoint is overridable for tests.
	Endpoint string
}

func NewTwitterParser(httpClient *http.Client, userAgent string, clock Clock) *TwitterParser {
	return &TwitterParser{
		httpClient: httpClient,
		userAgent:  userAgent,
		clock:      clock,
		Endpoint:   DefaultOEmbedEndpoint,
	}
}

type oembedResponse struct {
	URL        string `json:"url"`
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	HTML       string `json:"html"`
}

func (p *TwitterParser) Run(ctx context.Context, fd database.Feed, _ []byte) ([]Item, error) {
	username := ExtractUsername(fd.URL)
	if username == "" {
		return nil, &ParseError{Reason: fmt.Sprintf("cannot extract a username from %q", fd.URL)}
	}

	resp, err := p.fetchOEmbed(ctx, username)
	if err != nil {
		return nil, err
	}

	title := "Twitter Timeline: " + username
	if resp.AuthorName != "" {
		title = "Twitter Timeline: " + resp.AuthorName
	}

	link := resp.URL
	if link == "" {
		link = resp.AuthorURL
	}

	item := Item{
		ID:          "twitter-timeline-" + username,
		Title:       title,
		Link:        link,
		Description: resp.HTML,
		Author:      resp.AuthorName,
		PublishedAt: p.clock.Now(),
		// The oEmbed response carries no engagement counts for the
		// synthetic timeline item.
		Twitter: &database.TwitterMeta{Username: username},
	}

	return []Item{item}, nil
}

func (p *TwitterParser) fetchOEmbed(ctx context.Context, username string) (*oembedResponse, error) {
	query := url.Values{}
	query.Set("url", "https://twitter.com/"+username)
	query.Set("limit", "1")
	query.Set("omit_script", "true")
	endpoint := p.Endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	httpResp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, &FetchError{URL: endpoint, Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			URL:        endpoint,
			StatusCode: httpResp.StatusCode,
			Body:       truncate(string(body), 512),
		}
	}

	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Reason: "invalid oEmbed response", Err: err}
	}

	return &resp, nil
}

// ExtractUsername reduces an account URL or handle to the bare username:
// scheme, www., a twitter.com/x.com host, legacy #!/ paths and a leading @
// are all stripped.
func ExtractUsername(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")

	for _, host := range []string{"twitter.com/", "x.com/"} {
		if strings.HasPrefix(s, host) {
			s = strings.TrimPrefix(s, host)
			break
		}
	}

	s = strings.TrimPrefix(s, "#!/")
	s = strings.TrimPrefix(s, "@")

	if i := strings.IndexAny(s, "/?"); i >= 0 {
		s = s[:i]
	}

	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
