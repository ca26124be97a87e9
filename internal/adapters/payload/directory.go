package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bnema/farmhand/internal/ports"
)

const DefaultDirectoryURL = "https://raw.githubusercontent.com/zuydd/database/main/blum.json"

const defaultDirectoryTTL = 10 * time.Minute

var ErrAnswerNotFound = errors.New("no answer known for task")

// Directory reads the community document that lists live payload servers
// and the keywords of verification tasks. Fetched documents are cached for
// TTL; a failed refetch never drops a document that was already cached.
type Directory struct {
	URL            string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	TTL            time.Duration
	Clock          ports.Clock

	mu        sync.Mutex
	doc       *directoryDocument
	fetchedAt time.Time
}

var (
	_ ports.EndpointDirectory = (*Directory)(nil)
	_ ports.TaskAnswerSource  = (*Directory)(nil)
)

type directoryDocument struct {
	PayloadServers []payloadServer `json:"payloadServer"`
	Tasks          []taskAnswer    `json:"tasks"`
}

type payloadServer struct {
	ID     string `json:"id"`
	Status int    `json:"status"`
}

type taskAnswer struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// Endpoints returns the IDs of payload servers marked live (status 1), in
// document order without duplicates.
func (d *Directory) Endpoints(ctx context.Context) ([]string, error) {
	doc, err := d.document(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(doc.PayloadServers))
	ids := make([]string, 0, len(doc.PayloadServers))
	for _, server := range doc.PayloadServers {
		if server.Status != 1 || server.ID == "" {
			continue
		}
		if _, ok := seen[server.ID]; ok {
			continue
		}
		seen[server.ID] = struct{}{}
		ids = append(ids, server.ID)
	}

	return ids, nil
}

func (d *Directory) Answer(ctx context.Context, taskID string) (string, error) {
	doc, err := d.document(ctx)
	if err != nil {
		return "", err
	}

	for _, task := range doc.Tasks {
		if task.ID == taskID && task.Answer != "" {
			return task.Answer, nil
		}
	}

	return "", fmt.Errorf("%w %s", ErrAnswerNotFound, taskID)
}

func (d *Directory) document(ctx context.Context) (*directoryDocument, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.doc != nil && now.Sub(d.fetchedAt) < d.ttl() {
		return d.doc, nil
	}

	doc, err := d.fetch(ctx)
	if err != nil {
		if d.doc != nil {
			return d.doc, nil
		}
		return nil, err
	}

	d.doc = doc
	d.fetchedAt = now
	return doc, nil
}

func (d *Directory) fetch(ctx context.Context) (*directoryDocument, error) {
	endpoint := d.URL
	if endpoint == "" {
		endpoint = DefaultDirectoryURL
	}

	requestCtx, cancel := requestContext(ctx, d.RequestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient(d.HTTPClient).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch endpoint directory: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch endpoint directory: status %d", resp.StatusCode)
	}

	var doc directoryDocument
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode endpoint directory: %w", err)
	}

	return &doc, nil
}

func (d *Directory) ttl() time.Duration {
	if d.TTL <= 0 {
		return defaultDirectoryTTL
	}
	return d.TTL
}

func (d *Directory) now() time.Time {
	if d.Clock == nil {
		return ports.SystemClock{}.Now()
	}
	return d.Clock.Now()
}
