package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	domainRepos "github.com/rios0rios0/relforge/internal/domain/repositories"
)

const gatewayRetryMax = 2

// NpmRegistryGateway queries an npm-compatible registry over HTTP. One
// packument request answers both the version list and the metadata call;
// transient failures are retried by the underlying client.
type NpmRegistryGateway struct {
	baseURL string
	timeout time.Duration
	client  *retryablehttp.Client

	mu    sync.Mutex
	cache map[string]*packument
}

var _ domainRepos.RegistryGateway = (*NpmRegistryGateway)(nil)

// NewNpmRegistryGateway creates a gateway for one registry endpoint.
func NewNpmRegistryGateway(baseURL string, timeout time.Duration) *NpmRegistryGateway {
	client := retryablehttp.NewClient()
	client.RetryMax = gatewayRetryMax
	client.Logger = nil
	client.HTTPClient.Timeout = timeout
	return &NpmRegistryGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  client,
		cache:   make(map[string]*packument),
	}
}

// NpmRegistryGatewayFactory builds gateways from the configured registry
// URL and per-call timeout.
type NpmRegistryGatewayFactory struct{}

var _ domainRepos.RegistryGatewayFactory = (*NpmRegistryGatewayFactory)(nil)

// NewNpmRegistryGatewayFactory creates the factory.
func NewNpmRegistryGatewayFactory() *NpmRegistryGatewayFactory {
	return &NpmRegistryGatewayFactory{}
}

// New returns a gateway for the endpoint.
func (f *NpmRegistryGatewayFactory) New(baseURL string, timeout time.Duration) domainRepos.RegistryGateway {
	return NewNpmRegistryGateway(baseURL, timeout)
}

// packument is the slice of the npm registry document the gateway reads.
type packument struct {
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]packumentEntry `json:"versions"`
}

// packumentEntry carries the per-version deprecation notice. npm models a
// deprecation as a non-empty message string on the version object.
type packumentEntry struct {
	Deprecated string `json:"deprecated"`
}

// LatestVersions returns every published version sorted ascending by
// semver precedence. Versions that do not parse as semver are skipped.
func (g *NpmRegistryGateway) LatestVersions(ctx context.Context, name string) ([]entities.Version, error) {
	doc, err := g.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	versions := make([]entities.Version, 0, len(doc.Versions))
	for raw := range doc.Versions {
		version, parseErr := entities.ParseVersion(raw)
		if parseErr != nil {
			continue
		}
		versions = append(versions, version)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].LessThan(versions[j]) })
	return versions, nil
}

// Metadata returns the dist-tags latest version and whether that version
// carries a deprecation notice.
func (g *NpmRegistryGateway) Metadata(ctx context.Context, name string) (*domainRepos.RegistryMetadata, error) {
	doc, err := g.fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	latestRaw, ok := doc.DistTags["latest"]
	if !ok {
		return nil, entities.NewRegistryError(name, errors.New("packument has no latest dist-tag"))
	}
	latest, parseErr := entities.ParseVersion(latestRaw)
	if parseErr != nil {
		return nil, entities.NewRegistryError(name, parseErr)
	}
	return &domainRepos.RegistryMetadata{
		Deprecated: doc.Versions[latestRaw].Deprecated != "",
		LatestTag:  latest,
	}, nil
}

// fetch retrieves and decodes the packument for a package, bounding the
// call with the configured timeout. Fetched packuments are cached for the
// gateway's lifetime, so the version and metadata calls for one package
// share a single request.
func (g *NpmRegistryGateway) fetch(ctx context.Context, name string) (*packument, error) {
	g.mu.Lock()
	if doc, ok := g.cache[name]; ok {
		g.mu.Unlock()
		return doc, nil
	}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	// Scoped names keep their @ but escape the / (npm registry convention).
	endpoint := g.baseURL + "/" + strings.ReplaceAll(url.PathEscape(name), "%40", "@")
	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, entities.NewRegistryError(name, err)
	}
	request.Header.Set("Accept", "application/json")

	response, doErr := g.client.Do(request)
	if doErr != nil {
		if errors.Is(doErr, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, entities.NewRegistryTimeout(name, doErr)
		}
		return nil, entities.NewRegistryError(name, doErr)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		io.Copy(io.Discard, response.Body)
		return nil, entities.NewRegistryError(name, fmt.Errorf("unexpected status %s", response.Status))
	}

	doc := &packument{}
	if decodeErr := json.NewDecoder(response.Body).Decode(doc); decodeErr != nil {
		return nil, entities.NewRegistryError(name, decodeErr)
	}
	g.mu.Lock()
	g.cache[name] = doc
	g.mu.Unlock()
	return doc, nil
}
