//go:build unit

package repositories_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/relforge/internal/domain/entities"
	"github.com/rios0rios0/relforge/internal/infrastructure/repositories"
)

const leftPadPackument = `{
	"dist-tags": {"latest": "1.3.2"},
	"versions": {
		"1.3.0": {},
		"1.3.2": {"deprecated": "use String.prototype.padStart"},
		"1.1.0": {},
		"not-a-version": {}
	}
}`

func TestNpmRegistryGateway(t *testing.T) {
	t.Parallel()

	t.Run("should list published versions ascending skipping unparsable ones", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/left-pad", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(leftPadPackument))
		}))
		defer server.Close()
		gateway := repositories.NewNpmRegistryGateway(server.URL, 5*time.Second)

		// when
		versions, err := gateway.LatestVersions(context.Background(), "left-pad")

		// then
		require.NoError(t, err)
		raw := make([]string, 0, len(versions))
		for _, version := range versions {
			raw = append(raw, version.String())
		}
		assert.Equal(t, []string{"1.1.0", "1.3.0", "1.3.2"}, raw)
	})

	t.Run("should report the latest tag and its deprecation notice", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(leftPadPackument))
		}))
		defer server.Close()
		gateway := repositories.NewNpmRegistryGateway(server.URL, 5*time.Second)

		// when
		metadata, err := gateway.Metadata(context.Background(), "left-pad")

		// then
		require.NoError(t, err)
		assert.Equal(t, "1.3.2", metadata.LatestTag.String())
		assert.True(t, metadata.Deprecated)
	})

	t.Run("should answer versions and metadata from one packument request", func(t *testing.T) {
		t.Parallel()

		// given
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests++
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(leftPadPackument))
		}))
		defer server.Close()
		gateway := repositories.NewNpmRegistryGateway(server.URL, 5*time.Second)

		// when
		versions, versionsErr := gateway.LatestVersions(context.Background(), "left-pad")
		metadata, metadataErr := gateway.Metadata(context.Background(), "left-pad")

		// then
		require.NoError(t, versionsErr)
		require.NoError(t, metadataErr)
		assert.Len(t, versions, 3)
		assert.Equal(t, "1.3.2", metadata.LatestTag.String())
		assert.Equal(t, 1, requests, "the second call must reuse the cached packument")
	})

	t.Run("should keep the at sign but escape the slash of scoped names", func(t *testing.T) {
		t.Parallel()

		// given
		var seenPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenPath = r.URL.RawPath
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"dist-tags": {"latest": "1.0.0"}, "versions": {"1.0.0": {}}}`))
		}))
		defer server.Close()
		gateway := repositories.NewNpmRegistryGateway(server.URL, 5*time.Second)

		// when
		_, err := gateway.LatestVersions(context.Background(), "@types/node")

		// then
		require.NoError(t, err)
		assert.Equal(t, "/@types%2Fnode", seenPath)
	})

	t.Run("should surface a registry error on a non-200 response", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer server.Close()
		gateway := repositories.NewNpmRegistryGateway(server.URL, 5*time.Second)

		// when
		_, err := gateway.LatestVersions(context.Background(), "ghost")

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeRegistryFailed, domainErr.Code)
	})

	t.Run("should classify a deadline as a registry timeout", func(t *testing.T) {
		t.Parallel()

		// given
		release := make(chan struct{})
		defer close(release)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		gateway := repositories.NewNpmRegistryGateway(server.URL, 50*time.Millisecond)

		// when
		_, err := gateway.LatestVersions(context.Background(), "left-pad")

		// then
		var domainErr *entities.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeRegistryTimeout, domainErr.Code)
	})
}
