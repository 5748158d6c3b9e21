package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const manifestName = "versions.yaml"

// FSLoader reads the versions manifest and per-version catalog documents
// from a data directory. Catalog references may also be http(s) URLs for
// remotely hosted documents.
type FSLoader struct {
	root   string
	client *http.Client
}

func NewLoader(root string) *FSLoader {
	return &FSLoader{
		root:   root,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (l *FSLoader) LoadManifest() (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(filepath.Join(l.root, manifestName))
	if err != nil {
		return m, err
	}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("parse %s: %w", manifestName, err)
	}
	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("validate %s: %w", manifestName, err)
	}
	return m, nil
}

// LoadCatalog fetches and validates the catalog for one version. On any
// failure no partial catalog is returned; the caller keeps whatever version
// was previously active.
func (l *FSLoader) LoadCatalog(ctx context.Context, v VersionInfo) (Catalog, error) {
	var c Catalog
	b, err := l.readDocument(ctx, v.Catalog)
	if err != nil {
		return c, fmt.Errorf("load catalog for %s: %w", v.Key, err)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse catalog for %s: %w", v.Key, err)
	}
	applyCatalogDefaults(&c)
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("validate catalog for %s: %w", v.Key, err)
	}
	return c, nil
}

func (l *FSLoader) readDocument(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		res, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch %s: unexpected status %s", ref, res.Status)
		}
		return io.ReadAll(res.Body)
	}
	return os.ReadFile(filepath.Join(l.root, ref))
}

func applyCatalogDefaults(c *Catalog) {
	for i := range c.Sections {
		s := &c.Sections[i]
		if s.ResetLabel == "" {
			s.ResetLabel = s.Title
		}
		if s.ObjectiveLabel == "" {
			s.ObjectiveLabel = s.Title
		}
	}
	if c.Total == 0 {
		// Sections with a zero threshold are optional extras and do not count
		// toward the headline total.
		for _, s := range c.Sections {
			c.Total += s.Required
		}
	}
}
