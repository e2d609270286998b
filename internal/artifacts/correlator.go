package artifacts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bitrise-io/go-utils/v2/pathutil"

	"suitectl/internal/domain"
)

// MetadataFile tags a bundle directory with the identity that produced it.
const MetadataFile = "metadata.json"

type metadata struct {
	NodeID string `json:"nodeid"`
}

// Correlator builds an ArtifactMap from recording bundles.
type Correlator struct {
	projectRoot string
	pathChecker pathutil.PathChecker
	logger      *slog.Logger
}

// NewCorrelator creates a Correlator. Identities found in bundle metadata are
// canonicalized against projectRoot.
func NewCorrelator(projectRoot string, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Correlator{
		projectRoot: projectRoot,
		pathChecker: pathutil.NewPathChecker(),
		logger:      logger,
	}
}

// Correlate scans the immediate subdirectories of root. A bundle without
// metadata is replaced by its first nested directory that has one. Bundles with
// missing or invalid metadata are skipped. An absent root yields an empty map.
func (c *Correlator) Correlate(root string) *domain.ArtifactMap {
	artifacts := domain.NewArtifactMap(c.projectRoot)

	if exists, err := c.pathChecker.IsDirExists(root); err != nil || !exists {
		return artifacts
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		c.logger.Warn("cannot read artifact root", "root", root, "error", err)
		return artifacts
	}

	// os.ReadDir returns entries sorted by name
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		bundle := c.bundleDir(filepath.Join(root, entry.Name()))
		nodeID, err := c.readNodeID(bundle)
		if err != nil {
			c.logger.Info("skipping artifact bundle", "bundle", bundle, "reason", err)
			continue
		}

		files, err := bundleFiles(bundle)
		if err != nil {
			c.logger.Warn("cannot list artifact bundle", "bundle", bundle, "error", err)
			continue
		}
		artifacts.Add(nodeID, files...)
		c.logger.Debug("correlated artifact bundle", "nodeid", nodeID, "files", len(files))
	}

	return artifacts
}

// bundleDir returns dir when it carries metadata, else its first nested
// directory that does. Falls back to dir.
func (c *Correlator) bundleDir(dir string) string {
	if c.hasMetadata(dir) {
		return dir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return dir
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		nested := filepath.Join(dir, entry.Name())
		if c.hasMetadata(nested) {
			return nested
		}
	}
	return dir
}

func (c *Correlator) hasMetadata(dir string) bool {
	exists, err := c.pathChecker.IsPathExists(filepath.Join(dir, MetadataFile))
	return err == nil && exists
}

func (c *Correlator) readNodeID(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return "", fmt.Errorf("read metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("decode metadata: %w", err)
	}
	if meta.NodeID == "" {
		return "", fmt.Errorf("metadata has no nodeid")
	}
	return meta.NodeID, nil
}

func bundleFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == MetadataFile {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}
