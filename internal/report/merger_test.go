package report

import (
	"encoding/json"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/domain"
	"suitectl/internal/logging"
)

type result struct {
	Result          string   `json:"result"`
	ResultsTableRow []string `json:"resultsTableRow"`
	TableHTML       []string `json:"tableHtml"`
}

func linksCell() []string {
	return []string{
		`<td class="col-result">Failed</td>`,
		`<td class="col-name">test</td>`,
		`<td class="col-links"></td>`,
	}
}

func reportDoc(t *testing.T, tests map[string][]result) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"environment": map[string]string{"Python": "3.12"},
		"tests":       tests,
	})
	require.NoError(t, err)
	return []byte(`<!DOCTYPE html><html><head><title>report</title></head><body>` +
		`<div id="data-container" data-jsonblob="` + html.EscapeString(string(payload)) + `"></div>` +
		`<p>footer</p></body></html>`)
}

func decodePayload(t *testing.T, doc []byte) map[string][]result {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(string(doc)))
	require.NoError(t, err)
	value, ok := d.Find("[data-jsonblob]").Attr("data-jsonblob")
	require.True(t, ok)

	var payload struct {
		Tests map[string][]result `json:"tests"`
	}
	require.NoError(t, json.Unmarshal([]byte(value), &payload))
	return payload.Tests
}

func recordings(root string, entries map[string][]string) *domain.ArtifactMap {
	m := domain.NewArtifactMap(root)
	for id, files := range entries {
		m.Add(id, files...)
	}
	return m
}

func TestMerge_NoPayloadIsByteIdentical(t *testing.T) {
	root := t.TempDir()
	merger := NewMerger(root, logging.Discard())
	artifacts := recordings(root, map[string][]string{"tests/test_a.py::test_a": {filepath.Join(root, "videos", "a", "video.webm")}})

	docs := [][]byte{
		[]byte(`<html><body><p>no payload here</p></body></html>`),
		[]byte(`<html><body><div data-jsonblob="{not json"></div></body></html>`),
		[]byte(`<html><body><div data-jsonblob="{&#34;environment&#34;: {}}"></div></body></html>`),
	}
	for _, doc := range docs {
		out, injected := merger.Merge(doc, artifacts, nil, filepath.Join(root, "reports"))
		assert.Zero(t, injected)
		assert.Equal(t, doc, out)
	}
}

func TestMerge_InjectsBadgesAndVideos(t *testing.T) {
	root := t.TempDir()
	reportsDir := filepath.Join(root, "reports")
	doc := reportDoc(t, map[string][]result{
		"tests/test_checkout.py::test_checkout": {
			{Result: "Passed", ResultsTableRow: linksCell()},
			{Result: "FAILED", ResultsTableRow: linksCell(), TableHTML: []string{"<div>log</div>"}},
		},
		"tests/test_checkout.py::test_placeorder": {
			{Result: "Failed", ResultsTableRow: linksCell()},
		},
		"tests/test_login.py::test_login": {
			{Result: "Passed", ResultsTableRow: linksCell()},
		},
	})
	artifacts := recordings(root, map[string][]string{
		filepath.Join(root, "tests", "test_checkout.py") + "::test_checkout": {
			filepath.Join(root, "videos", "a1", "video.webm"),
		},
		"tests/test_checkout.py::test_placeorder": {
			filepath.Join(root, "videos", "b1", "video.webm"),
			filepath.Join(root, "videos", "b2", "video.webm"),
		},
		"tests/test_login.py::test_login": {
			filepath.Join(root, "videos", "c1", "video.webm"),
		},
	})

	out, injected := NewMerger(root, logging.Discard()).Merge(doc, artifacts, nil, reportsDir)
	require.Equal(t, 2, injected)
	assert.True(t, strings.HasSuffix(string(out), `<p>footer</p></body></html>`))

	tests := decodePayload(t, out)

	checkout := tests["tests/test_checkout.py::test_checkout"]
	assert.Equal(t, linksCell(), checkout[0].ResultsTableRow, "passed result before the failure is untouched")
	links := checkout[1].ResultsTableRow[2]
	assert.Contains(t, links, `href="../videos/a1/video.webm"`)
	assert.Contains(t, links, `>Video</a></td>`)
	require.Len(t, checkout[1].TableHTML, 2)
	assert.Equal(t, "<div>log</div>", checkout[1].TableHTML[0])
	assert.Contains(t, checkout[1].TableHTML[1], `<source src="../videos/a1/video.webm" type="video/webm">`)

	placeorder := tests["tests/test_checkout.py::test_placeorder"][0]
	assert.Contains(t, placeorder.ResultsTableRow[2], ">Video 1</a>")
	assert.Contains(t, placeorder.ResultsTableRow[2], ">Video 2</a>")
	assert.Len(t, placeorder.TableHTML, 2)

	login := tests["tests/test_login.py::test_login"][0]
	assert.Equal(t, linksCell(), login.ResultsTableRow)
	assert.Empty(t, login.TableHTML)
}

func TestMerge_SkipsTextualPayloadMarkers(t *testing.T) {
	root := t.TempDir()
	reportsDir := filepath.Join(root, "reports")
	base := reportDoc(t, map[string][]result{
		"tests/test_a.py::test_a": {{Result: "Failed", ResultsTableRow: linksCell()}},
	})
	decoy := `<!-- data-jsonblob="stale" -->`
	doc := []byte(strings.Replace(string(base), "<body>", "<body>"+decoy, 1))
	artifacts := recordings(root, map[string][]string{
		"tests/test_a.py::test_a": {filepath.Join(root, "videos", "a", "video.webm")},
	})

	out, injected := NewMerger(root, logging.Discard()).Merge(doc, artifacts, nil, reportsDir)
	require.Equal(t, 1, injected)
	assert.Contains(t, string(out), decoy)
	assert.Contains(t, decodePayload(t, out)["tests/test_a.py::test_a"][0].ResultsTableRow[2], ">Video</a>")
}

func TestMerge_RespectsTargets(t *testing.T) {
	root := t.TempDir()
	doc := reportDoc(t, map[string][]result{
		"tests/test_a.py::test_a": {{Result: "Failed", ResultsTableRow: linksCell()}},
		"tests/test_b.py::test_b": {{Result: "Failed", ResultsTableRow: linksCell()}},
	})
	artifacts := recordings(root, map[string][]string{
		"tests/test_a.py::test_a": {filepath.Join(root, "videos", "a", "video.webm")},
		"tests/test_b.py::test_b": {filepath.Join(root, "videos", "b", "video.webm")},
	})

	out, injected := NewMerger(root, logging.Discard()).Merge(doc, artifacts, []domain.TestIdentity{"tests/test_b.py::test_b"}, filepath.Join(root, "reports"))
	require.Equal(t, 1, injected)

	tests := decodePayload(t, out)
	assert.Empty(t, tests["tests/test_a.py::test_a"][0].TableHTML)
	assert.Len(t, tests["tests/test_b.py::test_b"][0].TableHTML, 1)
}

func TestMergeFile(t *testing.T) {
	root := t.TempDir()
	reportsDir := filepath.Join(root, "reports")
	require.NoError(t, os.MkdirAll(reportsDir, 0755))
	merger := NewMerger(root, logging.Discard())
	artifacts := recordings(root, map[string][]string{
		"tests/test_a.py::test_a": {filepath.Join(root, "videos", "a", "video.webm")},
	})

	t.Run("missing report", func(t *testing.T) {
		injected, err := merger.MergeFile(filepath.Join(reportsDir, "missing.html"), artifacts, nil)
		require.NoError(t, err)
		assert.Zero(t, injected)
	})

	t.Run("rewrites in place", func(t *testing.T) {
		path := filepath.Join(reportsDir, "report.html")
		require.NoError(t, os.WriteFile(path, reportDoc(t, map[string][]result{
			"tests/test_a.py::test_a": {{Result: "Failed", ResultsTableRow: linksCell()}},
		}), 0644))

		injected, err := merger.MergeFile(path, artifacts, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, injected)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, decodePayload(t, data)["tests/test_a.py::test_a"][0].TableHTML, 1)

		entries, err := os.ReadDir(reportsDir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
