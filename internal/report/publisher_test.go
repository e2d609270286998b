package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suitectl/internal/domain"
	"suitectl/internal/logging"
)

func TestPublisher_Publish(t *testing.T) {
	rc := domain.NewRunContext(t.TempDir())
	require.NoError(t, os.MkdirAll(rc.Reports, 0755))

	bundle := filepath.Join(rc.Videos, "a1")
	require.NoError(t, os.MkdirAll(bundle, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "metadata.json"), []byte(`{"nodeid": "tests/test_a.py::test_a"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "video.webm"), []byte("v"), 0644))

	reportPath := filepath.Join(rc.Reports, "report_x.html")
	require.NoError(t, os.WriteFile(reportPath, reportDoc(t, map[string][]result{
		"tests/test_a.py::test_a": {{Result: "Failed", ResultsTableRow: linksCell()}},
	}), 0644))

	NewPublisher(rc, logging.Discard()).Publish(domain.RunReport{
		Title:      "Run x",
		Stats:      domain.RunSummary{Failed: 1},
		Failed:     []domain.TestIdentity{"tests/test_a.py::test_a"},
		ReportPath: reportPath,
		ChartPath:  filepath.Join(rc.Reports, "chart_x.pdf"),
	})

	assert.FileExists(t, filepath.Join(rc.Reports, "chart_x.pdf"))
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	row := decodePayload(t, data)["tests/test_a.py::test_a"][0]
	assert.Contains(t, row.ResultsTableRow[2], `href="../videos/a1/video.webm"`)
}
