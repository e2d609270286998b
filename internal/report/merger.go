package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"suitectl/internal/domain"
)

const payloadAttr = "data-jsonblob"

const badgeStyle = "background-color: #d9534f; color: white; padding: 2px 6px; " +
	"border-radius: 4px; text-decoration: none; font-size: 11px; " +
	"margin-right: 4px; display: inline-block;"

// Merger splices recordings into the JSON payload of a self-contained report.
// Merging is not idempotent: every generated document is merged once.
type Merger struct {
	root   string
	logger *slog.Logger
}

// NewMerger creates a Merger. Report test ids are canonicalized against root.
func NewMerger(root string, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{root: root, logger: logger}
}

// Merge returns doc with a badge link and a video block added to the first
// failed result of every test that has recordings. When targets is non-empty
// only those identities qualify. reportDir is where doc will live; artifact
// links are made relative to it.
//
// doc is returned unchanged when it has no payload, the payload cannot be
// decoded, or nothing qualified.
func (m *Merger) Merge(doc []byte, artifacts *domain.ArtifactMap, targets []domain.TestIdentity, reportDir string) ([]byte, int) {
	if !bytes.Contains(doc, []byte(payloadAttr)) {
		return doc, 0
	}

	value, ok := m.payloadValue(doc)
	if !ok {
		return doc, 0
	}
	start, end, ok := payloadSpan(doc, value)
	if !ok {
		m.logger.Warn("report payload attribute not found in raw document")
		return doc, 0
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		m.logger.Warn("cannot decode report payload", "error", err)
		return doc, 0
	}
	var tests map[string][]map[string]json.RawMessage
	if raw, ok := payload["tests"]; !ok || json.Unmarshal(raw, &tests) != nil {
		return doc, 0
	}

	allowed := make(map[domain.TestIdentity]bool, len(targets))
	for _, t := range targets {
		allowed[domain.Canonical(m.root, string(t))] = true
	}

	nodeIDs := make([]string, 0, len(tests))
	for id := range tests {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	injected := 0
	for _, nodeID := range nodeIDs {
		if len(allowed) > 0 && !allowed[domain.Canonical(m.root, nodeID)] {
			continue
		}
		result := firstFailed(tests[nodeID])
		if result == nil {
			continue
		}
		files := artifacts.Lookup(nodeID)
		if len(files) == 0 {
			continue
		}

		links := relativeLinks(files, reportDir)
		if err := inject(result, links); err != nil {
			m.logger.Warn("cannot inject recordings", "nodeid", nodeID, "error", err)
			continue
		}
		injected++
	}

	if injected == 0 {
		return doc, 0
	}

	encodedTests, err := encode(tests)
	if err != nil {
		m.logger.Warn("cannot encode report tests", "error", err)
		return doc, 0
	}
	payload["tests"] = encodedTests
	encoded, err := encode(payload)
	if err != nil {
		m.logger.Warn("cannot encode report payload", "error", err)
		return doc, 0
	}

	escaped := html.EscapeString(string(encoded))
	out := make([]byte, 0, len(doc)-(end-start)+len(escaped))
	out = append(out, doc[:start]...)
	out = append(out, escaped...)
	out = append(out, doc[end:]...)
	return out, injected
}

// payloadSpan locates the raw bytes of the double quoted payload attribute whose
// unescaped value is value. Textual occurrences in comments or scripts that do
// not carry that value are skipped.
func payloadSpan(doc []byte, value string) (int, int, bool) {
	marker := []byte(payloadAttr + `="`)
	offset := 0
	for {
		idx := bytes.Index(doc[offset:], marker)
		if idx < 0 {
			return 0, 0, false
		}
		start := offset + idx + len(marker)
		n := bytes.IndexByte(doc[start:], '"')
		if n < 0 {
			return 0, 0, false
		}
		end := start + n
		if html.UnescapeString(string(doc[start:end])) == value {
			return start, end, true
		}
		offset = end
	}
}

// payloadValue returns the decoded attribute value.
func (m *Merger) payloadValue(doc []byte) (string, bool) {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		m.logger.Warn("cannot parse report document", "error", err)
		return "", false
	}
	return d.Find("[" + payloadAttr + "]").First().Attr(payloadAttr)
}

func firstFailed(results []map[string]json.RawMessage) map[string]json.RawMessage {
	for _, r := range results {
		var outcome string
		if err := json.Unmarshal(r["result"], &outcome); err != nil {
			continue
		}
		if strings.EqualFold(outcome, "failed") {
			return r
		}
	}
	return nil
}

func relativeLinks(files []string, reportDir string) []string {
	links := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(reportDir, f)
		if err != nil {
			rel = f
		}
		links = append(links, filepath.ToSlash(rel))
	}
	return links
}

// inject adds badges to the links cell and video blocks to tableHtml.
func inject(result map[string]json.RawMessage, links []string) error {
	if raw, ok := result["resultsTableRow"]; ok {
		var row []string
		if err := json.Unmarshal(raw, &row); err != nil {
			return fmt.Errorf("decode resultsTableRow: %w", err)
		}
		for i, cell := range row {
			if !strings.Contains(cell, "col-links") {
				continue
			}
			if end := strings.LastIndex(cell, "</td>"); end >= 0 {
				row[i] = cell[:end] + badges(links) + cell[end:]
			}
			break
		}
		encoded, err := encode(row)
		if err != nil {
			return err
		}
		result["resultsTableRow"] = encoded
	}

	var extras []string
	if raw, ok := result["tableHtml"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &extras); err != nil {
			return fmt.Errorf("decode tableHtml: %w", err)
		}
	}
	for _, link := range links {
		extras = append(extras, videoBlock(link))
	}
	encoded, err := encode(extras)
	if err != nil {
		return err
	}
	result["tableHtml"] = encoded
	return nil
}

func badges(links []string) string {
	var b strings.Builder
	for i, link := range links {
		label := "Video"
		if len(links) > 1 {
			label = fmt.Sprintf("Video %d", i+1)
		}
		fmt.Fprintf(&b, `<a href="%s" target="_blank" style="%s">%s</a>`, html.EscapeString(link), badgeStyle, label)
	}
	return b.String()
}

func videoBlock(link string) string {
	src := html.EscapeString(link)
	return `<div class="media" style="float: left; margin: 10px 0; clear: both;">` +
		`<div style="margin-bottom: 4px; font-weight: bold; font-size: 12px; color: #555;">Video Evidence:</div>` +
		`<video controls style="width: 480px; max-width: 100%; border: 1px solid #ccc; border-radius: 4px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); background: #000;">` +
		`<source src="` + src + `" type="video/webm">` +
		`Your browser does not support the video tag.` +
		`</video></div>`
}

// encode marshals v as JSON without escaping HTML characters.
func encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
