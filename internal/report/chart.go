package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"suitectl/internal/domain"
)

type slice struct {
	label   string
	count   int
	r, g, b int
}

// WritePieChart renders the passed/failed/skipped split of stats as a PDF pie chart.
func WritePieChart(stats domain.RunSummary, path, title string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}

	slices := []slice{
		{label: "Passed", count: stats.Passed, r: 92, g: 184, b: 92},
		{label: "Failed", count: stats.Failed, r: 217, g: 83, b: 79},
		{label: "Skipped", count: stats.Skipped, r: 240, g: 173, b: 78},
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	const cx, cy, radius = 105.0, 90.0, 60.0

	total := stats.Total()
	if total == 0 {
		pdf.SetFillColor(200, 200, 200)
		pdf.Circle(cx, cy, radius, "F")
		pdf.SetFont("Arial", "", 12)
		pdf.SetXY(cx-30, cy-5)
		pdf.CellFormat(60, 10, "No tests executed", "", 0, "C", false, 0, "")
	} else {
		angle := -math.Pi / 2
		for _, s := range slices {
			if s.count == 0 {
				continue
			}
			sweep := 2 * math.Pi * float64(s.count) / float64(total)
			pdf.SetFillColor(s.r, s.g, s.b)
			pdf.Polygon(wedge(cx, cy, radius, angle, sweep), "F")
			angle += sweep
		}
	}

	// Legend
	pdf.SetFont("Arial", "", 11)
	y := cy + radius + 15
	for _, s := range slices {
		pdf.SetFillColor(s.r, s.g, s.b)
		pdf.Rect(60, y, 6, 6, "F")
		pdf.SetXY(70, y)
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(s.count) / float64(total)
		}
		pdf.CellFormat(80, 6, fmt.Sprintf("%s: %d (%.1f%%)", s.label, s.count, pct), "", 0, "L", false, 0, "")
		y += 9
	}
	pdf.SetXY(60, y+3)
	pdf.CellFormat(90, 6, fmt.Sprintf("Duration: %.2fs", stats.Duration), "", 0, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return nil
}

// wedge approximates a pie slice starting at angle and spanning sweep radians.
func wedge(cx, cy, radius, angle, sweep float64) []fpdf.PointType {
	steps := int(math.Ceil(sweep / (math.Pi / 90)))
	if steps < 1 {
		steps = 1
	}
	points := []fpdf.PointType{{X: cx, Y: cy}}
	for i := 0; i <= steps; i++ {
		a := angle + sweep*float64(i)/float64(steps)
		points = append(points, fpdf.PointType{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
	}
	return points
}
