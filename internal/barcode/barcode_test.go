package barcode

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var digitsOnly = regexp.MustCompile(`^[0-9]{13}$`)

func TestFromTime(t *testing.T) {
	ts := time.UnixMilli(1760781234567)
	assert.Equal(t, "1760781234567", FromTime(ts))

	assert.Equal(t, "0000000000042", FromTime(time.UnixMilli(42)))
	assert.Equal(t, "2345678901234", FromTime(time.UnixMilli(12345678901234)))
}

func TestGeneratorCandidates(t *testing.T) {
	n := 0
	g := &Generator{
		now:    func() time.Time { return time.UnixMilli(1760781234567) },
		digits: func() int { n++; return n % 10 },
	}

	assert.Equal(t, "1760781234567", g.Candidate(0))

	second := g.Candidate(1)
	assert.Equal(t, "1234567890123", second)
	assert.Regexp(t, digitsOnly, second)
	assert.NotEqual(t, second, g.Candidate(2))
}

func TestDefaultGeneratorProducesDigits(t *testing.T) {
	g := NewGenerator()
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		assert.Regexp(t, digitsOnly, g.Candidate(attempt), "attempt %d", attempt)
	}
}

func TestRenderSVG(t *testing.T) {
	svg := RenderSVG("4567890123456", "USB-C Cable 2m")

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, svg, `<svg width="300" height="100"`)
	assert.Contains(t, svg, `<rect width="300" height="100" fill="white"/>`)
	assert.Contains(t, svg, ">4567890123456</text>")
	assert.Contains(t, svg, ">USB-C Cable 2m</text>")
	assert.Greater(t, strings.Count(svg, `fill="black"/>`), 20)
	assert.Equal(t, svg, RenderSVG("4567890123456", "USB-C Cable 2m"), "rendering is deterministic")
}

func TestRenderSVGEscapesAndTruncates(t *testing.T) {
	svg := RenderSVG(`<123>`, "Tom & Jerry's extra long product name here")

	assert.Contains(t, svg, "&lt;123&gt;")
	assert.Contains(t, svg, "Tom &amp; Jerry&#39;s extra long produ</text>")
	assert.NotContains(t, svg, "name here")
}

func TestBarsStayInsideLabel(t *testing.T) {
	for _, code := range []string{"", "0", "9999999999999", "ABC"} {
		for _, b := range bars(code) {
			assert.GreaterOrEqual(t, b.x, barStart)
			assert.LessOrEqual(t, b.x+b.width, barEnd)
		}
	}
}

func TestRenderSheet(t *testing.T) {
	labels := []Label{
		{Code: "1234567890123", Name: "iPhone 12 Screen"},
		{Code: "2345678901234", Name: "Samsung S21 Battery"},
		{Code: "3456789012345", Name: "Fast Charger"},
		{Code: "4567890123456", Name: "USB-C Cable"},
	}
	svg := RenderSheet(labels, SheetColumns)

	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, svg, `<svg width="940" height="230" xmlns="http://www.w3.org/2000/svg">`)
	assert.Equal(t, 4, strings.Count(svg, `<svg x=`))
	assert.Contains(t, svg, `<svg x="320" y="10" width="300" height="100">`)
	assert.Contains(t, svg, `<svg x="10" y="120" width="300" height="100">`)
	assert.Contains(t, svg, ">Samsung S21 Battery</text>")
	assert.Equal(t, 5, strings.Count(svg, "</svg>"))

	single := RenderSheet(labels[:1], SheetColumns)
	assert.Contains(t, single, `<svg width="320" height="120"`)
}
