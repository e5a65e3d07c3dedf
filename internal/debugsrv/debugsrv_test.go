//go:build !tinygo

package debugsrv

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type solidPanel struct{}

func (solidPanel) Image(scale int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 32*scale, 8*scale))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestDisplayPNG(t *testing.T) {
	h := Handler(Options{Panel: solidPanel{}, Caption: func() string { return "12:34" }})
	rec := get(t, h, "/display.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 32*previewScale || b.Dy() != 8*previewScale+captionHeight {
		t.Fatalf("bounds = %v", b)
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA); got.R != 0xff {
		t.Fatalf("panel pixel = %v, want white", got)
	}

	// Some caption pixel must be lit.
	lit := false
	for y := 8 * previewScale; y < b.Dy() && !lit; y++ {
		for x := 0; x < 60; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r > 0 {
				lit = true
				break
			}
		}
	}
	if !lit {
		t.Fatalf("caption not drawn")
	}
}

func TestRootRedirects(t *testing.T) {
	h := Handler(Options{})
	rec := get(t, h, "/")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/display.png" {
		t.Fatalf("GET / = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := get(t, h, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/metrics"); rec.Code != http.StatusNotFound {
		t.Fatalf("GET /metrics without a gatherer = %d, want 404", rec.Code)
	}
}

func TestMetricsAndLog(t *testing.T) {
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{Name: "clock_test_total", Help: "test"}).Inc()
	h := Handler(Options{
		Gatherer: reg,
		Recent:   func() []string { return []string{"a", "b"} },
	})
	if body := get(t, h, "/metrics").Body.String(); !strings.Contains(body, "clock_test_total 1") {
		t.Fatalf("/metrics = %q", body)
	}
	if body := get(t, h, "/log").Body.String(); body != "a\nb\n" {
		t.Fatalf("/log = %q", body)
	}
}
