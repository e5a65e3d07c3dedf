//go:build !tinygo

// Package debugsrv is the host's HTTP debug server: a PNG of the emulated panel,
// Prometheus metrics, the x/net/trace event logs and the recent log lines.
package debugsrv

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/trace"
)

const (
	previewScale  = 12
	captionHeight = 18
)

// Panel renders the matrix.
type Panel interface {
	Image(scale int) *image.RGBA
}

// Options are the server's data sources. Nil sources disable their endpoint.
type Options struct {
	Panel Panel
	// Caption returns the text drawn under the panel image.
	Caption  func() string
	Gatherer prometheus.Gatherer
	// Recent returns the latest log lines, oldest first.
	Recent func() []string
	Log    *slog.Logger
}

// Handler returns the debug mux.
func Handler(opts Options) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/" {
			http.NotFound(w, req)
			return
		}
		http.Redirect(w, req, "/display.png", http.StatusFound)
	})
	if opts.Panel != nil {
		mux.HandleFunc("/display.png", func(w http.ResponseWriter, req *http.Request) {
			caption := ""
			if opts.Caption != nil {
				caption = opts.Caption()
			}
			img := Render(opts.Panel.Image(previewScale), caption)
			w.Header().Add("content-type", "image/png")
			w.WriteHeader(http.StatusOK)
			if err := png.Encode(w, img); err != nil && opts.Log != nil {
				opts.Log.Warn("encoding image", "err", err)
			}
		})
	}
	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/debug/events", func(w http.ResponseWriter, req *http.Request) {
		trace.RenderEvents(w, req, true)
	})
	mux.HandleFunc("/debug/requests", func(w http.ResponseWriter, req *http.Request) {
		trace.Render(w, req, true)
	})
	if opts.Recent != nil {
		mux.HandleFunc("/log", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("content-type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, strings.Join(opts.Recent(), "\n"))
		})
	}
	return mux
}

// Render draws the panel with a caption strip underneath.
func Render(panel *image.RGBA, caption string) *image.RGBA {
	b := panel.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+captionHeight))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(img, b, panel, b.Min, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, b.Dy()+captionHeight-5),
	}
	d.DrawString(caption)
	return img
}

// Serve runs the server on addr until ctx ends.
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("debug server: %w", err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	if log != nil {
		log.Info("debug server listening", "addr", ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		tctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(tctx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
