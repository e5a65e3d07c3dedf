//go:build !tinygo

// Command mkflash writes a settings flash image for the host build, or dumps the
// settings record held in an existing one.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"dotclock/clockos/clock"
	"dotclock/clockos/nvconfig"
	"dotclock/internal/config"
)

const (
	defaultFlashPath = "Flash.bin"
	defaultFlashSize = 64 * 1024
	defaultEraseSize = 4096
)

type flashFile struct {
	f         *os.File
	size      uint32
	eraseSize uint32

	scratch []byte
}

func createFlashFile(path string, size uint32, eraseSize uint32) (*flashFile, error) {
	if eraseSize == 0 || eraseSize%256 != 0 {
		return nil, fmt.Errorf("flash: invalid erase size %d", eraseSize)
	}
	if size == 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("flash: size %d not multiple of erase size %d", size, eraseSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open flash file %q: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("truncate flash file %q to %d: %w", path, size, err)
	}

	ff := newFlashFile(f, size, eraseSize)
	if err := ff.Erase(0, size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("erase flash file %q: %w", path, err)
	}
	return ff, nil
}

func openFlashFile(path string, eraseSize uint32) (*flashFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flash file %q: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat flash file %q: %w", path, err)
	}
	return newFlashFile(f, uint32(st.Size()), eraseSize), nil
}

func newFlashFile(f *os.File, size, eraseSize uint32) *flashFile {
	ff := &flashFile{
		f:         f,
		size:      size,
		eraseSize: eraseSize,
		scratch:   make([]byte, eraseSize),
	}
	for i := range ff.scratch {
		ff.scratch[i] = 0xFF
	}
	return ff
}

func (f *flashFile) Close() error { return f.f.Close() }

func (f *flashFile) SizeBytes() uint32       { return f.size }
func (f *flashFile) EraseBlockBytes() uint32 { return f.eraseSize }

func (f *flashFile) ReadAt(p []byte, off uint32) (int, error) {
	if off >= f.size {
		return 0, fmt.Errorf("flash read at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}
	return f.f.ReadAt(p, int64(off))
}

func (f *flashFile) WriteAt(p []byte, off uint32) (int, error) {
	if off >= f.size {
		return 0, fmt.Errorf("flash write at %d: %w", off, os.ErrInvalid)
	}
	maxN := int(f.size - off)
	if len(p) > maxN {
		p = p[:maxN]
	}

	prev := make([]byte, len(p))
	if _, err := f.f.ReadAt(prev, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("flash read before write at %d: %w", off, err)
	}
	for i := range p {
		if prev[i]&p[i] != p[i] {
			return 0, errors.New("flash write requires erase")
		}
	}
	return f.f.WriteAt(p, int64(off))
}

func (f *flashFile) Erase(off, size uint32) error {
	if size == 0 {
		return nil
	}
	if off%f.eraseSize != 0 || size%f.eraseSize != 0 {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	if off >= f.size || off+size > f.size {
		return fmt.Errorf("flash erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for size > 0 {
		if _, err := f.f.WriteAt(f.scratch, int64(off)); err != nil {
			return fmt.Errorf("flash erase block at %d: %w", off, err)
		}
		off += f.eraseSize
		size -= f.eraseSize
	}
	return nil
}

func main() {
	var configPath string
	var outPath string
	var dumpPath string
	var flashSize uint
	var eraseSize uint
	pflag.StringVarP(&configPath, "config", "c", "", "YAML config whose clock settings are written (default: built-in).")
	pflag.StringVarP(&outPath, "out", "o", defaultFlashPath, "Output flash image path.")
	pflag.StringVar(&dumpPath, "dump", "", "Print the settings stored in this image instead of writing one.")
	pflag.UintVar(&flashSize, "size", defaultFlashSize, "Flash image size (bytes).")
	pflag.UintVar(&eraseSize, "erase", defaultEraseSize, "Erase block size (bytes).")
	pflag.Parse()

	var err error
	if dumpPath != "" {
		err = dump(os.Stdout, dumpPath, uint32(eraseSize))
	} else {
		if outPath == "" {
			fmt.Fprintln(os.Stderr, "error: --out is required")
			os.Exit(2)
		}
		err = run(configPath, outPath, uint32(flashSize), uint32(eraseSize))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath, outPath string, flashSize, eraseSize uint32) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	ff, err := createFlashFile(outPath, flashSize, eraseSize)
	if err != nil {
		return err
	}
	defer func() { _ = ff.Close() }()

	store, err := nvconfig.New(ff)
	if err != nil {
		return err
	}
	return store.Save(settings)
}

func dump(w io.Writer, path string, eraseSize uint32) error {
	ff, err := openFlashFile(path, eraseSize)
	if err != nil {
		return err
	}
	defer func() { _ = ff.Close() }()

	store, err := nvconfig.New(ff)
	if err != nil {
		return err
	}
	st, err := store.Load()
	if err != nil {
		return err
	}
	printSettings(w, st)
	return nil
}

func printSettings(w io.Writer, st clock.Settings) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	brightness := "auto"
	if !st.AutoBrightness {
		brightness = fmt.Sprint(st.Brightness)
	}
	fmt.Fprintf(tw, "language:\t%s\n", st.Language)
	fmt.Fprintf(tw, "time_format:\t%s\n", st.TimeFormat)
	fmt.Fprintf(tw, "keyclick:\t%t\n", st.Keyclick)
	fmt.Fprintf(tw, "scroll:\t%t every %d min, %d ms/dot\n", st.ScrollEnabled, st.ScrollPeriod, st.ScrollDotMs)
	fmt.Fprintf(tw, "chime:\t%s %02d..%02d\n", st.Chime, st.ChimeOn, st.ChimeOff)
	fmt.Fprintf(tw, "dst:\t%s\n", st.DST)
	fmt.Fprintf(tw, "brightness:\t%s\n", brightness)
	fmt.Fprintf(tw, "idle_timeout_sec:\t%d\n", st.IdleTimeout)
	fmt.Fprintf(tw, "temperature_unit:\t%s\n", st.TemperatureUnit)
	fmt.Fprintf(tw, "alarm_ring_sec:\t%d\n", st.AlarmRingSeconds)
	_ = tw.Flush()
}
