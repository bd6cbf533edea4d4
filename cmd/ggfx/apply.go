package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/gogpu/ggfx"
	"github.com/gogpu/ggfx/filter"
)

type applyOptions struct {
	in, out  string
	filters  string
	backend  string
	logLevel string
	quality  int
}

func runApply(ctx context.Context, opts applyOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := configureLogging(opts.logLevel); err != nil {
		return err
	}
	encoder, err := encoderFor(opts.out, opts.quality)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.filters)
	if err != nil {
		return fmt.Errorf("read filters: %w", err)
	}
	chain, err := filter.UnmarshalList(ctx, data,
		filter.WithLoader(filter.FileLoader{Dir: filepath.Dir(opts.filters)}))
	if err != nil {
		return fmt.Errorf("decode filters: %w", err)
	}

	src, err := imgio.Open(opts.in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}

	sel := ggfx.NewSelector(ggfx.WithBackend(opts.backend))
	defer sel.Close()
	out, err := ggfx.NewPipeline(sel).Apply(chain, src)
	if err != nil {
		return err
	}
	if err := imgio.Save(opts.out, out, encoder); err != nil {
		return fmt.Errorf("save output: %w", err)
	}

	selection := sel.Selection()
	fmt.Fprintf(w, "%s: %d filters, %dx%d, backend %s\n",
		opts.out, len(chain), out.Rect.Dx(), out.Rect.Dy(), selection.Backend.Name())
	if selection.Fallback {
		fmt.Fprintf(w, "fallback: %v\n", selection.Reason)
	}
	return nil
}

func encoderFor(path string, quality int) (imgio.Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(quality), nil
	case ".bmp":
		return imgio.BMPEncoder(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}

func configureLogging(level string) error {
	if level == "" {
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	ggfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func listKinds(w io.Writer) error {
	for _, kind := range filter.Kinds() {
		f, err := filter.New(kind)
		if err != nil {
			return err
		}
		data, err := filter.Marshal(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-12s %s\n", kind, data)
	}
	return nil
}
