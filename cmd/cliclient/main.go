// Command cliclient asks a mandel server for one view and saves it as a
// PNG file.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/export"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

type options struct {
	addr     string
	req      mandel.ViewRequest
	landmark string
	out      string
	scale    int
	caption  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("cliclient", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.addr, "addr", "localhost:8081", "server tcp address")
	fs.IntVar(&o.req.Width, "width", 800, "image width")
	fs.IntVar(&o.req.Height, "height", 600, "image height")
	fs.IntVar(&o.req.MaxIter, "iter", 0, "iteration bound (0 for the server default)")
	fs.IntVar(&o.req.Scheme, "scheme", 0, "colour scheme 0-8")
	fs.Float64Var(&o.req.Multiple, "multiple", 0, "colour cycle multiplier")
	fs.BoolVar(&o.req.Skeleton, "skeleton", false, "tint pixels filled by the tracer")
	fs.StringVar(&o.req.Bookmark, "bookmark", "", "render a bookmark stored on the server")
	fs.StringVar(&o.landmark, "view", "", "render a named view: "+landmarkNames())
	fs.Float64Var(&o.req.Viewport.Left, "left", 0, "real part of the top-left corner")
	fs.Float64Var(&o.req.Viewport.Top, "top", 0, "imaginary part of the top-left corner")
	fs.Float64Var(&o.req.Viewport.Width, "w", 0, "viewport width in the complex plane")
	fs.Float64Var(&o.req.Viewport.Height, "h", 0, "viewport height in the complex plane")
	fs.Float64Var(&o.req.Viewport.Rotation, "rotate", 0, "rotation in radians")
	fs.StringVar(&o.out, "o", "", `output file, directory or "-" for stdout (default: timestamped file)`)
	fs.IntVar(&o.scale, "scale", 1, "integer upscale factor")
	fs.BoolVar(&o.caption, "caption", false, "print the view under the image")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.landmark != "" {
		l, ok := findLandmark(o.landmark)
		if !ok {
			return o, fmt.Errorf("unknown view %q, have %s", o.landmark, landmarkNames())
		}
		o.req.Viewport = l.Viewport.FitAspect(o.req.Width, o.req.Height)
	}
	if o.scale < 1 {
		return o, fmt.Errorf("invalid scale %d", o.scale)
	}
	return o, nil
}

func findLandmark(name string) (mandel.Landmark, bool) {
	for _, l := range mandel.Landmarks {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return mandel.Landmark{}, false
}

func landmarkNames() string {
	names := make([]string, len(mandel.Landmarks))
	for i, l := range mandel.Landmarks {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log.Printf("connecting to %s", o.addr)
	conn, err := net.DialTimeout("tcp", o.addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	c := newClient(conn)
	defer c.Close()

	resp, err := c.GetImage(o.req)
	if err != nil {
		return err
	}
	return write(o, resp, stdout)
}

// write stores the image of resp where o asks for and reports on stderr.
func write(o options, resp mandel.ViewResponse, stdout io.Writer) error {
	img, err := png.Decode(bytes.NewReader(resp.PNG))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	eo := export.Options{Scale: o.scale}
	if o.caption {
		eo.Caption = fmt.Sprintf("%s  iter %d", resp.View, resp.MaxIter)
	}

	p := message.NewPrinter(language.English)
	s := resp.Stats
	summary := p.Sprintf("%dx%d  iter %d  computed %d  cached %d  filled %d  in %s",
		resp.Width, resp.Height, resp.MaxIter, s.Computed, s.Cached, s.Filled, s.Elapsed.Round(time.Millisecond))

	var path string
	var size int
	switch fi, statErr := os.Stat(o.out); {
	case o.out == "-":
		if err := export.Encode(stdout, img, eo); err != nil {
			return err
		}
		log.Print(summary)
		return nil
	case o.out == "" || (statErr == nil && fi.IsDir()):
		if path, err = export.Save(o.out, img, eo); err != nil {
			return err
		}
	default:
		data, err := export.PNG(img, eo)
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.out, data, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		path, size = o.out, len(data)
	}
	if size == 0 {
		if fi, err := os.Stat(path); err == nil {
			size = int(fi.Size())
		}
	}
	log.Printf("%s  saved to %q (%s)", summary, path, humanize.Bytes(uint64(size)))
	return nil
}
