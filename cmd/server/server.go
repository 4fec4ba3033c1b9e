package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	mandel "github.com/marben/mandel_explorer"
	"github.com/marben/mandel_explorer/bookmarks"
	"github.com/marben/mandel_explorer/config"
)

// main is the entry point for the Mandelbrot server.
// Clients connect over tcp or websocket and ask for rendered views; every
// connection gets its own engine.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	defaultPath, _ := config.Path()
	cfgPath := flag.String("config", defaultPath, "config file")
	tcpAddr := flag.String("tcp", "", "tcp listen address (overrides config)")
	httpAddr := flag.String("http", "", "http listen address (overrides config)")
	static := flag.String("static", "", "directory served over http (overrides config)")
	workers := flag.Int("workers", -1, "workers per connection, 0 uses GOMAXPROCS (overrides config)")
	verbose := flag.Bool("v", false, "log engine passes")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *tcpAddr != "" {
		cfg.TCPAddr = *tcpAddr
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *static != "" {
		cfg.StaticDir = *static
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if *verbose {
		mandel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	store, err := bookmarks.Open(cfg.BookmarksDB)
	if err != nil {
		log.Printf("bookmarks disabled: %v", err)
		store = nil
	} else {
		defer store.Close()
		if _, err := store.Seed(mandel.Landmarks, mandel.HomeMaxIter); err != nil {
			log.Printf("seed bookmarks: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := newServer(cfg, store)

	// TCP
	tcpListener, err := net.Listen("tcp", cfg.TCPAddr)
	if err != nil {
		return fmt.Errorf("net.Listen: %w", err)
	}
	log.Printf("tcp listening on %s", tcpListener.Addr())

	// WEBSOCKET
	// httpServer provides index.html, main.wasm along with websocket endpoint
	websocketListener, httpServer := webServer(ctx, cfg.HTTPAddr, cfg.StaticDir)

	errCh := make(chan error, 3)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("httpServer: %w", err)
		}
	}()
	// one server serves both tcp and websocket connections
	go func() { errCh <- srv.serve(ctx, tcpListener) }()
	go func() { errCh <- srv.serve(ctx, websocketListener) }()

	log.Printf("mb server waiting for tcp and websocket connections")
	select {
	case <-ctx.Done():
	case err = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		log.Printf("http shutdown: %v", serr)
	}
	tcpListener.Close()
	websocketListener.Close()
	srv.wait()
	return err
}

// server runs a session for every accepted connection.
type server struct {
	cfg   config.Config
	store *bookmarks.Store

	wg sync.WaitGroup
}

func newServer(cfg config.Config, store *bookmarks.Store) *server {
	return &server{cfg: cfg, store: store}
}

// serve accepts connections from l until l is closed or ctx ends.
// It returns nil in both cases.
func (s *server) serve(ctx context.Context, l net.Listener) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept on %s: %w", l.Addr(), err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log.Printf("got connection from: %s", conn.RemoteAddr())

	sess := newSession(conn, newImgProvider(s.cfg, s.store))
	if err := sess.serve(ctx); err != nil {
		log.Printf("err: session %s: %v", conn.RemoteAddr(), err)
		return
	}
	log.Printf("%s disconnected", conn.RemoteAddr())
}

// wait blocks until every session has ended.
func (s *server) wait() { s.wg.Wait() }
