// Package server implements the preview server behind `quill serve`: it
// renders the target document per request, injects a live-reload script,
// and pushes reload events to connected browsers when watched files change.
package server

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/quillforge/quill/internal/config"
	"github.com/quillforge/quill/internal/document"
	"github.com/quillforge/quill/internal/errors"
	"github.com/quillforge/quill/internal/logging"
	"github.com/quillforge/quill/internal/registry"
	"github.com/quillforge/quill/internal/watcher"
)

// PreviewServer serves one document with live reload.
type PreviewServer struct {
	cfg     *config.Config
	log     logging.Logger
	reg     *registry.Registry
	docPath string

	hub *wsHub
}

// New creates a preview server for the document at docPath.
func New(cfg *config.Config, log logging.Logger, reg *registry.Registry, docPath string) *PreviewServer {
	return &PreviewServer{
		cfg:     cfg,
		log:     log.WithComponent("server"),
		reg:     reg,
		docPath: docPath,
		hub:     newWSHub(log),
	}
}

// Start runs the server until ctx is done.
func (s *PreviewServer) Start(ctx context.Context) error {
	fw, err := watcher.New(
		time.Duration(s.cfg.Watch.DebounceMillis)*time.Millisecond,
		watcher.DocumentFilter,
		func(events []watcher.Event) {
			for _, ev := range events {
				s.log.Info(ctx, "file changed", "path", ev.Path, "op", ev.Op.String())
			}
			s.hub.broadcast(ctx, "reload")
		},
	)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	doc, err := document.Load(s.docPath)
	if err != nil {
		return err
	}
	if err := fw.Add(doc.Dir()); err != nil {
		return fmt.Errorf("watching %s: %w", doc.Dir(), err)
	}
	go fw.Start(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDocument)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := net.JoinHostPort(s.cfg.Server.Host, fmt.Sprintf("%d", s.cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "preview server listening", "addr", "http://"+addr, "document", s.docPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *PreviewServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	collector := errors.NewCollector()
	var buf bytes.Buffer
	err := s.renderDocument(r.Context(), collector, &buf)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		// The page still loads: the overlay shows the diagnostics and the
		// reload script keeps the browser connected for the fix.
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, overlayPage(collector.Diags(), err))
		return
	}
	fmt.Fprint(w, injectReloadScript(buf.String()))
}

func (s *PreviewServer) renderDocument(ctx context.Context, collector *errors.Collector, w *bytes.Buffer) error {
	doc, err := document.Load(s.docPath)
	if err != nil {
		collector.AddError(err)
		return err
	}
	defaults := s.cfg.RenderOptions()
	return doc.Render(ctx, s.reg, w, document.RenderOptions{
		Collector:        collector,
		CiteStyle:        defaults.CiteStyle,
		SortRefsByAuthor: defaults.SortRefsByAuthor,
		Lang:             defaults.Lang,
		Stylesheet:       defaults.Stylesheet,
		Bibliography:     defaults.Bibliography,
	})
}

// reloadScript opens the live-reload socket and reloads on any message.
const reloadScript = `<script>
(function () {
	var proto = location.protocol === "https:" ? "wss://" : "ws://";
	function connect() {
		var ws = new WebSocket(proto + location.host + "/ws");
		ws.onmessage = function () { location.reload(); };
		ws.onclose = function () { setTimeout(connect, 1000); };
	}
	connect();
})();
</script>`

// injectReloadScript places the live-reload script before </body>, or
// appends it when the document has no closing body tag.
func injectReloadScript(html string) string {
	if idx := strings.LastIndex(html, "</body>"); idx >= 0 {
		return html[:idx] + reloadScript + "\n" + html[idx:]
	}
	return html + reloadScript
}
