package restserver

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"image/color"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/internal/render"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/pkg/config"
)

var (
	//go:embed templates
	content embed.FS
)

// Controller represents the REST server controller
type Controller struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	cfg       config.ConfigData
	source    loader.Source
	Server    http.Server
	templates *template.Template
	logger    *zap.SugaredLogger
	handlers  *Handlers
}

// NewController creates a new REST server controller serving tracks from source
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg config.ConfigData, source loader.Source, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:    ctx,
		wg:     wg,
		source: source,
		logger: logger,
	}

	for _, key := range cfg.FillDefaults() {
		logger.Infof("%s not provided; using default", key)
	}
	ctrl.cfg = cfg

	if _, err := style.RampByName(cfg.Chart.Ramp); err != nil {
		return nil, fmt.Errorf("chart.ramp: %w", err)
	}

	leading := color.Color(style.LeadingColor)
	if cfg.Chart.LeadingColor != "" {
		c, err := style.ParseHex(cfg.Chart.LeadingColor)
		if err != nil {
			return nil, fmt.Errorf("chart.leading_color: %w", err)
		}
		leading = c
	}

	tmpl, err := template.ParseFS(content, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	ctrl.templates = tmpl

	ctrl.handlers = NewHandlers(ctrl, leading)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", cfg.Server.ListenAddr, cfg.Server.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.cfg.Server.Cert != "" && c.cfg.Server.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.cfg.Server.Cert, c.cfg.Server.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// chartOptions returns the configured chart defaults
func (c *Controller) chartOptions() render.Options {
	return render.Options{
		Width:     render.Pixels(c.cfg.Chart.WidthPx),
		Height:    render.Pixels(c.cfg.Chart.HeightPx),
		LineWidth: vg.Points(c.cfg.Chart.LineWidth),
	}
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	// The root group is named "." and must survive path cleaning.
	router.SkipClean(true)
	router.Use(log.HTTPMiddleware(c.logger))

	get := func(path string, h http.HandlerFunc) {
		router.HandleFunc(path, h).Methods(http.MethodGet)
	}

	get("/", c.handlers.ServeGallery)
	get("/groups", c.handlers.GetGroups)
	get("/groups/{group:.+}", c.handlers.ServeGroup)

	// Image routes are registered before their HTML counterparts, whose
	// patterns would otherwise swallow the extension.
	get("/tracks/{group:.+}/{track:[^/]+}.png", c.handlers.GetTrackPNG)
	get("/tracks/{group:.+}/{track:[^/]+}", c.handlers.ServeTrack)

	get("/compare/{group:.+}/delta", c.handlers.GetDelta)
	get("/compare/{group:.+}.png", c.handlers.GetComparePNG)
	get("/compare/{group:.+}", c.handlers.ServeCompare)

	get("/demo/line", c.handlers.GetDemoLine)
	get("/demo/var-width-line", c.handlers.GetDemoVarWidthLine)
	get("/demo/derivative", c.handlers.GetDemoDerivative)

	return router
}
