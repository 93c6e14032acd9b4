package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tajtiattila/pixelmap/layout"
	"github.com/tajtiattila/pixelmap/scatter"
	"github.com/tajtiattila/pixelmap/source/jsonfile"
)

const (
	defaultThumbSize = 128
	maxThumbSize     = 1024
)

type server struct {
	lib    *Library
	cfg    scatter.Config // default render settings
	images *imageMap
}

// NewHandler returns the HTTP API serving the datasets of lib.
func NewHandler(lib *Library, cfg scatter.Config) http.Handler {
	s := &server{
		lib:    lib,
		cfg:    cfg,
		images: newImageMap(lib, 64),
	}

	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	api := r.Group("/api")
	api.GET("/datasets", s.datasets)
	api.GET("/render/:name", s.renderJSON)
	api.GET("/render/:name/png", s.renderPNG)
	api.GET("/render/:name/thumb", s.renderThumb)
	api.POST("/render", s.renderInline)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("requestId", id)
		c.Header("X-Request-Id", id)
		start := time.Now()
		c.Next()
		log.Printf("%s %s %s %d %v", id, c.Request.Method, c.Request.URL, c.Writer.Status(), time.Since(start))
	}
}

func (s *server) datasets(c *gin.Context) {
	c.JSON(http.StatusOK, s.lib.Datasets())
}

type renderResponse struct {
	Name   string         `json:"name,omitempty"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Pixels []layout.Pixel `json:"pixels"`
}

func (s *server) renderJSON(c *gin.Context) {
	cfg, ok := s.renderConfig(c)
	if !ok {
		return
	}
	name := c.Param("name")
	px, _, err := s.lib.Render(name, cfg)
	if err != nil {
		handleRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderResponse{name, cfg.CanvasWidth, cfg.CanvasHeight, px})
}

func (s *server) renderPNG(c *gin.Context) {
	s.serveImage(c, 0)
}

func (s *server) renderThumb(c *gin.Context) {
	var eh errh
	size := defaultThumbSize
	if v, ok := c.GetQuery("size"); ok {
		size = eh.atoi(v)
		if eh.err == nil && (size < 1 || size > maxThumbSize) {
			eh.err = fmt.Errorf("size %d out of range", size)
		}
	}
	if eh.handleError(c, "thumbnail size invalid") {
		return
	}
	s.serveImage(c, size)
}

func (s *server) serveImage(c *gin.Context, thumb int) {
	cfg, ok := s.renderConfig(c)
	if !ok {
		return
	}
	data, mt, err := s.images.Get(c.Param("name"), cfg, thumb)
	if err != nil {
		handleRenderError(c, err)
		return
	}
	http.ServeContent(c.Writer, c.Request, "render.png", mt, bytes.NewReader(data))
}

// renderInline renders the JSON point array in the request body.
func (s *server) renderInline(c *gin.Context) {
	cfg, ok := s.renderConfig(c)
	if !ok {
		return
	}
	pts, err := jsonfile.Decode("request", c.Request.Body)
	if err != nil {
		handleRenderError(c, inputError(err))
		return
	}
	px, err := renderPoints(c.GetString("requestId"), cfg, pts)
	if err != nil {
		handleRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderResponse{"", cfg.CanvasWidth, cfg.CanvasHeight, px})
}

// renderConfig applies query parameter overrides to the default settings.
func (s *server) renderConfig(c *gin.Context) (scatter.Config, bool) {
	cfg := s.cfg
	var eh errh
	if v, ok := c.GetQuery("width"); ok {
		cfg.CanvasWidth = eh.atoi(v)
	}
	if v, ok := c.GetQuery("height"); ok {
		cfg.CanvasHeight = eh.atoi(v)
	}
	if v, ok := c.GetQuery("maxKurtosis"); ok {
		cfg.MaxKurtosis = eh.parseFloat(v)
	}
	if v, ok := c.GetQuery("maxLevel"); ok {
		cfg.MaxLevel = eh.atoi(v)
	}
	if v, ok := c.GetQuery("outlierEmphasis"); ok {
		cfg.OutlierEmphasis = eh.parseFloat(v)
	}
	if v, ok := c.GetQuery("nonOutlierMass"); ok {
		cfg.NonOutlierMass = eh.parseFloat(v)
	}
	if v, ok := c.GetQuery("initLevelMode"); ok {
		cfg.InitLevelMode = v
	}
	if v, ok := c.GetQuery("initLevel"); ok {
		cfg.InitLevel = eh.atoi(v)
	}
	if v, ok := c.GetQuery("densityCulling"); ok {
		cfg.DensityCulling = eh.parseBool(v)
	}
	if eh.handleError(c, "render parameter invalid") {
		return cfg, false
	}
	if err := cfg.Validate(); err != nil {
		handleRenderError(c, err)
		return cfg, false
	}
	return cfg, true
}

func handleRenderError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errNoDataset):
		code = http.StatusNotFound
	case scatter.IsInput(err), scatter.IsConfig(err):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		log.Printf("%s: %v", c.GetString("requestId"), err)
	}
	c.String(code, err.Error())
}

type errh struct {
	err error
}

func (e *errh) atoi(s string) (i int) {
	if e.err != nil {
		return
	}
	i, e.err = strconv.Atoi(s)
	return i
}

func (e *errh) parseFloat(s string) (v float64) {
	if e.err != nil {
		return
	}
	v, e.err = strconv.ParseFloat(s, 64)
	return v
}

func (e *errh) parseBool(s string) (v bool) {
	if e.err != nil {
		return
	}
	v, e.err = strconv.ParseBool(s)
	return v
}

func (e *errh) handleError(c *gin.Context, errmsg string) bool {
	if e.err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("%s: %v", errmsg, e.err))
		return true
	}
	return false
}
