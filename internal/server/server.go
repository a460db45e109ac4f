// Package server exposes the upload, rename and export boundaries over
// HTTP. All state lives in the one in-memory session.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gnusam/sprite-splitter/internal/config"
	"github.com/gnusam/sprite-splitter/internal/detect"
	"github.com/gnusam/sprite-splitter/internal/naming"
	"github.com/gnusam/sprite-splitter/internal/pipeline"
	"github.com/gnusam/sprite-splitter/internal/session"
	"github.com/gnusam/sprite-splitter/internal/sheet"
	"github.com/gnusam/sprite-splitter/internal/sprite"
)

// Server wires the session, the naming queue and the HTTP handlers.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
	queue   *naming.Queue
}

// New builds a server. Naming is enabled only when an identify endpoint
// is configured; without one sprites keep their item_<index> defaults.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		session: session.New(logger),
	}
	if cfg.Naming.Endpoint != "" {
		id := naming.NewHTTPIdentifier(cfg.Naming.Endpoint, cfg.Naming.Timeout, logger)
		s.queue = naming.NewQueue(id, logger)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(s.cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/upload", s.handleUpload)
		api.GET("/sprites", s.handleSprites)
		api.GET("/sprites/:index/image", s.handleSpriteImage)
		api.PUT("/sprites/:index/name", s.handleRename)
		api.GET("/export", s.handleExport)
		api.POST("/reset", s.handleReset)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("cost", time.Since(start)))
	}
}

type errorResponse struct {
	Error    string `json:"error"`
	Guidance string `json:"guidance,omitempty"`
}

type spriteView struct {
	Index         int        `json:"index"`
	SourceBox     detect.Box `json:"source_box"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	State         string     `json:"state"`
	SuggestedName string     `json:"suggested_name,omitempty"`
	UserName      string     `json:"user_name,omitempty"`
	FinalName     string     `json:"final_name"`
}

func viewOf(sp sprite.Sprite) spriteView {
	v := spriteView{
		Index:         sp.Index,
		SourceBox:     sp.SourceBox,
		State:         sp.State.String(),
		SuggestedName: sp.SuggestedName,
		UserName:      sp.UserName,
		FinalName:     sp.FinalName(),
	}
	if sp.Output != nil {
		v.Width = sp.Output.W
		v.Height = sp.Output.H
	}
	return v
}

// handleUpload accepts a sheet, runs the pipeline and replaces the
// current result set.
func (s *Server) handleUpload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "missing image file"})
		return
	}
	if file.Size > s.cfg.Upload.MaxSize {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("file exceeds %d MB limit", s.cfg.Upload.MaxSize/(1024*1024)),
		})
		return
	}

	if ct := file.Header.Get("Content-Type"); ct != "" && !s.isAllowedType(ct) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unsupported content type %s", ct)})
		return
	}

	proc, err := s.processingParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "cannot read upload"})
		return
	}
	defer f.Close()

	src, format, err := sheet.Decode(f)
	if err != nil {
		// Non-image input never reaches the pipeline.
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("sheet uploaded",
		zap.String("filename", file.Filename),
		zap.String("format", format),
		zap.Int("width", src.W),
		zap.Int("height", src.H),
		zap.Int64("size", file.Size))

	res, err := s.session.Process(c.Request.Context(), src, proc, s.queue)
	if err != nil {
		var noRegions *pipeline.NoRegionsError
		if errors.As(err, &noRegions) {
			c.JSON(http.StatusOK, gin.H{
				"sprites":    []spriteView{},
				"background": noRegions.Background,
				"guidance":   "no sprites found; adjust background tolerance or disable background removal",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	views := make([]spriteView, len(res.Sprites))
	for i, sp := range res.Sprites {
		views[i] = viewOf(*sp)
	}
	c.JSON(http.StatusOK, gin.H{
		"run":        res.Generation,
		"sheet":      gin.H{"width": res.SheetW, "height": res.SheetH},
		"background": res.Background,
		"sprites":    views,
	})
}

// processingParams merges per-upload form overrides onto the configured
// defaults, CLI-flag style: only fields present in the form change.
func (s *Server) processingParams(c *gin.Context) (config.Processing, error) {
	p := s.cfg.Defaults

	if v, ok := c.GetPostForm("remove_background"); ok {
		p.RemoveBackground = v == "true"
	}
	if v, ok := c.GetPostForm("background_tolerance"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("bad background_tolerance %q", v)
		}
		p.BackgroundTolerance = f
	}
	if v, ok := c.GetPostForm("homogenize"); ok {
		p.Homogenize = v == "true"
	}
	if v, ok := c.GetPostForm("target_size"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("bad target_size %q", v)
		}
		p.TargetSize = n
	}
	if v, ok := c.GetPostForm("padding_percent"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("bad padding_percent %q", v)
		}
		p.PaddingPercent = f
	}

	return p, p.Validate()
}

func (s *Server) isAllowedType(contentType string) bool {
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

func (s *Server) handleSprites(c *gin.Context) {
	sprites := s.session.Sprites()
	views := make([]spriteView, len(sprites))
	for i, sp := range sprites {
		views[i] = viewOf(sp)
	}
	c.JSON(http.StatusOK, gin.H{"sprites": views})
}

func (s *Server) handleSpriteImage(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad sprite index"})
		return
	}

	sp, ok := s.session.Sprite(index)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no such sprite"})
		return
	}
	if sp.State == sprite.StateError || len(sp.PNG) == 0 {
		c.JSON(http.StatusConflict, errorResponse{Error: "sprite failed to encode", Guidance: sp.Err})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sp.FileName()))
	c.Data(http.StatusOK, "image/png", sp.PNG)
}

func (s *Server) handleRename(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad sprite index"})
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "bad rename body"})
		return
	}

	if err := s.session.Rename(index, body.Name); err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	sp, _ := s.session.Sprite(index)
	c.JSON(http.StatusOK, viewOf(sp))
}

func (s *Server) handleExport(c *gin.Context) {
	data, err := s.session.Archive()
	if err != nil {
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="sprites.zip"`)
	c.Data(http.StatusOK, "application/zip", data)
}

func (s *Server) handleReset(c *gin.Context) {
	s.session.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
