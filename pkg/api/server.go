// Package api provides the REST API server for pianosteps
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/pianosteps/pkg/midifile"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/song"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title PianoSteps API
// @version 1.0
// @description API for turning MIDI files into fingered practice steps
// @host localhost:8080
// @BasePath /api/v1

const (
	// DefaultMaxUpload is the largest accepted MIDI upload
	DefaultMaxUpload = 8 << 20
	// DefaultLibrarySize is the number of songs kept in memory
	DefaultLibrarySize = 64
)

// Server serves the song library over HTTP
type Server struct {
	library   *Library
	log       *zap.Logger
	maxUpload int64
	engine    *gin.Engine
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log.Named("api")
		}
	}
}

// WithLibrary replaces the song library
func WithLibrary(l *Library) Option {
	return func(s *Server) {
		s.library = l
	}
}

// WithMaxUpload limits the accepted upload size in bytes
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		s.maxUpload = n
	}
}

// NewServer builds the routes
func NewServer(opts ...Option) *Server {
	s := &Server{
		library:   NewLibrary(DefaultLibrarySize),
		log:       zap.NewNop(),
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/songs", s.createSong)
		v1.GET("/songs/:id", s.getSong)
		v1.GET("/songs/:id/steps", s.getSteps)
		v1.GET("/songs/:id/export", s.exportSong)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.engine = r
	return s
}

// Handler returns the routes wrapped in CORS handling
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.engine)
}

// Library returns the server's song library
func (s *Server) Library() *Library {
	return s.library
}

// StartServer starts the API server on the specified port
func StartServer(port int, opts ...Option) error {
	s := NewServer(opts...)
	addr := fmt.Sprintf(":%d", port)
	s.log.Info("starting API server", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()))
	}
}

// SongSummary describes an uploaded song
type SongSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Duration      float64 `json:"duration"`
	Tempo         float64 `json:"tempo"`
	TimeSignature string  `json:"time_signature"`
	Measures      int     `json:"measures"`
	LeftNotes     int     `json:"left_notes"`
	RightNotes    int     `json:"right_notes"`
	Steps         int     `json:"steps"`
}

// NoteJSON is one note of a step
type NoteJSON struct {
	Pitch    uint8   `json:"pitch"`
	Name     string  `json:"name"`
	Hand     string  `json:"hand"`
	Finger   uint8   `json:"finger"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Velocity float64 `json:"velocity"`
	Measure  int     `json:"measure"`
}

// StepJSON is one practice step
type StepJSON struct {
	Index int        `json:"index"`
	Time  float64    `json:"time"`
	Notes []NoteJSON `json:"notes"`
}

func summarize(id string, sg *song.Song) SongSummary {
	return SongSummary{
		ID:            id,
		Name:          sg.Name,
		Duration:      sg.TotalDuration,
		Tempo:         sg.Tempo,
		TimeSignature: sg.TimeSignature.String(),
		Measures:      sg.MeasureCount,
		LeftNotes:     len(sg.Tracks.Left),
		RightNotes:    len(sg.Tracks.Right),
		Steps:         len(sg.Steps(model.Both)),
	}
}

func stepsJSON(steps []model.Step) []StepJSON {
	out := make([]StepJSON, len(steps))
	for i, st := range steps {
		notes := make([]NoteJSON, len(st.Notes))
		for j, n := range st.Notes {
			notes[j] = NoteJSON{
				Pitch:    n.Pitch,
				Name:     model.NoteName(n.Pitch),
				Hand:     n.Hand.String(),
				Finger:   n.Finger,
				Start:    n.Start,
				Duration: n.Duration,
				Velocity: n.Velocity,
				Measure:  n.Measure,
			}
		}
		out[i] = StepJSON{Index: i, Time: st.Time, Notes: notes}
	}
	return out
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pianosteps",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the accepted upload formats and hand modes
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":    []string{string(midifile.FormatMIDI)},
		"extensions": midifile.Extensions(),
		"hands":      []string{model.Both.String(), model.LeftOnly.String(), model.RightOnly.String()},
	})
}

// createSong godoc
// @Summary Upload a MIDI file
// @Description Decodes a MIDI file, assigns hands and fingers and stores the song
// @Tags songs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Param split query int false "Split pitch between hands (default: 60)"
// @Param policy query string false "Hand policy: pitch or track (default: pitch)"
// @Success 201 {object} SongSummary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/songs [post]
func (s *Server) createSong(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	opts, err := songOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	sg, err := song.Parse(name, data, opts...)
	if err != nil {
		s.log.Info("rejected upload", zap.String("file", header.Filename), zap.Error(err))
		status := http.StatusInternalServerError
		var decodeErr *midifile.DecodeError
		if errors.As(err, &decodeErr) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	id := s.library.Add(sg)
	s.log.Info("song stored", zap.String("id", id), zap.String("song", sg.Name))
	c.JSON(http.StatusCreated, summarize(id, sg))
}

func songOptions(c *gin.Context) ([]song.Option, error) {
	var opts []song.Option
	if split := c.Query("split"); split != "" {
		pitch, err := strconv.Atoi(split)
		if err != nil || pitch < 0 || pitch > 127 {
			return nil, fmt.Errorf("invalid split pitch %q", split)
		}
		opts = append(opts, song.WithSplitPitch(uint8(pitch)))
	}
	switch c.DefaultQuery("policy", "pitch") {
	case "pitch":
	case "track":
		opts = append(opts, song.WithTrackSplit())
	default:
		return nil, fmt.Errorf("unknown hand policy %q", c.Query("policy"))
	}
	return opts, nil
}

func (s *Server) lookup(c *gin.Context) (*song.Song, bool) {
	sg, ok := s.library.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Song not found"})
	}
	return sg, ok
}

func handMode(c *gin.Context) (model.HandMode, bool) {
	mode, err := model.ParseHandMode(c.DefaultQuery("hand", "both"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return mode, false
	}
	return mode, true
}

// getSong godoc
// @Summary Song summary
// @Tags songs
// @Produce json
// @Param id path string true "Song id"
// @Success 200 {object} SongSummary
// @Failure 404 {object} map[string]string
// @Router /api/v1/songs/{id} [get]
func (s *Server) getSong(c *gin.Context) {
	sg, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, summarize(c.Param("id"), sg))
}

// getSteps godoc
// @Summary Practice steps
// @Description Returns the step sequence for the selected hands, with fingering
// @Tags songs
// @Produce json
// @Param id path string true "Song id"
// @Param hand query string false "left, right or both (default: both)"
// @Success 200 {array} StepJSON
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/songs/{id}/steps [get]
func (s *Server) getSteps(c *gin.Context) {
	sg, ok := s.lookup(c)
	if !ok {
		return
	}
	mode, ok := handMode(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stepsJSON(sg.Steps(mode)))
}

// exportSong godoc
// @Summary Export hands as MIDI
// @Description Encodes the selected hands as a Standard MIDI File
// @Tags songs
// @Produce audio/midi
// @Param id path string true "Song id"
// @Param hand query string false "left, right or both (default: both)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/songs/{id}/export [get]
func (s *Server) exportSong(c *gin.Context) {
	sg, ok := s.lookup(c)
	if !ok {
		return
	}
	mode, ok := handMode(c)
	if !ok {
		return
	}
	data, err := sg.Export(mode)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	outputName := fmt.Sprintf("%s-%s.mid", sg.Name, mode)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, "audio/midi", data)
}
