// Package api provides the REST API server for midisurface
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/james-see/midisurface/pkg/surface"
	"github.com/james-see/midisurface/pkg/surface/devices"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title MIDI Surface API
// @version 1.0
// @description API for mapping MIDI control surface positions to rendering parameters
// @host localhost:8080
// @BasePath /api/v1

// Server serves presets and parameter sets over HTTP
type Server struct {
	registry *devices.Registry
	store    *surface.Store
}

// NewServer creates a server. store holds live values and may be nil.
func NewServer(registry *devices.Registry, store *surface.Store) *Server {
	if registry == nil {
		registry = devices.Default()
	}
	return &Server{registry: registry, store: store}
}

// StartServer starts the API server on the specified port
func StartServer(port int, registry *devices.Registry, store *surface.Store) error {
	return NewServer(registry, store).Router(gin.Default()).Run(fmt.Sprintf(":%d", port))
}

// Router registers all routes on r and returns it
func (s *Server) Router(r *gin.Engine) *gin.Engine {
	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/devices", s.listDevices)
		v1.GET("/devices/:name", s.getDevice)
		v1.POST("/resolve", s.resolve)
		v1.POST("/lookup", s.lookup)
		v1.POST("/parameters", s.parameters)
		v1.GET("/live/:name", s.live)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
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
		"service": "midisurface",
	})
}

// listDevices godoc
// @Summary List device presets
// @Description Returns every registered control surface preset
// @Tags devices
// @Produce json
// @Success 200 {object} map[string][]DeviceInfo
// @Router /api/v1/devices [get]
func (s *Server) listDevices(c *gin.Context) {
	presets := s.registry.Presets()
	out := make([]DeviceInfo, 0, len(presets))
	for _, p := range presets {
		out = append(out, deviceInfo(p))
	}
	c.JSON(http.StatusOK, gin.H{"devices": out})
}

// getDevice godoc
// @Summary Get a device preset
// @Description Returns one preset by device name or alias
// @Tags devices
// @Produce json
// @Param name path string true "Device name or alias"
// @Success 200 {object} DeviceInfo
// @Failure 404 {object} map[string]string
// @Router /api/v1/devices/{name} [get]
func (s *Server) getDevice(c *gin.Context) {
	preset, ok := s.preset(c, c.Param("name"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, deviceInfo(preset))
}

// resolve godoc
// @Summary Resolve a control identifier
// @Description Converts a two-digit column/row identifier into the device's control number
// @Tags mapping
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Device and control"
// @Success 200 {object} ResolveResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/resolve [post]
func (s *Server) resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preset, ok := s.preset(c, req.Device)
	if !ok {
		return
	}

	number, err := surface.ResolveControlNumber(surface.ControlID(req.Control), preset.Layout)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ResolveResponse{
		Device:  preset.Name(),
		Control: req.Control,
		Number:  number,
	})
}

// lookup godoc
// @Summary Look up a control value
// @Description Returns the value of a control from the supplied values, or the default when absent
// @Tags mapping
// @Accept json
// @Produce json
// @Param request body LookupRequest true "Device, control and values"
// @Success 200 {object} LookupResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/lookup [post]
func (s *Server) lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preset, ok := s.preset(c, req.Device)
	if !ok {
		return
	}

	def := surface.DefaultValue
	if req.Default != nil {
		def = *req.Default
	}
	values, err := snapshot(preset, req.Values, req.Controls)
	if err != nil {
		respondError(c, err)
		return
	}

	v, err := surface.Lookup(preset.Name(), surface.ControlID(req.Control), preset.Layout, values, def)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LookupResponse{Device: preset.Name(), Control: req.Control, Value: v})
}

// parameters godoc
// @Summary Compute a parameter set
// @Description Applies a preset's formulas to the supplied control values
// @Tags mapping
// @Accept json
// @Produce json
// @Param request body ParametersRequest true "Device and values"
// @Success 200 {object} ParametersResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/parameters [post]
func (s *Server) parameters(c *gin.Context) {
	var req ParametersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	preset, ok := s.preset(c, req.Device)
	if !ok {
		return
	}

	values, err := snapshot(preset, req.Values, req.Controls)
	if err != nil {
		respondError(c, err)
		return
	}
	_, params, err := preset.Apply(values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ParametersResponse{Device: preset.Name(), Parameters: params})
}

// live godoc
// @Summary Live parameter set
// @Description Computes a preset's parameters from the values received over MIDI
// @Tags mapping
// @Produce json
// @Param name path string true "Device name or alias"
// @Success 200 {object} ParametersResponse
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/live/{name} [get]
func (s *Server) live(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no live input configured"})
		return
	}
	preset, ok := s.preset(c, c.Param("name"))
	if !ok {
		return
	}

	snap := s.store.Snapshot()
	_, params, err := preset.Apply(snap)
	if err != nil {
		respondError(c, err)
		return
	}

	values := make(map[int]float64)
	for key, v := range snap {
		if key.Device == preset.Name() {
			values[key.Control] = v
		}
	}
	c.JSON(http.StatusOK, ParametersResponse{
		Device:     preset.Name(),
		Parameters: params,
		Values:     values,
	})
}

func (s *Server) preset(c *gin.Context, name string) (*surface.Preset, bool) {
	preset, err := s.registry.Get(name)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return preset, true
}

// snapshot builds a value map from flat control numbers and from
// two-digit control identifiers
func snapshot(preset *surface.Preset, values map[int]float64, controls map[string]float64) (surface.Values, error) {
	snap := make(surface.Values, len(values)+len(controls))
	for number, v := range values {
		snap[surface.Key{Device: preset.Name(), Control: number}] = v
	}
	for id, v := range controls {
		number, err := surface.ResolveControlNumber(surface.ControlID(id), preset.Layout)
		if err != nil {
			return nil, err
		}
		snap[surface.Key{Device: preset.Name(), Control: number}] = v
	}
	return snap, nil
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, devices.ErrUnknownDevice):
		status = http.StatusNotFound
	case errors.Is(err, surface.ErrInvalidIdentifier),
		errors.Is(err, surface.ErrInvalidColumn),
		errors.Is(err, surface.ErrRowOutOfRange):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
