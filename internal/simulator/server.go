// Package simulator emulates the kitchen ESP32 over HTTP so the hub can be
// run and tested without hardware.
package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgNotFound       = "Endpoint not found"
	msgSimulatedFault = "Simulated network failure"
)

const (
	maxHeaderBytes    = 1 << 20
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Options tune the simulated network.
type Options struct {
	Latency      time.Duration  // added before every /api response
	FailureRatio float64        // share of /api requests answered with 503, 0..1
	Rand         func() float64 // nil uses math/rand
	Logger       *logger.Logger
}

// Server serves a Device over the firmware's HTTP API.
type Server struct {
	device     *Device
	opts       Options
	log        *logger.Logger
	httpServer *http.Server
}

// New builds a Server for device.
func New(device *Device, opts Options) *Server {
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.FailureRatio < 0 {
		opts.FailureRatio = 0
	}
	if opts.FailureRatio > 1 {
		opts.FailureRatio = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Server{device: device, opts: opts, log: log.Named("esp32sim")}
}

// Device returns the simulated device.
func (s *Server) Device() *Device { return s.device }

// InitRoutes builds the gin router.
func (s *Server) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLog, cors)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api", s.lossyNetwork)
	{
		api.GET("/lights", s.getLights)
		api.POST("/lights/:light/:action", s.setLight)
		api.GET("/timer", s.getTimer)
		api.POST("/timer/:action", s.timerCommand)
	}

	sim := router.Group("/sim")
	{
		sim.POST("/button/lights", s.pressLights)
		sim.POST("/button/timer", s.pressTimer)
	}

	router.NoRoute(notFound)
	return router
}

// Run listens on addr ("8080" or ":8080") until Shutdown.
func (s *Server) Run(addr string) error {
	if addr != "" && !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.InitRoutes(),
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, letting in-flight requests complete.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

type lightCommand struct {
	Light  string `uri:"light" binding:"required,oneof=redLight greenLight"`
	Action string `uri:"action" binding:"required,oneof=on off"`
}

type timerCommand struct {
	Action string `uri:"action" binding:"required,oneof=start pause stop"`
}

func (s *Server) getLights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "lights": s.device.Lights()})
}

func (s *Server) setLight(c *gin.Context) {
	var cmd lightCommand
	if err := c.ShouldBindUri(&cmd); err != nil {
		notFound(c)
		return
	}
	if err := s.device.SetLight(cmd.Light, cmd.Action); err != nil {
		notFound(c)
		return
	}
	s.log.Infow("light switched", "light", cmd.Light, "value", cmd.Action)
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Light " + cmd.Light + " turned " + strings.ToUpper(cmd.Action),
		"lights":  s.device.Lights(),
	})
}

func (s *Server) getTimer(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "timer": s.device.Timer()})
}

func (s *Server) timerCommand(c *gin.Context) {
	var cmd timerCommand
	if err := c.ShouldBindUri(&cmd); err != nil {
		notFound(c)
		return
	}
	if err := s.device.TimerCommand(cmd.Action); err != nil {
		notFound(c)
		return
	}
	s.log.Infow("timer command", "command", cmd.Action, "timer", s.device.Timer())
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Timer " + cmd.Action,
		"timer":   s.device.Timer(),
	})
}

func (s *Server) pressLights(c *gin.Context) {
	lights := s.device.PressLightsButton()
	s.log.Infow("lights button pressed", "red", lights[RedLight], "green", lights[GreenLight])
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "Lights button pressed", "lights": lights})
}

func (s *Server) pressTimer(c *gin.Context) {
	timer := s.device.PressTimerButton()
	s.log.Infow("timer button pressed", "timer", timer)
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "Timer button pressed", "timer": timer})
}

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": statusError, "message": msgNotFound})
}
