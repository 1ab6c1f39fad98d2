// Package controller sets up the env of the DIO engine daemon.
package controller

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robotalks/dio.go/pkg/board"
	"github.com/robotalks/dio.go/pkg/dio"
	"github.com/robotalks/dio.go/pkg/env"
	fx "github.com/robotalks/dio.go/pkg/framework"
	"github.com/robotalks/dio.go/pkg/hw/periph"
	"github.com/robotalks/dio.go/pkg/hw/sim"
	"github.com/robotalks/dio.go/pkg/rtapp"
	"github.com/robotalks/dio.go/pkg/transport"
	"github.com/robotalks/dio.go/pkg/transport/endpoint"
)

// DeviceType is the registered type of DIO devices.
const DeviceType = "dio"

// Hardware backends.
const (
	HardwareSim    = "sim"
	HardwarePeriph = "periph"
)

// Config provides options to setup the engine.
type Config struct {
	Info transport.Info

	// Listen is a comma-separated list of URLs to serve requests on.
	// e.g. tcp://:7700,ws://:7780/dio
	Listen string
	// MQTTBrokerURL registers the device on an MQTT broker when set.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// BoardFile is the YAML pin map, the default board if empty.
	BoardFile string
	// Hardware selects the backend, sim or periph.
	Hardware string

	TickInterval   time.Duration
	StatusInterval time.Duration
}

var defaultConfig = Config{
	Info: transport.Info{
		Ref: transport.Ref{Type: DeviceType},
		Meta: transport.Meta{
			Description: "digital I/O engine",
			Version:     rtapp.Version,
		},
	},
	Listen:         "tcp://:7700",
	Hardware:       HardwareSim,
	TickInterval:   fx.DefaultInterval,
	StatusInterval: rtapp.DefaultStatusInterval,
}

func init() {
	if val := os.Getenv("DIO_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("DIO_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("DIO_BOARD"); val != "" {
		defaultConfig.BoardFile = val
	}
	if val := os.Getenv("DIO_HW"); val != "" {
		defaultConfig.Hardware = val
	}
	if val := os.Getenv("DIO_ID"); val != "" {
		defaultConfig.Info.Ref.ID = val
	} else {
		defaultConfig.Info.Ref.ID = env.MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Info.Ref.ID, "id", defaultConfig.Info.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Comma-separated URLs to serve on")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.BoardFile, "board", defaultConfig.BoardFile, "Board YAML file")
	flag.StringVar(&defaultConfig.Hardware, "hw", defaultConfig.Hardware, "Hardware backend: sim or periph")
	flag.DurationVar(&defaultConfig.TickInterval, "tick", defaultConfig.TickInterval, "Engine tick interval")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Status publishing interval, 0 to disable")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ListenURLs returns all URLs to serve on, including the MQTT broker.
func (c *Config) ListenURLs() []string {
	var urls []string
	for _, u := range strings.Split(c.Listen, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if c.MQTTBrokerURL != "" {
		urls = append(urls, c.MQTTBrokerURL)
	}
	return urls
}

// Env is the assembled engine.
type Env struct {
	Config    *Config
	Board     dio.Board
	Hardware  dio.Hardware
	Ports     *dio.PortManager
	Service   *rtapp.Service
	Listeners []endpoint.Listener
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("device type and id must be specified")
	}
	b, err := board.Load(c.BoardFile)
	if err != nil {
		return nil, fmt.Errorf("load board error: %v", err)
	}
	e := &Env{Config: c, Board: b}
	switch c.Hardware {
	case HardwareSim:
		e.Hardware = sim.New()
	case HardwarePeriph:
		if e.Hardware, err = periph.Open(b); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown hardware %q", c.Hardware)
	}
	e.Ports = dio.NewPortManager(b, e.Hardware)
	e.Service = rtapp.NewService(e.Ports)
	e.Service.StatusInterval = c.StatusInterval

	info := c.Info
	info.Meta.Board = b.Name
	for _, u := range c.ListenURLs() {
		l, err := endpoint.Listen(u, info)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("listen %s error: %v", u, err)
		}
		e.Listeners = append(e.Listeners, l)
	}
	if len(e.Listeners) == 0 {
		e.Close()
		return nil, fmt.Errorf("at least one listen URL is required")
	}
	e.Service.AddPublishers(endpoint.Publishers(e.Listeners...)...)
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// AddToLoop adds the service and listeners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Interval = e.Config.TickInterval
	loop.Add(e.Service)
	for _, l := range e.Listeners {
		loop.AddRunnable(l)
	}
}

// Close releases the listeners and the hardware.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for _, l := range e.Listeners {
		if closer, ok := l.(io.Closer); ok {
			errs.Add(closer.Close())
		}
	}
	if closer, ok := e.Hardware.(io.Closer); ok {
		errs.Add(closer.Close())
	}
	return errs.Aggregate()
}
