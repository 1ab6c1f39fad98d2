// Package connector sets up connections from tools to DIO devices.
package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/robotalks/dio.go/pkg/client"
	"github.com/robotalks/dio.go/pkg/transport"
	"github.com/robotalks/dio.go/pkg/transport/endpoint"
	"github.com/robotalks/dio.go/pkg/transport/mqtt"
)

// Config provides common options to connect devices.
type Config struct {
	// URL locates the device or the registry.
	// e.g. tcp://host:7700, ws://host:7780/dio, mqtt://host:1883/prefix
	URL string
	// Ref selects the device on a registry. An empty ID selects the
	// only registered device.
	Ref transport.Ref
	// Timeout of each request.
	Timeout time.Duration
}

var defaultConfig = Config{
	URL:     "tcp://localhost:7700",
	Ref:     transport.Ref{Type: "dio"},
	Timeout: client.DefaultTimeout,
}

func init() {
	if val := os.Getenv("DIO_URL"); val != "" {
		defaultConfig.URL = val
	}
	if val := os.Getenv("DIO_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "url", defaultConfig.URL, "Device or registry URL")
	flag.StringVar(&defaultConfig.Ref.ID, "id", defaultConfig.Ref.ID, "Device ID on registry")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Request timeout")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Connect connects the device.
func (c *Config) Connect(ctx context.Context) (*client.Client, error) {
	conn, err := endpoint.Dial(ctx, c.URL, c.Ref)
	if err != nil {
		return nil, err
	}
	cli := client.New(conn)
	cli.Timeout = c.Timeout
	return cli, nil
}

// MustConnect connects the device and fails on error.
func (c *Config) MustConnect() *client.Client {
	cli, err := c.Connect(context.Background())
	if err != nil {
		log.Fatalln(err)
	}
	return cli
}

// NewConnector creates an MQTT connector when URL is a registry.
func (c *Config) NewConnector() (*mqtt.Connector, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	switch u.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.URL)
	}
	return nil, fmt.Errorf("%q is not a registry URL", c.URL)
}

// Discover lists registered devices.
func (c *Config) Discover(ctx context.Context) ([]transport.Info, error) {
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Discover(ctx, c.Ref.Type)
}
