package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/dio.go/pkg/status"
	"github.com/robotalks/dio.go/pkg/transport/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("DIO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.ConnectAndWait(); err != nil {
		log.Fatalln(err)
	}

	sub := q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+mqtt.TopicMeta):
			if len(payload) == 0 {
				log.Printf("%s: <gone>", topic)
			} else {
				log.Printf("%s: %s", topic, string(payload))
			}
		case strings.HasSuffix(topic, "/"+mqtt.TopicStatus):
			snapshot, err := status.Decode(payload)
			if err != nil {
				log.Printf("%s: bad status: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, snapshot.String())
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	if err = sub.Wait(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
