package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/yaakydd/DriveGreen/internal/models"
)

// PredictionPublisher publishes completed predictions to an MQTT topic so
// downstream consumers (dashboards, fleet tooling) can react in real time.
type PredictionPublisher struct {
	client mqtt.Client
	topic  string

	// Input channel (read by publisher, written by the event router)
	EventChan chan *models.PredictionEvent
}

// PublisherConfig holds MQTT publisher configuration
type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	Topic       string
	ChannelSize int
}

// NewPredictionPublisher connects to the broker and creates a publisher
func NewPredictionPublisher(config PublisherConfig) (*PredictionPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetOnConnectHandler(connectHandler)
	opts.SetConnectionLostHandler(connectLostHandler)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("MQTT Publisher: Connected to broker:", config.Broker)

	channelSize := config.ChannelSize
	if channelSize <= 0 {
		channelSize = 100
	}

	return &PredictionPublisher{
		client:    client,
		topic:     config.Topic,
		EventChan: make(chan *models.PredictionEvent, channelSize),
	}, nil
}

// Start begins publishing prediction events from the channel
// Runs until context is cancelled or channel is closed
func (p *PredictionPublisher) Start(ctx context.Context) {
	log.Println("MQTT Publisher: Starting...")

	for {
		select {
		case <-ctx.Done():
			log.Println("MQTT Publisher: Context cancelled, shutting down...")
			return

		case event, ok := <-p.EventChan:
			if !ok {
				log.Println("MQTT Publisher: Event channel closed, shutting down...")
				return
			}

			if err := p.publishPrediction(event); err != nil {
				log.Printf("Error publishing prediction event: %v", err)
			}
		}
	}
}

// publishPrediction publishes a single prediction event as JSON
func (p *PredictionPublisher) publishPrediction(event *models.PredictionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction event: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish prediction event: %w", token.Error())
	}

	return nil
}

// IsConnected returns whether the client is currently connected
func (p *PredictionPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close closes the MQTT connection
func (p *PredictionPublisher) Close() {
	p.client.Disconnect(250)
	log.Println("MQTT Publisher: Disconnected")
}

// Connection event handlers
var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Println("MQTT: Connection established")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Printf("MQTT: Connection lost: %v", err)
}
