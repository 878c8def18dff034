package templog

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// samplePayload is the JSON document published for every sample.
type samplePayload struct {
	SessionID   string    `json:"sessionId"`
	Experiment  string    `json:"experiment"`
	Timestamp   time.Time `json:"timestamp"`
	RadiatorC   float64   `json:"radiatorC"`
	InfraredC   float64   `json:"infraredC"`
	AirC        float64   `json:"airC"`
	CorrectionC float64   `json:"correctionC"`
}

// MQTTPublisher pushes samples to an MQTT broker as they are logged.
type MQTTPublisher struct {
	client     mqtt.Client
	topic      string
	sessionID  string
	experiment string
}

// DefaultTopic is the topic used when none is configured.
func DefaultTopic(experiment string) string {
	return "templog/" + experiment
}

// DialMQTT connects to broker and returns a publisher for session.
func DialMQTT(broker, topic string, session *Session) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("templog-" + session.ID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("timed out connecting to %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", broker, err)
	}
	return NewMQTTPublisher(client, topic, session), nil
}

// NewMQTTPublisher wraps a connected client.
func NewMQTTPublisher(client mqtt.Client, topic string, session *Session) *MQTTPublisher {
	if topic == "" {
		topic = DefaultTopic(session.Name)
	}
	return &MQTTPublisher{
		client:     client,
		topic:      topic,
		sessionID:  session.ID,
		experiment: session.Name,
	}
}

func (p *MQTTPublisher) Topic() string {
	return p.topic
}

func (p *MQTTPublisher) Publish(s Sample) error {
	payload, err := json.Marshal(samplePayload{
		SessionID:   p.sessionID,
		Experiment:  p.experiment,
		Timestamp:   s.Time,
		RadiatorC:   s.Radiator,
		InfraredC:   s.Infrared,
		AirC:        s.Air,
		CorrectionC: s.Correction,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("timed out publishing to %s", p.topic)
	}
	return token.Error()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
