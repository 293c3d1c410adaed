// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package status

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publishTimeout bounds how long a cycle waits on the broker.
const publishTimeout = 500 * time.Millisecond

// Publisher is the subset of mqtt.Client used for publishing.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTReporter publishes each report as retained JSON on StatusTopic and the
// raw fix on GPSTopic (skipped when empty).
type MQTTReporter struct {
	Client      Publisher
	StatusTopic string
	GPSTopic    string
}

func (m MQTTReporter) Report(r Report) {
	if err := m.publishJSON(m.StatusTopic, r); err != nil {
		log.Printf("navigator: status publish error: %v", err)
	}
	if m.GPSTopic == "" || !r.Fix.Valid {
		return
	}
	if err := m.publishJSON(m.GPSTopic, r.Fix); err != nil {
		log.Printf("navigator: gps publish error: %v", err)
	}
}

func (m MQTTReporter) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	token := m.Client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%s: publish timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", topic, err)
	}
	return nil
}

// ConnectMQTT connects a paho client to broker with the given client ID.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Printf("connected to MQTT broker at %s as %s", broker, clientID)
	return client, nil
}
