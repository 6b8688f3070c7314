package mqtt

import "fmt"

// TopicPrefix is the base for every topic this agent uses.
const TopicPrefix = "graylogic/edge"

// Topics provides builders for the agent's MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Status("graylogic-edge-240ac4010203")
//	// Returns: "graylogic/edge/graylogic-edge-240ac4010203/status"
type Topics struct{}

// Status is where online/offline presence is published (and the LWT).
func (Topics) Status(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefix, clientID)
}

// Network is where connectivity snapshots are published.
func (Topics) Network(clientID string) string {
	return fmt.Sprintf("%s/%s/network", TopicPrefix, clientID)
}

// Command is where inbound requests for this device arrive.
func (Topics) Command(clientID string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefix, clientID)
}

// AllStatus matches the presence topic of every edge device.
func (Topics) AllStatus() string {
	return TopicPrefix + "/+/status"
}
