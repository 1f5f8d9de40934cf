package mqtt

import "fmt"

// Topic prefixes for wardrive MQTT traffic.
//
// Everything lives under a single root so a broker ACL can grant the
// converter "wardrive/#" and nothing else.
const (
	// TopicPrefix is the root of all wardrive topics.
	TopicPrefix = "wardrive"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "wardrive/system"

	// TopicPrefixConversion is the base for per-conversion events.
	TopicPrefixConversion = "wardrive/conversion"

	// TopicPrefixCommand is the base for inbound commands.
	TopicPrefixCommand = "wardrive/command"
)

// Topics provides builders for wardrive MQTT topics.
//
//	topics := mqtt.Topics{}
//	topic := topics.Conversion("wigle_csv")
//	// Returns: "wardrive/conversion/wigle_csv"
type Topics struct{}

// SystemStatus returns the retained online/offline status topic.
//
// Example: wardrive/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// LastRun returns the retained topic holding the most recent conversion,
// so a dashboard that connects later still sees it.
//
// Example: wardrive/system/last_run
func (Topics) LastRun() string {
	return fmt.Sprintf("%s/last_run", TopicPrefixSystem)
}

// Conversion returns the topic a finished conversion is announced on.
// An empty format is published under "unknown".
//
// Example: wardrive/conversion/kismet_netxml
func (Topics) Conversion(format string) string {
	if format == "" {
		format = "unknown"
	}
	return fmt.Sprintf("%s/%s", TopicPrefixConversion, format)
}

// ConvertCommand returns the topic that requests a conversion of a file
// already present on the converter's host.
//
// Example: wardrive/command/convert
func (Topics) ConvertCommand() string {
	return fmt.Sprintf("%s/convert", TopicPrefixCommand)
}

// AllConversions returns a pattern matching every conversion event.
//
// Pattern: wardrive/conversion/+
func (Topics) AllConversions() string {
	return fmt.Sprintf("%s/+", TopicPrefixConversion)
}

// AllTopics returns a pattern matching all wardrive topics.
//
// Pattern: wardrive/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
