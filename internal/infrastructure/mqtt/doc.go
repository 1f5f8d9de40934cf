// Package mqtt connects wardrive-core to an MQTT broker.
//
// The converter uses the broker in two directions. Outbound, every
// conversion is announced as an event, and a retained status topic tells
// dashboards whether the converter is running. Inbound, serve mode accepts
// convert commands for files that are already on the converter's host.
//
// # Topics
//
//	wardrive/system/status        retained online/offline status (also the will)
//	wardrive/system/last_run      retained copy of the latest conversion event
//	wardrive/conversion/{format}  one event per finished conversion
//	wardrive/command/convert      remote conversion requests (serve mode)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, log, version)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.ConvertCommand()
//	err = client.Subscribe(topic, 1, handleConvert)
//	defer client.Unsubscribe(topic)
package mqtt
