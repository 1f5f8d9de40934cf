package influxdb

import "errors"

var (
	ErrNotConnected     = errors.New("influxdb: client closed")
	ErrConnectionFailed = errors.New("influxdb: connection failed")
	ErrDisabled         = errors.New("influxdb: disabled in configuration")

	// ErrWriteFailed wraps a batch the server refused. It is only logged.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
