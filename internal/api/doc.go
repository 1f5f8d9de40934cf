// Package api implements the HTTP API for wardrive-core.
//
// This package provides:
//   - POST /api/v1/convert for on-demand conversion of an uploaded log
//   - Read endpoints over the conversion catalog (runs, networks)
//   - Health, formats and runtime metrics endpoints
//   - Middleware stack (request ID, logging, recovery, upload size limit)
//
// # Graceful Degradation
//
// The catalog is optional. Without a database the catalog routes answer
// 503 and conversion still works.
package api
