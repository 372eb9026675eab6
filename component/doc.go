// Package component defines the lifecycle contract shared by the storage
// façade and the file server.
//
// Components start in registration order, stop in reverse order and report
// health; the Registry aggregates those reports for the /health endpoint.
package component
