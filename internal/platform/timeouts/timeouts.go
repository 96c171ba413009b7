// Package timeouts defines shared timeout constants for the portal process.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// APIRequest caps one call from the portal to the backend REST API.
const APIRequest = 10 * time.Second

// SessionBootstrap caps how long a request waits for session token
// validation before rendering the checking state.
const SessionBootstrap = 2 * time.Second
