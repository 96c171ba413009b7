// Package web serves the Avasar member portal.
//
// Pages are rendered on the server and progressively enhanced with HTMX.
// Every account, income, and team operation is proxied to the backend REST
// API; the portal itself only keeps pending registrations and the short-lived
// cookies that tie a browser to its flow.
package web
