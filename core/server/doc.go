// Package server holds the HTTP server configuration.
//
// The main application entry point handles the server startup; this package
// only defines the configuration structure for server settings such as the
// listen port and the API key guarding the counting endpoints.
package server
