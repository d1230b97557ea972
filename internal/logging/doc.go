// Package logging provides the leveled logging interface used across the
// media catalog service.
//
// Messages are written through zerolog. The following levels are supported:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The level is configured via LOG_LEVEL (or DEBUG=true), and LOG_FORMAT=json
// switches from the console writer to raw JSON lines. Request-scoped loggers
// carrying a request_id field are available through FromContext.
package logging
