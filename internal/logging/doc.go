// Package logging provides the structured logging interface shared by the
// meal flow controller, the remote service client and the front ends.
// Components depend on the Logger interface; zerolog is the default backend
// and a standard library adapter is kept for callers that already own a
// *log.Logger.
package logging
