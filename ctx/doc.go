// Package ctx defines the context types shared by the app and its requests.
//
// An app context (package app) lives as long as the process and carries the
// config, the logger, stats, background jobs and the error reporter.
// A journey (package journey) is created for every inbound request. It is a
// context.Context bound to the request lifetime and its logs carry the
// journey ID, so that all lines of a request can be grouped.
package ctx
