// Package logging provides structured logging built on uber/zap.
//
// Two modes are supported: JSON output for production and colored console
// output for development. Components receive a *Logger at construction and
// never log through a package-level global.
package logging
