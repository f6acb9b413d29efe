// Package logger provides structured logging for anyhttp clients using
// zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields. Clients log through a
// *Logger; NewNop silences them.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("billing").WithComponent("httpclient")
//	log.Debug("request settled", logger.Fields(logger.FieldStatus, 200))
package logger
