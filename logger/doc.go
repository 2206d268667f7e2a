// Package logger provides structured logging for streamkit using zerolog.
//
// The stream engine never logs on its own: pass a *Logger to the engine
// with iteratee.WithLogger to opt in. The CLI builds one from Config.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.New(&cfg, "eventfeed").WithComponent("hub")
//	log.Info("consumer joined", logger.Fields(logger.FieldConsumers, 3))
package logger
