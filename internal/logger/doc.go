// Package logger wraps zap for the monitor binaries:
//   - a global sugared logger with a console encoder,
//   - optional rotating file output for bedside units without a journal,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and KV-style convenience functions.
//
// Services accept a context and pull the logger out of it, so every log line
// carries the component name it was produced by.
package logger
