package monitoring

import "log"

// Logf is the process-wide diagnostic logger for the tracking pipeline. It
// defaults to log.Printf; embedders that own the logging sink replace it
// with SetLogger. The disambiguator reports drift, lock and loss events
// through it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, which tests use to mute expected warnings.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
