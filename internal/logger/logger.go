// Package logger — единый вывод логов remo с префиксом и учётом quiet/verbose.
package logger

import "log"

const prefix = "remo: "

// Quiet при true отключает информационные сообщения (Info); Error выводится всегда.
var Quiet bool

// Verbose при true включает отладочные сообщения (Debug): каждый кадр и сброс сессии.
var Verbose bool

// Info выводит сообщение с префиксом "remo: ", если Quiet == false.
func Info(format string, args ...interface{}) {
	if Quiet {
		return
	}
	log.Printf(prefix+format, args...)
}

// Error выводит сообщение об ошибке с префиксом "remo: " всегда.
func Error(format string, args ...interface{}) {
	log.Printf(prefix+format, args...)
}

// Debug выводит сообщение только при Verbose.
func Debug(format string, args ...interface{}) {
	if !Verbose || Quiet {
		return
	}
	log.Printf(prefix+format, args...)
}
