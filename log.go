/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Logging
 */

package main

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

// LogLevel enumerates possible log levels
type LogLevel int

const (
	LogError LogLevel = iota
	LogInfo
	LogDebug
	LogProto // Protocol traces, including hex dumps
)

// Logger implements logging facilities. Messages are written
// to the console and, optionally, to a log file
type Logger struct {
	lock  sync.Mutex // Write lock
	level LogLevel   // Current level
	color bool       // ANSI colors on console
	file  *os.File   // Log file, nil if not configured
}

// Log is the program-wide logger
var Log = &Logger{level: LogInfo}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.lock.Lock()
	l.level = level
	l.lock.Unlock()
}

// SetColor enables or disables ANSI colors on the console
func (l *Logger) SetColor(color bool) {
	l.lock.Lock()
	l.color = color
	l.lock.Unlock()
}

// SetFile directs a copy of the log to the named file
func (l *Logger) SetFile(path string) error {
	file, err := os.OpenFile(path,
		os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	l.lock.Lock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	l.lock.Unlock()

	return nil
}

// Close closes the log file, if any
func (l *Logger) Close() {
	l.lock.Lock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.lock.Unlock()
}

// Error writes a LogError message
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LogError, '!', format, args...)
}

// Info writes a LogInfo message
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LogInfo, ' ', format, args...)
}

// Debug writes a LogDebug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LogDebug, ' ', format, args...)
}

// Proto writes a protocol trace message
func (l *Logger) Proto(format string, args ...interface{}) {
	l.write(LogProto, ' ', format, args...)
}

// Dump writes a protocol-level HEX dump with a title
func (l *Logger) Dump(data []byte, title string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.level < LogProto {
		return
	}

	l.commit(' ', fmt.Sprintf(title, args...))

	var hex, chr bytes.Buffer
	off := 0

	for len(data) > 0 {
		hex.Reset()
		chr.Reset()

		sz := len(data)
		if sz > 16 {
			sz = 16
		}

		i := 0
		for ; i < sz; i++ {
			c := data[i]
			fmt.Fprintf(&hex, "%2.2x", c)
			if i%4 == 3 {
				hex.WriteByte(':')
			} else {
				hex.WriteByte(' ')
			}

			if 0x20 <= c && c < 0x80 {
				chr.WriteByte(c)
			} else {
				chr.WriteByte('.')
			}
		}

		for ; i < 16; i++ {
			hex.WriteString("   ")
		}

		l.commit(' ', fmt.Sprintf("%4.4x: %s %s", off, &hex, &chr))

		off += sz
		data = data[sz:]
	}
}

// write formats and commits a single message
func (l *Logger) write(level LogLevel, mark byte,
	format string, args ...interface{}) {

	l.lock.Lock()
	defer l.lock.Unlock()

	if level > l.level {
		return
	}

	l.commit(mark, fmt.Sprintf(format, args...))
}

// commit writes a formatted line to the console and the log
// file. Caller must hold the lock
func (l *Logger) commit(mark byte, text string) {
	now := time.Now().Format("02-01-2006 15:04:05")
	line := fmt.Sprintf("%s: %c %s\n", now, mark, text)

	if l.color && mark == '!' {
		os.Stdout.WriteString("\033[31m" + line + "\033[0m")
	} else {
		os.Stdout.WriteString(line)
	}

	if l.file != nil {
		l.file.WriteString(line)
	}
}
