/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Program configuration
 */

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Configuration represents the program configuration
type Configuration struct {
	PrinterName    string        // Advertised printer name
	Location       string        // "printer-location" / DNS-SD note
	UUID           string        // Printer UUID; generated if empty
	Formats        []string      // Supported document formats
	Color          bool          // Color capability flag
	Duplex         bool          // Duplex capability flag
	Staple         bool          // Staple capability flag
	Copies         bool          // Copies capability flag
	Port           int           // TCP port to listen on
	DNSSdEnable    bool          // Enable DNS-SD advertising
	LoopbackOnly   bool          // Accept loopback connections only
	IPV6Enable     bool          // Listen on IPv6 as well
	SpoolDir       string        // Directory for received documents
	Retention      time.Duration // How long finished jobs are kept
	ConvertEnable  bool          // Convert documents to PDF
	ConvertCommand string        // Converter binary
	ConvertTimeout time.Duration // Converter run time limit
	LogLevel       LogLevel      // Log verbosity
	ColorConsole   bool          // ANSI colors on console
	LogFile        string        // Log file path, "" to disable
}

// Conf contains the global instance of the program configuration
var Conf = Configuration{
	PrinterName:    "Virtual Printer",
	Location:       "ipp-emu virtual printer",
	Formats:        []string{"application/pdf", "application/postscript", "application/octet-stream"},
	Color:          true,
	Copies:         true,
	Port:           6310,
	DNSSdEnable:    true,
	IPV6Enable:     true,
	SpoolDir:       "./print-jobs",
	Retention:      time.Hour,
	ConvertEnable:  true,
	ConvertCommand: "gs",
	ConvertTimeout: 30 * time.Second,
	LogLevel:       LogInfo,
	ColorConsole:   true,
}

// ConfLoad loads the program configuration
func ConfLoad() error {
	exepath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("conf: %s", err)
	}

	files := []string{
		filepath.Join(PathConfDir, ConfFileName),
		filepath.Join(filepath.Dir(exepath), ConfFileName),
	}

	for _, file := range files {
		err = confLoadFile(file)
		if err != nil {
			return fmt.Errorf("conf: %s", err)
		}
	}

	return nil
}

// confLoadFile loads a single configuration file. A missing
// file is not an error
func confLoadFile(path string) error {
	inifile, err := ini.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if section := inifile.Section("printer"); section != nil {
		confLoadString(&Conf.PrinterName, section, "name")
		confLoadString(&Conf.Location, section, "location")
		confLoadString(&Conf.UUID, section, "uuid")
		confLoadStrings(&Conf.Formats, section, "formats")

		err = firstError(err,
			confLoadBool(&Conf.Color, section, "color"),
			confLoadBool(&Conf.Duplex, section, "duplex"),
			confLoadBool(&Conf.Staple, section, "staple"),
			confLoadBool(&Conf.Copies, section, "copies"))
	}

	if section := inifile.Section("network"); section != nil {
		err = firstError(err,
			confLoadPort(&Conf.Port, section, "port"),
			confLoadBool(&Conf.DNSSdEnable, section, "dns-sd"),
			confLoadBool(&Conf.LoopbackOnly, section, "loopback-only"),
			confLoadBool(&Conf.IPV6Enable, section, "ipv6"))
	}

	if section := inifile.Section("spool"); section != nil {
		confLoadString(&Conf.SpoolDir, section, "directory")
		err = firstError(err,
			confLoadDuration(&Conf.Retention, section, "retention"))
	}

	if section := inifile.Section("convert"); section != nil {
		confLoadString(&Conf.ConvertCommand, section, "command")
		err = firstError(err,
			confLoadBool(&Conf.ConvertEnable, section, "enable"),
			confLoadDuration(&Conf.ConvertTimeout, section, "timeout"))
	}

	if section := inifile.Section("logging"); section != nil {
		confLoadString(&Conf.LogFile, section, "file")
		err = firstError(err,
			confLoadLogLevel(&Conf.LogLevel, section, "level"),
			confLoadBool(&Conf.ColorConsole, section, "console-color"))
	}

	if err != nil {
		return err
	}

	if len(Conf.Formats) == 0 {
		return errors.New("printer.formats must not be empty")
	}

	return nil
}

// confLoadString loads a string key, if present
func confLoadString(out *string, section *ini.Section, name string) {
	if section.HasKey(name) {
		*out = section.Key(name).String()
	}
}

// confLoadStrings loads a comma-separated list key, if present
func confLoadStrings(out *[]string, section *ini.Section, name string) {
	if !section.HasKey(name) {
		return
	}

	var list []string
	for _, s := range strings.Split(section.Key(name).String(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}

	*out = list
}

// confLoadBool loads a boolean key, if present
func confLoadBool(out *bool, section *ini.Section, name string) error {
	if !section.HasKey(name) {
		return nil
	}

	val, err := section.Key(name).Bool()
	if err != nil {
		return confBadValue(name, "must be true or false")
	}

	*out = val
	return nil
}

// confLoadPort loads a TCP port key, if present
func confLoadPort(out *int, section *ini.Section, name string) error {
	if !section.HasKey(name) {
		return nil
	}

	port, err := section.Key(name).Int()
	if err != nil || port < 1 || port > 65535 {
		return confBadValue(name, "must be in range 1...65535")
	}

	*out = port
	return nil
}

// confLoadDuration loads a duration key, if present
func confLoadDuration(out *time.Duration, section *ini.Section, name string) error {
	if !section.HasKey(name) {
		return nil
	}

	val, err := section.Key(name).Duration()
	if err != nil || val <= 0 {
		return confBadValue(name, "must be a positive duration")
	}

	*out = val
	return nil
}

// confLoadLogLevel loads the log level key, if present
func confLoadLogLevel(out *LogLevel, section *ini.Section, name string) error {
	if !section.HasKey(name) {
		return nil
	}

	switch section.Key(name).String() {
	case "error":
		*out = LogError
	case "info":
		*out = LogInfo
	case "debug":
		*out = LogDebug
	case "proto":
		*out = LogProto
	default:
		return confBadValue(name, "must be error, info, debug or proto")
	}

	return nil
}

// confBadValue creates a "bad value" error
func confBadValue(key, format string, args ...interface{}) error {
	return fmt.Errorf(key+": "+format, args...)
}

// firstError returns the first non-nil error of the list
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
