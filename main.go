/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * The main function
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// RunMode represents the program run mode
type RunMode int

const (
	RunDefault RunMode = iota // Normal operation
	RunDebug                  // Normal operation with protocol trace
	RunCheck                  // Load the configuration, print it, exit
)

// RunParameters represents the program run parameters
type RunParameters struct {
	Mode RunMode
}

// usage prints detailed usage and exits
func usage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("    %s mode [options]\n", ProgramName)
	fmt.Printf("\n")
	fmt.Printf("Modes are:\n")
	fmt.Printf("    standalone  - run the emulated printer\n")
	fmt.Printf("    debug       - run with protocol trace on console\n")
	fmt.Printf("    check       - check configuration and exit\n")
	fmt.Printf("\n")
	fmt.Printf("Options are:\n")
	fmt.Printf("    -h, --help  - print this help page\n")
	os.Exit(0)
}

// usageError prints usage error and exits
func usageError(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
	fmt.Printf("Try %s --help for more information\n", ProgramName)
	os.Exit(1)
}

// fail reports a fatal error and exits
func fail(format string, args ...interface{}) {
	Log.Error(format, args...)
	Log.Close()
	os.Exit(1)
}

// parseArgv parses the command line
func parseArgv() (params RunParameters) {
	modes := 0

	for _, arg := range os.Args[1:] {
		switch arg {
		case "standalone":
			params.Mode = RunDefault
			modes++
		case "debug":
			params.Mode = RunDebug
			modes++
		case "check":
			params.Mode = RunCheck
			modes++
		case "-h", "--help":
			usage()
		default:
			usageError("Invalid argument %s", arg)
		}
	}

	if modes > 1 {
		usageError("Conflicting run modes")
	}

	return
}

// printConf dumps the effective configuration, for the check mode
func printConf() {
	fmt.Printf("printer.name      = %s\n", Conf.PrinterName)
	fmt.Printf("printer.location  = %s\n", Conf.Location)
	fmt.Printf("printer.uuid      = %s\n", Conf.UUID)
	fmt.Printf("printer.formats   = %s\n", strings.Join(Conf.Formats, ","))
	fmt.Printf("printer.color     = %v\n", Conf.Color)
	fmt.Printf("printer.duplex    = %v\n", Conf.Duplex)
	fmt.Printf("printer.staple    = %v\n", Conf.Staple)
	fmt.Printf("printer.copies    = %v\n", Conf.Copies)
	fmt.Printf("network.port      = %d\n", Conf.Port)
	fmt.Printf("network.dns-sd    = %v\n", Conf.DNSSdEnable)
	fmt.Printf("network.loopback  = %v\n", Conf.LoopbackOnly)
	fmt.Printf("network.ipv6      = %v\n", Conf.IPV6Enable)
	fmt.Printf("spool.directory   = %s\n", Conf.SpoolDir)
	fmt.Printf("spool.retention   = %s\n", Conf.Retention)
	fmt.Printf("convert.enable    = %v\n", Conf.ConvertEnable)
	fmt.Printf("convert.command   = %s\n", Conf.ConvertCommand)
	fmt.Printf("convert.timeout   = %s\n", Conf.ConvertTimeout)
}

// The main function
func main() {
	params := parseArgv()

	if err := ConfLoad(); err != nil {
		fail("%s", err)
	}

	if params.Mode == RunCheck {
		printConf()
		os.Exit(0)
	}

	Log.SetLevel(Conf.LogLevel)
	if params.Mode == RunDebug {
		Log.SetLevel(LogProto)
	}
	Log.SetColor(Conf.ColorConsole)
	if Conf.LogFile != "" {
		if err := Log.SetFile(Conf.LogFile); err != nil {
			fail("%s", err)
		}
	}
	defer Log.Close()

	Log.Info("%s, version %s", ProgramName, ProgramVersion)

	if err := os.MkdirAll(Conf.SpoolDir, 0755); err != nil {
		fail("spool: %s", err)
	}

	uuid := UUIDNormalize(Conf.UUID)
	if uuid == "" {
		if Conf.UUID != "" {
			Log.Info("invalid uuid %q in configuration, generating one",
				Conf.UUID)
		}
		uuid = UUIDGenerate()
	}

	info := PrinterInfo{
		Name:     Conf.PrinterName,
		Location: Conf.Location,
		UUID:     uuid,
		Formats:  Conf.Formats,
		Color:    Conf.Color,
		Duplex:   Conf.Duplex,
		Staple:   Conf.Staple,
		Copies:   Conf.Copies,
		Host:     Hostname(),
		Port:     Conf.Port,
	}

	var converter Converter
	if Conf.ConvertEnable {
		converter = NewGhostscript(Conf.ConvertCommand)
	}

	sink := NewFileSink(Conf.SpoolDir, converter, Conf.ConvertTimeout)
	store := NewJobStore(sink, Conf.Retention)
	printer := NewPrinter(info, store)
	dispatcher := NewDispatcher(printer, store)

	listener, err := NewListener(Conf.Port)
	if err != nil {
		fail("%s", err)
	}

	srv := NewServer(listener, dispatcher, printer)

	var publisher *DNSSdPublisher
	if Conf.DNSSdEnable {
		publisher = NewDNSSdPublisher(printer)
		if err = publisher.Publish(); err != nil {
			fail("%s", err)
		}
	}

	Log.Info("printer URI: %s", info.URI())
	Log.Info("spool directory: %s", Conf.SpoolDir)
	if converter != nil {
		Log.Info("conversion: %s, timeout %s",
			Conf.ConvertCommand, Conf.ConvertTimeout)
	} else {
		Log.Info("conversion: disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(srv.Serve)
	group.Go(func() error {
		return store.RunSweeper(ctx)
	})
	group.Go(func() error {
		<-ctx.Done()
		Log.Info("shutting down")

		if publisher != nil {
			publisher.Unpublish()
		}
		srv.Shutdown()

		return nil
	})

	if err = group.Wait(); err != nil {
		fail("%s", err)
	}

	Log.Info("exiting")
}
