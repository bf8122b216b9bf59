// SPDX-License-Identifier: GPL-3.0-or-later

// Command minidnsd answers DNS address queries from a static table.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bassosimone/minidns"
	"go.uber.org/zap"
)

// defaultRecords seeds the table when no zone file is given.
var defaultRecords = map[string]netip.Addr{
	"example.com": netip.MustParseAddr("93.184.216.34"),
	"google.com":  netip.MustParseAddr("142.250.185.110"),
	"github.com":  netip.MustParseAddr("140.82.112.3"),
	"localhost":   netip.MustParseAddr("127.0.0.1"),
	"test.local":  netip.MustParseAddr("192.168.1.100"),
}

func main() {
	address := flag.String("address", "0.0.0.0", "address to listen on")
	port := flag.Int("port", 8053, "UDP port to listen on")
	zone := flag.String("zone", "", "zone file with the A records to serve")
	verbose := flag.Bool("verbose", false, "log every query")
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	table, err := loadTable(*zone)
	if err != nil {
		logger.Fatal("cannot load the table", zap.String("zone", *zone), zap.Error(err))
	}

	endpoint := net.JoinHostPort(*address, strconv.Itoa(*port))
	conn, err := net.ListenPacket("udp", endpoint)
	if err != nil {
		logger.Fatal("cannot listen", zap.String("endpoint", endpoint), zap.Error(err))
	}
	defer conn.Close()

	logger.Info("dns server started", zap.Stringer("endpoint", conn.LocalAddr()))
	for _, name := range table.Names() {
		addr, _ := table.Lookup(name)
		logger.Info("serving", zap.String("name", name), zap.Stringer("addr", addr))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	responder := minidns.NewResponder(table)
	responder.Logger = logger
	err = responder.Serve(ctx, conn)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("dns server failed", zap.Error(err))
		return
	}
	logger.Info("dns server stopped")
}

func loadTable(zone string) (*minidns.Table, error) {
	if zone == "" {
		table := minidns.NewTable()
		for name, addr := range defaultRecords {
			table.Add(name, addr)
		}
		return table, nil
	}
	filep, err := os.Open(zone)
	if err != nil {
		return nil, err
	}
	defer filep.Close()
	return minidns.ParseZone(filep, zone)
}

func newLogger(verbose bool) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
