// SPDX-License-Identifier: GPL-3.0-or-later

// Command minidns resolves the IPv4 address of a domain name.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bassosimone/minidns"
	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "127.0.0.1:8053", "DNS server to query")
	timeout := flag.Duration("timeout", minidns.DefaultTimeout, "time to wait for the reply")
	verbose := flag.Bool("verbose", false, "log the query and the reply")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] domain\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	domain := flag.Arg(0)

	logger := zap.NewNop()
	if *verbose {
		logger = newLogger()
	}
	defer logger.Sync()

	resolver := minidns.NewResolver(*server)
	resolver.Timeout = *timeout
	resolver.Logger = logger

	result, err := resolver.Resolve(context.Background(), domain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error resolving %s: %s\n", domain, err)
		os.Exit(1)
	}
	if result.Response != nil {
		logger.Debug("dns reply\n" + result.Response.String())
	}

	switch result.Outcome {
	case minidns.OutcomeAddress:
		fmt.Printf("%s -> %s\n", domain, result.Addr)
	case minidns.OutcomeNotFound:
		fmt.Printf("%s: no such name\n", domain)
	case minidns.OutcomeNoAddress:
		fmt.Printf("no address found for %s\n", domain)
	case minidns.OutcomeNoReply:
		fmt.Printf("no reply from %s within %s\n", *server, timeout.Round(time.Millisecond))
	}
}

func newLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}
