//go:build linux || darwin || freebsd

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omahs/streamreassembly/reassembly/metrics"
)

// installSigHandler logs a metrics snapshot every time the process
// receives SIGUSR1.
func installSigHandler(counters *metrics.Counters) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)

	go func() {
		for range ch {
			log.Printf("reassemblerd snapshot: %+v", counters.Snapshot())
		}
	}()
}
