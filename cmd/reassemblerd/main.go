package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/omahs/streamreassembly/internal/fixtures"
	"github.com/omahs/streamreassembly/reassembly"
	"github.com/omahs/streamreassembly/reassembly/metrics"
)

// VERSION is injected by build flags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "reassemblerd"
	app.Usage = "demo harness for the stream reassembly layer"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "streams", Value: 4, Usage: "number of fixture streams to generate"},
		cli.IntFlag{Name: "messages", Value: 20, Usage: "payload messages per fixture stream"},
		cli.Int64Flag{Name: "seed", Value: 1, Usage: "shuffle seed for the fixture generator"},
		cli.IntFlag{Name: "channelbufferlength", Value: 100, Usage: "announce/outbound channel capacity"},
		cli.IntFlag{Name: "maxbufferedperstream", Value: 0, Usage: "cap on a stream's out-of-order buffer, 0 for unbounded"},
		cli.BoolFlag{Name: "retireoninvalidfin", Usage: "retire a stream immediately on a fin-below-max violation"},
		cli.IntFlag{Name: "ringcapacity", Value: 16, Usage: "bounded staging ring capacity for the fixture source"},
		cli.BoolFlag{Name: "quiet", Usage: "suppress per-stream open/close log lines"},
		cli.StringFlag{Name: "log", Value: "", Usage: "log file to write to, default stderr"},
		cli.StringFlag{Name: "metricslog", Value: "", Usage: "collect a metrics snapshot to a CSV file, aware of Go time format, e.g. ./metrics-20060102.log"},
		cli.IntFlag{Name: "metricsperiod", Value: 5, Usage: "metrics collection period, in seconds"},
		cli.StringFlag{Name: "c", Value: "", Usage: "config from a JSON file, overrides the flags above"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("%+v\n", err)
	}
}

func run(c *cli.Context) error {
	config := Config{
		Streams:              c.Int("streams"),
		Messages:             c.Int("messages"),
		Seed:                 c.Int64("seed"),
		ChannelBufferLength:  c.Int("channelbufferlength"),
		MaxBufferedPerStream: c.Int("maxbufferedperstream"),
		RetireOnInvalidFin:   c.Bool("retireoninvalidfin"),
		RingCapacity:         c.Int("ringcapacity"),
		Quiet:                c.Bool("quiet"),
		Log:                  c.String("log"),
		MetricsLog:           c.String("metricslog"),
		MetricsPeriod:        c.Int("metricsperiod"),
	}

	if path := c.String("c"); path != "" {
		if err := parseJSONConfig(&config, path); err != nil {
			return err
		}
	}

	if config.Log != "" {
		f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	}

	logln := func(v ...interface{}) {
		if !config.Quiet {
			log.Println(v...)
		}
	}

	log.Println("version:", VERSION)
	log.Println("streams:", config.Streams, "messages:", config.Messages, "seed:", config.Seed)
	log.Println("channelbufferlength:", config.ChannelBufferLength)
	log.Println("maxbufferedperstream:", config.MaxBufferedPerStream)
	log.Println("retireoninvalidfin:", config.RetireOnInvalidFin)

	cfg := &reassembly.Config{
		ChannelBufferLength:  config.ChannelBufferLength,
		MaxBufferedPerStream: config.MaxBufferedPerStream,
		RetireOnInvalidFin:   config.RetireOnInvalidFin,
	}

	plans := make([]fixtures.StreamPlan, config.Streams)
	for i := range plans {
		plans[i] = fixtures.StreamPlan{StreamID: uint64(i + 1), Messages: config.Messages}
	}
	frames := fixtures.GenerateFrames(plans, config.Seed)
	input := fixtures.BufferedSource(frames, config.RingCapacity)

	announce := make(chan (<-chan string), config.ChannelBufferLength)
	counters := metrics.New()
	hist := metrics.NewHistory(64)

	r, err := reassembly.New[string](input, announce, cfg,
		reassembly.WithWarnFunc(func(e reassembly.FrameError) {
			logln("dropped:", e)
		}),
		reassembly.WithMetricsSink(counters),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	installSigHandler(counters)

	if config.MetricsLog != "" {
		go metrics.CSVLogger(ctx, config.MetricsLog, time.Duration(config.MetricsPeriod)*time.Second, counters, hist)
	}

	var wg sync.WaitGroup
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ch := range announce {
			wg.Add(1)
			go consumeStream(&wg, ch, logln)
		}
	}()

	runErr := r.Run(ctx)
	// announce is only closed once Run returns, but the goroutine
	// draining it may not have observed that closure and called its
	// last wg.Add yet; wait for it to finish ranging before waiting on
	// wg itself, so every announced stream is guaranteed to have
	// already registered with wg.
	<-done
	wg.Wait()

	snap := counters.Snapshot()
	log.Printf("done: frames_processed=%d streams_opened=%d streams_retired=%d", snap.FramesProcessed, snap.StreamsOpened, snap.StreamsRetired)
	return runErr
}

func consumeStream(wg *sync.WaitGroup, ch <-chan string, logln func(...interface{})) {
	defer wg.Done()
	logln("stream opened")
	n := 0
	for payload := range ch {
		fmt.Println(payload)
		n++
	}
	logln("stream closed", "messages:", n)
}
