package main

import (
	"encoding/json"
	"os"
)

// Config holds every flag reassemblerd accepts, in JSON-loadable form:
// CLI flags populate it first, then an optional JSON file given with -c
// overrides whatever it sets.
type Config struct {
	Streams              int    `json:"streams"`
	Messages             int    `json:"messages"`
	Seed                 int64  `json:"seed"`
	ChannelBufferLength  int    `json:"channelbufferlength"`
	MaxBufferedPerStream int    `json:"maxbufferedperstream"`
	RetireOnInvalidFin   bool   `json:"retireoninvalidfin"`
	RingCapacity         int    `json:"ringcapacity"`
	Quiet                bool   `json:"quiet"`
	Log                  string `json:"log"`
	MetricsLog           string `json:"metricslog"`
	MetricsPeriod        int    `json:"metricsperiod"`
}

func parseJSONConfig(config *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(config)
}
