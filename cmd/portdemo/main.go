package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/mmport"
	"github.com/lanikai/mmport/internal/telemetry"
	"github.com/lanikai/mmport/internal/testcomponent"
)

var (
	flagBufferNum  int
	flagBufferSize int
	flagRate       time.Duration
	flagTelemetry  string
	flagHelp       bool
)

func init() {
	flag.IntVarP(&flagBufferNum, "buffers", "n", 4, "Number of buffers in the shared pool")
	flag.IntVarP(&flagBufferSize, "buffer-size", "s", 4096, "Payload size per buffer, in bytes")
	flag.DurationVarP(&flagRate, "rate", "r", 100*time.Millisecond, "Interval between synthetic buffers")
	flag.StringVarP(&flagTelemetry, "telemetry", "t", "", "Address to serve the telemetry websocket on (e.g. :8090); empty disables it")
	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
}

const helpString = `Drive a synthetic mmport connection end to end

Usage: portdemo [OPTION]...

  -n, --buffers=NUM       Number of buffers in the shared pool (default: 4)
  -s, --buffer-size=NUM   Payload size per buffer, in bytes (default: 4096)
  -r, --rate=DURATION     Interval between synthetic buffers (default: 100ms)
  -t, --telemetry=ADDR    Serve the telemetry websocket on ADDR
  -h, --help              Print this message and exit`

func banner() {
	b := color.New(color.FgCyan, color.Bold)
	y := color.New(color.FgYellow)
	b.Println("portdemo")
	y.Println("a synthetic producer/consumer wired through a core-owned connection")
}

func main() {
	flag.Parse()
	if flagHelp {
		fmt.Println(helpString)
		os.Exit(0)
	}
	banner()

	component := testcomponent.New("portdemo", 8, nil)

	// producer paces how fast the output port's "hardware" manufactures
	// a filled buffer -- one tick of flagRate per buffer -- so the
	// output/input/pool cycle below never turns into an unbounded
	// synchronous recursion.
	producer := time.NewTicker(flagRate)
	defer producer.Stop()

	output := mmport.Alloc(component, mmport.PortTypeOutput, 0, &mmport.Module{
		Enable: func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			go func() {
				<-producer.C
				port.BufferHeaderCallback(buffer)
			}()
			return nil
		},
	})
	output.Capabilities = mmport.CapabilityAllocation
	output.BufferNum, output.BufferNumMin = uint32(flagBufferNum), 1
	output.BufferSize, output.BufferSizeMin = uint32(flagBufferSize), 1
	component.AddOutput(output)

	input := mmport.Alloc(component, mmport.PortTypeInput, 0, &mmport.Module{
		Enable: func(port *mmport.Port, cb mmport.BufferHeaderCallback) error { return nil },
		Send: func(port *mmport.Port, buffer mmport.BufferHeader) error {
			go port.BufferHeaderCallback(buffer)
			return nil
		},
	})
	input.BufferNum, input.BufferNumMin = uint32(flagBufferNum), 1
	input.BufferSize, input.BufferSizeMin = uint32(flagBufferSize), 1
	component.AddInput(input)

	if err := mmport.Connect(output, input); err != nil {
		fatal("connect", err)
	}
	if err := mmport.Enable(output, nil); err != nil {
		fatal("enable output", err)
	}

	var server *telemetry.Server
	if flagTelemetry != "" {
		server = telemetry.NewServer(flagTelemetry, output, input)
		go func() {
			if err := server.ListenAndServe(); err != nil {
				color.New(color.FgRed).Printf("telemetry server stopped: %v\n", err)
			}
		}()
		fmt.Printf("telemetry websocket listening on %s/ws\n", flagTelemetry)
	}

	statsTicker := time.NewTicker(5 * flagRate)
	defer statsTicker.Stop()

	green := color.New(color.FgGreen)
	for range statsTicker.C {
		var stats mmport.CoreStatisticsParam
		stats.Dir = mmport.StatsDirTX
		mmport.ParameterGet(input, &stats)

		green.Printf("input: %d buffers, in-transit %d\n", stats.Stats.BufferCount, output.InTransit())

		if server != nil {
			server.Publish()
		}
	}
}

func fatal(step string, err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(1)
}
