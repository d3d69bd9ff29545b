// Command padbridge reads MIDI commands from stdin and plays them through a
// host output port.
//
//	> 144 60 100   note on, channel 1, middle C
//	> init         light up the controller
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/leandrodaf/padbridge/internal/config"
	"github.com/leandrodaf/padbridge/internal/console"
	"github.com/leandrodaf/padbridge/internal/logger"
	"github.com/leandrodaf/padbridge/sdk/contracts"
	"github.com/leandrodaf/padbridge/sdk/padbridge"
	"github.com/xlab/closer"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	defer closer.Close()
	closer.Bind(midi.CloseDriver)

	configFile := flag.String("config", "", "load settings from a YAML file; flags override it")
	name := flag.String("name", padbridge.DefaultClientName, "client name registered with the host")
	backend := flag.String("backend", contracts.BackendGoMIDI, "output backend: gomidi, coremidi, winmm or discard")
	dest := flag.String("dest", "", "output destination (substring match, first one when empty)")
	order := flag.String("order", "lifo", "pending command order: lifo or fifo")
	batch := flag.Int("batch", padbridge.DefaultInitBatch, "init writes per cycle, negative for the whole sequence at once")
	debug := flag.Bool("debug", false, "enable debug logging")
	logFile := flag.String("log-file", "", "write logs to this file instead of stderr")
	list := flag.Bool("list", false, "list output destinations of the backend and exit")
	noStartServer := flag.Bool("no-start-server", false, "fail instead of falling back to the discard sink")
	flag.Parse()

	cfg := &config.Config{}
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			closer.Fatalln("[ERR] cannot load config:", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.ClientName = *name
		case "backend":
			cfg.Backend = *backend
		case "dest":
			cfg.Destination = *dest
		case "order":
			cfg.Order = *order
		case "batch":
			cfg.InitBatch = *batch
		case "debug":
			if *debug {
				cfg.Log.Level = contracts.DebugLevel.String()
			}
		case "log-file":
			cfg.Log.File = *logFile
		case "no-start-server":
			cfg.NoStartServer = *noStartServer
		}
	})
	if err := config.Validate(cfg); err != nil {
		closer.Fatalln("[ERR]", err)
	}

	if *list {
		listDestinations(cfg.Backend)
		return
	}

	log := logger.NewStandardLogger()
	bridge, err := padbridge.NewBridge(append([]contracts.Option{contracts.WithLogger(log)}, cfg.Options()...)...)
	if err != nil {
		closer.Fatalln("[ERR] cannot start bridge:", err)
	}
	closer.Bind(func() {
		if err := bridge.Close(); err != nil {
			log.Error("Failed to close bridge", log.Field().Error("error", err))
		}
		log.Sync()
	})

	if err := bridge.Start(); err != nil {
		closer.Fatalln("[ERR] cannot activate client:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)

	con := console.New(bridge, os.Stdout, log)
	go con.Display(ctx, bridge.Statuses())

	fmt.Println("Type three bytes (e.g. 144 60 100) or init. Ctrl+D to exit.")
	if err := con.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		closer.Fatalln("[ERR] console:", err)
	}
}

func listDestinations(backend string) {
	if backend == "" {
		backend = contracts.BackendGoMIDI
	}
	dests, err := padbridge.ListDestinations(backend)
	if err != nil {
		closer.Fatalln("[ERR] cannot list destinations:", err)
	}
	if len(dests) == 0 {
		fmt.Printf("No %s destinations found.\n", backend)
		return
	}
	for i, d := range dests {
		fmt.Printf("%d: %s", i, d.Name)
		if d.Manufacturer != "" {
			fmt.Printf(" (%s)", d.Manufacturer)
		}
		fmt.Println()
	}
}
