package main

import (
	"fmt"
	"time"

	"github.com/leandrodaf/padbridge/internal/console"
	"github.com/leandrodaf/padbridge/internal/logger"
	"github.com/leandrodaf/padbridge/sdk/contracts"
	"github.com/leandrodaf/padbridge/sdk/padbridge"
)

func main() {
	log := logger.NewStandardLogger()

	bridge, err := padbridge.NewBridge(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSinkConfig(contracts.SinkConfig{Backend: contracts.BackendDiscard}),
		contracts.WithQueueOrder(contracts.FIFO),
	)
	if err != nil {
		log.Error("Failed to initialize bridge", log.Field().Error("error", err))
		return
	}
	defer bridge.Close()

	if err := bridge.Start(); err != nil {
		log.Error("Failed to activate bridge", log.Field().Error("error", err))
		return
	}

	for _, line := range []string{"init", "144 60 100", "128 60 0", "1 2"} {
		if _, err := bridge.Submit(line); err != nil {
			log.Warn("Rejected command", log.Field().String("input", line), log.Field().Error("error", err))
		}
	}

	timeout := time.After(time.Second)
	for {
		select {
		case s := <-bridge.Statuses():
			fmt.Print(console.FormatStatus(s))
		case <-timeout:
			return
		}
	}
}
