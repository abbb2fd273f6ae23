package main

import (
	"os"

	"slotwise/core/logger"
	"slotwise/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
