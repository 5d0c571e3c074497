package main

import (
	"os"

	"tender-notifier/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}
