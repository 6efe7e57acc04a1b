package main

import (
	"log"
	"os"
)

func main() {
	defer log.Println("done")

	if len(os.Args) > 2 {
		os.Exit(2) // want "использование os.Exit в main-функции"
	}

	cleanup := func() {
		os.Exit(0)
	}
	_ = cleanup

	os.Exit(1) // want "использование os.Exit в main-функции"
}

func fail() {
	os.Exit(1)
}
