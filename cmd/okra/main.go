package main

import (
	"fmt"
	"os"

	"github.com/okra-editor/okra/internal/app"
	"github.com/okra-editor/okra/internal/logger"
)

func main() {
	debug := false
	readOnly := false
	var paths []string
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-debug", "--debug":
			debug = true
		case "-r", "--read-only":
			readOnly = true
		case "-h", "--help":
			fmt.Println("usage: okra [-r] [-debug] [file ...]")
			return
		default:
			paths = append(paths, arg)
		}
	}

	if err := logger.Init(debug); err != nil {
		fmt.Fprintln(os.Stderr, "okra:", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := app.New(paths, readOnly).Run(); err != nil {
		logger.Error("fatal", "err", err)
		fmt.Fprintln(os.Stderr, "okra:", err)
		os.Exit(1)
	}
}
