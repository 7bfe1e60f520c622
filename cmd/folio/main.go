package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	if svc := openSvc; svc != nil {
		openSvc = nil
		if cerr := svc.Close(context.Background()); cerr != nil {
			fmt.Fprintf(os.Stderr, "Failed to close collection: %v\n", cerr)
		}
	}
	os.Exit(1)
}
