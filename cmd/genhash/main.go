// genhash prints the bcrypt hash of a password, for manual account fixes.
// Usage: go run ./cmd/genhash <password>
package main

import (
	"fmt"
	"os"

	"github.com/car1087/dinoplay-2-0/internal/service"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(h)
}
