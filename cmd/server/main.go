package main

import (
	"log"

	"github.com/tech-arch1tect/rememberme"
)

func main() {
	a, err := rememberme.New(nil)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	a.Run()
}
