package main

import (
	"fmt"
	"os"

	"github.com/marcelsud/webhook-relay/channels"
)

/* validate-channels - Standalone CLI tool to validate channels.yaml
 * Usage: go run cmd/validate-channels/main.go [channels.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	channelsFile := "channels.yaml"
	if len(os.Args) > 1 {
		channelsFile = os.Args[1]
	}

	fmt.Printf("Validating channels file: %s\n", channelsFile)

	loader := channels.NewLoader()
	if err := loader.Load(channelsFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ackChannels := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d ack-only channel(s):\n", len(ackChannels))
	for i, name := range ackChannels {
		fmt.Printf("%d. %s\n", i+1, name)
	}
}
