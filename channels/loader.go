package channels

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

/* Loader manages the set of reserved local channels from channels.yaml
 * Calls targeting an ack-only channel are answered locally with a
 * static success body and never reach the remote script invoker
 */

// DefaultAckChannel is the reserved local channel present when no
// channels file is configured
const DefaultAckChannel = "other-hooks"

// channelPattern validates channel names: path-segment safe, kebab-case
var channelPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Config represents the structure of channels.yaml
type Config struct {
	AckChannels []string `yaml:"ack_channels"`
}

// Loader holds the loaded channel set
type Loader struct {
	ack map[string]struct{}
}

// NewLoader creates a loader carrying only the default ack channel
func NewLoader() *Loader {
	return &Loader{
		ack: map[string]struct{}{DefaultAckChannel: {}},
	}
}

// Load reads and parses the channels file, replacing the current set
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading channels file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing channels YAML: %w", err)
	}

	ack := make(map[string]struct{}, len(config.AckChannels))
	for _, name := range config.AckChannels {
		if !channelPattern.MatchString(name) {
			return fmt.Errorf("invalid channel name: %q", name)
		}
		ack[name] = struct{}{}
	}

	l.ack = ack
	return nil
}

// IsAck reports whether the endpoint is a reserved local channel
func (l *Loader) IsAck(endpoint string) bool {
	_, exists := l.ack[endpoint]
	return exists
}

// List returns all ack channels, sorted
func (l *Loader) List() []string {
	names := make([]string, 0, len(l.ack))
	for name := range l.ack {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
