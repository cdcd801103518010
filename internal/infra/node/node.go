package node

import (
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Set at build time with -ldflags "-X thermo-server/internal/infra/node.Version=..."
var (
	Version    = "development"
	CommitHash = "unknown"
)

const _loopbackAddress = "127.0.0.1"

// Node describes the running server instance.
type Node struct {
	ID         string
	Hostname   string
	IPAddress  string
	Version    string
	CommitHash string
}

var (
	current     Node
	currentOnce sync.Once
)

// GetNodeInfo returns the same identity for the whole process lifetime.
func GetNodeInfo() *Node {
	currentOnce.Do(func() {
		current = Node{
			ID:        uuid.NewString(),
			Hostname:  hostname(),
			IPAddress: firstNonLoopbackIPv4(),
		}
	})

	info := current
	info.Version = Version
	info.CommitHash = CommitHash
	return &info
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return name
}

func firstNonLoopbackIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return _loopbackAddress
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip.String()
		}
	}

	return _loopbackAddress
}
