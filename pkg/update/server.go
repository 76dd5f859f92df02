// pkg/update/server.go
package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvo5/goconfigparser"

	"github.com/swpatch/swpatch/internal/remote"
	"github.com/swpatch/swpatch/internal/version"
)

// Descriptor section and key holding the repository address
const (
	DownloadSection = "Download"
	AddressKey      = "address"
)

// ServerInfo is the content of the version descriptor
type ServerInfo struct {
	Version version.Version
	Address string
}

// RepositoryURL returns the base URL diff file names are appended to
func (s ServerInfo) RepositoryURL(repositoryPath string) string {
	return s.Address + repositoryPath
}

// ParseServerInfo reads [Client] ver= and [Download] address=
func ParseServerInfo(data string) (ServerInfo, error) {
	cfg := goconfigparser.New()
	if err := cfg.ReadString(version.CleanINI(data)); err != nil {
		return ServerInfo{}, fmt.Errorf("parse server info: %w", err)
	}

	raw, err := cfg.Get(version.Section, version.Key)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("server info: %w", err)
	}
	v, err := version.Parse(raw)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("server info: %w", err)
	}

	address, err := cfg.Get(DownloadSection, AddressKey)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("server info: %w", err)
	}
	return ServerInfo{Version: v, Address: strings.TrimSpace(address)}, nil
}

// FetchServerInfo loads the descriptor from a URL or a local file
func FetchServerInfo(ctx context.Context, client *remote.Client, source string) (ServerInfo, error) {
	data, err := client.Fetch(ctx, source)
	if err != nil {
		return ServerInfo{}, err
	}
	return ParseServerInfo(string(data))
}
