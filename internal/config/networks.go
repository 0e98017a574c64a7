// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import "sort"

// Network names a Sui network whose public fullnode can serve event lookups.
type Network string

const (
	NetworkMainnet  Network = "mainnet"
	NetworkTestnet  Network = "testnet"
	NetworkDevnet   Network = "devnet"
	NetworkLocalnet Network = "localnet"
)

// Public fullnode JSON-RPC endpoints
var fullnodeURLs = map[Network]string{
	NetworkMainnet:  "https://fullnode.mainnet.sui.io:443",
	NetworkTestnet:  "https://fullnode.testnet.sui.io:443",
	NetworkDevnet:   "https://fullnode.devnet.sui.io:443",
	NetworkLocalnet: "http://127.0.0.1:9000",
}

// FullnodeURL returns the public fullnode URL for net.
func FullnodeURL(net Network) (string, bool) {
	url, ok := fullnodeURLs[net]
	return url, ok
}

func networkNames() []string {
	names := make([]string, 0, len(fullnodeURLs))
	for n := range fullnodeURLs {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}
