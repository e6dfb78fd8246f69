package solana

import "strings"

type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// ResolveEndpoint maps a cluster moniker to its public RPC endpoint. Anything
// that isn't a known moniker is returned unchanged.
func ResolveEndpoint(endpoint string) string {
	switch strings.ToLower(endpoint) {
	case "localnet", "localhost":
		return string(EnvironmentLocal)
	case "devnet":
		return string(EnvironmentDev)
	case "testnet":
		return string(EnvironmentTest)
	case "mainnet", "mainnet-beta":
		return string(EnvironmentProd)
	default:
		return endpoint
	}
}
