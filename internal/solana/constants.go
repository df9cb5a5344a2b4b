package solana

import "time"

// Cluster represents a Solana cluster.
type Cluster string

const (
	ClusterMainnet  Cluster = "mainnet-beta"
	ClusterDevnet   Cluster = "devnet"
	ClusterTestnet  Cluster = "testnet"
	ClusterLocalnet Cluster = "localnet"
)

// Public RPC endpoints per cluster.
const (
	RPCMainnet  = "https://api.mainnet-beta.solana.com"
	RPCDevnet   = "https://api.devnet.solana.com"
	RPCTestnet  = "https://api.testnet.solana.com"
	RPCLocalnet = "http://127.0.0.1:8899"
)

// Commitment is the confirmation level requested for reads.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

const (
	// RequestTimeout bounds a single RPC round trip.
	RequestTimeout = 30 * time.Second

	// ConfirmPollInterval is how often to poll while waiting for a
	// submitted transition to confirm.
	ConfirmPollInterval = 2 * time.Second

	// LamportsPerSol is the smallest unit conversion (1 SOL = 10^9 lamports).
	LamportsPerSol = 1_000_000_000
)

// EndpointFor returns the default RPC endpoint for a cluster.
func EndpointFor(cluster Cluster) string {
	switch cluster {
	case ClusterDevnet:
		return RPCDevnet
	case ClusterTestnet:
		return RPCTestnet
	case ClusterLocalnet:
		return RPCLocalnet
	default:
		return RPCMainnet
	}
}

// SolToLamports converts SOL to lamports.
func SolToLamports(sol float64) uint64 {
	return uint64(sol * LamportsPerSol)
}

// LamportsToSol converts lamports to SOL.
func LamportsToSol(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSol
}
