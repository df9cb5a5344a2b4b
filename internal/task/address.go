package task

import (
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// ProgramID is the deployed task-manager program.
var ProgramID = solana.MustPublicKeyFromBase58("8rwZJ58gyv2yY2eUanMYVWohBBLeSAguNDo736k2nDJf")

// AddressSeed is the derivation namespace tag that separates task accounts
// from other account types sharing the same owner/title inputs.
var AddressSeed = []byte("task")

// DeriveAddress maps (author, title) to the task's account address under the
// given program. Deterministic and re-derivable by both client and ledger;
// the bump proves the address is off-curve and therefore not a signing key.
func DeriveAddress(programID solana.PublicKey, author solana.PublicKey, title string) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{AddressSeed, author[:], []byte(title)}
	return solana.FindProgramAddress(seeds, programID)
}
