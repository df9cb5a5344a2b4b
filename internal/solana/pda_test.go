package solana

import (
	"bytes"
	"errors"
	"testing"
)

var testProgramID = MustPublicKeyFromBase58("8rwZJ58gyv2yY2eUanMYVWohBBLeSAguNDo736k2nDJf")

func TestFindProgramAddressDeterministic(t *testing.T) {
	seeds := [][]byte{[]byte("task"), bytes.Repeat([]byte{7}, 32), []byte("Buy milk")}

	addr1, bump1, err := FindProgramAddress(seeds, testProgramID)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	addr2, bump2, err := FindProgramAddress(seeds, testProgramID)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}

	if addr1 != addr2 || bump1 != bump2 {
		t.Fatalf("derivation not deterministic: %s/%d vs %s/%d", addr1, bump1, addr2, bump2)
	}
}

func TestFindProgramAddressDistinctInputs(t *testing.T) {
	owner := bytes.Repeat([]byte{7}, 32)

	seen := make(map[PublicKey]string)
	titles := []string{"Buy milk", "Buy milk!", "buy milk", "Walk the dog", ""}
	for _, title := range titles {
		addr, _, err := FindProgramAddress([][]byte{[]byte("task"), owner, []byte(title)}, testProgramID)
		if err != nil {
			t.Fatalf("derive(%q) failed: %v", title, err)
		}
		if prev, dup := seen[addr]; dup {
			t.Fatalf("collision between %q and %q at %s", prev, title, addr)
		}
		seen[addr] = title
	}

	// Same title, different owner must not collide either.
	otherOwner := bytes.Repeat([]byte{8}, 32)
	addr, _, err := FindProgramAddress([][]byte{[]byte("task"), otherOwner, []byte("Buy milk")}, testProgramID)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if _, dup := seen[addr]; dup {
		t.Fatalf("collision across owners at %s", addr)
	}
}

func TestFindProgramAddressOffCurve(t *testing.T) {
	addr, _, err := FindProgramAddress([][]byte{[]byte("task")}, testProgramID)
	if err != nil {
		t.Fatalf("derive failed: %v", err)
	}
	if IsOnCurve(addr) {
		t.Fatalf("derived address %s is a valid signing key", addr)
	}
}

func TestCreateProgramAddressSeedLimits(t *testing.T) {
	tooLong := make([]byte, MaxSeedLength+1)
	_, err := CreateProgramAddress([][]byte{tooLong}, testProgramID)
	if !errors.Is(err, ErrSeedTooLong) {
		t.Fatalf("expected ErrSeedTooLong, got %v", err)
	}

	many := make([][]byte, MaxSeeds+1)
	for i := range many {
		many[i] = []byte{byte(i)}
	}
	_, err = CreateProgramAddress(many, testProgramID)
	if !errors.Is(err, ErrTooManySeeds) {
		t.Fatalf("expected ErrTooManySeeds, got %v", err)
	}
}

func TestIsOnCurveRealKey(t *testing.T) {
	// The ed25519 base point compresses to 0x58 followed by 0x66...; any
	// honest wallet key must decompress.
	base := PublicKey{
		0x58, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
	}
	if !IsOnCurve(base) {
		t.Fatalf("base point should be on curve")
	}
}
