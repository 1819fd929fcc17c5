package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
)

func Test_Lookup(t *testing.T) {
	dir := t.TempDir()

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}

	if err := crypto.SaveECDSA(filepath.Join(dir, "kennedy.ecdsa"), privateKey); err != nil {
		t.Fatalf("Should be able to save the key: %s", err)
	}

	ns, err := nameservice.New(dir)
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
	if got := ns.Lookup(address); got != "kennedy" {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", "kennedy")
		t.Fatalf("Should find the name for the address.")
	}

	if got := ns.Lookup("unknown"); got != "unknown" {
		t.Fatalf("Should return the address when there is no name.")
	}

	missing, err := nameservice.New(filepath.Join(dir, "missing"))
	if err != nil || len(missing.Copy()) != 0 {
		t.Fatalf("Should construct an empty name service for a missing folder.")
	}
}
