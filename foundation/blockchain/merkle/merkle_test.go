// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"bytes"
	"crypto/md5"
	"crypto/sha256"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Data uses the sha256 hashing algorithm for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the values using sha256.
func (d Data) Hash() ([]byte, error) {
	h := sha256.Sum256([]byte(d.x))
	return h[:], nil
}

// Equals tests for equality of two piece of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

func leafs(values ...string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		h, _ := Data{x: v}.Hash()
		out[i] = h
	}
	return out
}

func pair(left, right []byte) []byte {
	h := sha256.Sum256(append(append([]byte{}, left...), right...))
	return h[:]
}

// =============================================================================

func Test_EmptyRoot(t *testing.T) {
	root := merkle.Root(nil)
	if got := hexutil.Encode(root); got != merkle.EmptyRootHex {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", merkle.EmptyRootHex)
		t.Fatalf("Should get the empty root constant for no leaves.")
	}

	if got := merkle.RootHex([][]byte{}); got != merkle.EmptyRootHex {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", merkle.EmptyRootHex)
		t.Fatalf("Should get the empty root constant for an empty slice.")
	}

	tree, err := merkle.NewTree([]Data{})
	if err != nil {
		t.Fatalf("Should be able to construct a tree with no values: %s", err)
	}
	if tree.RootHex() != merkle.EmptyRootHex {
		t.Logf("got: %s", tree.RootHex())
		t.Logf("exp: %s", merkle.EmptyRootHex)
		t.Fatalf("Should get the empty root constant from an empty tree.")
	}
}

func Test_Root(t *testing.T) {
	a, b, c := leafs("a")[0], leafs("b")[0], leafs("c")[0]

	type table struct {
		name   string
		leaves [][]byte
		exp    []byte
	}

	tt := []table{
		{
			name:   "single",
			leaves: [][]byte{a},
			exp:    pair(a, a),
		},
		{
			name:   "pair",
			leaves: [][]byte{a, b},
			exp:    pair(a, b),
		},
		{
			name:   "odd",
			leaves: [][]byte{a, b, c},
			exp:    pair(pair(a, b), pair(c, c)),
		},
		{
			name:   "four",
			leaves: [][]byte{a, b, c, a},
			exp:    pair(pair(a, b), pair(c, a)),
		},
		{
			name:   "five",
			leaves: [][]byte{a, b, c, a, b},
			exp:    pair(pair(pair(a, b), pair(c, a)), pair(pair(b, b), pair(b, b))),
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			got := merkle.Root(tst.leaves)
			if !bytes.Equal(got, tst.exp) {
				t.Logf("Test %s:\tgot: %x", tst.name, got)
				t.Logf("Test %s:\texp: %x", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould get the expected root.", tst.name)
			}

			if !bytes.Equal(merkle.Root(tst.leaves), got) {
				t.Fatalf("Test %s:\tShould get the same root for the same leaves.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_RootOrder(t *testing.T) {
	forward := merkle.Root(leafs("a", "b", "c", "d"))
	reverse := merkle.Root(leafs("d", "c", "b", "a"))
	swapped := merkle.Root(leafs("b", "a", "c", "d"))

	if bytes.Equal(forward, reverse) || bytes.Equal(forward, swapped) {
		t.Fatalf("Should get a different root when the leaf order changes.")
	}
}

func Test_TreeMatchesRoot(t *testing.T) {
	values := []Data{{x: "a"}, {x: "b"}, {x: "c"}, {x: "d"}, {x: "e"}}

	tree, err := merkle.NewTree(values)
	if err != nil {
		t.Fatalf("Should be able to construct a tree: %s", err)
	}

	exp := merkle.Root(leafs("a", "b", "c", "d", "e"))
	if !bytes.Equal(tree.MerkleRoot, exp) {
		t.Logf("got: %x", tree.MerkleRoot)
		t.Logf("exp: %x", exp)
		t.Fatalf("Should get the same root from the tree and the leaf function.")
	}

	if err := tree.Verify(); err != nil {
		t.Fatalf("Should be able to verify the tree: %s", err)
	}

	tree.Root.Hash = []byte{1}
	tree.MerkleRoot = []byte{1}
	if err := tree.Verify(); err == nil {
		t.Fatalf("Should not be able to verify a tampered tree.")
	}

	if got := len(tree.Values()); got != len(values) {
		t.Logf("got: %d", got)
		t.Logf("exp: %d", len(values))
		t.Fatalf("Should get back the original values.")
	}
}

func Test_Proof(t *testing.T) {
	values := []Data{{x: "a"}, {x: "b"}, {x: "c"}, {x: "d"}, {x: "e"}}

	tree, err := merkle.NewTree(values)
	if err != nil {
		t.Fatalf("Should be able to construct a tree: %s", err)
	}

	for _, value := range values {
		proof, order, err := tree.Proof(value)
		if err != nil {
			t.Fatalf("Should be able to get a proof for %q: %s", value.x, err)
		}

		leaf, _ := value.Hash()
		if !merkle.VerifyProof(tree.MerkleRoot, leaf, proof, order) {
			t.Fatalf("Should be able to verify the proof for %q.", value.x)
		}

		other, _ := Data{x: "z"}.Hash()
		if merkle.VerifyProof(tree.MerkleRoot, other, proof, order) {
			t.Fatalf("Should not verify the proof for %q against other data.", value.x)
		}
	}

	if _, _, err := tree.Proof(Data{x: "z"}); err == nil {
		t.Fatalf("Should not get a proof for data that is not in the tree.")
	}
}

func Test_HashStrategy(t *testing.T) {
	values := []Data{{x: "a"}, {x: "b"}}

	tree, err := merkle.NewTree(values, merkle.WithHashStrategy[Data](md5.New))
	if err != nil {
		t.Fatalf("Should be able to construct a tree: %s", err)
	}

	a, _ := values[0].Hash()
	b, _ := values[1].Hash()
	exp := md5.Sum(append(append([]byte{}, a...), b...))

	if !bytes.Equal(tree.MerkleRoot, exp[:]) {
		t.Logf("got: %x", tree.MerkleRoot)
		t.Logf("exp: %x", exp)
		t.Fatalf("Should use the specified hash strategy for the nodes.")
	}
}
