package merkle_test

import (
	"fmt"
	"testing"

	"github.com/ipenkin/ex-timestamping/common"
	. "github.com/ipenkin/ex-timestamping/merkle"
)

func leaves(n int) []common.Hash {
	hashes := make([]common.Hash, n)
	for i := range hashes {
		hashes[i] = common.Sha([]byte(fmt.Sprintf("leaf %d", i)))
	}
	return hashes
}

func TestMerkleRootEmpty(t *testing.T) {
	if MerkleRoot(nil) != EmptyRoot {
		t.Errorf("empty list root = %s, want %s", MerkleRoot(nil), EmptyRoot)
	}
}

func TestMerkleRootChangesWithOrder(t *testing.T) {
	hashes := leaves(3)
	swapped := []common.Hash{hashes[1], hashes[0], hashes[2]}
	if MerkleRoot(hashes) == MerkleRoot(swapped) {
		t.Errorf("list root does not depend on order")
	}
}

func TestListProof(t *testing.T) {
	for n := 1; n <= 9; n++ {
		hashes := leaves(n)
		root := MerkleRoot(hashes)
		for i := 0; i < n; i++ {
			proof, err := BuildListProof(hashes, uint64(i))
			if err != nil {
				t.Fatalf("n=%d i=%d: %v", n, i, err)
			}
			if !proof.Verify(root) {
				t.Errorf("n=%d i=%d: proof does not verify", n, i)
			}
			if n > 1 {
				proof.Index = uint64((i + 1) % n)
				if proof.Verify(root) {
					t.Errorf("n=%d i=%d: proof verifies with a wrong index", n, i)
				}
			}
		}
	}
}

func TestListProofWrongLeaf(t *testing.T) {
	hashes := leaves(4)
	proof, err := BuildListProof(hashes, 2)
	if err != nil {
		t.Fatal(err)
	}
	proof.Leaf = hashes[3]
	if proof.Verify(MerkleRoot(hashes)) {
		t.Errorf("proof verifies for a different leaf")
	}
}

func TestListProofOutOfRange(t *testing.T) {
	if _, err := BuildListProof(leaves(2), 2); err == nil {
		t.Errorf("expected an error for index past the end")
	}
}
