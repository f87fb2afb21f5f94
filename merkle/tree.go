// Copyright 2015 Factom Foundation
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file.

package merkle

import (
	"fmt"

	"github.com/ipenkin/ex-timestamping/common"
)

// Domain separation bytes, so a leaf can never be read as a branch.
const (
	leafPrefix   = byte(0x00)
	branchPrefix = byte(0x01)
)

func hashLeaf(h common.Hash) common.Hash {
	return common.ShaConcat([]byte{leafPrefix}, h[:])
}

func hashBranch(left, right common.Hash) common.Hash {
	return common.ShaConcat([]byte{branchPrefix}, left[:], right[:])
}

// hashLone is used for the last node of a level with an odd count.
func hashLone(left common.Hash) common.Hash {
	return common.ShaConcat([]byte{branchPrefix}, left[:])
}

// EmptyRoot is the root of a tree without leaves.
var EmptyRoot = common.Sha(nil)

// buildLevels returns every level of the tree, leaves first.
func buildLevels(hashes []common.Hash) [][]common.Hash {
	level := make([]common.Hash, len(hashes))
	for i, h := range hashes {
		level[i] = hashLeaf(h)
	}
	levels := [][]common.Hash{level}

	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashBranch(level[i], level[i+1]))
			} else {
				next = append(next, hashLone(level[i]))
			}
		}
		levels = append(levels, next)
		level = next
	}
	return levels
}

// BuildMerkleTreeStore returns all the nodes of the tree over hashes,
// level by level with the leaves first. The root is the last element.
func BuildMerkleTreeStore(hashes []common.Hash) []common.Hash {
	if len(hashes) == 0 {
		return []common.Hash{EmptyRoot}
	}
	var store []common.Hash
	for _, level := range buildLevels(hashes) {
		store = append(store, level...)
	}
	return store
}

// MerkleRoot returns the root of the list tree over hashes.
func MerkleRoot(hashes []common.Hash) common.Hash {
	merkle := BuildMerkleTreeStore(hashes)
	return merkle[len(merkle)-1]
}

// Sibling positions in a ListProof.
const (
	PositionLeft  = "left"
	PositionRight = "right"
	PositionNone  = "none"
)

type ProofStep struct {
	Hash     common.Hash `json:"hash"`
	Position string      `json:"position"`
}

// ListProof proves that Leaf is the element at Index of the list a tree
// root was built from.
type ListProof struct {
	Index uint64      `json:"index"`
	Leaf  common.Hash `json:"leaf"`
	Path  []ProofStep `json:"path"`
}

// BuildListProof creates the inclusion proof for hashes[index].
func BuildListProof(hashes []common.Hash, index uint64) (*ListProof, error) {
	if index >= uint64(len(hashes)) {
		return nil, fmt.Errorf("index %d out of range for %d leaves", index, len(hashes))
	}

	proof := &ListProof{Index: index, Leaf: hashes[index]}
	levels := buildLevels(hashes)
	pos := index
	for _, level := range levels[:len(levels)-1] {
		step := ProofStep{Position: PositionNone}
		if pos%2 == 1 {
			step = ProofStep{Hash: level[pos-1], Position: PositionLeft}
		} else if pos+1 < uint64(len(level)) {
			step = ProofStep{Hash: level[pos+1], Position: PositionRight}
		}
		proof.Path = append(proof.Path, step)
		pos /= 2
	}
	return proof, nil
}

// Root recomputes the root the proof commits to.
func (p *ListProof) Root() common.Hash {
	h := hashLeaf(p.Leaf)
	for _, step := range p.Path {
		switch step.Position {
		case PositionLeft:
			h = hashBranch(step.Hash, h)
		case PositionRight:
			h = hashBranch(h, step.Hash)
		default:
			h = hashLone(h)
		}
	}
	return h
}

// Verify checks the path against Index as well as the root.
func (p *ListProof) Verify(root common.Hash) bool {
	pos := p.Index
	for _, step := range p.Path {
		if (step.Position == PositionLeft) != (pos%2 == 1) {
			return false
		}
		pos /= 2
	}
	return pos == 0 && p.Root() == root
}
