// Package idgen hands out entity identities before rows are written, so a
// whole trip graph can be staged with its foreign keys resolved and then
// committed in one transaction.
package idgen

import (
	"errors"

	"github.com/bwmarrin/snowflake"
)

var errInvalidNode = errors.New("snowflake node must be between 0 and 1023")

type Generator struct {
	node *snowflake.Node
}

func New(nodeID int64) (*Generator, error) {
	if nodeID < 0 || nodeID > 1023 {
		return nil, errInvalidNode
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

// Next returns a new unique, time-ordered id.
func (g *Generator) Next() uint {
	return uint(g.node.Generate().Int64())
}
