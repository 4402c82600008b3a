package meeting

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// IDs hands out time-ordered meeting identifiers.
type IDs struct {
	node *snowflake.Node
}

// NewIDs creates a generator for node (0..1023).
func NewIDs(node int64) (*IDs, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("meeting ids: %w", err)
	}
	return &IDs{node: n}, nil
}

func (g *IDs) Next() string { return g.node.Generate().String() }
