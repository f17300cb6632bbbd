// Package graph decodes the graph value structures Bolt v1 embeds in
// Record fields: Node, Relationship, UnboundRelationship, and Path.
// Decoding is a thin projection over packstream.Value —
// Session.PullAll hands back raw Values; callers use these helpers (or
// their own) to interpret Structure fields whose signature matches a
// graph type.
package graph

import "github.com/Gudahtt/bolt/packstream"

const (
	sigNode                byte = 0x4E
	sigRelationship        byte = 0x52
	sigUnboundRelationship byte = 0x72
	sigPath                byte = 0x50
)

// Node is sig=0x4E {id, labels, properties}.
type Node struct {
	ID         int64
	Labels     []string
	Properties map[string]packstream.Value
}

// Relationship is sig=0x52 {id, start_id, end_id, type, properties}.
type Relationship struct {
	ID         int64
	StartID    int64
	EndID      int64
	Type       string
	Properties map[string]packstream.Value
}

// UnboundRelationship is sig=0x72 {id, type, properties}; it appears
// inside Path.Relationships, where the endpoints are implied by the
// path's node sequence rather than carried explicitly.
type UnboundRelationship struct {
	ID         int64
	Type       string
	Properties map[string]packstream.Value
}

// Path is sig=0x50 {nodes, relationships, sequence}.
type Path struct {
	Nodes         []Node
	Relationships []UnboundRelationship
	// Sequence alternates relationship and node indices: a positive entry
	// n means "traverse Relationships[n-1] forward", negative means
	// traverse it backward, indices are 1-based per the Bolt encoding.
	Sequence []int64
}

// IsNode reports whether v is a Structure tagged as a Node.
func IsNode(v packstream.Value) bool { return isStruct(v, sigNode) }

// IsRelationship reports whether v is a Structure tagged as a Relationship.
func IsRelationship(v packstream.Value) bool { return isStruct(v, sigRelationship) }

// IsUnboundRelationship reports whether v is tagged as an UnboundRelationship.
func IsUnboundRelationship(v packstream.Value) bool { return isStruct(v, sigUnboundRelationship) }

// IsPath reports whether v is a Structure tagged as a Path.
func IsPath(v packstream.Value) bool { return isStruct(v, sigPath) }

func isStruct(v packstream.Value, sig byte) bool {
	return v.Kind == packstream.KindStruct && v.Signature == sig
}

// DecodeNode interprets v as a Node. The caller must check IsNode first;
// DecodeNode does not itself validate the signature.
func DecodeNode(v packstream.Value) Node {
	return Node{
		ID:         v.Fields[0].Int,
		Labels:     stringList(v.Fields[1]),
		Properties: propertyMap(v.Fields[2]),
	}
}

// DecodeRelationship interprets v as a Relationship.
func DecodeRelationship(v packstream.Value) Relationship {
	return Relationship{
		ID:         v.Fields[0].Int,
		StartID:    v.Fields[1].Int,
		EndID:      v.Fields[2].Int,
		Type:       v.Fields[3].String,
		Properties: propertyMap(v.Fields[4]),
	}
}

// DecodeUnboundRelationship interprets v as an UnboundRelationship.
func DecodeUnboundRelationship(v packstream.Value) UnboundRelationship {
	return UnboundRelationship{
		ID:         v.Fields[0].Int,
		Type:       v.Fields[1].String,
		Properties: propertyMap(v.Fields[2]),
	}
}

// DecodePath interprets v as a Path.
func DecodePath(v packstream.Value) Path {
	nodes := make([]Node, len(v.Fields[0].List))
	for i, n := range v.Fields[0].List {
		nodes[i] = DecodeNode(n)
	}
	rels := make([]UnboundRelationship, len(v.Fields[1].List))
	for i, r := range v.Fields[1].List {
		rels[i] = DecodeUnboundRelationship(r)
	}
	seq := make([]int64, len(v.Fields[2].List))
	for i, s := range v.Fields[2].List {
		seq[i] = s.Int
	}
	return Path{Nodes: nodes, Relationships: rels, Sequence: seq}
}

func stringList(v packstream.Value) []string {
	out := make([]string, len(v.List))
	for i, item := range v.List {
		out[i] = item.String
	}
	return out
}

func propertyMap(v packstream.Value) map[string]packstream.Value {
	out := make(map[string]packstream.Value, len(v.Map))
	for _, p := range v.Map {
		out[p.Key] = p.Value
	}
	return out
}
