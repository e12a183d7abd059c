// Package graphql exposes an optional GraphQL surface over the stack
// device: queries for depth/capacity/contents and mutations mapping onto
// push, pop and resize.
package graphql

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/dshibkova/intstack/pkg/device"
	"github.com/dshibkova/intstack/pkg/events"
)

// stackInfo is the resolved shape of the Stack type.
type stackInfo struct {
	Depth    int     `json:"depth"`
	Capacity int     `json:"capacity"`
	Values   []int32 `json:"values"`
}

// popResult is the resolved shape of the PopResult type. Value is nil when
// the stack was empty: "no value" stays a variant, never the number 0.
type popResult struct {
	Value *int32 `json:"value"`
	Empty bool   `json:"empty"`
}

// Schema builds the GraphQL schema over dev. The broadcaster may be nil;
// mutations then skip the watch stream.
func Schema(dev *device.StackDevice, broadcaster *events.Broadcaster) (graphql.Schema, error) {
	stackType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Stack",
		Description: "The shared bounded integer stack",
		Fields: graphql.Fields{
			"depth": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of elements currently on the stack",
			},
			"capacity": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Current maximum element count",
			},
			"values": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.Int)),
				Description: "Live elements, bottom first",
			},
		},
	})

	popResultType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "PopResult",
		Description: "Result of a pop operation",
		Fields: graphql.Fields{
			"value": &graphql.Field{
				Type:        graphql.Int,
				Description: "Popped value, null when the stack was empty",
			},
			"empty": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether the stack was empty",
			},
		},
	})

	resolveStack := func() (*stackInfo, error) {
		values, err := dev.Snapshot()
		if err != nil {
			return nil, err
		}
		depth, capacity := dev.Stats()
		return &stackInfo{Depth: depth, Capacity: capacity, Values: values}, nil
	}

	publish := func(op events.Op, value *int32) {
		if broadcaster == nil {
			return
		}
		depth, capacity := dev.Stats()
		broadcaster.Publish(events.Event{
			Op:       op,
			Value:    value,
			Depth:    depth,
			Capacity: capacity,
			Time:     time.Now(),
		})
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"stack": &graphql.Field{
				Type:        graphql.NewNonNull(stackType),
				Description: "Current stack state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return resolveStack()
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"push": &graphql.Field{
				Type:        graphql.NewNonNull(stackType),
				Description: "Push a value onto the stack",
				Args: graphql.FieldConfigArgument{
					"value": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.Int),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := int32(p.Args["value"].(int))
					if _, err := dev.Write(device.EncodeInt32(v)); err != nil {
						return nil, err
					}
					publish(events.OpPush, &v)
					return resolveStack()
				},
			},
			"pop": &graphql.Field{
				Type:        graphql.NewNonNull(popResultType),
				Description: "Pop the top value; empty is reported, not an error",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					buf := make([]byte, device.IntSize)
					n, err := dev.Read(buf)
					if err != nil {
						return nil, err
					}
					if n == 0 {
						return &popResult{Empty: true}, nil
					}
					v, err := device.DecodeInt32(buf)
					if err != nil {
						return nil, err
					}
					publish(events.OpPop, &v)
					return &popResult{Value: &v}, nil
				},
			},
			"setSize": &graphql.Field{
				Type:        graphql.NewNonNull(stackType),
				Description: "Resize the stack; shrinking truncates from the top down",
				Args: graphql.FieldConfigArgument{
					"size": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.Int),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					n := int32(p.Args["size"].(int))
					if err := dev.Control(device.CmdSetSize, device.EncodeInt32(n)); err != nil {
						return nil, err
					}
					publish(events.OpResize, nil)
					return resolveStack()
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
