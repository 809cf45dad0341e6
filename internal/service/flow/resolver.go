// Package flow resolves a product's bill of materials into a tree whose
// leaves are only raw materials, machines, and manual jobs.
package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamoudk/plantops/internal/domain/models"
)

// DefaultMaxDepth bounds the composition depth of a resolved tree. Real
// product structures sit well below this; hitting the bound means bad data.
const DefaultMaxDepth = 12

var (
	// ErrCycleDetected indicates a semi-finished component references itself
	// through its own composition chain.
	ErrCycleDetected = errors.New("cycle detected in bill of materials")

	// ErrMaxDepth indicates the composition nests deeper than the resolver allows.
	ErrMaxDepth = errors.New("bill of materials exceeds maximum depth")
)

// NodeKind tags one node of a resolved manufacturing flow.
type NodeKind string

const (
	NodeProduct      NodeKind = "product"
	NodeSemiFinished NodeKind = "semi_finished"
	NodeRawMaterial  NodeKind = "raw_material"
	NodeMachine      NodeKind = "machine"
	NodeManualJob    NodeKind = "manual_job"
)

// Node is one element of the resolved tree. Quantity is expressed per single
// unit of the root product (quantities multiply down the tree).
type Node struct {
	Kind        NodeKind `json:"kind"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Quantity    float64  `json:"quantity,omitempty"`
	CycleTime   float64  `json:"cycleTime,omitempty"`
	TimePerUnit float64  `json:"timePerUnit,omitempty"`
	Components  []Node   `json:"components,omitempty"`
}

// Catalog supplies the lookups the resolver descends through.
type Catalog interface {
	Product(ctx context.Context, tenantID, id string) (models.Product, error)
	SemiFinished(ctx context.Context, tenantID, id string) (models.SemiFinishedProduct, error)
	RawMaterial(ctx context.Context, tenantID, id string) (models.RawMaterial, error)
	Machine(ctx context.Context, tenantID, id string) (models.Machine, error)
	ManualJob(ctx context.Context, tenantID, id string) (models.ManualJob, error)
}

// Resolver walks product compositions.
type Resolver struct {
	catalog  Catalog
	maxDepth int
	logger   *zap.Logger
}

// NewResolver wires a flow resolver.
func NewResolver(catalog Catalog, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalog: catalog, maxDepth: DefaultMaxDepth, logger: logger}
}

// Resolve expands the item identified by productType/productID into its full
// manufacturing flow. The visited set guards against composition cycles; the
// depth bound guards against runaway nesting.
func (r *Resolver) Resolve(ctx context.Context, tenantID string, productType models.ProductType, productID string) (Node, error) {
	visited := map[string]bool{}

	switch productType {
	case models.ProductTypeFinished:
		p, err := r.catalog.Product(ctx, tenantID, productID)
		if err != nil {
			return Node{}, fmt.Errorf("resolve product %s: %w", productID, err)
		}
		children, err := r.expand(ctx, tenantID, p.BOM, 1, 1, visited)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: NodeProduct, ID: p.ID, Name: p.Name, Quantity: 1, Components: children}, nil

	case models.ProductTypeSemiFinished:
		sf, err := r.catalog.SemiFinished(ctx, tenantID, productID)
		if err != nil {
			return Node{}, fmt.Errorf("resolve semi-finished %s: %w", productID, err)
		}
		visited[sf.ID] = true
		children, err := r.expand(ctx, tenantID, sf.BOM, 1, 1, visited)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: NodeSemiFinished, ID: sf.ID, Name: sf.Name, Quantity: 1, Components: children}, nil

	default:
		return Node{}, fmt.Errorf("%w: unknown product type %q", models.ErrValidation, productType)
	}
}

// expand converts one BOM level into child nodes, descending into
// semi-finished components.
func (r *Resolver) expand(ctx context.Context, tenantID string, bom models.BillOfMaterials, multiplier float64, depth int, visited map[string]bool) ([]Node, error) {
	if depth > r.maxDepth {
		return nil, ErrMaxDepth
	}

	var children []Node

	for _, rm := range bom.RawMaterials {
		mat, err := r.catalog.RawMaterial(ctx, tenantID, rm.RawMaterialID)
		if err != nil {
			return nil, fmt.Errorf("resolve raw material %s: %w", rm.RawMaterialID, err)
		}
		children = append(children, Node{
			Kind:     NodeRawMaterial,
			ID:       mat.ID,
			Name:     mat.Name,
			Quantity: rm.Quantity * multiplier,
		})
	}

	for _, m := range bom.Machines {
		machine, err := r.catalog.Machine(ctx, tenantID, m.MachineID)
		if err != nil {
			return nil, fmt.Errorf("resolve machine %s: %w", m.MachineID, err)
		}
		children = append(children, Node{
			Kind:      NodeMachine,
			ID:        machine.ID,
			Name:      machine.Name,
			CycleTime: m.CycleTime,
		})
	}

	for _, j := range bom.ManualJobs {
		job, err := r.catalog.ManualJob(ctx, tenantID, j.ManualJobID)
		if err != nil {
			return nil, fmt.Errorf("resolve manual job %s: %w", j.ManualJobID, err)
		}
		children = append(children, Node{
			Kind:        NodeManualJob,
			ID:          job.ID,
			Name:        job.Name,
			TimePerUnit: j.TimePerUnit,
		})
	}

	for _, sf := range bom.SemiFinished {
		if visited[sf.SemiFinishedID] {
			return nil, fmt.Errorf("%w: component %s", ErrCycleDetected, sf.SemiFinishedID)
		}

		component, err := r.catalog.SemiFinished(ctx, tenantID, sf.SemiFinishedID)
		if err != nil {
			return nil, fmt.Errorf("resolve semi-finished %s: %w", sf.SemiFinishedID, err)
		}

		visited[sf.SemiFinishedID] = true
		grandchildren, err := r.expand(ctx, tenantID, component.BOM, multiplier*sf.Quantity, depth+1, visited)
		delete(visited, sf.SemiFinishedID)
		if err != nil {
			return nil, err
		}

		children = append(children, Node{
			Kind:       NodeSemiFinished,
			ID:         component.ID,
			Name:       component.Name,
			Quantity:   sf.Quantity * multiplier,
			Components: grandchildren,
		})
	}

	return children, nil
}
