// Package store manages named glycan datasets: curated lists of
// IUPAC-condensed sequences with optional per-glycan annotations. A file
// backend serves CLI usage, a MongoDB backend serves shared deployments,
// and a set of reference datasets ships embedded in the binary.
package store

import (
	"context"

	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

// Dataset is a named collection of glycans.
type Dataset struct {
	Name        string            `json:"name" bson:"name"`
	Description string            `json:"description,omitempty" bson:"description,omitempty"`
	Glycans     []string          `json:"glycans" bson:"glycans"`
	Labels      map[string]string `json:"labels,omitempty" bson:"labels,omitempty"` // glycan -> annotation
}

// Validate checks the dataset name and every sequence in it.
func (d *Dataset) Validate() error {
	if err := errors.ValidateDatasetName(d.Name); err != nil {
		return err
	}
	if len(d.Glycans) == 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset %q has no glycans", d.Name)
	}
	for _, seq := range d.Glycans {
		if err := errors.ValidateGlycanSequence(seq); err != nil {
			return err
		}
	}
	return nil
}

// Store is the dataset backend contract.
type Store interface {
	// Get retrieves a dataset by name. Missing datasets yield an error
	// with code [errors.ErrCodeDatasetNotFound].
	Get(ctx context.Context, name string) (*Dataset, error)
	// Put stores a dataset, replacing any existing one of the same name.
	Put(ctx context.Context, d *Dataset) error
	// Delete removes a dataset. Deleting an absent dataset is not an
	// error.
	Delete(ctx context.Context, name string) error
	// List returns the stored dataset names, sorted.
	List(ctx context.Context) ([]string, error)
	// Close releases backend resources.
	Close(ctx context.Context) error
}
