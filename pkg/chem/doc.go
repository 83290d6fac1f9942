// Package chem provides clients for external chemistry databases:
// PubChem compound lookups and GlyTouCan glycan structure records.
//
// All clients share a common HTTP layer with response caching, automatic
// retries for transient failures, and context cancellation. Service
// subpackages ([pubchem], [glytoucan]) build on the shared [Client].
package chem
