// Package pubchem provides access to the PubChem PUG REST API for
// compound property lookups by name or CID.
package pubchem

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Glycocalex/glycowork-ab/pkg/cache"
	"github.com/Glycocalex/glycowork-ab/pkg/chem"
)

const defaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

// Compound holds the chemical properties of one PubChem record.
type Compound struct {
	CID              int     `json:"cid"`
	MolecularFormula string  `json:"molecular_formula"`
	MolecularWeight  float64 `json:"molecular_weight"`
	CanonicalSMILES  string  `json:"canonical_smiles"`
	InChI            string  `json:"inchi"`
	InChIKey         string  `json:"inchi_key"`
	IUPACName        string  `json:"iupac_name"`
}

// Client provides access to PubChem. All methods are safe for concurrent
// use.
type Client struct {
	*chem.Client
	// BaseURL overrides the PUG REST endpoint, used in tests.
	BaseURL string
}

// NewClient creates a PubChem client caching responses in backend for
// ttl, with retries attempts per request. Use cache.NewNullCache() to
// disable caching.
func NewClient(backend cache.Cache, ttl time.Duration, retries int) *Client {
	return &Client{
		Client:  chem.NewClient(backend, "pubchem", ttl, retries, nil),
		BaseURL: defaultBaseURL,
	}
}

// propertyTable mirrors the PUG REST property response. PubChem encodes
// MolecularWeight as a string.
type propertyTable struct {
	PropertyTable struct {
		Properties []struct {
			CID              int    `json:"CID"`
			MolecularFormula string `json:"MolecularFormula"`
			MolecularWeight  string `json:"MolecularWeight"`
			CanonicalSMILES  string `json:"CanonicalSMILES"`
			InChI            string `json:"InChI"`
			InChIKey         string `json:"InChIKey"`
			IUPACName        string `json:"IUPACName"`
		} `json:"Properties"`
	} `json:"PropertyTable"`
}

const propertyList = "MolecularFormula,MolecularWeight,CanonicalSMILES,InChI,InChIKey,IUPACName"

// CompoundByName looks a compound up by name (common names work, e.g.
// "N-acetyllactosamine"). With refresh set the cache is bypassed.
func (c *Client) CompoundByName(ctx context.Context, name string, refresh bool) (*Compound, error) {
	url := fmt.Sprintf("%s/compound/name/%s/property/%s/JSON", c.BaseURL, chem.URLEncode(name), propertyList)
	return c.fetchCompound(ctx, "name:"+name, url, refresh)
}

// CompoundByCID looks a compound up by its PubChem compound identifier.
func (c *Client) CompoundByCID(ctx context.Context, cid int, refresh bool) (*Compound, error) {
	url := fmt.Sprintf("%s/compound/cid/%d/property/%s/JSON", c.BaseURL, cid, propertyList)
	return c.fetchCompound(ctx, fmt.Sprintf("cid:%d", cid), url, refresh)
}

func (c *Client) fetchCompound(ctx context.Context, key, url string, refresh bool) (*Compound, error) {
	var compound Compound
	err := c.Cached(ctx, key, refresh, &compound, func() error {
		var table propertyTable
		if err := c.Get(ctx, url, &table); err != nil {
			return err
		}
		props := table.PropertyTable.Properties
		if len(props) == 0 {
			return chem.ErrNotFound
		}
		p := props[0]
		weight, _ := strconv.ParseFloat(p.MolecularWeight, 64)
		compound = Compound{
			CID:              p.CID,
			MolecularFormula: p.MolecularFormula,
			MolecularWeight:  weight,
			CanonicalSMILES:  p.CanonicalSMILES,
			InChI:            p.InChI,
			InChIKey:         p.InChIKey,
			IUPACName:        p.IUPACName,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &compound, nil
}

// synonymList mirrors the PUG REST synonyms response.
type synonymList struct {
	InformationList struct {
		Information []struct {
			CID     int      `json:"CID"`
			Synonym []string `json:"Synonym"`
		} `json:"Information"`
	} `json:"InformationList"`
}

// Synonyms returns the known names of a compound.
func (c *Client) Synonyms(ctx context.Context, cid int, refresh bool) ([]string, error) {
	url := fmt.Sprintf("%s/compound/cid/%d/synonyms/JSON", c.BaseURL, cid)
	var synonyms []string
	err := c.Cached(ctx, fmt.Sprintf("synonyms:%d", cid), refresh, &synonyms, func() error {
		var list synonymList
		if err := c.Get(ctx, url, &list); err != nil {
			return err
		}
		if len(list.InformationList.Information) == 0 {
			return chem.ErrNotFound
		}
		synonyms = list.InformationList.Information[0].Synonym
		return nil
	})
	if err != nil {
		return nil, err
	}
	return synonyms, nil
}
