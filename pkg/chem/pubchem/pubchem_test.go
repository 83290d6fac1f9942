package pubchem

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Glycocalex/glycowork-ab/pkg/cache"
	"github.com/Glycocalex/glycowork-ab/pkg/chem"
)

const lacNAcResponse = `{
	"PropertyTable": {
		"Properties": [{
			"CID": 84267,
			"MolecularFormula": "C14H25NO11",
			"MolecularWeight": "383.35",
			"CanonicalSMILES": "CC(=O)NC1C(C(C(OC1O)CO)OC2C(C(C(C(O2)CO)O)O)O)O",
			"InChIKey": "KFEUJDWYNGMDBV-LODBTCKLSA-N",
			"IUPACName": "N-acetyllactosamine"
		}]
	}
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(cache.NewNullCache(), 0, 3)
	c.BaseURL = srv.URL
	return c
}

func TestCompoundByName(t *testing.T) {
	var path string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(lacNAcResponse))
	})

	compound, err := c.CompoundByName(context.Background(), "N-acetyllactosamine", false)
	if err != nil {
		t.Fatal(err)
	}
	if compound.CID != 84267 {
		t.Errorf("CID = %d", compound.CID)
	}
	if compound.MolecularFormula != "C14H25NO11" {
		t.Errorf("formula = %s", compound.MolecularFormula)
	}
	if compound.MolecularWeight != 383.35 {
		t.Errorf("weight = %g, string value not parsed", compound.MolecularWeight)
	}
	if !strings.Contains(path, "/compound/name/N-acetyllactosamine/property/") {
		t.Errorf("unexpected request path %s", path)
	}
}

func TestCompoundByCID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/compound/cid/84267/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(lacNAcResponse))
	})
	compound, err := c.CompoundByCID(context.Background(), 84267, false)
	if err != nil {
		t.Fatal(err)
	}
	if compound.IUPACName != "N-acetyllactosamine" {
		t.Errorf("name = %s", compound.IUPACName)
	}
}

func TestCompoundNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := c.CompoundByName(context.Background(), "nonexistent", false)
	if !errors.Is(err, chem.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCompoundEmptyTable(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"PropertyTable": {"Properties": []}}`))
	})
	_, err := c.CompoundByName(context.Background(), "empty", false)
	if !errors.Is(err, chem.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound for empty table", err)
	}
}

func TestSynonyms(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"InformationList": {
				"Information": [{"CID": 84267, "Synonym": ["N-acetyllactosamine", "LacNAc"]}]
			}
		}`))
	})
	syns, err := c.Synonyms(context.Background(), 84267, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(syns) != 2 || syns[1] != "LacNAc" {
		t.Errorf("synonyms = %v", syns)
	}
}
