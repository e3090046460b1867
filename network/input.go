// SPDX-License-Identifier: MIT

package network

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/katalvlaran/quikdel/core"
	"github.com/katalvlaran/quikdel/matrix"
)

// inputJSON is the interchange form of Input. Travel is an edge list over
// tract ids.
type inputJSON struct {
	City      string             `json:"city"`
	Tracts    []core.CensusTract `json:"tracts"`
	Producers []core.Site        `json:"producers"`
	Consumers []core.Site        `json:"consumers"`
	Travel    []matrix.Edge      `json:"travel"`
}

// DecodeInput reads a city description:
//
//	{"city": "...", "tracts": [...], "producers": [...], "consumers": [...],
//	 "travel": [{"from": "T1", "to": "T2", "distance": 1.2, "time": 4}]}
//
// Errors: DataError for malformed JSON or travel edges over unknown tracts.
func DecodeInput(r io.Reader) (Input, error) {
	var raw inputJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return Input{}, &DataError{Reason: fmt.Sprintf("decode input: %v", err)}
	}
	if len(raw.Tracts) == 0 {
		return Input{}, &DataError{Reason: "input has no tracts", Ref: raw.City}
	}

	ids := make([]string, len(raw.Tracts))
	for i, t := range raw.Tracts {
		ids[i] = t.ID
	}
	m, err := matrix.FromEdges(ids, raw.Travel)
	if err != nil {
		return Input{}, &DataError{Reason: err.Error(), Ref: raw.City}
	}

	return Input{
		City:      raw.City,
		Tracts:    raw.Tracts,
		Producers: raw.Producers,
		Consumers: raw.Consumers,
		Travel:    m,
	}, nil
}

// EncodeInput writes in in the form DecodeInput reads.
func EncodeInput(w io.Writer, in Input) error {
	raw := inputJSON{City: in.City, Tracts: in.Tracts, Producers: in.Producers, Consumers: in.Consumers}
	if in.Travel != nil {
		raw.Travel = in.Travel.Edges()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(raw)
}
