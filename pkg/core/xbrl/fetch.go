package xbrl

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/edgar"
	"github.com/tanishhky/chronofund-fundamental-engine/pkg/core/utils"
)

// companyFactsResponse mirrors data.sec.gov/api/xbrl/companyfacts. The facts
// object nests namespace -> tag -> unit -> entries.
type companyFactsResponse struct {
	EntityName string                            `json:"entityName"`
	Facts      map[string]map[string]factConcept `json:"facts"`
}

type factConcept struct {
	Label string                 `json:"label"`
	Units map[string][]factEntry `json:"units"`
}

type factEntry struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Val   *float64 `json:"val"`
	Accn  string   `json:"accn"`
	Form  string   `json:"form"`
	Frame string   `json:"frame"`
	Filed string   `json:"filed"`
}

// FetchAllFacts downloads the companyfacts blob for a CIK and flattens the
// allowlisted namespaces into per-tag fact lists keyed "<ns>:<tag>".
// Malformed entries are skipped with a debug log; a malformed payload fails
// the ticker with ParseError.
func FetchAllFacts(ctx context.Context, client *edgar.Client, cik, ticker string) (map[string][]Fact, error) {
	logger := log.With().Str("component", "xbrl").Str("ticker", ticker).Logger()

	var resp companyFactsResponse
	url := fmt.Sprintf(edgar.CompanyFactsTemplate, cik)
	if err := client.GetJSONInto(ctx, url, nil, &resp); err != nil {
		return nil, &ParseError{Accession: "companyfacts:" + cik, Detail: err.Error()}
	}

	out := make(map[string][]Fact)
	for _, ns := range Namespaces {
		concepts, ok := resp.Facts[ns]
		if !ok {
			continue
		}
		for tag, concept := range concepts {
			key := ns + ":" + tag
			for unit, entries := range concept.Units {
				for _, e := range entries {
					fact, ok := parseEntry(e, tag, ns, unit)
					if !ok {
						logger.Debug().Str("tag", key).Str("end", e.End).Msg("skipping malformed fact entry")
						continue
					}
					out[key] = append(out[key], fact)
				}
			}
		}
	}

	logger.Debug().Int("tags", len(out)).Msg("flattened companyfacts")
	return out, nil
}

// parseEntry validates one reported entry. Null values and unparsable end or
// filed dates disqualify it; start is optional (absent means instant).
func parseEntry(e factEntry, tag, ns, unit string) (Fact, bool) {
	if e.Val == nil {
		return Fact{}, false
	}
	end, err := utils.ParseDate(e.End)
	if err != nil {
		return Fact{}, false
	}
	filed, err := utils.ParseDate(e.Filed)
	if err != nil {
		return Fact{}, false
	}

	var start *time.Time
	if e.Start != "" {
		if s, err := utils.ParseDate(e.Start); err == nil {
			start = &s
		}
	}

	return Fact{
		Tag:       tag,
		Namespace: ns,
		Value:     *e.Val,
		Unit:      unit,
		Start:     start,
		End:       end,
		Accession: e.Accn,
		Form:      e.Form,
		Frame:     e.Frame,
		Filed:     filed,
	}, true
}
