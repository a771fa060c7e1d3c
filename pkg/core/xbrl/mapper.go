package xbrl

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed mapping.yaml
var mappingYAML []byte

// Statement identifies one of the three normalized statement tables.
type Statement string

const (
	StatementIncome   Statement = "income"
	StatementBalance  Statement = "balance"
	StatementCashflow Statement = "cashflow"
)

// TagMapping describes how a normalized field resolves from raw XBRL tags.
// Tags are ordered by descending priority; the first tag with a usable fact
// wins. SignFlip marks outflow concepts whose reported sign varies by
// filer; the cash flow builder normalizes them to positive magnitudes.
type TagMapping struct {
	Field     string
	Statement Statement
	Tags      []string
	SignFlip  bool
}

// ContextType returns the XBRL context the mapping resolves against.
// Balance sheet fields are point-in-time instants; income and cash flow
// fields are durations.
func (m TagMapping) ContextType() ContextType {
	if m.Statement == StatementBalance {
		return ContextInstant
	}
	return ContextDuration
}

var (
	loadOnce sync.Once

	// mappingsByStmt preserves the table's field order per statement.
	mappingsByStmt map[Statement][]TagMapping
	fieldIndex     map[Statement]map[string]TagMapping

	// tagIndex maps a raw tag to the first field that claims it. Several
	// fields share tags (StockholdersEquity backs both common_equity and
	// total_equity), so first occurrence in table order wins.
	tagIndex map[string]string
)

// Mappings returns the field mappings for a statement in table order.
func Mappings(st Statement) []TagMapping {
	loadOnce.Do(loadMappings)
	return mappingsByStmt[st]
}

// FieldToMapping looks up the mapping for a normalized field.
func FieldToMapping(st Statement, field string) (TagMapping, bool) {
	loadOnce.Do(loadMappings)
	m, ok := fieldIndex[st][field]
	return m, ok
}

// TagToField reverse-maps a raw tag like "us-gaap:Revenues" to the first
// normalized field that lists it.
func TagToField(tag string) (string, bool) {
	loadOnce.Do(loadMappings)
	field, ok := tagIndex[tag]
	return field, ok
}

func loadMappings() {
	var doc struct {
		Income   yaml.MapSlice `yaml:"income"`
		Balance  yaml.MapSlice `yaml:"balance"`
		Cashflow yaml.MapSlice `yaml:"cashflow"`
	}
	if err := yaml.Unmarshal(mappingYAML, &doc); err != nil {
		panic(fmt.Sprintf("xbrl: embedded mapping table is invalid: %v", err))
	}

	mappingsByStmt = make(map[Statement][]TagMapping, 3)
	fieldIndex = make(map[Statement]map[string]TagMapping, 3)
	tagIndex = make(map[string]string)

	for _, sect := range []struct {
		st    Statement
		items yaml.MapSlice
	}{
		{StatementIncome, doc.Income},
		{StatementBalance, doc.Balance},
		{StatementCashflow, doc.Cashflow},
	} {
		fieldIndex[sect.st] = make(map[string]TagMapping, len(sect.items))
		for _, item := range sect.items {
			m, err := parseMapping(sect.st, item)
			if err != nil {
				panic(fmt.Sprintf("xbrl: embedded mapping table is invalid: %v", err))
			}
			mappingsByStmt[sect.st] = append(mappingsByStmt[sect.st], m)
			fieldIndex[sect.st][m.Field] = m
			for _, tag := range m.Tags {
				if _, seen := tagIndex[tag]; !seen {
					tagIndex[tag] = m.Field
				}
			}
		}
	}
}

func parseMapping(st Statement, item yaml.MapItem) (TagMapping, error) {
	field, ok := item.Key.(string)
	if !ok {
		return TagMapping{}, fmt.Errorf("%s: non-string field key %v", st, item.Key)
	}
	body, ok := item.Value.(yaml.MapSlice)
	if !ok {
		return TagMapping{}, fmt.Errorf("%s.%s: expected a mapping body", st, field)
	}
	m := TagMapping{Field: field, Statement: st}
	for _, kv := range body {
		key, _ := kv.Key.(string)
		switch key {
		case "tags":
			seq, ok := kv.Value.([]interface{})
			if !ok {
				return TagMapping{}, fmt.Errorf("%s.%s: tags must be a sequence", st, field)
			}
			for _, v := range seq {
				tag, ok := v.(string)
				if !ok {
					return TagMapping{}, fmt.Errorf("%s.%s: non-string tag %v", st, field, v)
				}
				m.Tags = append(m.Tags, tag)
			}
		case "sign_flip":
			flip, ok := kv.Value.(bool)
			if !ok {
				return TagMapping{}, fmt.Errorf("%s.%s: sign_flip must be a bool", st, field)
			}
			m.SignFlip = flip
		default:
			return TagMapping{}, fmt.Errorf("%s.%s: unknown key %q", st, field, key)
		}
	}
	if len(m.Tags) == 0 {
		return TagMapping{}, fmt.Errorf("%s.%s: no tags listed", st, field)
	}
	return m, nil
}
