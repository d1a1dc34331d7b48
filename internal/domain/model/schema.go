package model

import "strings"

// Column describes a single column of a cache table.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// TableSchema is a declarative table definition. DDL is rendered from it
// rather than concatenated by hand, and every identifier is quoted.
type TableSchema struct {
	Name    string
	Columns []Column
}

// CreateStatement renders the CREATE TABLE statement for the schema.
func (s TableSchema) CreateStatement() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(QuoteIdent(s.Name))
	b.WriteString(" (")
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(QuoteIdent(c.Name))
		if c.Type != "" {
			b.WriteString(" ")
			b.WriteString(c.Type)
		}
		if c.PrimaryKey {
			b.WriteString(" PRIMARY KEY")
		}
	}
	b.WriteString(")")
	return b.String()
}

// DropStatement renders a DROP TABLE IF EXISTS statement for the schema.
func (s TableSchema) DropStatement() string {
	return "DROP TABLE IF EXISTS " + QuoteIdent(s.Name)
}

// ColumnNames returns the column names in declaration order.
func (s TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// QuoteIdent quotes an SQL identifier, doubling any embedded double quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
