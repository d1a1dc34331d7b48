package model

// Credential is a single row of the local credential cache. The cache only
// mirrors data whose source of truth lives elsewhere, so rows may be discarded
// at any time. A nil Title is stored as NULL.
type Credential struct {
	ID    int64
	Title *string
}

// CredentialTable is the schema of the credential cache table. Treat it as
// read-only.
var CredentialTable = TableSchema{
	Name: "credential",
	Columns: []Column{
		{Name: "id", Type: "INTEGER", PrimaryKey: true},
		{Name: "title", Type: "TEXT"},
	},
}
