package schema

// DefaultLabIDColumn is the header that identifies a sample in lab sheets.
const DefaultLabIDColumn = "Uehling Lab ID"

// MetadataFieldSpecs defines the columns of the lab's standard sample sheet.
var MetadataFieldSpecs = []FieldSpec{
	{Name: "Sample Location Plate", Type: FieldText},
	{Name: "GC3F Submission Sample ID", Type: FieldText},
	{Name: "Alternate ID 1", Type: FieldText},
	{Name: "Alternate ID 2", Type: FieldText},
	{Name: "Lab Unique ID 3", Type: FieldText},
	{Name: "Extracted by", Type: FieldText},
	{Name: "Top ITS Blast Hit", Type: FieldText},
	{Name: "ITS Top Hit Similarity", Type: FieldNumeric},
	{Name: "ITS Taxonomy Comments", Type: FieldText},
	{Name: "Top 16S Blast Hit", Type: FieldText},
	{Name: "16S Top Hit Similarity", Type: FieldNumeric},
	{Name: "16S Taxonomy Comments", Type: FieldText},
	{Name: "Project Funding", Type: FieldText},
	{Name: "Latitude", Type: FieldNumeric},
	{Name: "Longitude", Type: FieldNumeric},
	{Name: "Location ID", Type: FieldText},
	{Name: "DNA Extraction Method", Type: FieldText},
	{Name: "Extraction Date", Type: FieldDate},
}

// DefaultDefinition returns the standard sheet layout.
func DefaultDefinition() Definition {
	cols := make([]FieldSpec, len(MetadataFieldSpecs))
	copy(cols, MetadataFieldSpecs)
	return Definition{
		LabIDColumn:     DefaultLabIDColumn,
		MetadataColumns: cols,
	}
}
