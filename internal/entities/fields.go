package entities

// Kind names one of the three stored entity kinds
type Kind string

const (
	KindOrganization Kind = "organization"
	KindSite         Kind = "site"
	KindPour         Kind = "pour"
)

// Field is a column name that may be used in filters and distinct-value lookups
type Field string

const (
	FieldName    Field = "name"
	FieldContact Field = "contact"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"

	FieldPourDate         Field = "pour_date"
	FieldElement          Field = "element"
	FieldConcreteClass    Field = "concrete_class"
	FieldFrostResistance  Field = "frost_resistance"
	FieldWaterResistance  Field = "water_resistance"
	FieldSupplier         Field = "supplier"
	FieldConcretePassport Field = "concrete_passport"
	FieldSlump            Field = "slump"
	FieldTemperature      Field = "temperature"
	FieldExecutor         Field = "executor"
	FieldActNumber        Field = "act_number"
	FieldRequestNumber    Field = "request_number"
	FieldInvoice          Field = "invoice"

	// numeric columns; not filterable
	FieldVolumeConcrete   Field = "volume_concrete"
	FieldCubesCount       Field = "cubes_count"
	FieldConesCount       Field = "cones_count"
	FieldTempMeasurements Field = "temp_measurements"
)

var textFields = map[Kind][]Field{
	KindOrganization: {FieldName, FieldContact, FieldPhone},
	KindSite:         {FieldName, FieldAddress},
	KindPour: {
		FieldPourDate, FieldElement, FieldConcreteClass, FieldFrostResistance,
		FieldWaterResistance, FieldSupplier, FieldConcretePassport, FieldSlump,
		FieldTemperature, FieldExecutor, FieldActNumber, FieldRequestNumber, FieldInvoice,
	},
}

// Allowed reports whether field is a filterable text column of kind
func (k Kind) Allowed(field Field) bool {
	for _, f := range textFields[k] {
		if f == field {
			return true
		}
	}
	return false
}

// Fields returns the filterable text columns of kind
func (k Kind) Fields() []Field {
	return append([]Field(nil), textFields[k]...)
}

// Filter maps a field to a substring that the field must contain.
// Multiple entries are combined with AND.
type Filter map[Field]string
