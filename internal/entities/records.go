// Package entities contains the core domain objects for the beton-control application
package entities

// DateLayout is the textual form of PourRecord.PourDate (DD-MM-YYYY)
const DateLayout = "02-01-2006"

// Organization is the top-level customer that owns construction sites
type Organization struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Contact string `db:"contact"`
	Phone   string `db:"phone"`
}

// ConstructionSite is a physical site ("object") belonging to an organization
type ConstructionSite struct {
	ID             int64  `db:"id"`
	OrganizationID int64  `db:"org_id"`
	Name           string `db:"name"`
	Address        string `db:"address"`
}

// PourRecord is one concrete pour quality-control record of a site
type PourRecord struct {
	ID               int64   `db:"id"`
	SiteID           int64   `db:"object_id"`
	PourDate         string  `db:"pour_date"`         // DD-MM-YYYY
	Element          string  `db:"element"`           // structural member poured
	ConcreteClass    string  `db:"concrete_class"`    // e.g. B25
	FrostResistance  string  `db:"frost_resistance"`  // e.g. F150
	WaterResistance  string  `db:"water_resistance"`  // e.g. W6
	Supplier         string  `db:"supplier"`
	ConcretePassport string  `db:"concrete_passport"` // certificate number
	VolumeConcrete   float64 `db:"volume_concrete"`   // m³
	CubesCount       int     `db:"cubes_count"`
	ConesCount       int     `db:"cones_count"`
	Slump            string  `db:"slump"`
	Temperature      string  `db:"temperature"`
	TempMeasurements int     `db:"temp_measurements"`
	Executor         string  `db:"executor"`
	ActNumber        string  `db:"act_number"`
	RequestNumber    string  `db:"request_number"`
	Invoice          string  `db:"invoice"`
}

// PourDetail is a pour record joined with its site and organization
type PourDetail struct {
	PourRecord
	SiteName       string `db:"site_name"`
	SiteAddress    string `db:"site_address"`
	OrgName        string `db:"org_name"`
	OrgContact     string `db:"org_contact"`
	OrgPhone       string `db:"org_phone"`
	OrganizationID int64  `db:"org_id"`
}
