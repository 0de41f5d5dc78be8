package domain

// CRMUser is the minimal slice of a systemuser record we need to drive the
// sync: the internal identifier for the PATCH path and the domain account
// name used as the directory lookup key.
type CRMUser struct {
	ID         string // systemuserid
	DomainName string // e.g. "CONTOSO\\jdoe"
}

// DirectoryUser holds the AD-sourced profile attributes returned by the
// directory web service. Every field is optional; absent attributes stay "".
// JSON tags follow the systemuser attribute names so diagnostic output reads
// like the CRM schema.
type DirectoryUser struct {
	Title           string `json:"title,omitempty"`
	FirstName       string `json:"firstname,omitempty"`
	LastName        string `json:"lastname,omitempty"`
	Phone           string `json:"address1_telephone1,omitempty"`
	Phone3          string `json:"address1_telephone3,omitempty"`
	Fax             string `json:"address1_fax,omitempty"`
	HomePhone       string `json:"homephone,omitempty"`
	MobilePhone     string `json:"mobilephone,omitempty"`
	PostOfficeBox   string `json:"address1_postofficebox,omitempty"`
	StreetAddress   string `json:"address1_line1,omitempty"`
	City            string `json:"address1_city,omitempty"`
	PostalCode      string `json:"address1_postalcode,omitempty"`
	StateOrProvince string `json:"address1_stateorprovince,omitempty"`
	DomainName      string `json:"domainname,omitempty"`

	// Email is parsed for completeness but is never written back to CRM
	// (see sync.BuildUpdatePayload).
	Email string `json:"internalemailaddress,omitempty"`
}

// FullName is used in error logs to identify a record beyond its GUID.
func (d DirectoryUser) FullName() string {
	switch {
	case d.FirstName != "" && d.LastName != "":
		return d.FirstName + " " + d.LastName
	case d.LastName != "":
		return d.LastName
	default:
		return d.FirstName
	}
}

// EnrichedUser pairs a CRM record with its directory attributes. It lives
// only for the duration of one pipeline pass.
type EnrichedUser struct {
	CRM CRMUser
	AD  DirectoryUser
}
