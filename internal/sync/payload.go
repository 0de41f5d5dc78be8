package sync

import (
	"strings"

	"crm-ad-sync/internal/domain"
)

// BuildUpdatePayload maps directory attributes onto the systemuser fields we
// are allowed to write back. Empty attributes are dropped so the PATCH stays
// a partial update.
//
// internalemailaddress is deliberately never included: writing it was
// observed to flip approved email addresses back to unapproved on the CRM
// side, which breaks outgoing mail for the affected user.
func BuildUpdatePayload(ad domain.DirectoryUser) map[string]string {
	fields := map[string]string{
		"title":                    ad.Title,
		"firstname":                ad.FirstName,
		"lastname":                 ad.LastName,
		"address1_telephone1":      ad.Phone,
		"address1_telephone3":      ad.Phone3,
		"address1_fax":             ad.Fax,
		"homephone":                ad.HomePhone,
		"mobilephone":              ad.MobilePhone,
		"address1_postofficebox":   ad.PostOfficeBox,
		"address1_line1":           ad.StreetAddress,
		"address1_city":            ad.City,
		"address1_postalcode":      ad.PostalCode,
		"address1_stateorprovince": ad.StateOrProvince,
		"domainname":               ad.DomainName,
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
