package directory

import (
	"encoding/xml"
	"io"
	"strings"

	"crm-ad-sync/internal/domain"
)

// resultEnvelope models the outer SOAP response. encoding/xml unescapes the
// result field's character data, which yields the inner XML document as a
// plain string ready for the second decode stage.
type resultEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response struct {
			Result string `xml:"RetrieveADUserPropertiesResult"`
		} `xml:"RetrieveADUserPropertiesResponse"`
	} `xml:"Body"`
}

// parseUserDocument walks the inner document looking for a systemuser
// element. The service has been seen emitting the attributes both as XML
// attributes and as child elements depending on version, so both are read.
// found is false when the document carries no systemuser element, which is
// how the service reports "no such account".
func parseUserDocument(doc string) (user *domain.DirectoryUser, found bool, err error) {
	dec := xml.NewDecoder(strings.NewReader(doc))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}

		se, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(se.Name.Local, "systemuser") {
			continue
		}

		fields := map[string]string{}
		for _, a := range se.Attr {
			setField(fields, a.Name.Local, a.Value)
		}
		if err := collectChildElements(dec, se, fields); err != nil {
			return nil, false, err
		}
		return userFromFields(fields), true, nil
	}
}

// collectChildElements reads the children of the systemuser element into
// fields, one level deep, until the matching end element.
func collectChildElements(dec *xml.Decoder, parent xml.StartElement, fields map[string]string) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var text string
			if err := dec.DecodeElement(&text, &t); err != nil {
				return err
			}
			setField(fields, t.Name.Local, text)
		case xml.EndElement:
			if t.Name.Local == parent.Name.Local {
				return nil
			}
		}
	}
}

func setField(fields map[string]string, key, value string) {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	// first occurrence wins (attribute over duplicate child element)
	if _, ok := fields[key]; !ok {
		fields[key] = value
	}
}

func userFromFields(fields map[string]string) *domain.DirectoryUser {
	return &domain.DirectoryUser{
		Title:           fields["title"],
		FirstName:       fields["firstname"],
		LastName:        fields["lastname"],
		Phone:           fields["address1_telephone1"],
		Phone3:          fields["address1_telephone3"],
		Fax:             fields["address1_fax"],
		HomePhone:       fields["homephone"],
		MobilePhone:     fields["mobilephone"],
		PostOfficeBox:   fields["address1_postofficebox"],
		StreetAddress:   fields["address1_line1"],
		City:            fields["address1_city"],
		PostalCode:      fields["address1_postalcode"],
		StateOrProvince: fields["address1_stateorprovince"],
		DomainName:      fields["domainname"],
		Email:           fields["internalemailaddress"],
	}
}
