package tenders

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/tenderapi"
)

// ContactKind tags one customer contact entry.
type ContactKind int

const (
	ContactOther ContactKind = iota
	ContactPerson
	ContactPhone
	ContactEmail
)

var contactKinds = map[string]ContactKind{
	"FIO":   ContactPerson,
	"Phone": ContactPhone,
	"Email": ContactEmail,
}

var contactLabels = map[ContactKind]string{
	ContactPerson: "Контактное лицо:",
	ContactPhone:  "Телефон:",
	ContactEmail:  "E-mail:",
}

// ContactEntry is one tagged contact value.
type ContactEntry struct {
	Kind  ContactKind
	Value string
}

// Contacts is the customer contact block carried in a tender's nested
// JSON payload.
type Contacts struct {
	Organization  string
	ActualAddress string
	PostalAddress string
	Entries       []ContactEntry
}

type fieldValue struct {
	FN string          `json:"fn"`
	FV tenderapi.Value `json:"fv"`
}

type fieldGroup struct {
	FV json.RawMessage `json:"fv"`
}

// ParseContacts decodes the nested payload. The contact block lives under
// "2".fv with "0" organization, "1" actual address, "2" postal address and
// "3".fv holding the tagged entries. An empty payload yields empty Contacts.
func ParseContacts(raw string) (Contacts, error) {
	var c Contacts
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c, nil
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return Contacts{}, errors.MalformedError("contact payload is not an object", err)
	}
	section, ok := root["2"]
	if !ok {
		return c, nil
	}

	var group fieldGroup
	if err := json.Unmarshal(section, &group); err != nil {
		return Contacts{}, errors.MalformedError("contact section", err)
	}
	if len(group.FV) == 0 || string(group.FV) == "null" {
		return c, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(group.FV, &fields); err != nil {
		return Contacts{}, errors.MalformedError("contact fields", err)
	}

	var err error
	if c.Organization, err = scalarField(fields, "0"); err != nil {
		return Contacts{}, err
	}
	if c.ActualAddress, err = scalarField(fields, "1"); err != nil {
		return Contacts{}, err
	}
	if c.PostalAddress, err = scalarField(fields, "2"); err != nil {
		return Contacts{}, err
	}
	if c.Entries, err = contactEntries(fields["3"]); err != nil {
		return Contacts{}, err
	}
	return c, nil
}

func scalarField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	var f fieldValue
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", errors.MalformedError("contact field "+key, err)
	}
	return strings.TrimSpace(f.FV.String()), nil
}

// contactEntries accepts the entries either as an object keyed by
// position or as a plain array.
func contactEntries(raw json.RawMessage) ([]ContactEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var group fieldGroup
	if err := json.Unmarshal(raw, &group); err != nil {
		return nil, errors.MalformedError("contact entries", err)
	}
	if len(group.FV) == 0 || string(group.FV) == "null" {
		return nil, nil
	}

	var values []fieldValue
	if group.FV[0] == '[' {
		if err := json.Unmarshal(group.FV, &values); err != nil {
			return nil, errors.MalformedError("contact entry list", err)
		}
	} else {
		var byKey map[string]fieldValue
		if err := json.Unmarshal(group.FV, &byKey); err != nil {
			return nil, errors.MalformedError("contact entry map", err)
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return positionLess(keys[i], keys[j]) })
		for _, k := range keys {
			values = append(values, byKey[k])
		}
	}

	entries := make([]ContactEntry, 0, len(values))
	for _, v := range values {
		value := strings.TrimSpace(v.FV.String())
		if value == "" {
			continue
		}
		entries = append(entries, ContactEntry{Kind: contactKinds[v.FN], Value: value})
	}
	return entries, nil
}

func positionLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	if (errA == nil) != (errB == nil) {
		return errA == nil
	}
	return a < b
}

// Address prefers the actual address over the postal one.
func (c Contacts) Address() string {
	if c.ActualAddress != "" {
		return c.ActualAddress
	}
	return c.PostalAddress
}

// Lines renders the block for the report: organization, address, then
// labelled person, phone and e-mail entries. Untagged entries are left out.
func (c Contacts) Lines() []string {
	var lines []string
	if c.Organization != "" {
		lines = append(lines, c.Organization)
	}
	if addr := c.Address(); addr != "" {
		lines = append(lines, addr)
	}
	for _, e := range c.Entries {
		label, ok := contactLabels[e.Kind]
		if !ok {
			continue
		}
		lines = append(lines, label+" "+e.Value)
	}
	return lines
}

func (c Contacts) String() string {
	return strings.Join(c.Lines(), "\n")
}
