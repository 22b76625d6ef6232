package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Profile holds the standard Okta profile attributes as typed fields. Any
// other attribute lives in Custom and is validated by the backend only.
type Profile struct {
	Login          string
	Email          string
	SecondEmail    string
	FirstName      string
	LastName       string
	MiddleName     string
	DisplayName    string
	NickName       string
	Title          string
	Department     string
	Division       string
	Organization   string
	CostCenter     string
	EmployeeNumber string
	ManagerID      string
	Manager        string
	MobilePhone    string
	PrimaryPhone   string
	City           string
	State          string
	CountryCode    string
	Locale         string
	Timezone       string
	UserType       string

	Custom map[string]any
}

type attribute struct {
	name string
	get  func(*Profile) string
	set  func(*Profile, string)
}

var standardAttributes = []attribute{
	{"login", func(p *Profile) string { return p.Login }, func(p *Profile, v string) { p.Login = v }},
	{"email", func(p *Profile) string { return p.Email }, func(p *Profile, v string) { p.Email = v }},
	{"secondEmail", func(p *Profile) string { return p.SecondEmail }, func(p *Profile, v string) { p.SecondEmail = v }},
	{"firstName", func(p *Profile) string { return p.FirstName }, func(p *Profile, v string) { p.FirstName = v }},
	{"lastName", func(p *Profile) string { return p.LastName }, func(p *Profile, v string) { p.LastName = v }},
	{"middleName", func(p *Profile) string { return p.MiddleName }, func(p *Profile, v string) { p.MiddleName = v }},
	{"displayName", func(p *Profile) string { return p.DisplayName }, func(p *Profile, v string) { p.DisplayName = v }},
	{"nickName", func(p *Profile) string { return p.NickName }, func(p *Profile, v string) { p.NickName = v }},
	{"title", func(p *Profile) string { return p.Title }, func(p *Profile, v string) { p.Title = v }},
	{"department", func(p *Profile) string { return p.Department }, func(p *Profile, v string) { p.Department = v }},
	{"division", func(p *Profile) string { return p.Division }, func(p *Profile, v string) { p.Division = v }},
	{"organization", func(p *Profile) string { return p.Organization }, func(p *Profile, v string) { p.Organization = v }},
	{"costCenter", func(p *Profile) string { return p.CostCenter }, func(p *Profile, v string) { p.CostCenter = v }},
	{"employeeNumber", func(p *Profile) string { return p.EmployeeNumber }, func(p *Profile, v string) { p.EmployeeNumber = v }},
	{"managerId", func(p *Profile) string { return p.ManagerID }, func(p *Profile, v string) { p.ManagerID = v }},
	{"manager", func(p *Profile) string { return p.Manager }, func(p *Profile, v string) { p.Manager = v }},
	{"mobilePhone", func(p *Profile) string { return p.MobilePhone }, func(p *Profile, v string) { p.MobilePhone = v }},
	{"primaryPhone", func(p *Profile) string { return p.PrimaryPhone }, func(p *Profile, v string) { p.PrimaryPhone = v }},
	{"city", func(p *Profile) string { return p.City }, func(p *Profile, v string) { p.City = v }},
	{"state", func(p *Profile) string { return p.State }, func(p *Profile, v string) { p.State = v }},
	{"countryCode", func(p *Profile) string { return p.CountryCode }, func(p *Profile, v string) { p.CountryCode = v }},
	{"locale", func(p *Profile) string { return p.Locale }, func(p *Profile, v string) { p.Locale = v }},
	{"timezone", func(p *Profile) string { return p.Timezone }, func(p *Profile, v string) { p.Timezone = v }},
	{"userType", func(p *Profile) string { return p.UserType }, func(p *Profile, v string) { p.UserType = v }},
}

// standard attributes are matched case-insensitively ("firstname" works).
var attributeIndex = func() map[string]attribute {
	idx := make(map[string]attribute, len(standardAttributes))
	for _, a := range standardAttributes {
		idx[strings.ToLower(a.name)] = a
	}
	return idx
}()

func lookupStandard(name string) (attribute, bool) {
	a, ok := attributeIndex[strings.ToLower(name)]
	return a, ok
}

// Get returns the named attribute. Unset standard attributes read as "";
// custom attributes must be present on the profile.
func (p *Profile) Get(name string) (string, error) {
	if a, ok := lookupStandard(name); ok {
		return a.get(p), nil
	}
	if v, ok := p.Custom[name]; ok {
		return fmt.Sprint(v), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

// Set assigns the named attribute. Names outside the standard set are stored
// as custom attributes.
func (p *Profile) Set(name, value string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownAttribute)
	}
	if a, ok := lookupStandard(name); ok {
		a.set(p, value)
		return nil
	}
	if p.Custom == nil {
		p.Custom = make(map[string]any)
	}
	p.Custom[name] = value
	return nil
}

// clone returns a copy whose Custom map is not shared with p.
func (p Profile) clone() Profile {
	if p.Custom == nil {
		return p
	}
	custom := make(map[string]any, len(p.Custom))
	for k, v := range p.Custom {
		custom[k] = v
	}
	p.Custom = custom
	return p
}

// attributes flattens the profile into the wire shape: custom attributes plus
// every non-empty standard attribute.
func (p Profile) attributes() map[string]any {
	out := make(map[string]any, len(p.Custom)+len(standardAttributes))
	for k, v := range p.Custom {
		out[k] = v
	}
	for _, a := range standardAttributes {
		if v := a.get(&p); v != "" {
			out[a.name] = v
		}
	}
	return out
}

func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.attributes())
}

// UnmarshalJSON keeps numeric attributes as json.Number so integers beyond
// float64 precision read back exactly.
func (p *Profile) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*p = Profile{}
	for k, v := range raw {
		if v == nil {
			continue
		}
		a, ok := lookupStandard(k)
		if s, isString := v.(string); ok && isString && a.name == k {
			a.set(p, s)
			continue
		}
		if p.Custom == nil {
			p.Custom = make(map[string]any)
		}
		p.Custom[k] = v
	}
	return nil
}
