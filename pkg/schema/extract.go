package schema

import (
	"strconv"
	"strings"
)

// Field tiers, evaluated in order. Directory sources disagree on field names
// for the same concept; each table is the single place that ordering lives.
var (
	emailFields    = []string{"primaryEmail", "email", "mail", "userPrincipalName"}
	usernameFields = []string{"username", "userName", "login", "sAMAccountName"}
	photoFields    = []string{"thumbnailPhotoUrl", "thumbnail", "photo", "photoUrl"}

	licenseEmailFields  = []string{"email", "primaryEmail"}
	licenseIssuedFields = []string{"timestamp", "issuedAt", "issued"}
	licenseExpiryFields = []string{"expiry", "expiresAt", "expires"}
)

// RawRecord is one decoded JSON object from a source payload.
type RawRecord map[string]any

// NormalizeIdentities folds a slice of raw source objects into IdentityRecords,
// tagging each with the source name. Records are not filtered here; index
// construction decides what is indexable.
func NormalizeIdentities(records []RawRecord, source string) []*IdentityRecord {
	result := make([]*IdentityRecord, 0, len(records))
	for _, rec := range records {
		result = append(result, NormalizeIdentity(rec, source))
	}
	return result
}

// NormalizeIdentity folds one raw source object into an IdentityRecord.
func NormalizeIdentity(rec RawRecord, source string) *IdentityRecord {
	email := firstString(rec, emailFields)
	username := firstString(rec, usernameFields)
	display := BestDisplayName(rec)
	department, costCenter, title := organizationFields(rec)

	return &IdentityRecord{
		PrimaryEmail:   strings.TrimSpace(email),
		Username:       strings.TrimSpace(username),
		DisplayName:    display,
		NormalizedName: NormalizeName(display),
		PhotoURL:       firstString(rec, photoFields),
		Department:     department,
		CostCenter:     costCenter,
		Title:          title,
		Source:         source,
	}
}

// BestDisplayName evaluates the display-name fallback tiers in order:
//  1. name.fullName
//  2. name.givenName + " " + name.familyName
//  3. whichever of name.givenName / name.familyName is present
//  4. a top-level displayName / fullName / name string
//  5. the local part of the username
//  6. the local part of the email
//
// The first tier that yields a non-empty value wins.
func BestDisplayName(rec RawRecord) string {
	if name, ok := rec["name"].(map[string]any); ok {
		if full := stringValue(name["fullName"]); full != "" {
			return full
		}
		given := stringValue(name["givenName"])
		family := stringValue(name["familyName"])
		switch {
		case given != "" && family != "":
			return given + " " + family
		case given != "":
			return given
		case family != "":
			return family
		}
	}
	for _, key := range []string{"displayName", "fullName", "name"} {
		if v := stringValue(rec[key]); v != "" {
			return v
		}
	}
	if username := firstString(rec, usernameFields); username != "" {
		return LocalPart(username)
	}
	if email := firstString(rec, emailFields); email != "" {
		return LocalPart(email)
	}
	return ""
}

// NormalizeLicenses folds raw ledger objects into LicenseRecords. Validation
// (required fields) is left to the grouper so that invalid grants can be
// counted and logged where they are skipped.
func NormalizeLicenses(records []RawRecord) []LicenseRecord {
	result := make([]LicenseRecord, 0, len(records))
	for _, rec := range records {
		result = append(result, LicenseRecord{
			Email:     strings.TrimSpace(firstString(rec, licenseEmailFields)),
			Product:   strings.TrimSpace(stringValue(rec["product"])),
			IssuedAt:  strings.TrimSpace(firstString(rec, licenseIssuedFields)),
			ExpiresAt: strings.TrimSpace(firstString(rec, licenseExpiryFields)),
		})
	}
	return result
}

// organizationFields pulls department, cost center, and title from the first
// entry of an organizations array, when present.
func organizationFields(rec RawRecord) (department, costCenter, title string) {
	orgs, ok := rec["organizations"].([]any)
	if !ok || len(orgs) == 0 {
		return "", "", ""
	}
	org, ok := orgs[0].(map[string]any)
	if !ok {
		return "", "", ""
	}
	return stringValue(org["department"]), stringValue(org["costCenter"]), stringValue(org["title"])
}

// firstString returns the first non-empty string among the given keys.
func firstString(rec RawRecord, keys []string) string {
	for _, key := range keys {
		if v := stringValue(rec[key]); v != "" {
			return v
		}
	}
	return ""
}

// stringValue coerces a decoded JSON value to a trimmed string. Numbers are
// formatted without an exponent so epoch timestamps survive the round trip.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}
