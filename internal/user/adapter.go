// File: internal/user/adapter.go
package user

// The remote profile schema uses snake_case column names. Seven local fields
// rename on the wire; all others map verbatim.
const (
	RemoteColFullName           = "full_name"
	RemoteColProfilePicture     = "profile_picture"
	RemoteColDisabilityType     = "disability_type"
	RemoteColCountryOfResidence = "country_of_residence"
	RemoteColDateOfBirth        = "date_of_birth"
	RemoteColBloodGroup         = "blood_group"
	RemoteColEmergencyContact   = "emergency_contact"
)

// RemoteFields maps the set fields of a partial update to remote column names.
// Used by both signup (initial profile population) and profile update so the
// two paths cannot drift.
func (p ProfileUpdate) RemoteFields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.FullName != nil {
		fields[RemoteColFullName] = *p.FullName
	}
	if p.Phone != nil {
		fields["phone"] = *p.Phone
	}
	if p.ProfilePicture != nil {
		fields[RemoteColProfilePicture] = *p.ProfilePicture
	}
	if p.DisabilityType != nil {
		fields[RemoteColDisabilityType] = string(*p.DisabilityType)
	}
	if p.CountryOfResidence != nil {
		fields[RemoteColCountryOfResidence] = *p.CountryOfResidence
	}
	if p.Nationality != nil {
		fields["nationality"] = *p.Nationality
	}
	if p.Gender != nil {
		fields["gender"] = *p.Gender
	}
	if p.DateOfBirth != nil {
		fields[RemoteColDateOfBirth] = *p.DateOfBirth
	}
	if p.Bio != nil {
		fields["bio"] = *p.Bio
	}
	if p.BloodGroup != nil {
		fields[RemoteColBloodGroup] = *p.BloodGroup
	}
	if p.EmergencyContact != nil {
		fields[RemoteColEmergencyContact] = *p.EmergencyContact
	}
	return fields
}

// SignupProfileFields builds the remote field set used to populate the
// extended profile right after identity creation. The disability display name
// is mapped through the fixed display-name table here, as the last step
// before the value crosses the provider boundary.
func (d SignupData) SignupProfileFields() map[string]interface{} {
	fields := map[string]interface{}{
		"username":                  d.Username,
		RemoteColFullName:           d.FullName,
		"phone":                     d.Phone,
		RemoteColDisabilityType:     string(DisabilityTypeFromDisplay(d.DisabilityType)),
		RemoteColCountryOfResidence: d.CountryOfResidence,
	}
	setIfPresent := func(col, val string) {
		if val != "" {
			fields[col] = val
		}
	}
	setIfPresent(RemoteColProfilePicture, d.ProfilePicture)
	setIfPresent("nationality", d.Nationality)
	setIfPresent("gender", d.Gender)
	setIfPresent(RemoteColDateOfBirth, d.DateOfBirth)
	setIfPresent("bio", d.Bio)
	setIfPresent(RemoteColBloodGroup, d.BloodGroup)
	setIfPresent(RemoteColEmergencyContact, d.EmergencyContact)
	return fields
}

// ApplyRemoteFields merges accepted remote fields into a User. Called only
// after the remote write was confirmed, never optimistically.
func ApplyRemoteFields(u *User, fields map[string]interface{}) {
	strVal := func(key string) (string, bool) {
		v, ok := fields[key]
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		return s, ok
	}
	if v, ok := strVal("username"); ok {
		u.Username = v
	}
	if v, ok := strVal(RemoteColFullName); ok {
		u.FullName = v
	}
	if v, ok := strVal("phone"); ok {
		u.Phone = v
	}
	if v, ok := strVal(RemoteColProfilePicture); ok {
		val := v
		u.ProfilePicture = &val
	}
	if v, ok := strVal(RemoteColDisabilityType); ok {
		u.DisabilityType = DisabilityType(v)
	}
	if v, ok := strVal(RemoteColCountryOfResidence); ok {
		u.CountryOfResidence = v
	}
	if v, ok := strVal("nationality"); ok {
		val := v
		u.Nationality = &val
	}
	if v, ok := strVal("gender"); ok {
		val := v
		u.Gender = &val
	}
	if v, ok := strVal(RemoteColDateOfBirth); ok {
		val := v
		u.DateOfBirth = &val
	}
	if v, ok := strVal("bio"); ok {
		val := v
		u.Bio = &val
	}
	if v, ok := strVal(RemoteColBloodGroup); ok {
		val := v
		u.BloodGroup = &val
	}
	if v, ok := strVal(RemoteColEmergencyContact); ok {
		val := v
		u.EmergencyContact = &val
	}
}
