package domain

import "strings"

// User is the per-identity profile record. The identity token is supplied by
// the caller (e.g. a messenger user id) and keys all per-user state.
type User struct {
	ID        string
	Username  string
	FirstName string
	RealName  string
	Address   string
	Age       *int
}

// UserPatch carries a partial-field update for upsert semantics: nil fields
// keep their prior value, non-nil fields overwrite it.
type UserPatch struct {
	Username  *string
	FirstName *string
	RealName  *string
	Address   *string
	Age       *int
}

// Apply merges the patch over the user in place.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.RealName != nil {
		u.RealName = *p.RealName
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
}

// City returns the city part of the free-text address, which by convention is
// everything before the first comma ("Moscow, Tverskaya 1" -> "Moscow").
// Empty when the address is unset.
func (u User) City() string {
	if u.Address == "" {
		return ""
	}
	city, _, _ := strings.Cut(u.Address, ",")
	return strings.TrimSpace(city)
}
