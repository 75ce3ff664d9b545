package model

import (
	"encoding/json"
	"fmt"
)

// Admin is an advisor (staff principal) as listed by the API.
type Admin struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
}

// AdminRef is the assignedAdmin field of a problem. The API sends it either as
// a bare id or as an embedded admin document, depending on the endpoint.
type AdminRef struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// UnmarshalJSON accepts both the id-string and the object form.
func (r *AdminRef) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return fmt.Errorf("admin ref id: %w", err)
		}
		*r = AdminRef{ID: id}
		return nil
	}

	type plain AdminRef
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("admin ref: %w", err)
	}
	*r = AdminRef(p)
	return nil
}

// ResolveName returns the embedded name, else the name of the advisor with a
// matching id, else "".
func (r *AdminRef) ResolveName(advisors []Admin) string {
	if r == nil {
		return ""
	}
	if r.Name != "" {
		return r.Name
	}
	if a, ok := FindAdmin(advisors, r.ID); ok {
		return a.Name
	}
	return ""
}

// FindAdmin joins an advisor list by id.
func FindAdmin(advisors []Admin, id string) (Admin, bool) {
	if id == "" {
		return Admin{}, false
	}
	for _, a := range advisors {
		if a.ID == id {
			return a, true
		}
	}
	return Admin{}, false
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
