package entities

// Role decides which half of the API a user reaches.
type Role string

const (
	RolePatient    Role = "patient"
	RolePharmacien Role = "pharmacien"
)

// User is an account. Password is stored and compared as plain text.
type User struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Age       int    `json:"age,omitempty"`
	Adresse   string `json:"adresse,omitempty"`
	Telephone string `json:"telephone,omitempty"`
}

// Public returns the user without its password.
func (u User) Public() User {
	u.Password = ""
	return u
}
