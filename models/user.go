// models/user.go
package models

// User is the signed-in customer as asserted by the salon backend's access token.
// Token is forwarded to the backend on calls made on the user's behalf.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Token string `json:"-"`
}
