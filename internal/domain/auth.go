package domain

// AuthPayload is the claim set carried by a caller's bearer token
type AuthPayload struct {
	Username   string   `json:"username"`
	Permission []string `json:"permission"`
}
