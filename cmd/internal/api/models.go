package api

import "time"

// AuthUser is the user identity embedded in auth responses.
type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// AuthData is the payload of login, registration and refresh responses.
// Servers have shipped the token under both "token" and "accessToken";
// BearerToken resolves whichever is present.
type AuthData struct {
	Token       string    `json:"token,omitempty"`
	AccessToken string    `json:"accessToken,omitempty"`
	User        *AuthUser `json:"user,omitempty"`
}

// BearerToken returns the access token regardless of which field the server
// used.
func (d AuthData) BearerToken() string {
	if d.Token != "" {
		return d.Token
	}
	return d.AccessToken
}

// Profile is the account profile as returned by GET /api/profile/me.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// ProfileUpdate carries the mutable profile fields. Nil fields are left
// untouched by the server.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// VehicleImage is one photo attached to a vehicle listing.
type VehicleImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Vehicle is a driver's vehicle listing.
type Vehicle struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"ownerId"`
	Make         string         `json:"make"`
	Model        string         `json:"model"`
	Year         int            `json:"year"`
	Plate        string         `json:"plate"`
	Seats        int            `json:"seats"`
	PricePerSeat int            `json:"pricePerSeat"`
	Images       []VehicleImage `json:"images,omitempty"`
}

// VehicleInput is the writable subset of a vehicle listing.
type VehicleInput struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Plate        string `json:"plate"`
	Seats        int    `json:"seats"`
	PricePerSeat int    `json:"pricePerSeat"`
}

type registerStartRequest struct {
	Email string `json:"email"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyEmailResponse struct {
	ExchangeToken string `json:"exchangeToken"`
}

type registerCompleteRequest struct {
	ExchangeToken string `json:"exchangeToken"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	PIN           string `json:"pin"`
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type resetStartRequest struct {
	Email string `json:"email"`
}

type resetCompleteRequest struct {
	Email  string `json:"email"`
	Code   string `json:"code"`
	NewPIN string `json:"newPin"`
}
