package auth

// RefreshTokenRequest is the payload for rotating a token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
